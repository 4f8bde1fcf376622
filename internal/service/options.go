package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/blog-records/internal/search"
)

// Cache stores JSON snapshots of single records.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
	Del(ctx context.Context, key string) error
}

// PostIndex keeps a full-text copy of posts.
type PostIndex interface {
	IndexPost(ctx context.Context, doc search.PostDocument) error
	DeletePost(ctx context.Context, id uint) error
	SearchPosts(ctx context.Context, query, category string, limit int) ([]search.PostHit, error)
}

type options struct {
	logger *slog.Logger
	tracer trace.Tracer
	meter  metric.Meter
	cache  Cache
	index  PostIndex
}

// Option configures a service.
type Option func(*options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) { o.tracer = tracer }
}

// WithDefaultTracer uses the global OpenTelemetry tracer.
func WithDefaultTracer() Option {
	return func(o *options) { o.tracer = otel.Tracer(instrumentationName) }
}

func WithMeter(meter metric.Meter) Option {
	return func(o *options) { o.meter = meter }
}

// WithDefaultMeter uses the global OpenTelemetry meter.
func WithDefaultMeter() Option {
	return func(o *options) { o.meter = otel.Meter(instrumentationName) }
}

// WithCache enables read-through caching of single records.
func WithCache(c Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithPostIndex enables search indexing of posts.
func WithPostIndex(idx PostIndex) Option {
	return func(o *options) { o.index = idx }
}

func buildOptions(opts []Option) *options {
	o := &options{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
