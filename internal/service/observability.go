package service

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/blog-records/internal/models"
)

const instrumentationName = "github.com/example/blog-records/internal/service"

type metrics struct {
	rejections metric.Int64Counter
	writes     metric.Int64Counter
}

func initMetrics(meter metric.Meter) *metrics {
	rejections, _ := meter.Int64Counter("blog.validation.rejections",
		metric.WithDescription("Field values rejected by record validation"),
		metric.WithUnit("{rejection}"),
	)
	writes, _ := meter.Int64Counter("blog.records.writes",
		metric.WithDescription("Committed record writes"),
		metric.WithUnit("{write}"),
	)
	return &metrics{rejections: rejections, writes: writes}
}

// observer bundles logging, tracing and metrics; tracer and meter are optional.
type observer struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *metrics
}

func newObserver(o *options) *observer {
	obs := &observer{logger: o.logger, tracer: o.tracer}
	if o.meter != nil {
		obs.metrics = initMetrics(o.meter)
	}
	return obs
}

// spanWrapper tolerates a nil span so callers need no tracer checks.
type spanWrapper struct {
	span trace.Span
}

func (w spanWrapper) End() {
	if w.span != nil {
		w.span.End()
	}
}

func (w spanWrapper) Fail(err error) {
	if w.span != nil && err != nil {
		w.span.RecordError(err)
		w.span.SetStatus(codes.Error, err.Error())
	}
}

func (o *observer) start(ctx context.Context, name string) (context.Context, spanWrapper) {
	if o.tracer == nil {
		return ctx, spanWrapper{}
	}
	ctx, span := o.tracer.Start(ctx, name)
	return ctx, spanWrapper{span}
}

// rejected records every field error in err.
func (o *observer) rejected(ctx context.Context, record string, err error) {
	for _, fe := range models.FieldErrors(err) {
		o.logger.LogAttrs(ctx, slog.LevelInfo, "validation rejected",
			slog.String("record", record),
			slog.String("field", fe.Field),
			slog.String("kind", fe.KindName()),
		)
		if o.metrics != nil {
			o.metrics.rejections.Add(ctx, 1, metric.WithAttributes(
				attribute.String("record", record),
				attribute.String("field", fe.Field),
				attribute.String("kind", fe.KindName()),
			))
		}
	}
}

func (o *observer) written(ctx context.Context, record, action string, id uint) {
	o.logger.LogAttrs(ctx, slog.LevelInfo, "record written",
		slog.String("record", record),
		slog.String("action", action),
		slog.Uint64("id", uint64(id)),
	)
	if o.metrics != nil {
		o.metrics.writes.Add(ctx, 1, metric.WithAttributes(
			attribute.String("record", record),
			attribute.String("action", action),
		))
	}
}

// sideEffectFailed logs a cache or index failure that must not fail the caller.
func (o *observer) sideEffectFailed(ctx context.Context, what string, id uint, err error) {
	o.logger.LogAttrs(ctx, slog.LevelWarn, what+" failed",
		slog.Uint64("id", uint64(id)),
		slog.String("error", err.Error()),
	)
}
