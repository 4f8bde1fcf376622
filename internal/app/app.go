package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/example/blog-records/internal/cache"
	"github.com/example/blog-records/internal/config"
	"github.com/example/blog-records/internal/db"
	"github.com/example/blog-records/internal/models"
	"github.com/example/blog-records/internal/search"
	"github.com/example/blog-records/internal/service"
	"github.com/example/blog-records/internal/transport/http"
)

type Application struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *db.Database
	Cache  *cache.RedisClient
	Search *search.Elastic
	Router http.Router
}

func Initialize() (*Application, error) {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	return InitializeWith(cfg, logger)
}

// connect is swapped in tests to observe the database handle.
var connect = db.Connect

// InitializeWith builds the application; on error everything opened so far is closed.
func InitializeWith(cfg *config.Config, logger *slog.Logger) (_ *Application, err error) {
	database, err := connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	a := &Application{Config: cfg, Logger: logger, DB: database}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err := database.AutoMigrate(&models.Author{}, &models.Post{}, &models.ActivityLog{}); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	if err := database.EnsureIndexes(); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	opts := []service.Option{service.WithLogger(logger), service.WithDefaultTracer(), service.WithDefaultMeter()}

	if cfg.RedisEnabled {
		redisClient, err := cache.NewRedisClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.Cache = redisClient
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx); err != nil {
			logger.Warn("redis ping failed, cache reads will miss until it is reachable",
				slog.String("addr", cfg.RedisAddr),
				slog.String("error", err.Error()),
			)
		}
		opts = append(opts, service.WithCache(redisClient))
	}

	if cfg.ElasticEnabled {
		es, err := search.NewElastic(cfg)
		if err != nil {
			return nil, fmt.Errorf("elasticsearch: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := es.EnsurePostsIndex(ctx); err != nil {
			return nil, fmt.Errorf("ensure ES index: %w", err)
		}
		a.Search = es
		opts = append(opts, service.WithPostIndex(es))
	}

	a.Router = http.NewRouter(
		service.NewAuthorService(database, opts...),
		service.NewPostService(database, opts...),
	)
	logger.Info("application initialized",
		slog.String("db_driver", cfg.DBDriver),
		slog.Bool("cache", a.Cache != nil),
		slog.Bool("search", a.Search != nil),
	)
	return a, nil
}

func (a *Application) Close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Logger.Error("db close error", slog.String("error", err.Error()))
		}
	}
	if a.Cache != nil {
		_ = a.Cache.Close()
	}
}
