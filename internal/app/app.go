// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"fmt"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/JakeFAU/boxoffice-crawler/internal/boxoffice"
	"github.com/JakeFAU/boxoffice-crawler/internal/cache"
	"github.com/JakeFAU/boxoffice-crawler/internal/config"
	"github.com/JakeFAU/boxoffice-crawler/internal/extract/detail"
	"github.com/JakeFAU/boxoffice-crawler/internal/extract/listing"
	collyfetcher "github.com/JakeFAU/boxoffice-crawler/internal/fetcher/colly"
	"github.com/JakeFAU/boxoffice-crawler/internal/fetcher/escalate"
	"github.com/JakeFAU/boxoffice-crawler/internal/fetcher/headless"
	restyfetcher "github.com/JakeFAU/boxoffice-crawler/internal/fetcher/resty"
	"github.com/JakeFAU/boxoffice-crawler/internal/headless/detector"
	"github.com/JakeFAU/boxoffice-crawler/internal/pipeline"
	"github.com/JakeFAU/boxoffice-crawler/internal/policy/ratelimit"
	"github.com/JakeFAU/boxoffice-crawler/internal/telemetry"
)

// App holds the shared services for one process: the configured fetcher
// behind a rate limiter, the page cache in front of it and the pipeline
// runner that reads from the cache.
type App struct {
	cfg            config.Config
	logger         *zap.Logger
	fetcher        boxoffice.Fetcher
	store          *cache.Store
	runner         *pipeline.Runner
	tracerProvider *sdktrace.TracerProvider
	closers        []func()
}

// Option customizes App construction.
type Option func(*options)

type options struct {
	fetcher boxoffice.Fetcher
}

// WithFetcher replaces the driver selected by fetcher.driver.
func WithFetcher(f boxoffice.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// New wires every service from cfg. It fails fast when the cache directory
// cannot be prepared or a driver cannot be built.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, logger: logger}

	tp, err := telemetry.InitTracerProvider(ctx, telemetry.Config{
		TracingEnabled: cfg.Telemetry.TracingEnabled,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.tracerProvider = tp

	base := o.fetcher
	if base == nil {
		base, err = a.newFetcher()
		if err != nil {
			a.Close()
			return nil, err
		}
	}
	limiter := ratelimit.New(ratelimit.Config{
		DefaultRPS:   cfg.Fetcher.RequestsPerSecond,
		DefaultBurst: cfg.Fetcher.Burst,
	})
	a.fetcher = ratelimit.Wrap(base, limiter)

	a.store, err = cache.New(cache.Config{Root: cfg.Cache.Root}, a.fetcher, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init cache: %w", err)
	}

	a.runner, err = pipeline.NewRunner(pipeline.Config{
		ListingBaseURL: cfg.Sources.ListingBaseURL,
		ProBaseURL:     cfg.Sources.ProBaseURL,
		Listing: listing.Options{
			WeekendLimit: cfg.Extract.WeekendLimit,
			YearLimit:    cfg.Extract.YearLimit,
		},
		Detail: detail.Options{CastLimit: cfg.Extract.CastLimit},
	}, a.store, logger)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init pipeline: %w", err)
	}

	logger.Info("application services initialized",
		zap.String("driver", cfg.Fetcher.Driver),
		zap.String("cache_root", a.store.Root()),
		zap.Float64("requests_per_second", cfg.Fetcher.RequestsPerSecond),
	)
	return a, nil
}

func (a *App) newFetcher() (boxoffice.Fetcher, error) {
	fc := a.cfg.Fetcher
	switch fc.Driver {
	case config.DriverColly, "":
		return collyfetcher.New(collyfetcher.Config{
			UserAgent:     fc.UserAgent,
			RespectRobots: fc.RespectRobots,
			Timeout:       a.cfg.FetchTimeout(),
		}), nil
	case config.DriverResty:
		return restyfetcher.New(restyfetcher.Config{
			UserAgent: fc.UserAgent,
			Timeout:   a.cfg.FetchTimeout(),
		}), nil
	case config.DriverHeadless:
		return a.newHeadless()
	case config.DriverAuto:
		renderer, err := a.newHeadless()
		if err != nil {
			return nil, err
		}
		primary := collyfetcher.New(collyfetcher.Config{
			UserAgent:     fc.UserAgent,
			RespectRobots: fc.RespectRobots,
			Timeout:       a.cfg.FetchTimeout(),
		})
		hc := a.cfg.Headless
		return escalate.New(primary, renderer, detector.NewHeuristic(hc.PromoteMinBytes, hc.ContentSelector), a.logger)
	default:
		return nil, fmt.Errorf("unknown fetcher driver: %s", fc.Driver)
	}
}

func (a *App) newHeadless() (*headless.Fetcher, error) {
	f, err := headless.NewChromedp(headless.Config{
		MaxParallel:       a.cfg.Headless.MaxParallel,
		UserAgent:         a.cfg.Fetcher.UserAgent,
		NavigationTimeout: time.Duration(a.cfg.Headless.NavTimeoutSec) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("init headless fetcher: %w", err)
	}
	a.closers = append(a.closers, f.Close)
	return f, nil
}

// Config returns the configuration the App was built from.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the shared zap logger.
func (a *App) Logger() *zap.Logger { return a.logger }

// Fetcher returns the rate-limited network fetcher.
func (a *App) Fetcher() boxoffice.Fetcher { return a.fetcher }

// Cache returns the page cache.
func (a *App) Cache() *cache.Store { return a.store }

// Runner returns the pipeline runner.
func (a *App) Runner() *pipeline.Runner { return a.runner }

// Run executes one request through the pipeline.
func (a *App) Run(ctx context.Context, req boxoffice.Request) (pipeline.Result, error) {
	return a.runner.Run(ctx, req)
}

// Close releases browser processes, flushes spans and syncs the logger.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
	if a.tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.logger.Warn("error shutting down tracer provider", zap.Error(err))
		}
		a.tracerProvider = nil
	}
	_ = a.logger.Sync() //nolint:errcheck // stderr sync fails on some platforms
}
