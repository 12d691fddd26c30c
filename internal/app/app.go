// Package app provides application initialization and dependency
// injection. App wires the config, Gemini service, session store, result
// cache, diagram resolver and fetch orchestrator together and owns their
// shutdown order.
package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/jama7777/Inifinite-wiki/internal/cache"
	"github.com/jama7777/Inifinite-wiki/internal/config"
	"github.com/jama7777/Inifinite-wiki/internal/diagram"
	"github.com/jama7777/Inifinite-wiki/internal/fetch"
	"github.com/jama7777/Inifinite-wiki/internal/gemini"
	"github.com/jama7777/Inifinite-wiki/internal/log"
	"github.com/jama7777/Inifinite-wiki/internal/session"
	"github.com/jama7777/Inifinite-wiki/internal/webpage"
)

// App is the core application container.
type App struct {
	Config   *config.Config
	Logger   log.Logger
	Store    *session.Store
	Cache    *cache.Cache
	Gemini   *gemini.Service
	Fetcher  *fetch.Fetcher
	Diagrams *diagram.Resolver

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds the application container from configuration.
func New(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	svc, err := gemini.New(ctx, gemini.Config{
		APIKey:      cfg.GeminiAPIKey,
		TextModel:   cfg.TextModel,
		VisionModel: cfg.VisionModel,
		ImageModel:  cfg.ImageModel,
		Logger:      logger,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("initializing gemini: %w", err)
	}

	store := session.NewStore(cfg.Language, logger)
	results := cache.New(time.Duration(cfg.CacheTTLSec) * time.Second)

	diagrams, err := diagram.New(diagram.Config{
		Store:       store,
		Generator:   svc,
		Logger:      logger,
		Concurrency: cfg.DiagramConcurrency,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("initializing diagram resolver: %w", err)
	}

	fetcher, err := fetch.New(fetch.Config{
		Store:     store,
		Cache:     results,
		Generator: svc,
		Pages:     webpage.New(),
		Diagrams:  diagrams,
		Logger:    logger,
		Limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.RequestBurst),
		Timeout:   time.Duration(cfg.GenerationTimeoutSec) * time.Second,
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("initializing fetcher: %w", err)
	}

	logger.Info("application initialized",
		"text_model", cfg.TextModel,
		"default_language", cfg.Language,
	)

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Cache:    results,
		Gemini:   svc,
		Fetcher:  fetcher,
		Diagrams: diagrams,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Context returns the application lifecycle context. Generations started
// with it outlive individual UI events and stop on Close.
func (a *App) Context() context.Context {
	return a.ctx
}

// Close gracefully shuts down: cancels the lifecycle context, then waits
// for in-flight generations and diagram renders to observe it.
func (a *App) Close() error {
	a.Logger.Info("shutting down application")
	if a.cancel != nil {
		a.cancel()
	}
	a.Fetcher.Wait()
	a.Diagrams.Wait()
	return nil
}
