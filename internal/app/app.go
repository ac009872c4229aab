// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/histia/harvest/internal/agent"
	"github.com/histia/harvest/internal/auth"
	"github.com/histia/harvest/internal/browser"
	"github.com/histia/harvest/internal/collector"
	"github.com/histia/harvest/internal/config"
	"github.com/histia/harvest/internal/llm"
	"github.com/histia/harvest/internal/ratelimit"
	"github.com/histia/harvest/internal/sites"
)

// Application holds all dependencies and manages their lifecycle. It is
// created once at startup and shared across CLI commands and API handlers.
// Use Close() for proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Registry    *agent.Registry
	Runner      *agent.Runner
	Credentials *auth.Store

	pool   *browser.Pool
	poolMu sync.Mutex

	startTime time.Time
}

// New initializes the application: logger, rate limiter, static collector,
// model client, credential store, agent registry and runner. The browser pool
// is created lazily on the first session acquire so static-only runs and
// metadata queries never launch Chrome.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	_ = ctx

	logger := newLogger(cfg)

	limiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("rate limiter initialized")

	static := collector.NewStaticCollector(cfg.UserAgent)

	model := llm.NewClient(llm.Config{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.LLMTimeout,
		MaxRetries:  cfg.LLMMaxRetries,
	})
	if model == nil {
		logger.Debug().Msg("no model API key, fallback extraction disabled")
	}

	registry := agent.NewRegistry()
	if err := sites.RegisterAll(registry); err != nil {
		return nil, err
	}

	store := auth.NewStore()

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		Registry:    registry,
		Credentials: store,
		startTime:   time.Now(),
	}

	runner := &agent.Runner{
		Static:         static,
		Limiter:        limiter,
		Markdown:       llm.PageMarkdown,
		AcquireTimeout: cfg.PoolAcquireTTL,
		Lookup:         store.Lookup,
		Sessions:       &poolSource{app: app},
	}
	if model != nil {
		runner.LLM = model
	}
	app.Runner = runner

	logger.Debug().Int("agents", len(registry.List())).Msg("application initialized")
	return app, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.LogLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	var writer io.Writer = os.Stderr
	if !cfg.JSONLog {
		writer = zerolog.NewConsoleWriter()
	}
	logger := log.Output(writer).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// ensurePool creates the browser pool on first use.
func (a *Application) ensurePool() (*browser.Pool, error) {
	a.poolMu.Lock()
	defer a.poolMu.Unlock()

	if a.pool != nil {
		return a.pool, nil
	}
	a.Logger.Debug().Msg("initializing browser pool on demand")
	pool, err := browser.NewPool(browser.PoolOptions{
		Size:       a.Config.BrowserPoolSize,
		Headless:   a.Config.BrowserHeadless,
		UserAgent:  a.Config.UserAgent,
		ChromePath: a.Config.ChromePath,
	})
	if err != nil {
		return nil, fmt.Errorf("browser pool: %w", err)
	}
	a.pool = pool
	a.Logger.Info().Int("size", a.Config.BrowserPoolSize).Msg("browser pool initialized")
	return pool, nil
}

// poolSource adapts the lazy pool to the runner's session interface.
type poolSource struct {
	app *Application
}

func (p *poolSource) Acquire(timeout time.Duration) (agent.Session, error) {
	pool, err := p.app.ensurePool()
	if err != nil {
		return nil, err
	}
	return pool.Acquire(timeout)
}

func (p *poolSource) Release(session agent.Session) {
	if s, ok := session.(*browser.Session); ok && p.app.pool != nil {
		p.app.pool.Release(s)
	}
}

// Close shuts down the browser pool. Errors during shutdown are logged, not
// returned, so one failing resource never blocks the rest.
func (a *Application) Close(ctx context.Context) error {
	_ = ctx
	a.poolMu.Lock()
	pool := a.pool
	a.pool = nil
	a.poolMu.Unlock()

	if pool != nil {
		if err := pool.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("error closing browser pool")
		}
	}

	a.Logger.Debug().Dur("uptime", time.Since(a.startTime)).Msg("application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
