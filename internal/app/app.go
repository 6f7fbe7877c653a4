// Package app wires configuration, the tool registry, and HTTP handlers.
package app

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/bobmcallan/openapi-toolproxy/internal/cache"
	"github.com/bobmcallan/openapi-toolproxy/internal/common"
	"github.com/bobmcallan/openapi-toolproxy/internal/config"
	"github.com/bobmcallan/openapi-toolproxy/internal/dispatch"
	"github.com/bobmcallan/openapi-toolproxy/internal/handlers"
	"github.com/bobmcallan/openapi-toolproxy/internal/mcp"
	"github.com/bobmcallan/openapi-toolproxy/internal/metrics"
	"github.com/bobmcallan/openapi-toolproxy/internal/openapi"
	"github.com/bobmcallan/openapi-toolproxy/internal/registry"
)

// ErrAllSourcesFailed is returned by Reload when every configured source
// failed. The previously published registry is kept.
var ErrAllSourcesFailed = errors.New("all sources failed to load")

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Metrics       *metrics.Metrics
	Registry      *registry.Registry
	DocumentCache *cache.DocumentCache
	Loader        *openapi.Loader
	Dispatcher    *dispatch.Dispatcher

	// HTTP handlers
	HealthHandler  *handlers.HealthHandler
	ReadyHandler   *handlers.ReadyHandler
	VersionHandler *handlers.VersionHandler
	InvokeHandler  *handlers.InvokeHandler
	ToolsHandler   *handlers.ToolsHandler
	SourcesHandler *handlers.SourcesHandler
	ReloadHandler  *handlers.ReloadHandler // nil unless server.enable_reload
	MCPHandler     *mcp.Handler           // nil unless mcp.enabled

	sources []openapi.Source
	reloads singleflight.Group

	mu      sync.RWMutex
	reports []openapi.SourceReport
}

// Options overrides the outbound HTTP clients, mainly for tests.
type Options struct {
	FetchClient    *http.Client
	DispatchClient *http.Client
}

// New initializes the application with all dependencies. No sources are
// loaded until Reload is called.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	return NewWithOptions(cfg, logger, Options{})
}

// NewWithOptions is New with explicit HTTP clients.
func NewWithOptions(cfg *config.Config, logger *common.Logger, opts Options) (*App, error) {
	if issues := cfg.Validate(); len(issues) > 0 {
		return nil, &ConfigError{Issues: issues}
	}

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics.New(),
		Registry: registry.New(),
		sources:  SourcesFromConfig(cfg.Sources),
	}

	a.DocumentCache = cache.New(cfg.Loader.GetCacheTTL(), 0)
	a.Loader = openapi.NewLoader(openapi.LoaderOptions{
		HTTP:         openapi.NewHTTPFetcher(opts.FetchClient, cfg.Loader.MaxDocumentBytes, a.DocumentCache, logger),
		Files:        openapi.NewFileFetcher(cfg.Loader.MaxDocumentBytes),
		Concurrency:  cfg.Loader.Concurrency,
		FetchTimeout: cfg.Loader.GetFetchTimeout(),
		Metrics:      a.Metrics,
	}, logger)

	a.Dispatcher = dispatch.New(
		a.Registry,
		dispatch.NewHTTPTransport(opts.DispatchClient, cfg.Dispatch.MaxResponseBytes, logger),
		dispatch.Options{
			Timeout:       cfg.Dispatch.GetTimeout(),
			DefaultRegion: cfg.Dispatch.DefaultRegion,
			Metrics:       a.Metrics,
		},
		logger,
	)

	a.initHandlers()

	logger.Info().Int("sources", len(a.sources)).Msg("application initialization complete")

	return a, nil
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.HealthHandler = handlers.NewHealthHandler(a.Logger)
	a.ReadyHandler = handlers.NewReadyHandler(a.Registry)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.InvokeHandler = handlers.NewInvokeHandler(a.Dispatcher, a.Logger)
	a.ToolsHandler = handlers.NewToolsHandler(a.Registry)
	a.SourcesHandler = handlers.NewSourcesHandler(a.Registry, a)

	if a.Config.Server.EnableReload {
		a.ReloadHandler = handlers.NewReloadHandler(a, a.Registry, a, a.Logger)
	}
	if a.Config.MCP.Enabled {
		a.MCPHandler = mcp.NewHandler(a.Dispatcher, a.Logger)
	}

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Reload loads every source and publishes the resulting registry. Concurrent
// calls share one load. Individual source failures are reported through
// Sources and never fail the reload on their own.
func (a *App) Reload(ctx context.Context) error {
	// The shared load must not be cut short by whichever caller started it.
	loadCtx := context.WithoutCancel(ctx)
	ch := a.reloads.DoChan("reload", func() (any, error) {
		return nil, a.reload(loadCtx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *App) reload(ctx context.Context) error {
	result := a.Loader.Load(ctx, a.sources)
	snap, overwrites := result.Snapshot()

	for _, ow := range overwrites {
		a.Logger.Debug().
			Str("tool", ow.Name).
			Str("previous_source", ow.PreviousSource).
			Str("source", ow.Source).
			Msg("tool overwritten by later source")
	}

	a.mu.Lock()
	a.reports = result.Reports
	a.mu.Unlock()

	if len(a.sources) > 0 && len(result.Errors) == len(a.sources) {
		a.Logger.Warn().
			Int("sources", len(a.sources)).
			Int("tools", a.Registry.Current().Len()).
			Msg("every source failed, keeping current registry")
		return ErrAllSourcesFailed
	}

	a.Registry.Publish(snap)
	a.Metrics.SetRegistryTools(snap.Len())
	if a.MCPHandler != nil {
		a.MCPHandler.Refresh(snap)
	}

	a.Logger.Info().
		Int("tools", snap.Len()).
		Int("sources", len(a.sources)).
		Int("failed", len(result.Errors)).
		Int("overwritten", len(overwrites)).
		Msg("registry published")
	return nil
}

// Sources returns the per-source report of the most recent load.
func (a *App) Sources() []openapi.SourceReport {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]openapi.SourceReport, len(a.reports))
	copy(out, a.reports)
	return out
}

// Close closes all application resources.
func (a *App) Close() error {
	a.DocumentCache.InvalidatePrefix("")
	return nil
}

// SourcesFromConfig converts configured sources into loader sources.
func SourcesFromConfig(cfgs []config.SourceConfig) []openapi.Source {
	sources := make([]openapi.Source, 0, len(cfgs))
	for _, sc := range cfgs {
		src := openapi.Source{
			Name:   sc.Name,
			Prefix: sc.ToolPrefix(),
			URL:    sc.URL,
			File:   sc.File,
			Base:   openapi.BasePolicy{Mode: openapi.BaseFromServers},
		}
		if sc.Base == config.BaseRegion {
			src.Base = openapi.BasePolicy{Mode: openapi.BaseFromRegion, RegionTemplate: sc.RegionTemplate}
		}
		sources = append(sources, src)
	}
	return sources
}
