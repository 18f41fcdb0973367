package providers

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/km-arc/branch/framework/config"
	"github.com/km-arc/branch/framework/container"
	gohttp "github.com/km-arc/branch/framework/http"
	"github.com/km-arc/branch/framework/logging"
	"github.com/km-arc/branch/framework/resolver"
	"github.com/km-arc/branch/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container as "config".
//
// Bound abstracts:
//   - "config"                  → *config.Config
//   - resolver.Key[*config.Config]() (alias, for autowiring)
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles := p.EnvFiles
	app.Singleton("config", func(resolver.Container) any {
		return config.Load(envFiles...)
	})
	app.Alias("config", resolver.Key[*config.Config]())
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the zap logger from the "log" section of
// the configuration.
//
// Bound abstracts:
//   - "log" → *zap.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	app.Singleton("log", func(c resolver.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		return logging.New(cfg.Log)
	})
	app.Alias("log", resolver.Key[*zap.Logger]())
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the router. At boot it loads the route
// file named by ROUTES_FILE, if any.
//
// Bound abstracts:
//   - "router" → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider

	// Registry receives the dispatch metrics when they are enabled.
	Registry prometheus.Registerer
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(c resolver.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		logger, err := container.Resolve[*zap.Logger](c, "log")
		if err != nil {
			return nil, err
		}

		opts := []routing.Option{routing.WithLogger(logger.Named("router"))}
		if cfg.Routing.Metrics {
			opts = append(opts, routing.WithMetrics(routing.NewMetrics(routing.MetricsConfig{Registry: p.Registry})))
		}
		return routing.New(app, opts...), nil
	})
	app.Alias("router", resolver.Key[*routing.Router]())
}

func (p *RoutingServiceProvider) Boot(app *container.Container) error {
	cfg, err := container.Resolve[*config.Config](app, "config")
	if err != nil {
		return err
	}
	if cfg.Routing.File == "" {
		return nil
	}
	router, err := container.Resolve[*routing.Router](app, "router")
	if err != nil {
		return err
	}
	if err := routing.LoadFile(router, cfg.Routing.File); err != nil {
		return fmt.Errorf("providers: routes: %w", err)
	}
	return nil
}

// ── ViewServiceProvider ───────────────────────────────────────────────────────

// ViewServiceProvider registers the template engine. It is deferred: the
// engine is only built the first time "view" is requested.
//
// Bound abstracts:
//   - "view" → *gohttp.ViewEngine
//
// Dir and Ext override VIEW_DIR and VIEW_EXT.
type ViewServiceProvider struct {
	container.BaseProvider
	Dir string
	Ext string
}

func (p *ViewServiceProvider) Register(app *container.Container) {
	app.Singleton("view", func(c resolver.Container) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		dir, ext := cfg.View.Dir, cfg.View.Ext
		if p.Dir != "" {
			dir = p.Dir
		}
		if p.Ext != "" {
			ext = p.Ext
		}
		return gohttp.NewViewEngine(dir, ext), nil
	})
	app.Alias("view", resolver.Key[*gohttp.ViewEngine]())
}

func (p *ViewServiceProvider) Provides() []string {
	return []string{"view", resolver.Key[*gohttp.ViewEngine]()}
}

func (p *ViewServiceProvider) IsDeferred() bool { return true }
