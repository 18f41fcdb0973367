package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/km-arc/branch/framework/config"
	"github.com/km-arc/branch/framework/container"
	gohttp "github.com/km-arc/branch/framework/http"
	"github.com/km-arc/branch/framework/logging"
	"github.com/km-arc/branch/framework/providers"
	"github.com/km-arc/branch/framework/resolver"
	"github.com/km-arc/branch/framework/routing"
)

// Version is reported by the CLI.
const Version = "0.1.0"

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton(), app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	// Metrics is the registry behind /metrics; each application has its own.
	Metrics *prometheus.Registry
}

// New creates the application and registers the framework providers.
// classes is the registry of autowirable classes; nil starts empty.
func New(classes *resolver.Registry, envFiles ...string) *Application {
	c := container.New(container.WithClasses(classes))
	registry := container.NewProviderRegistry(c)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	app := &Application{
		Container: c,
		Providers: registry,
		Metrics:   reg,
	}
	c.Instance("app", app)

	// Framework providers never fail to register.
	_ = registry.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	_ = registry.Register(&providers.LoggingServiceProvider{})
	_ = registry.Register(&providers.RoutingServiceProvider{Registry: reg})
	_ = registry.Register(&providers.ViewServiceProvider{})

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Routes sets the route registration callback run on the first request.
// fn may be a func(*routing.Router), a func(*routing.Router) error, or any
// func whose parameters the container can autowire.
func (a *Application) Routes(fn any) {
	a.Instance(routing.RoutesKey, fn)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() (*config.Config, error) {
	return container.Resolve[*config.Config](a.Container, "config")
}

// Logger resolves the application logger.
func (a *Application) Logger() (*zap.Logger, error) {
	return container.Resolve[*zap.Logger](a.Container, "log")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Views resolves *gohttp.ViewEngine from the container.
func (a *Application) Views() (*gohttp.ViewEngine, error) {
	return container.Resolve[*gohttp.ViewEngine](a.Container, "view")
}

// Handler boots the application and returns the root HTTP handler: global
// middleware, /metrics, and the router for everything else. Routes are
// registered before the handler is returned.
func (a *Application) Handler() (http.Handler, error) {
	if err := a.Boot(); err != nil {
		return nil, err
	}
	router, err := a.Router()
	if err != nil {
		return nil, err
	}
	if err := router.Register(); err != nil {
		return nil, err
	}
	logger, err := a.Logger()
	if err != nil {
		return nil, err
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(logging.Middleware(logger))
	mux.Use(middleware.Recoverer)

	mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.Metrics, promhttp.HandlerOpts{}))
	mux.Handle("/*", router)
	return mux, nil
}

// Run boots the application and serves HTTP until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	handler, err := a.Handler()
	if err != nil {
		return err
	}
	cfg, err := a.Config()
	if err != nil {
		return err
	}
	logger, err := a.Logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("app", cfg.App.Name),
			zap.String("env", cfg.App.Env),
			zap.String("addr", srv.Addr),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string {
	cfg, err := a.Config()
	if err != nil {
		return ""
	}
	return cfg.App.Env
}

func (a *Application) IsLocal() bool      { return a.Environment() == "local" }
func (a *Application) IsProduction() bool { return a.Environment() == "production" }
func (a *Application) IsTesting() bool    { return a.Environment() == "testing" }
func (a *Application) Version() string    { return Version }
