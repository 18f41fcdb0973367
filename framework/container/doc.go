// Package container provides a Laravel-compatible IoC (Inversion of Control)
// container and Service Provider system for Go.
//
// # Overview
//
// The container manages the instantiation and lifecycle of your application's
// dependencies. It supports transient bindings, singletons, pre-built instances,
// aliases, tags, contextual bindings, and extension (decoration).
//
// Bindings are definitions (see package resolver): closures, class configs,
// registered class names or plain values. Classes are registered once in a
// resolver.Registry with their parameter names; the container autowires
// their constructors by parameter type.
//
// # Container Lifecycle
//
//  1. Create: c := container.New(container.WithClasses(classes))
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        // safe to resolve everything after this
//  4. Serve requests
//
// # Bindings
//
//	// Transient: new instance every Get()
//	// Laravel: $app->bind(Foo::class, fn($app) => new Foo)
//	c.Bind("Foo", func() any { return &Foo{} })
//
//	// Singleton built from a registered class with explicit args
//	c.Singleton("cache", resolver.ObjectConfig{Class: "cache.redis", Args: map[string]any{"db": 2}})
//
//	// Pre-built value
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
//
//	// Alias
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias("cache", "cacheManager")
//
// # Resolving
//
//	raw, err := c.Get("cache")
//	cache, err := container.Resolve[*RedisCache](c, "cache")
//	router, err := container.ResolveType[*routing.Router](c)
//
// A Get miss on an id that names a registered class (by name or by the type
// id of what it produces) builds the class. Cycles are reported as
// *CircularDependencyError, misses as *NotFoundError.
//
// # Contextual Binding
//
//	// Laravel: $app->when(PhotoController::class)
//	//              ->needs(Filesystem::class)
//	//              ->give(fn() => new S3Filesystem)
//	c.When("PhotoController").
//	    Needs(resolver.Key[Filesystem]()).
//	    Give("fs.s3")
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("mailer", "mail.smtp")
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	err := registry.Boot()
//
// Deferred providers return true from IsDeferred and list their abstracts in
// Provides; they are registered on the first Get of any of them.
package container
