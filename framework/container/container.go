package container

import (
	"fmt"
	"slices"
	"sync"

	"github.com/km-arc/branch/framework/resolver"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// binding holds a registered definition and whether it is a singleton.
type binding struct {
	definition resolver.Definition
	singleton  bool
}

// Extender wraps an already-resolved instance with decorator logic.
type Extender func(instance any, c resolver.Container) any

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container. It mirrors Laravel's Illuminate\Container\Container.
//
// It supports:
//   - Bind / Singleton / Instance / Alias
//   - Get / Make / Resolve / Invoke with constructor autowiring
//   - Tags (group multiple abstractions under one tag)
//   - Extend (decorate / wrap resolved instances)
//   - Contextual binding (when A needs B, give it C)
//   - Rebound callbacks
//   - Resolved event callbacks
//
// Bindings are definitions (see package resolver). On a cache miss the
// container hands the definition to a Resolver scoped to the current
// resolution chain; the resolver comes back through Has/Get for nested
// dependencies.
type Container struct {
	mu sync.RWMutex

	classes *resolver.Registry

	// abstract → binding
	bindings map[string]*binding

	// abstract → resolved singleton instance
	instances map[string]any

	// alias → abstract (canonical key)
	aliases map[string]string

	// abstract → extender funcs
	extenders map[string][]Extender

	// tag → []abstract
	tags map[string][]string

	// contextual: when[concrete][abstract] = definition
	contextual map[string]map[string]resolver.Definition

	// rebound callbacks: abstract → []func(any)
	reboundCallbacks map[string][]func(any)

	// resolved callbacks: []func(abstract, instance)
	afterResolving []func(string, any)
}

// Option configures a Container.
type Option func(*Container)

// WithClasses shares a class registry with the container. Without it the
// container starts with an empty registry.
func WithClasses(classes *resolver.Registry) Option {
	return func(c *Container) {
		c.classes = classes
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		bindings:         make(map[string]*binding),
		instances:        make(map[string]any),
		aliases:          make(map[string]string),
		extenders:        make(map[string][]Extender),
		tags:             make(map[string][]string),
		contextual:       make(map[string]map[string]resolver.Definition),
		reboundCallbacks: make(map[string][]func(any)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.classes == nil {
		c.classes = resolver.NewRegistry()
	}
	// Bind the container to itself, like Laravel's $app->instance()
	c.instances["container"] = c
	c.instances[resolver.Key[*Container]()] = c
	return c
}

// Classes returns the class registry used for autowiring.
func (c *Container) Classes() *resolver.Registry { return c.classes }

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient definition (new value each Get).
//
//	// Laravel: $app->bind(UserRepository::class, fn($app) => new EloquentUserRepository($app))
//	c.Bind("UserRepository", func(c resolver.Container) (any, error) {
//	    db, err := c.Get("db")
//	    ...
//	})
//	c.Bind("UserRepository", "repo.eloquent") // registered class name
func (c *Container) Bind(abstract string, definition any) {
	c.bind(abstract, resolver.Classify(definition, c.classes), false)
}

// Singleton registers a definition whose result is cached after first resolution.
//
//	// Laravel: $app->singleton(Cache::class, fn($app) => new RedisCache($app))
//	c.Singleton("cache", resolver.ObjectConfig{Class: "cache.redis", Args: map[string]any{"db": 2}})
func (c *Container) Singleton(abstract string, definition any) {
	c.bind(abstract, resolver.Classify(definition, c.classes), true)
}

// Instance registers a pre-built value as a singleton.
//
//	// Laravel: $app->instance(Config::class, $config)
//	c.Instance("config", myConfig)
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	c.instances[key] = instance
	c.mu.Unlock()

	c.fireRebound(abstract, instance)
}

func (c *Container) bind(abstract string, def resolver.Definition, singleton bool) {
	c.mu.Lock()
	key := c.canonical(abstract)

	// Drop existing singleton instance so it's rebuilt with the new definition
	_, wasResolved := c.instances[key]
	delete(c.instances, key)

	c.bindings[key] = &binding{definition: def, singleton: singleton}
	c.mu.Unlock()

	if wasResolved {
		if instance, err := c.Get(abstract); err == nil {
			c.fireRebound(abstract, instance)
		}
	}
}

// Alias registers an alternative name for an abstract.
//
//	// Laravel: $app->alias(Cache::class, 'cache')
//	c.Alias("cache", "cacheManager")
func (c *Container) Alias(abstract, alias string) {
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliases[alias] = c.canonical(abstract)
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// When starts a contextual binding chain. concrete is the abstract being
// built when the dependency is requested.
//
//	// Laravel: $app->when(PhotoController::class)->needs(Filesystem::class)->give(fn() => new S3)
//	c.When("PhotoController").Needs(resolver.Key[Filesystem]()).Give("fs.s3")
func (c *Container) When(concrete string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

func (c *Container) getContextual(concrete, abstract string) resolver.Definition {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.contextual[concrete]; ok {
		if d, ok := m[abstract]; ok {
			return d
		}
	}
	return nil
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates the resolved instance of an abstract.
//
//	// Laravel: $app->extend(Logger::class, fn($logger, $app) => new TimestampLogger($logger))
//	c.Extend("logger", func(instance any, c resolver.Container) any {
//	    return &TimestampLogger{Inner: instance.(*Logger)}
//	})
func (c *Container) Extend(abstract string, fn Extender) {
	c.mu.Lock()
	key := c.canonical(abstract)
	c.extenders[key] = append(c.extenders[key], fn)

	// Already resolved as singleton: decorate in place
	inst, ok := c.instances[key]
	c.mu.Unlock()
	if !ok {
		return
	}

	extended := fn(inst, c)
	c.mu.Lock()
	c.instances[key] = extended
	c.mu.Unlock()
	c.fireRebound(abstract, extended)
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates multiple abstracts under a named group.
//
//	// Laravel: $app->tag([CpuReport::class, MemoryReport::class], 'reports')
//	c.Tag([]string{"CpuReport", "MemoryReport"}, "reports")
func (c *Container) Tag(abstracts []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], abstracts...)
}

// Tagged resolves all abstracts registered under a tag, in tag order.
func (c *Container) Tagged(tag string) ([]any, error) {
	c.mu.RLock()
	abstracts := slices.Clone(c.tags[tag])
	c.mu.RUnlock()

	result := make([]any, 0, len(abstracts))
	for _, abs := range abstracts {
		v, err := c.Get(abs)
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Has reports whether id can be resolved: it is bound, is an instance, or
// names a registered class (by name or type id).
func (c *Container) Has(id string) bool {
	c.mu.RLock()
	key := c.canonical(id)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	c.mu.RUnlock()
	return hasBinding || hasInstance || c.classes.Has(key)
}

// Get resolves an abstract from the container.
//
//	// Laravel: $app->get(UserRepository::class)
//	repo, err := c.Get("UserRepository")
func (c *Container) Get(id string) (any, error) {
	return c.make(id, nil)
}

// Make builds a fresh object of a registered class with explicit
// constructor args; it bypasses bindings and the singleton cache.
//
//	// Laravel: $app->make(Mailer::class, ['from' => 'ops@example.com'])
//	m, err := c.Make("mailer", map[string]any{"from": "ops@example.com"})
func (c *Container) Make(class string, args map[string]any) (any, error) {
	return c.resolverFor(nil).ResolveObject(resolver.ObjectConfig{Class: class, Args: args})
}

// Resolve produces the value of an arbitrary definition against this
// container without registering it.
func (c *Container) Resolve(definition any) (any, error) {
	return c.resolverFor(nil).Resolve(definition)
}

// Invoke calls fn with every parameter autowired by type.
//
//	// Laravel: $app->call(fn(Router $r) => ...)
//	_, err := c.Invoke(func(r *routing.Router, cfg *config.Config) { ... })
func (c *Container) Invoke(fn any) (any, error) {
	return c.resolverFor(nil).Call(fn)
}

func (c *Container) make(abstract string, stack []string) (any, error) {
	c.mu.RLock()
	key := c.canonical(abstract)
	inst, cached := c.instances[key]
	b, bound := c.bindings[key]
	c.mu.RUnlock()

	// Contextual binding for the abstract currently being built; it wins
	// over shared instances of the same abstract.
	if len(stack) > 0 {
		if d := c.getContextual(stack[len(stack)-1], key); d != nil {
			if slices.Contains(stack, key) {
				return nil, &CircularDependencyError{Chain: append(slices.Clone(stack), key)}
			}
			return c.build(key, d, false, stack)
		}
	}

	if cached {
		return inst, nil
	}
	if slices.Contains(stack, key) {
		return nil, &CircularDependencyError{Chain: append(slices.Clone(stack), key)}
	}

	if !bound {
		if c.classes.Has(key) {
			return c.build(key, resolver.ClassName(key), false, stack)
		}
		return nil, &NotFoundError{ID: abstract}
	}
	return c.build(key, b.definition, b.singleton, stack)
}

func (c *Container) build(key string, def resolver.Definition, singleton bool, stack []string) (any, error) {
	instance, err := c.resolverFor(append(slices.Clone(stack), key)).Resolve(def)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	exts := slices.Clone(c.extenders[key])
	c.mu.RUnlock()
	for _, ext := range exts {
		instance = ext(instance, c)
	}

	if singleton {
		c.mu.Lock()
		// Another goroutine may have won the race; keep its instance.
		if existing, ok := c.instances[key]; ok {
			c.mu.Unlock()
			return existing, nil
		}
		c.instances[key] = instance
		c.mu.Unlock()
	}

	c.fireAfterResolving(key, instance)
	return instance, nil
}

func (c *Container) resolverFor(stack []string) *resolver.Resolver {
	return resolver.New(&scope{container: c, stack: stack}, c.classes)
}

// scope is the resolver's view of the container during one resolution
// chain; it carries the chain for contextual bindings and cycle detection.
type scope struct {
	container *Container
	stack     []string
}

func (s *scope) Has(id string) bool { return s.container.Has(id) }

func (s *scope) Get(id string) (any, error) { return s.container.make(id, s.stack) }

// ── Helpers ───────────────────────────────────────────────────────────────────

// Resolved returns true if the abstract has a cached singleton instance.
//
//	// Laravel: $app->resolved(Cache::class)
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// Forget removes all registrations for an abstract (binding + instance).
//
//	// Laravel: $app->forgetInstance(Cache::class)
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	delete(c.instances, key)
}

// Flush resets bindings, instances and metadata. The class registry is kept.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = make(map[string]*binding)
	c.instances = make(map[string]any)
	c.aliases = make(map[string]string)
	c.extenders = make(map[string][]Extender)
	c.tags = make(map[string][]string)
	c.contextual = make(map[string]map[string]resolver.Definition)
}

// Bindings returns all registered abstract keys, sorted (for debugging).
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings)+len(c.instances))
	for k := range c.bindings {
		out = append(out, k)
	}
	for k := range c.instances {
		if _, already := c.bindings[k]; !already {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// canonical resolves an alias to its canonical key (caller holds mu).
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback to be called whenever an abstract is re-bound.
//
//	// Laravel: $app->rebinding(UserRepository::class, fn($app, $repo) => ...)
func (c *Container) Rebinding(abstract string, cb func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reboundCallbacks[abstract] = append(c.reboundCallbacks[abstract], cb)
}

// AfterResolving registers a callback fired after any abstract is built.
//
//	// Laravel: $app->afterResolving(fn($object, $app) => ...)
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireRebound(abstract string, instance any) {
	c.mu.RLock()
	cbs := slices.Clone(c.reboundCallbacks[abstract])
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(instance)
	}
}

func (c *Container) fireAfterResolving(abstract string, instance any) {
	c.mu.RLock()
	cbs := slices.Clone(c.afterResolving)
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(abstract, instance)
	}
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve fetches abstract from c and type-asserts the result.
//
//	// Instead of: v, _ := c.Get("db"); db := v.(*sql.DB)
//	// Write:      db, err := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c resolver.Container, abstract string) (T, error) {
	var zero T
	instance, err := c.Get(abstract)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%T]: [%s] resolved to %T", zero, abstract, instance)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c resolver.Container, abstract string) T {
	v, err := Resolve[T](c, abstract)
	if err != nil {
		panic(err)
	}
	return v
}

// ResolveType fetches T by its type id.
//
//	router, err := container.ResolveType[*routing.Router](c)
func ResolveType[T any](c resolver.Container) (T, error) {
	return Resolve[T](c, resolver.Key[T]())
}
