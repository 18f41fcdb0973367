package routing

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/km-arc/branch/framework/container"
	gohttp "github.com/km-arc/branch/framework/http"
	"github.com/km-arc/branch/framework/resolver"
)

// RoutesKey is the container key of the route registration callback run by
// Register when the router was built without WithRoutes.
const RoutesKey = "routing.routes"

// Router holds the route table. Routes are registered once, through the
// Group/Map DSL, and then matched; registering after the first match panics.
type Router struct {
	container *container.Container
	invoker   Invoker
	logger    *zap.Logger
	metrics   *Metrics
	routesFn  any

	mu     sync.Mutex
	stack  groupStack
	routes []*Route

	once        sync.Once
	registerErr error
	sealed      atomic.Bool
}

// Option configures a Router.
type Option func(*Router)

// WithInvoker replaces the container-backed invoker.
func WithInvoker(inv Invoker) Option {
	return func(r *Router) { r.invoker = inv }
}

// WithLogger sets the logger used for registration and dispatch failures.
func WithLogger(l *zap.Logger) Option {
	return func(r *Router) { r.logger = l }
}

// WithMetrics enables dispatch metrics.
func WithMetrics(m *Metrics) Option {
	return func(r *Router) { r.metrics = m }
}

// WithRoutes sets the registration callback. It may be a func(*Router), a
// func(*Router) error, or any func the container can invoke.
func WithRoutes(fn any) Option {
	return func(r *Router) { r.routesFn = fn }
}

// New creates a Router resolving handlers through c. A nil c gets a fresh
// container.
func New(c *container.Container, opts ...Option) *Router {
	if c == nil {
		c = container.New()
	}
	r := &Router{container: c, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	if r.invoker == nil {
		r.invoker = NewInvoker(c)
	}
	return r
}

// Register runs the registration callback exactly once and returns its
// result on every call. A callback that panics with an error, such as a
// malformed template, fails registration for good.
func (r *Router) Register() error {
	r.once.Do(func() {
		r.registerErr = r.runRoutes()
		if r.registerErr != nil {
			r.logger.Error("route registration failed", zap.Error(r.registerErr))
			return
		}
		r.logger.Info("routes registered", zap.Int("count", len(r.Routes())))
	})
	return r.registerErr
}

func (r *Router) runRoutes() (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			panic(rec)
		}
	}()

	fn := r.routesFn
	if fn == nil {
		if !r.container.Has(RoutesKey) {
			return nil
		}
		v, err := r.container.Get(RoutesKey)
		if err != nil {
			return err
		}
		fn = v
	}
	switch f := fn.(type) {
	case func(*Router):
		f(r)
		return nil
	case func(*Router) error:
		return f(r)
	default:
		_, err := r.container.Invoke(fn)
		return err
	}
}

// ── Registration DSL ─────────────────────────────────────────────────────────

// Group registers every route added by fn under the merged scope of the
// enclosing groups and cfg. The scope is popped even if fn panics.
//
//	r.Group(routing.Config{Path: "admin", Name: "admin.", Middleware: []any{"auth"}}, func(r *routing.Router) {
//		r.Get(routing.Config{Path: "users", Name: "users"}, "AdminUserController@Index")
//	})
func (r *Router) Group(cfg Config, fn func(r *Router)) {
	r.checkOpen()
	f, err := r.stack.top().merge(cfg, r.container.Classes())
	if err != nil {
		panic(fmt.Errorf("routing: group %q: %w", cfg.Path, err))
	}
	r.stack.push(f)
	defer r.stack.pop()
	fn(r)
}

// Map registers a route for methods; an empty method list matches any
// method. handler may be anything resolver.Classify accepts, a
// "Class@Method" string or an Action.
func (r *Router) Map(methods []string, cfg Config, handler any) *Route {
	r.checkOpen()
	top := r.stack.top()
	f, err := top.merge(cfg, r.container.Classes())
	if err != nil {
		panic(fmt.Errorf("routing: route %q: %w", cfg.Path, err))
	}
	pattern, phs, err := compileTemplate(f.prefix, f.where)
	if err != nil {
		panic(err)
	}

	route := &Route{
		Methods:      normalizeMethods(methods),
		Path:         f.prefix,
		Handler:      r.classifyHandler(handler),
		Middleware:   f.middleware,
		Extra:        f.extra,
		pattern:      pattern,
		placeholders: phs,
	}
	if cfg.Name != "" {
		route.Name = f.namePrefix
	}

	r.mu.Lock()
	r.routes = append(r.routes, route)
	r.mu.Unlock()

	r.logger.Debug("route registered",
		zap.Strings("methods", route.Methods),
		zap.String("path", "/"+route.Path),
		zap.String("name", route.Name),
		zap.Int("middleware", len(route.Middleware)),
	)
	return route
}

func (r *Router) Get(cfg Config, handler any) *Route {
	return r.Map([]string{http.MethodGet}, cfg, handler)
}

func (r *Router) Post(cfg Config, handler any) *Route {
	return r.Map([]string{http.MethodPost}, cfg, handler)
}

func (r *Router) Put(cfg Config, handler any) *Route {
	return r.Map([]string{http.MethodPut}, cfg, handler)
}

func (r *Router) Patch(cfg Config, handler any) *Route {
	return r.Map([]string{http.MethodPatch}, cfg, handler)
}

func (r *Router) Delete(cfg Config, handler any) *Route {
	return r.Map([]string{http.MethodDelete}, cfg, handler)
}

func (r *Router) Options(cfg Config, handler any) *Route {
	return r.Map([]string{http.MethodOptions}, cfg, handler)
}

// Any registers a route matching every method.
func (r *Router) Any(cfg Config, handler any) *Route {
	return r.Map(nil, cfg, handler)
}

// Resource registers the RESTful routes of a resource controller. The
// controller is a class name or container key; route names are derived from
// the last path segment.
//
//	GET    /photos       → Index    photos.index
//	POST   /photos       → Store    photos.store
//	GET    /photos/{id}  → Show     photos.show
//	PUT    /photos/{id}  → Update   photos.update
//	PATCH  /photos/{id}  → Update   photos.update
//	DELETE /photos/{id}  → Destroy  photos.destroy
func (r *Router) Resource(path string, controller string) {
	path = strings.Trim(path, "/")
	base := path[strings.LastIndexByte(path, '/')+1:]
	member := joinPath(path, "{id}")
	act := func(m string) Action { return Action{Controller: controller, Method: m} }

	r.Get(Config{Path: path, Name: base + ".index"}, act("Index"))
	r.Post(Config{Path: path, Name: base + ".store"}, act("Store"))
	r.Get(Config{Path: member, Name: base + ".show"}, act("Show"))
	r.Map([]string{http.MethodPut, http.MethodPatch}, Config{Path: member, Name: base + ".update"}, act("Update"))
	r.Delete(Config{Path: member, Name: base + ".destroy"}, act("Destroy"))
}

func (r *Router) classifyHandler(handler any) resolver.Definition {
	if s, ok := handler.(string); ok {
		if class, method, found := strings.Cut(s, "@"); found {
			return resolver.Literal{Value: Action{Controller: class, Method: method}}
		}
	}
	return resolver.Classify(handler, r.container.Classes())
}

func (r *Router) checkOpen() {
	if r.sealed.Load() {
		panic(ErrRouterSealed)
	}
}

func normalizeMethods(methods []string) []string {
	if len(methods) == 0 {
		return nil
	}
	out := make([]string, 0, len(methods))
	for _, m := range methods {
		out = append(out, strings.ToUpper(m))
	}
	return out
}

// Depth returns the number of groups currently open.
func (r *Router) Depth() int { return len(r.stack) }

// Routes returns the route table in registration order.
func (r *Router) Routes() []*Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Route(nil), r.routes...)
}

// ── Matching ─────────────────────────────────────────────────────────────────

// Match returns the first registered route allowing method whose pattern
// matches the slash-trimmed path. The first call seals the route table.
func (r *Router) Match(method, path string) (*MatchResult, error) {
	r.sealed.Store(true)
	method = strings.ToUpper(method)
	path = strings.Trim(path, "/")

	for _, rt := range r.Routes() {
		if !rt.Allows(method) {
			continue
		}
		captures := rt.pattern.FindStringSubmatch(path)
		if captures == nil {
			continue
		}
		return &MatchResult{Route: rt, Args: filterMatchedParams(rt.pattern.SubexpNames(), captures)}, nil
	}
	return nil, &RouteNotFoundError{Method: method, Path: path}
}

// ── Reverse routing ──────────────────────────────────────────────────────────

// URL builds the slash-trimmed path of the named route. params must supply
// exactly as many placeholder values as the route has placeholders; the
// remaining params are appended as a query string.
//
//	r.URL("user.show", map[string]any{"id": 42, "tab": "settings"}) // "users/42?tab=settings"
func (r *Router) URL(name string, params map[string]any) (string, error) {
	var rt *Route
	for _, candidate := range r.Routes() {
		if candidate.Name == name {
			rt = candidate
			break
		}
	}
	if rt == nil {
		return "", &RouteNotFoundError{Name: name}
	}

	present := 0
	for _, ph := range rt.placeholders {
		if _, ok := params[ph.name]; ok {
			present++
		}
	}
	if present != len(rt.placeholders) {
		return "", &ParameterMismatchError{Route: name, Expected: rt.Params(), Given: present}
	}

	// Literal text never holds braces, so each placeholder is the next
	// occurrence of its raw form in what is left of the template.
	var b strings.Builder
	rest := rt.Path
	used := make(map[string]bool, len(rt.placeholders))
	for _, ph := range rt.placeholders {
		value, err := cast.ToStringE(params[ph.name])
		if err != nil {
			return "", fmt.Errorf("routing: route %q parameter %q: %w", name, ph.name, err)
		}
		at := strings.Index(rest, ph.raw)
		b.WriteString(rest[:at])
		b.WriteString(value)
		rest = rest[at+len(ph.raw):]
		used[ph.name] = true
	}
	b.WriteString(rest)
	path := b.String()

	query := url.Values{}
	for key, value := range params {
		if used[key] {
			continue
		}
		if err := addQuery(query, key, value); err != nil {
			return "", fmt.Errorf("routing: route %q query %q: %w", name, key, err)
		}
	}
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return path, nil
}

// addQuery flattens slices into repeated keys and maps into key[sub].
func addQuery(q url.Values, key string, value any) error {
	if m, ok := value.(map[string]any); ok {
		for sub, v := range m {
			if err := addQuery(q, key+"["+sub+"]", v); err != nil {
				return err
			}
		}
		return nil
	}
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		for i := 0; i < rv.Len(); i++ {
			s, err := cast.ToStringE(rv.Index(i).Interface())
			if err != nil {
				return err
			}
			q.Add(key, s)
		}
		return nil
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return err
	}
	q.Add(key, s)
	return nil
}

// ── Dispatch ─────────────────────────────────────────────────────────────────

// Dispatch runs the request pipeline: register routes, match, record the
// matched route on the request context, invoke, emit. A failure of the final
// emit is returned as an *EmitError; the response may be partly written.
func (r *Router) Dispatch(emitter gohttp.Emitter, req *http.Request) error {
	if err := r.Register(); err != nil {
		return err
	}
	match, err := r.Match(req.Method, req.URL.Path)
	if err != nil {
		return err
	}

	start := time.Now()
	info := match.Route.Info()
	info.Args = match.Args
	req = req.WithContext(WithAction(req.Context(), info))

	res, err := r.invoker.Invoke(req, match.Route, match.Args)
	if err != nil {
		return err
	}
	r.metrics.observe(routeLabel(match.Route), req.Method, statusOf(res), time.Since(start))
	if err := emitter.Emit(res); err != nil {
		return &EmitError{Route: routeLabel(match.Route), Err: err}
	}
	return nil
}

// Init dispatches req and writes the response to w.
func (r *Router) Init(w http.ResponseWriter, req *http.Request) error {
	return r.Dispatch(gohttp.NewEmitter(w), req)
}

// ServeHTTP implements http.Handler. Unmatched requests get a 404; a failed
// emit is only logged since the response is already under way; any other
// failure is logged and answered with a 500.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	err := r.Init(w, req)
	if err == nil {
		return
	}

	var emitErr *EmitError
	if errors.As(err, &emitErr) {
		r.logger.Warn("response emit failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.String("route", emitErr.Route),
			zap.Error(emitErr.Err),
		)
		return
	}

	emitter := gohttp.NewEmitter(w)
	var notFound *RouteNotFoundError
	if errors.As(err, &notFound) {
		r.metrics.observe(routeLabel(nil), req.Method, http.StatusNotFound, 0)
		_ = emitter.Emit(gohttp.NotFound())
		return
	}

	r.logger.Error("dispatch failed",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Error(err),
	)
	r.metrics.observe(routeLabel(nil), req.Method, http.StatusInternalServerError, 0)
	_ = emitter.Emit(gohttp.ServerError())
}

func statusOf(res *gohttp.Response) int {
	switch {
	case res == nil:
		return http.StatusNoContent
	case res.Status == 0:
		return http.StatusOK
	default:
		return res.Status
	}
}
