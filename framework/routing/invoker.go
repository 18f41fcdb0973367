package routing

import (
	"context"
	"net/http"
	"reflect"

	"github.com/km-arc/branch/framework/container"
	gohttp "github.com/km-arc/branch/framework/http"
	"github.com/km-arc/branch/framework/resolver"
)

// Invoker calls the handler of a matched route.
type Invoker interface {
	Invoke(req *http.Request, route *Route, args map[string]string) (*gohttp.Response, error)
}

// HandlerFunc is the canonical handler shape.
type HandlerFunc func(req *gohttp.Request) (*gohttp.Response, error)

// Handler is implemented by single-action controllers.
type Handler interface {
	Handle(req *gohttp.Request) (*gohttp.Response, error)
}

// Middleware wraps the next handler in the pipeline.
type Middleware func(next HandlerFunc) HandlerFunc

// MiddlewareHandler is implemented by middleware classes resolved through
// the container.
type MiddlewareHandler interface {
	Process(req *gohttp.Request, next HandlerFunc) (*gohttp.Response, error)
}

// Action names a controller method. Controller is any definition; a plain
// string is looked up in the container, which falls back to the class
// registry.
//
//	r.Get(routing.Config{Path: "users/{id}"}, routing.Action{Controller: "UserController", Method: "Show"})
//
// The handler string "UserController@Show" is equivalent.
type Action struct {
	Controller any
	Method     string
}

// ContainerInvoker resolves handlers and middleware through a container and
// runs them as an onion, outermost middleware first.
type ContainerInvoker struct {
	container *container.Container
}

// NewInvoker returns an Invoker backed by c.
func NewInvoker(c *container.Container) *ContainerInvoker {
	return &ContainerInvoker{container: c}
}

func (i *ContainerInvoker) Invoke(req *http.Request, route *Route, args map[string]string) (*gohttp.Response, error) {
	target, err := i.resolve(route.Handler)
	if err != nil {
		return nil, err
	}
	h, err := i.handler(route, target)
	if err != nil {
		return nil, err
	}

	for j := len(route.Middleware) - 1; j >= 0; j-- {
		mw, err := i.resolve(route.Middleware[j])
		if err != nil {
			return nil, err
		}
		wrap, ok := asMiddleware(mw)
		if !ok {
			return nil, &InvalidHandlerError{Route: routeLabel(route), Value: mw}
		}
		h = wrap(h)
	}

	return h(gohttp.NewRequest(req, args))
}

// resolve turns a definition into a value. A string that is not a
// registered class is treated as a container key, which is how middleware
// aliases such as "auth" reach their implementation.
func (i *ContainerInvoker) resolve(def resolver.Definition) (any, error) {
	v, err := i.container.Resolve(def)
	if err != nil {
		return nil, err
	}
	if key, ok := v.(string); ok {
		return i.container.Get(key)
	}
	return v, nil
}

func (i *ContainerInvoker) handler(route *Route, target any) (HandlerFunc, error) {
	if action, ok := target.(Action); ok {
		return i.action(route, action)
	}
	if h, ok := asHandler(target); ok {
		return h, nil
	}
	return nil, &InvalidHandlerError{Route: routeLabel(route), Value: target}
}

func (i *ContainerInvoker) action(route *Route, a Action) (HandlerFunc, error) {
	ctrl, err := i.resolve(resolver.Classify(a.Controller, i.container.Classes()))
	if err != nil {
		return nil, err
	}
	m := reflect.ValueOf(ctrl).MethodByName(a.Method)
	if !m.IsValid() {
		return nil, &InvalidHandlerError{Route: routeLabel(route), Value: ctrl}
	}
	h, ok := asHandler(m.Interface())
	if !ok {
		return nil, &InvalidHandlerError{Route: routeLabel(route), Value: m.Interface()}
	}
	return h, nil
}

func asHandler(v any) (HandlerFunc, bool) {
	switch h := v.(type) {
	case HandlerFunc:
		return h, true
	case func(*gohttp.Request) (*gohttp.Response, error):
		return h, true
	case func(*gohttp.Request) *gohttp.Response:
		return func(req *gohttp.Request) (*gohttp.Response, error) { return h(req), nil }, true
	case Handler:
		return h.Handle, true
	}
	return nil, false
}

func asMiddleware(v any) (func(HandlerFunc) HandlerFunc, bool) {
	switch m := v.(type) {
	case Middleware:
		return m, true
	case func(HandlerFunc) HandlerFunc:
		return m, true
	case func(*gohttp.Request, HandlerFunc) (*gohttp.Response, error):
		return func(next HandlerFunc) HandlerFunc {
			return func(req *gohttp.Request) (*gohttp.Response, error) { return m(req, next) }
		}, true
	case MiddlewareHandler:
		return func(next HandlerFunc) HandlerFunc {
			return func(req *gohttp.Request) (*gohttp.Response, error) { return m.Process(req, next) }
		}, true
	}
	return nil, false
}

// ── current action ───────────────────────────────────────────────────────────

type actionKey struct{}

// WithAction stores the matched route on ctx.
func WithAction(ctx context.Context, info RouteInfo) context.Context {
	return context.WithValue(ctx, actionKey{}, info)
}

// ActionFromContext returns the route matched for the current request.
func ActionFromContext(ctx context.Context) (RouteInfo, bool) {
	info, ok := ctx.Value(actionKey{}).(RouteInfo)
	return info, ok
}

// CurrentAction is ActionFromContext for a wrapped request.
func CurrentAction(req *gohttp.Request) (RouteInfo, bool) {
	return ActionFromContext(req.Context())
}
