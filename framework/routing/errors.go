package routing

import (
	"errors"
	"fmt"
)

// ErrRouterSealed is the panic value raised when a route is registered after
// matching has started.
var ErrRouterSealed = errors.New("routing: routes cannot be registered after matching has started")

// RouteNotFoundError is returned when no route matches a request, or when a
// reverse lookup names a route that does not exist.
type RouteNotFoundError struct {
	Method string
	Path   string
	Name   string
}

func (e *RouteNotFoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("routing: no route named %q", e.Name)
	}
	return fmt.Sprintf("routing: no route matches %s /%s", e.Method, e.Path)
}

// ParameterMismatchError is returned by URL when the number of supplied
// placeholder values differs from the number of placeholders in the route.
type ParameterMismatchError struct {
	Route    string
	Expected []string
	Given    int
}

func (e *ParameterMismatchError) Error() string {
	return fmt.Sprintf("routing: route %q expects %d parameter(s) %v, got %d",
		e.Route, len(e.Expected), e.Expected, e.Given)
}

// InvalidHandlerError is returned when a resolved handler or middleware has
// a shape the invoker cannot call.
type InvalidHandlerError struct {
	Route string
	Value any
}

func (e *InvalidHandlerError) Error() string {
	return fmt.Sprintf("routing: route %q: unsupported handler type %T", e.Route, e.Value)
}

// EmitError wraps a failure to write an already produced response.
type EmitError struct {
	Route string
	Err   error
}

func (e *EmitError) Error() string {
	return fmt.Sprintf("routing: route %q: emit: %v", e.Route, e.Err)
}

func (e *EmitError) Unwrap() error { return e.Err }
