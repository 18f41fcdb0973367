package routing

import (
	"regexp"
	"slices"

	"github.com/km-arc/branch/framework/resolver"
)

// Route is a compiled route. It is built once at registration and not
// modified afterwards.
type Route struct {
	// Methods allowed; empty means any method.
	Methods []string

	// Path is the slash-trimmed template, e.g. "users/{id}".
	Path string

	Name       string
	Handler    resolver.Definition
	Middleware []resolver.Definition
	Extra      map[string]any

	pattern      *regexp.Regexp
	placeholders []placeholder
}

// Pattern returns the compiled matcher.
func (rt *Route) Pattern() *regexp.Regexp { return rt.pattern }

// Params returns the placeholder names in template order.
func (rt *Route) Params() []string {
	out := make([]string, len(rt.placeholders))
	for i, ph := range rt.placeholders {
		out[i] = ph.name
	}
	return out
}

// Allows reports whether method may be dispatched to this route.
func (rt *Route) Allows(method string) bool {
	return len(rt.Methods) == 0 || slices.Contains(rt.Methods, method)
}

// Info returns the route without its handler.
func (rt *Route) Info() RouteInfo {
	return RouteInfo{
		Methods:    slices.Clone(rt.Methods),
		Path:       rt.Path,
		Name:       rt.Name,
		Middleware: slices.Clone(rt.Middleware),
		Extra:      copyMap(rt.Extra),
	}
}

// RouteInfo is the introspectable part of the matched route ("current
// action"), available to handlers and middleware through the request
// context.
type RouteInfo struct {
	Methods    []string
	Path       string
	Name       string
	Middleware []resolver.Definition
	Extra      map[string]any
	Args       map[string]string
}

// MatchResult is a route together with the arguments captured from the path.
type MatchResult struct {
	Route *Route
	Args  map[string]string
}
