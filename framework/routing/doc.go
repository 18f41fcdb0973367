// Package routing provides a group-scoped HTTP router.
//
// Routes are registered once through a small DSL: Group pushes a scope
// (path prefix, name prefix, middleware, parameter patterns, extra data)
// that every route registered inside it inherits, and Map with its verb
// shortcuts appends a compiled route to the table. Matching scans the table
// in registration order and the first route whose method set and pattern
// both match wins; there is no specificity scoring.
//
//	r := routing.New(c)
//	r.Group(routing.Config{Path: "api", Middleware: []any{"auth"}}, func(r *routing.Router) {
//		r.Get(routing.Config{Path: "users/{id:[0-9]+}", Name: "user.show"}, "UserController@Show")
//	})
//
//	u, _ := r.URL("user.show", map[string]any{"id": 42}) // "api/users/42"
//
// Handlers and middleware are definitions resolved through the container
// at dispatch time, so controllers get their dependencies autowired.
package routing
