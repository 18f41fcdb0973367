// Package http provides Laravel-compatible request and response helpers for
// route handlers.
//
// # Request
//
// Request wraps *http.Request together with the route arguments captured by
// the router.
//
//	id    := req.RouteParam("id")
//	page  := req.Query("page", "1")
//	token := req.BearerToken()
//	err   := req.Bind(&payload)
//
// # Response
//
// Handlers return a buffered *Response instead of writing to the wire; the
// router hands it to an Emitter once the handler chain has finished.
//
//	gohttp.Success(data)             // 200 {"data": ...}
//	gohttp.Created(data)             // 201 {"data": ...}
//	gohttp.NoContent()               // 204
//	gohttp.NotFound()                // 404 {"message": "Not found."}
//	gohttp.Redirect(302, "/login")
//
// # ViewEngine
//
//	views := gohttp.NewViewEngine("./views", ".html")
//	res, err := views.View(http.StatusOK, "home", map[string]any{"title": "Home"})
package http
