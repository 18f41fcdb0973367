package http

import (
	"encoding/json"
	"net/http"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response is a buffered HTTP response. Handlers return one; an Emitter
// writes it out.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse returns an empty response with the given status.
func NewResponse(status int) *Response {
	return &Response{Status: status, Header: make(http.Header)}
}

// WithHeader sets a header and returns the response for chaining.
func (res *Response) WithHeader(key, value string) *Response {
	if res.Header == nil {
		res.Header = make(http.Header)
	}
	res.Header.Set(key, value)
	return res
}

// ── JSON responses ────────────────────────────────────────────────────────────

// JSON builds a JSON response. An unencodable payload yields a 500.
//
//	return gohttp.JSON(http.StatusOK, map[string]any{"message": "ok"}), nil
func JSON(status int, data any) *Response {
	body, err := json.Marshal(data)
	if err != nil {
		res := NewResponse(http.StatusInternalServerError)
		res.Header.Set("Content-Type", "application/json")
		res.Body = []byte(`{"message":"Server Error."}`)
		return res
	}
	res := NewResponse(status)
	res.Header.Set("Content-Type", "application/json")
	res.Body = body
	return res
}

// Success is 200 JSON: {"data": v}
func Success(v any) *Response {
	return JSON(http.StatusOK, envelope{"data": v})
}

// Created is 201 JSON: {"data": v}
func Created(v any) *Response {
	return JSON(http.StatusCreated, envelope{"data": v})
}

// NoContent is 204 with no body.
func NoContent() *Response {
	return NewResponse(http.StatusNoContent)
}

// Text is a plain-text response.
func Text(status int, body string) *Response {
	res := NewResponse(status)
	res.Header.Set("Content-Type", "text/plain; charset=utf-8")
	res.Body = []byte(body)
	return res
}

// Error is a JSON error response: {"message": message}
func Error(status int, message string) *Response {
	return JSON(status, envelope{"message": message})
}

// Unauthorized is 401.
func Unauthorized(message ...string) *Response {
	return Error(http.StatusUnauthorized, first(message, "Unauthenticated."))
}

// Forbidden is 403.
func Forbidden(message ...string) *Response {
	return Error(http.StatusForbidden, first(message, "This action is unauthorized."))
}

// NotFound is 404.
func NotFound(message ...string) *Response {
	return Error(http.StatusNotFound, first(message, "Not found."))
}

// ServerError is 500.
func ServerError(message ...string) *Response {
	return Error(http.StatusInternalServerError, first(message, "Server Error."))
}

// ── Redirects ────────────────────────────────────────────────────────────────

// Redirect responds with status and a Location header.
//
//	return gohttp.Redirect(http.StatusFound, "/dashboard"), nil
func Redirect(status int, url string) *Response {
	return NewResponse(status).WithHeader("Location", url)
}

// RedirectBack redirects to the Referer header (or fallback URL).
func RedirectBack(r *Request, fallback string) *Response {
	ref := r.Header("Referer")
	if ref == "" {
		ref = fallback
	}
	return Redirect(http.StatusFound, ref)
}

// ── Emitter ──────────────────────────────────────────────────────────────────

// Emitter sends a finished Response to the client.
type Emitter interface {
	Emit(res *Response) error
}

// WriterEmitter emits onto an http.ResponseWriter.
type WriterEmitter struct {
	w http.ResponseWriter
}

// NewEmitter wraps a ResponseWriter.
func NewEmitter(w http.ResponseWriter) *WriterEmitter {
	return &WriterEmitter{w: w}
}

// Emit copies headers, writes the status and the body. A nil response is
// emitted as 204.
func (e *WriterEmitter) Emit(res *Response) error {
	if res == nil {
		res = NoContent()
	}
	h := e.w.Header()
	for k, vs := range res.Header {
		h[k] = append([]string(nil), vs...)
	}
	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}
	e.w.WriteHeader(status)
	if len(res.Body) == 0 {
		return nil
	}
	_, err := e.w.Write(res.Body)
	return err
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
