package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

const maxMemory = 32 << 20 // 32 MB

// Request wraps *http.Request together with the route arguments captured
// when it was matched.
type Request struct {
	raw    *http.Request
	params map[string]string
}

// NewRequest wraps a standard *http.Request. params are the named route
// arguments; nil is allowed.
func NewRequest(r *http.Request, params map[string]string) *Request {
	if params == nil {
		params = map[string]string{}
	}
	return &Request{raw: r, params: params}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// Context returns the request context.
func (req *Request) Context() context.Context { return req.raw.Context() }

// ── Route params ─────────────────────────────────────────────────────────────

// RouteParam returns a named route argument, like $request->route('id').
func (req *Request) RouteParam(key string, fallback ...string) string {
	if v, ok := req.params[key]; ok {
		return v
	}
	return first(fallback, "")
}

// Params returns a copy of all route arguments.
func (req *Request) Params() map[string]string {
	out := make(map[string]string, len(req.params))
	for k, v := range req.params {
		out[k] = v
	}
	return out
}

// ── Binding ──────────────────────────────────────────────────────────────────

// ErrEmptyBody is returned by Bind when a JSON request carries no body.
var ErrEmptyBody = errors.New("http: empty request body")

// Bind decodes the request body into v, which must be a pointer. JSON bodies
// are decoded as-is. Form and multipart bodies are decoded through the
// `json` struct tags with weak typing, so "42" fills an int field and a
// single value fills a slice field.
func (req *Request) Bind(v any) error {
	if strings.Contains(req.ContentType(), "application/json") {
		return req.decodeJSON(v)
	}
	fields, err := req.formFields()
	if err != nil {
		return err
	}
	return decodeFields(fields, v)
}

func (req *Request) decodeJSON(v any) error {
	defer req.raw.Body.Close()
	if err := json.NewDecoder(req.raw.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrEmptyBody
		}
		return fmt.Errorf("http: decode json body: %w", err)
	}
	return nil
}

// formFields parses the body form and flattens it: keys with one value map
// to a string, repeated keys to a []string.
func (req *Request) formFields() (map[string]any, error) {
	var values url.Values
	if strings.Contains(req.ContentType(), "multipart/form-data") {
		if err := req.raw.ParseMultipartForm(maxMemory); err != nil {
			return nil, fmt.Errorf("http: parse multipart form: %w", err)
		}
		values = req.raw.MultipartForm.Value
	} else {
		if err := req.raw.ParseForm(); err != nil {
			return nil, fmt.Errorf("http: parse form: %w", err)
		}
		values = req.raw.PostForm
	}

	fields := make(map[string]any, len(values))
	for key, vals := range values {
		switch len(vals) {
		case 0:
		case 1:
			fields[key] = vals[0]
		default:
			fields[key] = vals
		}
	}
	return fields, nil
}

func decodeFields(fields map[string]any, v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return fmt.Errorf("http: bind: %w", err)
	}
	if err := dec.Decode(fields); err != nil {
		return fmt.Errorf("http: bind form: %w", err)
	}
	return nil
}

// ── Input helpers ────────────────────────────────────────────────────────────

// Input returns key from the body form, then the query string, then
// fallback.
func (req *Request) Input(key string, fallback ...string) string {
	if req.raw.Form == nil {
		_ = req.raw.ParseMultipartForm(maxMemory)
	}
	if vals, ok := req.raw.Form[key]; ok && len(vals) > 0 && vals[0] != "" {
		return vals[0]
	}
	return first(fallback, "")
}

// Query returns key from the query string only.
func (req *Request) Query(key string, fallback ...string) string {
	vals, ok := req.raw.URL.Query()[key]
	if !ok || len(vals) == 0 || vals[0] == "" {
		return first(fallback, "")
	}
	return vals[0]
}

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// BearerToken extracts the token from Authorization: Bearer <token>.
func (req *Request) BearerToken() string {
	auth := req.raw.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return ""
}

// Method returns the HTTP method.
func (req *Request) Method() string { return req.raw.Method }

// Path returns the URL path.
func (req *Request) Path() string { return req.raw.URL.Path }

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}

// IsJSON returns true when the request expects a JSON response.
func (req *Request) IsJSON() bool {
	return strings.Contains(req.raw.Header.Get("Accept"), "application/json") ||
		strings.Contains(req.ContentType(), "application/json")
}
