package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("ROUTES_FILE", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	quietEnv(t)
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(append([]string{"--env", "testdata/missing.env"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRoutesCommand(t *testing.T) {
	out, err := run(t, "routes")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "METHOD")
	assert.Contains(t, lines[1], "HomeController@Home")
	assert.Contains(t, lines[3], "/api/users/{id}")
	assert.Contains(t, lines[3], "api.users.show")
	assert.Contains(t, lines[4], "POST")
	assert.Contains(t, lines[4], "auth")
}

func TestRouteURLCommand(t *testing.T) {
	out, err := run(t, "route:url", "api.users.show", "id=42", "tab=settings")
	require.NoError(t, err)
	assert.Equal(t, "/api/users/42?tab=settings\n", out)
}

func TestRouteURLCommand_Errors(t *testing.T) {
	_, err := run(t, "route:url", "api.users.show")
	assert.ErrorContains(t, err, "expects 1 parameter")

	_, err = run(t, "route:url", "nope")
	assert.ErrorContains(t, err, `no route named "nope"`)

	_, err = run(t, "route:url", "api.users.show", "id")
	assert.ErrorContains(t, err, "key=value")

	_, err = run(t, "route:url")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "branch "))
}

func TestDemoApplication(t *testing.T) {
	quietEnv(t)
	a, err := bootstrap("testdata/missing.env")
	require.NoError(t, err)
	h, err := a.Handler()
	require.NoError(t, err)

	do := func(method, target, body, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		if body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	rr := do(http.MethodGet, "/", "", "")
	assert.JSONEq(t, `{"data":{"message":"Welcome to Branch"}}`, rr.Body.String())

	rr = do(http.MethodGet, "/api/users", "", "")
	assert.JSONEq(t, `{"data":[{"id":1,"name":"Alice"},{"id":2,"name":"Bob"}]}`, rr.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(http.MethodPost, "/api/users", `{"name":"Carol"}`, "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, do(http.MethodPost, "/api/users", `{}`, "secret").Code)

	rr = do(http.MethodPost, "/api/users", `{"name":"Carol"}`, "secret")
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(http.MethodGet, "/api/users/3", "", "")
	assert.JSONEq(t, `{"data":{"id":3,"name":"Carol"}}`, rr.Body.String(), "repository is a singleton")

	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/api/users/99", "", "").Code)
	assert.Equal(t, http.StatusNotFound, do(http.MethodGet, "/api/users/abc", "", "").Code)
}
