package routing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		patterns map[string]string
		path     string
		args     map[string]string
	}{
		{name: "static", template: "about", path: "about", args: map[string]string{}},
		{name: "empty template matches root", template: "", path: "", args: map[string]string{}},
		{name: "single param", template: "users/{id}", path: "users/42", args: map[string]string{"id": "42"}},
		{name: "two params", template: "users/{user}/posts/{post}", path: "users/7/posts/hello",
			args: map[string]string{"user": "7", "post": "hello"}},
		{name: "inline pattern", template: "files/{path:.+}", path: "files/a/b/c.txt",
			args: map[string]string{"path": "a/b/c.txt"}},
		{name: "nested quantifier", template: "archive/{year:[0-9]{4}}", path: "archive/2024",
			args: map[string]string{"year": "2024"}},
		{name: "where pattern", template: "users/{id}", patterns: map[string]string{"id": "[0-9]+"},
			path: "users/42", args: map[string]string{"id": "42"}},
		{name: "literal dot", template: "posts/{slug}.html", path: "posts/intro.html",
			args: map[string]string{"slug": "intro"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, phs, err := compileTemplate(tt.template, tt.patterns)
			require.NoError(t, err)
			assert.Len(t, phs, len(tt.args))

			captures := re.FindStringSubmatch(tt.path)
			require.NotNil(t, captures, "pattern %s should match %q", re, tt.path)
			assert.Equal(t, tt.args, filterMatchedParams(re.SubexpNames(), captures))
		})
	}
}

func TestCompileTemplate_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		template string
		patterns map[string]string
		path     string
	}{
		{name: "extra segment", template: "users/{id}", path: "users/42/edit"},
		{name: "missing segment", template: "users/{id}", path: "users"},
		{name: "where pattern", template: "users/{id}", patterns: map[string]string{"id": "[0-9]+"}, path: "users/abc"},
		{name: "inline beats where", template: "users/{id:[a-z]+}", patterns: map[string]string{"id": "[0-9]+"}, path: "users/42"},
		{name: "quoted literal", template: "posts/{slug}.html", path: "posts/introxhtml"},
		{name: "quantifier", template: "archive/{year:[0-9]{4}}", path: "archive/24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			re, _, err := compileTemplate(tt.template, tt.patterns)
			require.NoError(t, err)
			assert.False(t, re.MatchString(tt.path))
		})
	}
}

func TestCompileTemplate_Errors(t *testing.T) {
	for _, template := range []string{
		"users/{id",
		"users/id}",
		"users/{}",
		"users/{1d}",
		"users/{id:}",
		"users/{id}/{id}",
		"users/{id:[0-9}",
	} {
		t.Run(template, func(t *testing.T) {
			_, _, err := compileTemplate(template, nil)
			assert.Error(t, err)
		})
	}
}

func TestFilterMatchedParams_DropsUnnamedGroups(t *testing.T) {
	names := []string{"", "id", "", "slug"}
	captures := []string{"users/42/x/y", "42", "x", "y"}

	assert.Equal(t, map[string]string{"id": "42", "slug": "y"}, filterMatchedParams(names, captures))
}

func TestMergeExtra(t *testing.T) {
	outer := map[string]any{
		"layout": "main",
		"auth":   map[string]any{"guard": "web", "remember": true},
	}
	local := map[string]any{
		"auth":  map[string]any{"guard": "api"},
		"cache": 60,
	}

	merged, err := mergeExtra(outer, local)
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"layout": "main",
		"auth":   map[string]any{"guard": "api", "remember": true},
		"cache":  60,
	}, merged)
	assert.Equal(t, "web", outer["auth"].(map[string]any)["guard"], "outer scope must not be mutated")
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "api/users", joinPath("/api/", "/users/"))
	assert.Equal(t, "users", joinPath("", "users"))
	assert.Equal(t, "api", joinPath("api", ""))
	assert.Equal(t, "", joinPath("/", "/"))
}
