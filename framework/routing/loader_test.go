package routing

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/branch/framework/resolver"
)

const routesYAML = `
routes:
  - methods: [GET]
    path: /
    name: home
    handler: PageController@Home
  - path: admin
    name: admin.
    middleware: [auth]
    extra:
      layout: admin
    routes:
      - methods: [GET]
        path: users/{id}
        name: users.show
        handler: UserController@Show
        where:
          id: '[0-9]+'
      - resource: photos
        handler: PhotoController
        middleware: [audit]
`

func TestLoad(t *testing.T) {
	r := New(nil)
	require.NoError(t, Load(r, []byte(routesYAML)))
	assert.Equal(t, 0, r.Depth())

	routes := r.Routes()
	require.Len(t, routes, 7)

	assert.Equal(t, "home", routes[0].Name)
	assert.Equal(t, "", routes[0].Path)

	show := routes[1]
	assert.Equal(t, "admin.users.show", show.Name)
	assert.Equal(t, "admin/users/{id}", show.Path)
	assert.Equal(t, []resolver.Definition{resolver.Literal{Value: "auth"}}, show.Middleware)
	assert.Equal(t, "admin", show.Extra["layout"])
	assert.Equal(t, resolver.Literal{Value: Action{Controller: "UserController", Method: "Show"}}, show.Handler)

	_, err := r.Match(http.MethodGet, "admin/users/abc")
	assert.Error(t, err, "where pattern from the file must apply")

	u, err := r.URL("admin.photos.update", map[string]any{"id": 3})
	require.NoError(t, err)
	assert.Equal(t, "admin/photos/3", u)

	photos := routes[2]
	assert.Equal(t, []resolver.Definition{
		resolver.Literal{Value: "auth"},
		resolver.Literal{Value: "audit"},
	}, photos.Middleware)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"malformed", "routes: [\n"},
		{"no handler", "routes:\n  - path: x\n"},
		{"resource without controller", "routes:\n  - resource: photos\n"},
		{"bad template", "routes:\n  - path: 'users/{id'\n    handler: X@Y\n"},
		{"bad nested template", "routes:\n  - path: api\n    routes:\n      - path: '{1}'\n        handler: X@Y\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(nil)
			assert.Error(t, Load(r, []byte(tt.yaml)))
			assert.Equal(t, 0, r.Depth())
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "routes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(routesYAML), 0o600))

	r := New(nil)
	require.NoError(t, LoadFile(r, path))
	assert.Len(t, r.Routes(), 7)

	assert.Error(t, LoadFile(New(nil), filepath.Join(t.TempDir(), "missing.yaml")))
}
