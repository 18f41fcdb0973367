package routing

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the YAML route file format.
//
//	routes:
//	  - path: admin
//	    name: admin.
//	    middleware: [auth]
//	    routes:
//	      - methods: [GET]
//	        path: users/{id}
//	        name: users.show
//	        handler: UserController@Show
//	        where: {id: '[0-9]+'}
//	      - resource: photos
//	        handler: PhotoController
type File struct {
	Routes []FileEntry `yaml:"routes"`
}

// FileEntry is a route, a group (when Routes is non-empty) or a resource
// (when Resource is set; Handler then names the controller).
type FileEntry struct {
	Methods    []string          `yaml:"methods"`
	Path       string            `yaml:"path"`
	Name       string            `yaml:"name"`
	Handler    any               `yaml:"handler"`
	Resource   string            `yaml:"resource"`
	Middleware []any             `yaml:"middleware"`
	Where      map[string]string `yaml:"where"`
	Extra      map[string]any    `yaml:"extra"`
	Routes     []FileEntry       `yaml:"routes"`
}

func (e FileEntry) config() Config {
	return Config{
		Path:       e.Path,
		Name:       e.Name,
		Middleware: e.Middleware,
		Where:      e.Where,
		Extra:      e.Extra,
	}
}

// LoadFile reads a YAML route file and registers its routes on r.
func LoadFile(r *Router, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("routing: read %s: %w", path, err)
	}
	if err := Load(r, data); err != nil {
		return fmt.Errorf("routing: %s: %w", path, err)
	}
	return nil
}

// Load registers the routes described by a YAML document on r.
func Load(r *Router, data []byte) (err error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok {
				err = e
				return
			}
			panic(rec)
		}
	}()
	return loadEntries(r, file.Routes)
}

func loadEntries(r *Router, entries []FileEntry) error {
	for i, e := range entries {
		switch {
		case len(e.Routes) > 0:
			var inner error
			r.Group(e.config(), func(r *Router) {
				inner = loadEntries(r, e.Routes)
			})
			if inner != nil {
				return inner
			}
		case e.Resource != "":
			controller, ok := e.Handler.(string)
			if !ok || controller == "" {
				return fmt.Errorf("resource %q: handler must name a controller", e.Resource)
			}
			r.Group(Config{Middleware: e.Middleware, Where: e.Where, Extra: e.Extra}, func(r *Router) {
				r.Resource(joinPath(e.Path, e.Resource), controller)
			})
		case e.Handler != nil:
			r.Map(e.Methods, e.config(), e.Handler)
		default:
			return fmt.Errorf("entry %d (%q): needs a handler, a resource or nested routes", i, e.Path)
		}
	}
	return nil
}
