package main

import (
	_ "embed"
	"net/http"
	"sort"
	"strconv"
	"sync"

	gohttp "github.com/km-arc/branch/framework/http"
	"github.com/km-arc/branch/framework/resolver"
	"github.com/km-arc/branch/framework/routing"
)

//go:embed routes.yaml
var routesYAML []byte

// classes registers the demo controllers and their dependencies.
func classes() *resolver.Registry {
	r := resolver.NewRegistry()
	r.MustDefine("UserRepository", NewUserRepository)
	r.MustDefine("UserController", NewUserController, resolver.Arg("users"))
	r.MustDefine("HomeController", NewHomeController, resolver.Arg("name").Default("Branch"))
	return r
}

func registerRoutes(r *routing.Router) error {
	return routing.Load(r, routesYAML)
}

// requireToken rejects requests without a bearer token.
var requireToken routing.Middleware = func(next routing.HandlerFunc) routing.HandlerFunc {
	return func(req *gohttp.Request) (*gohttp.Response, error) {
		if req.BearerToken() == "" {
			return gohttp.Unauthorized(), nil
		}
		return next(req)
	}
}

// ── UserRepository ───────────────────────────────────────────────────────────

type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type UserRepository struct {
	mu    sync.RWMutex
	users map[int]User
	next  int
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users: map[int]User{1: {ID: 1, Name: "Alice"}, 2: {ID: 2, Name: "Bob"}},
		next:  3,
	}
}

func (r *UserRepository) All() []User {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *UserRepository) Find(id int) (User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return u, ok
}

func (r *UserRepository) Create(name string) User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := User{ID: r.next, Name: name}
	r.users[u.ID] = u
	r.next++
	return u
}

// ── Controllers ──────────────────────────────────────────────────────────────

type HomeController struct{ name string }

func NewHomeController(name any) *HomeController {
	s, _ := name.(string)
	return &HomeController{name: s}
}

func (c *HomeController) Home(*gohttp.Request) *gohttp.Response {
	return gohttp.Success(map[string]any{"message": "Welcome to " + c.name})
}

type UserController struct{ users *UserRepository }

func NewUserController(users *UserRepository) *UserController {
	return &UserController{users: users}
}

func (c *UserController) Index(*gohttp.Request) *gohttp.Response {
	return gohttp.Success(c.users.All())
}

func (c *UserController) Show(req *gohttp.Request) (*gohttp.Response, error) {
	id, err := strconv.Atoi(req.RouteParam("id"))
	if err != nil {
		return nil, err
	}
	u, ok := c.users.Find(id)
	if !ok {
		return gohttp.NotFound(), nil
	}
	return gohttp.Success(u), nil
}

func (c *UserController) Store(req *gohttp.Request) (*gohttp.Response, error) {
	var body struct {
		Name string `json:"name"`
	}
	if err := req.Bind(&body); err != nil || body.Name == "" {
		return gohttp.Error(http.StatusUnprocessableEntity, "The name field is required."), nil
	}
	return gohttp.Created(c.users.Create(body.Name)), nil
}
