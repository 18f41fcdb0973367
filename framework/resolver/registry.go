package resolver

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

var errorType = reflect.TypeFor[error]()

// Param describes one constructor parameter, in declaration order.
type Param struct {
	Name string

	// Type is the declared type, nil when the constructor takes the
	// parameter as an empty interface.
	Type reflect.Type

	Default    any
	HasDefault bool

	in reflect.Type
}

// ParamSpec names a constructor parameter at registration time.
//
//	reg.Define("mailer", NewMailer, resolver.Arg("transport"), resolver.Arg("from").Default("noreply@example.com"))
type ParamSpec struct {
	name       string
	value      any
	hasDefault bool
}

// Arg starts a ParamSpec for the parameter called name.
func Arg(name string) ParamSpec {
	return ParamSpec{name: name}
}

// Default marks the parameter as optional with the given default value.
func (s ParamSpec) Default(v any) ParamSpec {
	s.value = v
	s.hasDefault = true
	return s
}

// Class is a registered constructor together with its parameter list.
type Class struct {
	name   string
	out    reflect.Type
	ctor   reflect.Value
	params []Param
}

// Name returns the registered class name.
func (c *Class) Name() string { return c.name }

// Type returns the type of the values the class produces.
func (c *Class) Type() reflect.Type { return c.out }

// Params returns a copy of the constructor parameters.
func (c *Class) Params() []Param {
	out := make([]Param, len(c.params))
	copy(out, c.params)
	return out
}

func (c *Class) instantiate(args []reflect.Value) (any, error) {
	if !c.ctor.IsValid() {
		return reflect.New(c.out.Elem()).Interface(), nil
	}
	out := c.ctor.Call(args)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

// Registry plays the role of runtime reflection over named classes: it
// records constructors and reports their parameters.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Class
	byType map[string]*Class
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Class),
		byType: make(map[string]*Class),
	}
}

// Define registers a constructor func under name. The func must return
// either T or (T, error). specs name the parameters in order; when omitted
// the parameters are called arg0, arg1, ... and none has a default.
func (r *Registry) Define(name string, ctor any, specs ...ParamSpec) error {
	if name == "" {
		return fmt.Errorf("resolver: empty class name")
	}
	fn := reflect.ValueOf(ctor)
	if fn.Kind() != reflect.Func {
		return fmt.Errorf("resolver: class %q: constructor must be a func, got %T", name, ctor)
	}
	ft := fn.Type()
	if ft.IsVariadic() {
		return fmt.Errorf("resolver: class %q: variadic constructors are not supported", name)
	}
	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
	default:
		return fmt.Errorf("resolver: class %q: constructor must return T or (T, error)", name)
	}
	if len(specs) != 0 && len(specs) != ft.NumIn() {
		return fmt.Errorf("resolver: class %q: %d parameter specs for %d parameters", name, len(specs), ft.NumIn())
	}

	params := make([]Param, ft.NumIn())
	for i := range params {
		in := ft.In(i)
		p := Param{Name: fmt.Sprintf("arg%d", i), in: in}
		if !isUntyped(in) {
			p.Type = in
		}
		if len(specs) > 0 {
			s := specs[i]
			if s.name == "" {
				return fmt.Errorf("resolver: class %q: parameter %d has no name", name, i)
			}
			p.Name = s.name
			if s.hasDefault {
				if s.value != nil && !reflect.TypeOf(s.value).AssignableTo(in) {
					return fmt.Errorf("resolver: class %q: default for %q is %T, want %s", name, s.name, s.value, in)
				}
				p.Default = s.value
				p.HasDefault = true
			}
		}
		params[i] = p
	}

	return r.add(&Class{name: name, out: ft.Out(0), ctor: fn, params: params})
}

// MustDefine is like Define but panics on error. Intended for init-time
// registration.
func (r *Registry) MustDefine(name string, ctor any, specs ...ParamSpec) {
	if err := r.Define(name, ctor, specs...); err != nil {
		panic(err)
	}
}

// DefineType registers a class without a constructor; it is instantiated
// as a pointer to a zero T.
func (r *Registry) DefineType(name string, t reflect.Type) error {
	if name == "" {
		return fmt.Errorf("resolver: empty class name")
	}
	if t == nil {
		return fmt.Errorf("resolver: class %q: nil type", name)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return r.add(&Class{name: name, out: reflect.PointerTo(t)})
}

func (r *Registry) add(c *Class) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[c.name]; exists {
		return fmt.Errorf("resolver: class %q already defined", c.name)
	}
	r.byName[c.name] = c
	// First class producing a type owns its type id.
	id := TypeID(c.out)
	if _, exists := r.byType[id]; !exists {
		r.byType[id] = c
	}
	return nil
}

// Lookup finds a class by its registered name or by the type id of the
// values it produces.
func (r *Registry) Lookup(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.byName[name]; ok {
		return c, true
	}
	c, ok := r.byType[name]
	return c, ok
}

// Has reports whether Lookup would succeed.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Names returns the registered class names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// TypeID returns the container key for t: the package-qualified type name,
// with one leading "*" per pointer level. Unnamed types fall back to
// t.String().
//
//	resolver.TypeID(reflect.TypeFor[*mail.Mailer]()) // "*example.com/app/mail.Mailer"
func TypeID(t reflect.Type) string {
	var prefix strings.Builder
	for t.Kind() == reflect.Pointer {
		prefix.WriteByte('*')
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return prefix.String() + t.String()
	}
	return prefix.String() + t.PkgPath() + "." + t.Name()
}

// Key is TypeID for a static type.
func Key[T any]() string {
	return TypeID(reflect.TypeFor[T]())
}

func isUntyped(t reflect.Type) bool {
	return t.Kind() == reflect.Interface && t.NumMethod() == 0
}
