package resolver_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/branch/framework/resolver"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type Transport struct{ Host string }

type Mailer struct {
	Transport *Transport
	From      string
	Retries   int
}

func NewMailer(t *Transport, from string, retries int) *Mailer {
	return &Mailer{Transport: t, From: from, Retries: retries}
}

type Counter struct{ N int }

type Greeter struct{ Greeting any }

type notFound struct{ id string }

func (e *notFound) Error() string { return "not found: " + e.id }

type fakeContainer struct {
	values map[string]any
}

func newFake(values map[string]any) *fakeContainer {
	if values == nil {
		values = map[string]any{}
	}
	return &fakeContainer{values: values}
}

func (f *fakeContainer) Has(id string) bool {
	_, ok := f.values[id]
	return ok
}

func (f *fakeContainer) Get(id string) (any, error) {
	v, ok := f.values[id]
	if !ok {
		return nil, &notFound{id: id}
	}
	return v, nil
}

func newRegistry(t *testing.T) *resolver.Registry {
	t.Helper()
	reg := resolver.NewRegistry()
	require.NoError(t, reg.Define("mailer", NewMailer,
		resolver.Arg("transport"),
		resolver.Arg("from").Default("noreply@example.com"),
		resolver.Arg("retries").Default(1),
	))
	require.NoError(t, reg.DefineType("counter", reflect.TypeFor[Counter]()))
	return reg
}

// ── Classify ──────────────────────────────────────────────────────────────────

func TestClassify(t *testing.T) {
	reg := newRegistry(t)

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"closure with error", func(resolver.Container) (any, error) { return 1, nil }, "resolver.Closure"},
		{"closure", func(resolver.Container) any { return 1 }, "resolver.Closure"},
		{"thunk", func() any { return 1 }, "resolver.Closure"},
		{"thunk with error", func() (any, error) { return 1, nil }, "resolver.Closure"},
		{"object config map", map[string]any{"class": "mailer"}, "resolver.ObjectConfig"},
		{"object config with non-string class", map[string]any{"class": 42}, "resolver.ObjectConfig"},
		{"object config with bad args", map[string]any{"class": "mailer", "args": "oops"}, "resolver.ObjectConfig"},
		{"object config pointer", &resolver.ObjectConfig{Class: "mailer"}, "resolver.ObjectConfig"},
		{"class name", "mailer", "resolver.ClassName"},
		{"class by type id", resolver.Key[*Mailer](), "resolver.ClassName"},
		{"unknown string", "hello", "resolver.Literal"},
		{"map without class", map[string]any{"name": "x"}, "resolver.Literal"},
		{"int", 42, "resolver.Literal"},
		{"nil", nil, "resolver.Literal"},
		{"two arg func", func(a, b int) int { return a + b }, "resolver.Literal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Classify(tt.in, reg)
			assert.Equal(t, tt.want, fmt.Sprintf("%T", got))
		})
	}
}

func TestClassify_NilRegistryTreatsStringsAsLiterals(t *testing.T) {
	got := resolver.Classify("mailer", nil)
	assert.Equal(t, resolver.Literal{Value: "mailer"}, got)
}

func TestClassify_ObjectConfigArgs(t *testing.T) {
	got := resolver.Classify(map[string]any{
		"class": "mailer",
		"args":  map[string]any{"from": "ops@example.com"},
	}, nil)

	cfg, ok := got.(resolver.ObjectConfig)
	require.True(t, ok)
	assert.Equal(t, "mailer", cfg.Class)
	assert.Equal(t, "ops@example.com", cfg.Args["from"])
}

// ── Resolve ───────────────────────────────────────────────────────────────────

func TestResolve_ClosureReceivesContainer(t *testing.T) {
	c := newFake(map[string]any{"greeting": "hi"})
	r := resolver.New(c, nil)

	got, err := r.Resolve(func(c resolver.Container) (any, error) {
		return c.Get("greeting")
	})
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}

func TestResolve_ClosureErrorPropagatesUnmodified(t *testing.T) {
	boom := errors.New("boom")
	r := resolver.New(newFake(nil), nil)

	_, err := r.Resolve(func(resolver.Container) (any, error) { return nil, boom })
	assert.Same(t, boom, err)
}

func TestResolve_LiteralPassesThrough(t *testing.T) {
	r := resolver.New(newFake(nil), newRegistry(t))

	got, err := r.Resolve("not-a-class")
	require.NoError(t, err)
	assert.Equal(t, "not-a-class", got)

	got, err = r.Resolve(3.14)
	require.NoError(t, err)
	assert.Equal(t, 3.14, got)
}

func TestResolve_ClassNameIsFreshEachCall(t *testing.T) {
	r := resolver.New(newFake(nil), newRegistry(t))

	a, err := r.Resolve("counter")
	require.NoError(t, err)
	b, err := r.Resolve("counter")
	require.NoError(t, err)

	require.IsType(t, &Counter{}, a)
	assert.NotSame(t, a, b)
}

func TestResolve_AutowiresFromContainer(t *testing.T) {
	transport := &Transport{Host: "smtp.local"}
	c := newFake(map[string]any{resolver.Key[*Transport](): transport})
	r := resolver.New(c, newRegistry(t))

	got, err := r.Resolve("mailer")
	require.NoError(t, err)

	m := got.(*Mailer)
	assert.Same(t, transport, m.Transport)
	assert.Equal(t, "noreply@example.com", m.From)
	assert.Equal(t, 1, m.Retries)
}

func TestResolve_PredefinedOverridesContainer(t *testing.T) {
	bound := &Transport{Host: "bound"}
	override := &Transport{Host: "override"}
	c := newFake(map[string]any{resolver.Key[*Transport](): bound})
	r := resolver.New(c, newRegistry(t))

	got, err := r.Resolve(resolver.ObjectConfig{
		Class: "mailer",
		Args:  map[string]any{"transport": override, "from": "ops@example.com"},
	})
	require.NoError(t, err)

	m := got.(*Mailer)
	assert.Same(t, override, m.Transport)
	assert.Equal(t, "ops@example.com", m.From)
}

func TestResolve_DefaultKeepsLaterArgumentsAligned(t *testing.T) {
	c := newFake(map[string]any{resolver.Key[*Transport](): &Transport{}})
	r := resolver.New(c, newRegistry(t))

	// "from" falls back to its default; "retries" must still land in the
	// third slot.
	got, err := r.Resolve(resolver.ObjectConfig{
		Class: "mailer",
		Args:  map[string]any{"retries": 7},
	})
	require.NoError(t, err)

	m := got.(*Mailer)
	assert.Equal(t, "noreply@example.com", m.From)
	assert.Equal(t, 7, m.Retries)
}

func TestResolve_PredefinedValuesAreCoerced(t *testing.T) {
	c := newFake(map[string]any{resolver.Key[*Transport](): &Transport{}})
	r := resolver.New(c, newRegistry(t))

	got, err := r.Resolve(map[string]any{
		"class": "mailer",
		"args":  map[string]any{"retries": "5"},
	})
	require.NoError(t, err)
	assert.Equal(t, 5, got.(*Mailer).Retries)
}

func TestResolve_UncoercibleArgument(t *testing.T) {
	c := newFake(map[string]any{resolver.Key[*Transport](): &Transport{}})
	r := resolver.New(c, newRegistry(t))

	_, err := r.Resolve(resolver.ObjectConfig{
		Class: "mailer",
		Args:  map[string]any{"retries": "many"},
	})

	var argErr *resolver.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "retries", argErr.Param)
}

func TestResolve_MissingTypedDependencyPropagatesContainerError(t *testing.T) {
	r := resolver.New(newFake(nil), newRegistry(t))

	got, err := r.Resolve("mailer")
	assert.Nil(t, got)

	var nf *notFound
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, resolver.Key[*Transport](), nf.id)
}

func TestResolve_UntypedWithoutDefault(t *testing.T) {
	reg := resolver.NewRegistry()
	reg.MustDefine("greeter", func(g any) *Greeter { return &Greeter{Greeting: g} }, resolver.Arg("greeting"))
	r := resolver.New(newFake(nil), reg)

	_, err := r.Resolve("greeter")

	var missing *resolver.MissingTypeError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "greeting", missing.Param)
	assert.Equal(t, "greeter", missing.Class)
	assert.Contains(t, err.Error(), `no type available for parameter "greeting"`)
}

func TestResolve_UntypedWithDefault(t *testing.T) {
	reg := resolver.NewRegistry()
	reg.MustDefine("greeter", func(g any) *Greeter { return &Greeter{Greeting: g} },
		resolver.Arg("greeting").Default("hello"))
	r := resolver.New(newFake(nil), reg)

	got, err := r.Resolve("greeter")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.(*Greeter).Greeting)
}

func TestResolve_ClassNotFound(t *testing.T) {
	r := resolver.New(newFake(nil), newRegistry(t))

	_, err := r.ResolveObject(resolver.ObjectConfig{Class: "ghost"})

	var cnf *resolver.ClassNotFoundError
	require.ErrorAs(t, err, &cnf)
	assert.Equal(t, "ghost", cnf.Class)
}

func TestResolve_MalformedObjectConfigMap(t *testing.T) {
	r := resolver.New(newFake(nil), newRegistry(t))

	_, err := r.Resolve(map[string]any{"class": 42})
	var cnf *resolver.ClassNotFoundError
	require.ErrorAs(t, err, &cnf)
	assert.Equal(t, "42", cnf.Class)

	_, err = r.Resolve(map[string]any{"class": "mailer", "args": "oops"})
	var argErr *resolver.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "args", argErr.Param)
}

func TestResolve_ConstructorError(t *testing.T) {
	boom := errors.New("cannot dial")
	reg := resolver.NewRegistry()
	reg.MustDefine("transport", func() (*Transport, error) { return nil, boom })
	r := resolver.New(newFake(nil), reg)

	_, err := r.Resolve("transport")
	assert.ErrorIs(t, err, boom)
}

// ── ResolveArgs ───────────────────────────────────────────────────────────────

func TestResolveArgs_NilPredefinedIsIgnored(t *testing.T) {
	transport := &Transport{Host: "bound"}
	c := newFake(map[string]any{resolver.Key[*Transport](): transport})
	reg := newRegistry(t)
	r := resolver.New(c, reg)

	class, ok := reg.Lookup("mailer")
	require.True(t, ok)

	args, err := r.ResolveArgs(class.Params(), map[string]any{"transport": nil})
	require.NoError(t, err)
	require.Len(t, args, 3)
	assert.Same(t, transport, args[0].Interface())
}

// ── Call ──────────────────────────────────────────────────────────────────────

func TestCall_AutowiresByType(t *testing.T) {
	transport := &Transport{Host: "smtp.local"}
	r := resolver.New(newFake(map[string]any{resolver.Key[*Transport](): transport}), nil)

	got, err := r.Call(func(t *Transport) string { return t.Host })
	require.NoError(t, err)
	assert.Equal(t, "smtp.local", got)
}

func TestCall_ReturnsError(t *testing.T) {
	boom := errors.New("boom")
	r := resolver.New(newFake(nil), nil)

	_, err := r.Call(func() error { return boom })
	assert.Same(t, boom, err)
}

func TestCall_RejectsNonFunc(t *testing.T) {
	r := resolver.New(newFake(nil), nil)
	_, err := r.Call("nope")
	assert.Error(t, err)
}
