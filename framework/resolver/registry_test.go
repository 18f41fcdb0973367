package resolver_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/branch/framework/resolver"
)

func TestRegistry_DefineRejectsBadConstructors(t *testing.T) {
	tests := []struct {
		name  string
		class string
		ctor  any
		specs []resolver.ParamSpec
	}{
		{"empty name", "", func() int { return 1 }, nil},
		{"not a func", "x", 42, nil},
		{"no results", "x", func() {}, nil},
		{"second result not error", "x", func() (int, int) { return 1, 2 }, nil},
		{"variadic", "x", func(xs ...int) int { return 0 }, nil},
		{"spec count", "x", func(a, b int) int { return a + b }, []resolver.ParamSpec{resolver.Arg("a")}},
		{"unnamed spec", "x", func(a int) int { return a }, []resolver.ParamSpec{{}}},
		{"bad default", "x", func(a int) int { return a }, []resolver.ParamSpec{resolver.Arg("a").Default("one")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := resolver.NewRegistry()
			assert.Error(t, reg.Define(tt.class, tt.ctor, tt.specs...))
		})
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	reg := resolver.NewRegistry()
	require.NoError(t, reg.DefineType("counter", reflect.TypeFor[Counter]()))
	assert.Error(t, reg.DefineType("counter", reflect.TypeFor[Counter]()))
}

func TestRegistry_ParamsReportDeclaredTypes(t *testing.T) {
	reg := resolver.NewRegistry()
	reg.MustDefine("greeter", func(name string, extra any) *Greeter { return &Greeter{} },
		resolver.Arg("name"),
		resolver.Arg("extra").Default(nil),
	)

	class, ok := reg.Lookup("greeter")
	require.True(t, ok)

	params := class.Params()
	require.Len(t, params, 2)
	assert.Equal(t, "name", params[0].Name)
	assert.Equal(t, reflect.TypeFor[string](), params[0].Type)
	assert.False(t, params[0].HasDefault)
	assert.Equal(t, "extra", params[1].Name)
	assert.Nil(t, params[1].Type)
	assert.True(t, params[1].HasDefault)
}

func TestRegistry_DefaultParamNames(t *testing.T) {
	reg := resolver.NewRegistry()
	reg.MustDefine("sum", func(a, b int) int { return a + b })

	class, _ := reg.Lookup("sum")
	names := []string{}
	for _, p := range class.Params() {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"arg0", "arg1"}, names)
}

func TestRegistry_LookupByTypeID(t *testing.T) {
	reg := resolver.NewRegistry()
	reg.MustDefine("mailer", NewMailer)

	class, ok := reg.Lookup(resolver.Key[*Mailer]())
	require.True(t, ok)
	assert.Equal(t, "mailer", class.Name())
	assert.Equal(t, []string{"mailer"}, reg.Names())
}

func TestTypeID(t *testing.T) {
	tests := []struct {
		in   reflect.Type
		want string
	}{
		{reflect.TypeFor[Transport](), "github.com/km-arc/branch/framework/resolver_test.Transport"},
		{reflect.TypeFor[*Transport](), "*github.com/km-arc/branch/framework/resolver_test.Transport"},
		{reflect.TypeFor[string](), "string"},
		{reflect.TypeFor[[]int](), "[]int"},
		{reflect.TypeFor[error](), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.TypeID(tt.in))
		})
	}
}
