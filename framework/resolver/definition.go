package resolver

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
)

// Container is the lookup side of the IoC container as seen by the resolver.
// Nested constructor dependencies are pulled through it by type id.
type Container interface {
	Has(id string) bool
	Get(id string) (any, error)
}

// Definition describes how to produce a value. The set of implementations is
// closed: Closure, ObjectConfig, ClassName and Literal.
type Definition interface {
	definition()
}

// Closure is invoked with the container and its result is used verbatim.
type Closure func(c Container) (any, error)

// ObjectConfig names a registered class together with constructor arguments
// keyed by parameter name.
type ObjectConfig struct {
	Class string         `mapstructure:"class" yaml:"class"`
	Args  map[string]any `mapstructure:"args" yaml:"args"`

	// err is set when the config came from a map that could not be
	// decoded; ResolveObject returns it.
	err error
}

// ClassName is a bare registered class name; it is equivalent to an
// ObjectConfig without args.
type ClassName string

// Literal is returned unchanged.
type Literal struct {
	Value any
}

func (Closure) definition()      {}
func (ObjectConfig) definition() {}
func (ClassName) definition()    {}
func (Literal) definition()      {}

// Classify turns an arbitrary configuration value into a Definition.
//
// Rules, first match wins:
//
//	Definition                                  → itself
//	func(Container) (any, error), func(Container) any,
//	func() any, func() (any, error)             → Closure
//	*ObjectConfig, map[string]any with "class"  → ObjectConfig
//	string naming a class in classes            → ClassName
//	anything else                               → Literal
//
// classes may be nil, in which case no string is treated as a class name.
func Classify(v any, classes *Registry) Definition {
	switch d := v.(type) {
	case nil:
		return Literal{}
	case Definition:
		return d
	case func(Container) (any, error):
		return Closure(d)
	case func(Container) any:
		return Closure(func(c Container) (any, error) { return d(c), nil })
	case func() any:
		return Closure(func(Container) (any, error) { return d(), nil })
	case func() (any, error):
		return Closure(func(Container) (any, error) { return d() })
	case *ObjectConfig:
		if d != nil {
			return *d
		}
	case map[string]any:
		if _, ok := d["class"]; ok {
			return objectConfigFromMap(d)
		}
	case string:
		if classes != nil && classes.Has(d) {
			return ClassName(d)
		}
	}
	return Literal{Value: v}
}

// objectConfigFromMap never fails: a bad class or args value is kept on
// the config as the error ResolveObject will report.
func objectConfigFromMap(m map[string]any) ObjectConfig {
	class, ok := m["class"].(string)
	if !ok {
		name := fmt.Sprint(m["class"])
		return ObjectConfig{Class: name, err: &ClassNotFoundError{Class: name}}
	}
	var cfg ObjectConfig
	if err := mapstructure.Decode(m, &cfg); err != nil {
		return ObjectConfig{Class: class, err: &ArgumentError{Param: "args", Err: err}}
	}
	return cfg
}
