package resolver

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// Resolver turns definitions into values. It never caches; lifecycle is the
// container's business.
type Resolver struct {
	container Container
	classes   *Registry
}

// New returns a Resolver that pulls nested dependencies from c and reflects
// classes through classes.
func New(c Container, classes *Registry) *Resolver {
	if classes == nil {
		classes = NewRegistry()
	}
	return &Resolver{container: c, classes: classes}
}

// Resolve classifies def and produces its value.
func (r *Resolver) Resolve(def any) (any, error) {
	switch d := Classify(def, r.classes).(type) {
	case Closure:
		return d(r.container)
	case ObjectConfig:
		return r.ResolveObject(d)
	case ClassName:
		return r.ResolveObject(ObjectConfig{Class: string(d)})
	case Literal:
		return d.Value, nil
	default:
		return nil, fmt.Errorf("resolver: unsupported definition %T", d)
	}
}

// ResolveObject instantiates cfg.Class, building its constructor arguments
// from cfg.Args and the container.
func (r *Resolver) ResolveObject(cfg ObjectConfig) (any, error) {
	if cfg.err != nil {
		return nil, cfg.err
	}
	class, ok := r.classes.Lookup(cfg.Class)
	if !ok {
		return nil, &ClassNotFoundError{Class: cfg.Class}
	}
	if len(class.params) == 0 {
		return class.instantiate(nil)
	}

	args, err := r.ResolveArgs(class.params, cfg.Args)
	if err != nil {
		var missing *MissingTypeError
		if errors.As(err, &missing) && missing.Class == "" {
			missing.Class = class.name
		}
		return nil, err
	}
	return class.instantiate(args)
}

// ResolveArgs builds the positional argument list for params.
//
// A non-nil predefined entry under the parameter's name always wins. A typed
// parameter is otherwise fetched from the container by TypeID, unless the
// container has no binding and the parameter has a default. Untyped
// parameters need a default.
//
// Parameters that fall back to their default get the default value in their
// slot, so later positional arguments stay aligned.
func (r *Resolver) ResolveArgs(params []Param, predefined map[string]any) ([]reflect.Value, error) {
	args := make([]reflect.Value, 0, len(params))
	for _, p := range params {
		if v, ok := predefined[p.Name]; ok && v != nil {
			arg, err := coerce(v, p.in)
			if err != nil {
				return nil, &ArgumentError{Param: p.Name, Err: err}
			}
			args = append(args, arg)
			continue
		}

		if p.Type != nil {
			id := TypeID(p.Type)
			if !r.container.Has(id) && p.HasDefault {
				args = append(args, defaultValue(p))
				continue
			}
			v, err := r.container.Get(id)
			if err != nil {
				return nil, err
			}
			arg, err := coerce(v, p.in)
			if err != nil {
				return nil, &ArgumentError{Param: p.Name, Err: err}
			}
			args = append(args, arg)
			continue
		}

		if !p.HasDefault {
			return nil, &MissingTypeError{Param: p.Name}
		}
		args = append(args, defaultValue(p))
	}
	return args, nil
}

// Call invokes fn, autowiring every parameter by type. fn may return
// nothing, a value, an error, or (value, error).
func (r *Resolver) Call(fn any) (any, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("resolver: cannot call %T", fn)
	}
	ft := v.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("resolver: cannot call variadic %s", ft)
	}
	params := make([]Param, ft.NumIn())
	for i := range params {
		in := ft.In(i)
		params[i] = Param{Name: fmt.Sprintf("arg%d", i), in: in}
		if !isUntyped(in) {
			params[i].Type = in
		}
	}
	args, err := r.ResolveArgs(params, nil)
	if err != nil {
		return nil, err
	}
	return splitResults(v.Call(args))
}

func splitResults(out []reflect.Value) (any, error) {
	var value any
	for _, o := range out {
		if o.Type() == errorType {
			if !o.IsNil() {
				return nil, o.Interface().(error)
			}
			continue
		}
		if value == nil {
			value = o.Interface()
		}
	}
	return value, nil
}

func defaultValue(p Param) reflect.Value {
	if p.Default == nil {
		return reflect.Zero(p.in)
	}
	return reflect.ValueOf(p.Default)
}

// coerce adapts v to t. Assignable values pass through; anything else is
// decoded with weak typing so configuration values ("8080", 3.0, nested
// maps) can feed typed parameters.
func coerce(v any, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	out := reflect.New(t)
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out.Interface(),
		WeaklyTypedInput: true,
	})
	if err != nil {
		return reflect.Value{}, err
	}
	if err := dec.Decode(v); err != nil {
		return reflect.Value{}, fmt.Errorf("cannot use %T as %s: %w", v, t, err)
	}
	return out.Elem(), nil
}
