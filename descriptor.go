package anvil

import (
	"context"
	"fmt"
	"reflect"

	"github.com/xraph/anvil/errors"
)

// descriptor holds the metadata for one registered implementation: the
// identity it satisfies, the concrete type it produces, its lifetime, and the
// ahead-of-time description of every constructor.
type descriptor struct {
	service  reflect.Type
	impl     reflect.Type
	lifetime Lifetime

	// constructors in declaration order. Empty only for pre-built instances.
	constructors []*constructorInfo

	// instance is a pre-built value registered through AddInstance.
	instance    any
	hasInstance bool

	// pinned marks a try-add registration: later registrations for the same
	// identity are appended but never displace this one as primary.
	pinned bool
}

// constructorInfo is the ahead-of-time description of a single constructor:
// the function value plus its parameter plan. The selector works over this
// description alone, it never touches provider state.
type constructorInfo struct {
	fn         reflect.Value
	params     []paramSpec
	returnsErr bool
	index      int
}

// paramSpec describes one constructor parameter.
type paramSpec struct {
	typ        reflect.Type
	hasDefault bool
	defaultVal reflect.Value
	variadic   bool
}

// arity returns the number of declared parameters.
func (c *constructorInfo) arity() int {
	return len(c.params)
}

func (c *constructorInfo) String() string {
	return c.fn.Type().String()
}

var (
	contextType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	resolverType = reflect.TypeOf((*Resolver)(nil)).Elem()
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
)

// isInjectedType reports whether the parameter is satisfied by the engine
// itself rather than by a registration.
func isInjectedType(t reflect.Type) bool {
	return t == contextType || t == resolverType
}

// describeConstructor validates a constructor function and produces its
// parameter plan. Accepted signatures are func(deps...) T and
// func(deps...) (T, error). Default argument values, supplied through
// WithDefaults, are matched to parameters by assignability in declaration
// order. A variadic tail parameter is always treated as defaulted.
func describeConstructor(fn any, defaults []any, index int) (*constructorInfo, reflect.Type, error) {
	val := reflect.ValueOf(fn)
	if !val.IsValid() || val.Kind() != reflect.Func {
		return nil, nil, errors.ErrInvalidConstructor(fmt.Sprintf("got %T, want a function", fn))
	}

	typ := val.Type()
	switch typ.NumOut() {
	case 1:
		if typ.Out(0) == errorType {
			return nil, nil, errors.ErrInvalidConstructor(typ.String() + " returns only an error")
		}
	case 2:
		if typ.Out(1) != errorType {
			return nil, nil, errors.ErrInvalidConstructor(typ.String() + " second return value must be error")
		}
	default:
		return nil, nil, errors.ErrInvalidConstructor(typ.String() + " must return (T) or (T, error)")
	}

	info := &constructorInfo{
		fn:         val,
		params:     make([]paramSpec, typ.NumIn()),
		returnsErr: typ.NumOut() == 2,
		index:      index,
	}

	for i := 0; i < typ.NumIn(); i++ {
		info.params[i] = paramSpec{typ: typ.In(i)}
		if typ.IsVariadic() && i == typ.NumIn()-1 {
			info.params[i].variadic = true
			info.params[i].hasDefault = true
		}
	}

	for _, def := range defaults {
		defVal := reflect.ValueOf(def)
		if !defVal.IsValid() {
			return nil, nil, errors.ErrInvalidConstructor("default value cannot be untyped nil")
		}
		matched := false
		for i := range info.params {
			p := &info.params[i]
			if p.hasDefault || p.variadic {
				continue
			}
			if defVal.Type().AssignableTo(p.typ) {
				p.hasDefault = true
				p.defaultVal = defVal
				matched = true
				break
			}
		}
		if !matched {
			return nil, nil, errors.ErrInvalidConstructor(fmt.Sprintf(
				"default value of type %s matches no parameter of %s", defVal.Type(), typ))
		}
	}

	return info, typ.Out(0), nil
}

// registry is the immutable-after-build mapping from identity to registered
// descriptors. It is a pure data store: lookups on missing identities return
// ok=false, the resolution engine raises the error.
type registry struct {
	entries map[reflect.Type][]*descriptor
	order   []reflect.Type
}

func newRegistry() *registry {
	return &registry{entries: make(map[reflect.Type][]*descriptor)}
}

// add appends a descriptor for its identity, preserving registration order
// for deterministic enumeration.
func (r *registry) add(d *descriptor) {
	if _, exists := r.entries[d.service]; !exists {
		r.order = append(r.order, d.service)
	}
	r.entries[d.service] = append(r.entries[d.service], d)
}

// lookup returns the primary descriptor for the identity: the first pinned
// entry when one exists, otherwise the most recently registered.
func (r *registry) lookup(t reflect.Type) (*descriptor, bool) {
	entries := r.entries[t]
	if len(entries) == 0 {
		return nil, false
	}
	for _, d := range entries {
		if d.pinned {
			return d, true
		}
	}
	return entries[len(entries)-1], true
}

// has reports whether the identity is registered at all. This is the cheap,
// side-effect-free resolvability probe used by constructor selection.
func (r *registry) has(t reflect.Type) bool {
	return len(r.entries[t]) > 0
}

// all returns every descriptor in registration order, primaries first within
// an identity's entry list untouched.
func (r *registry) all() []*descriptor {
	out := make([]*descriptor, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.entries[t]...)
	}
	return out
}
