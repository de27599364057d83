package anvil

import (
	"context"
	"reflect"

	"github.com/xraph/anvil/errors"
	"github.com/xraph/anvil/logger"
)

// Resolver is the resolution seam. Both the root Provider and every Scope
// implement it, and constructors may declare a Resolver parameter to receive
// the scope they are being constructed in.
type Resolver interface {
	// Resolve returns the instance registered for the service identity.
	// The identity may be given as a reflect.Type, a nil interface pointer
	// such as (*Logger)(nil), or a typed value whose type is the identity.
	Resolve(service any) (any, error)

	// ResolveContext is Resolve with a cancellation signal. A caller waiting
	// on another caller's in-flight construction may abandon the wait; the
	// construction itself keeps running and caches only on success.
	ResolveContext(ctx context.Context, service any) (any, error)
}

// resolution is the state of one top-level resolution call-tree: the caller's
// context plus the in-progress identity stack used for cycle detection. One
// is created per top-level request and discarded when it completes.
type resolution struct {
	ctx   context.Context
	stack []reflect.Type
}

// onStack reports whether the identity is already being constructed in this
// call-tree.
func (r *resolution) onStack(t reflect.Type) bool {
	for _, s := range r.stack {
		if s == t {
			return true
		}
	}
	return false
}

// chain renders the current stack for diagnostics.
func (r *resolution) chain() []string {
	names := make([]string, len(r.stack))
	for i, t := range r.stack {
		names[i] = typeName(t)
	}
	return names
}

// fork copies the resolution for a construction that runs on the far side of
// a singleflight slot. The stack is copied because a cancelled waiter keeps
// using its own resolution while the in-flight construction continues.
func (r *resolution) fork() *resolution {
	return &resolution{
		ctx:   r.ctx,
		stack: append([]reflect.Type(nil), r.stack...),
	}
}

// resolve is the engine entry for one identity within a call-tree. It routes
// the request to the cache tier owned by the descriptor's lifetime: singleton
// lookups always land on the root tier no matter which scope asked, scoped
// lookups construct locally and never delegate to the parent, transients
// bypass caching entirely.
func (s *Scope) resolve(r *resolution, t reflect.Type) (any, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, errors.ErrContextCancelled("resolve "+typeName(t), err)
	}
	if s.isEnded() {
		return nil, errors.ErrScopeEnded(s.id)
	}
	if r.onStack(t) {
		cycle := append(r.chain(), typeName(t))
		s.log.Error("circular dependency detected",
			logger.String("service", typeName(t)),
			logger.Strings("chain", cycle),
		)
		s.provider.metrics.resolutionFailed(errors.CodeCircularDependency)
		return nil, errors.ErrCircularDependency(cycle)
	}

	d, ok := s.provider.registry.lookup(t)
	if !ok {
		s.provider.metrics.resolutionFailed(errors.CodeServiceNotFound)
		return nil, errors.ErrServiceNotFound(typeName(t), r.chain())
	}

	switch d.lifetime {
	case Singleton:
		if d.hasInstance {
			return d.instance, nil
		}
		root := s.provider.root
		fr := r.fork()
		return s.provider.singletons.getOrCreate(r.ctx, t, func() (any, error) {
			// Dependencies of a singleton resolve against the root scope so
			// the shared instance never captures scoped state; the root also
			// owns its disposal.
			v, err := root.construct(fr, d)
			if err != nil {
				return nil, err
			}
			root.trackInstance(v)
			return v, nil
		})

	case Scoped:
		fr := r.fork()
		return s.cache.getOrCreate(r.ctx, t, func() (any, error) {
			v, err := s.construct(fr, d)
			if err != nil {
				return nil, err
			}
			s.trackInstance(v)
			return v, nil
		})

	default: // Transient
		v, err := s.construct(r, d)
		if err != nil {
			return nil, err
		}
		s.trackInstance(v)
		return v, nil
	}
}

// construct selects a constructor, resolves its dependencies in declaration
// order, and invokes it. The identity is pushed onto the resolution stack for
// the duration so recursive lookups can detect cycles.
func (s *Scope) construct(r *resolution, d *descriptor) (any, error) {
	r.stack = append(r.stack, d.service)
	defer func() { r.stack = r.stack[:len(r.stack)-1] }()

	ctor, err := selectConstructor(d, s.canResolve)
	if err != nil {
		s.provider.metrics.resolutionFailed(errors.CodeNoViableConstructor)
		return nil, err
	}

	args := make([]reflect.Value, 0, len(ctor.params))
	for _, p := range ctor.params {
		switch {
		case p.variadic:
			// A variadic tail is always optional; nothing is appended unless
			// the registration supplied defaults.
		case p.typ == contextType:
			args = append(args, reflect.ValueOf(r.ctx))
		case p.typ == resolverType:
			args = append(args, reflect.ValueOf(Resolver(s)))
		case s.provider.registry.has(p.typ):
			dep, depErr := s.resolve(r, p.typ)
			if depErr != nil {
				return nil, errors.ErrDependencyFailed(typeName(d.service), typeName(p.typ), depErr)
			}
			args = append(args, reflect.ValueOf(dep))
		case p.hasDefault:
			args = append(args, p.defaultVal)
		default:
			// Selection guarantees every parameter is resolvable or
			// defaulted; reaching here means the registry changed under us.
			s.provider.metrics.resolutionFailed(errors.CodeServiceNotFound)
			return nil, errors.ErrServiceNotFound(typeName(p.typ), r.chain())
		}
	}

	if err := r.ctx.Err(); err != nil {
		return nil, errors.ErrContextCancelled("construct "+typeName(d.service), err)
	}

	results := ctor.fn.Call(args)
	if ctor.returnsErr {
		if errVal := results[1]; !errVal.IsNil() {
			s.provider.metrics.resolutionFailed(errors.CodeConstructionFailed)
			return nil, errors.ErrConstructionFailed(typeName(d.service), r.chain(), errVal.Interface().(error))
		}
	}

	s.provider.metrics.instanceCreated(d.lifetime)
	return results[0].Interface(), nil
}

// canResolve is the side-effect-free resolvability predicate handed to the
// constructor selector: a parameter is resolvable when the engine injects its
// type directly or when the registry holds a descriptor for it.
func (s *Scope) canResolve(t reflect.Type) bool {
	return isInjectedType(t) || s.provider.registry.has(t)
}

// identityOf normalizes the service argument accepted by the resolution seam
// into an identity type. A nil interface pointer like (*Logger)(nil) names
// the interface itself; any other value names its own type.
func identityOf(service any) (reflect.Type, error) {
	switch v := service.(type) {
	case nil:
		return nil, errors.NewError(errors.CodeServiceNotFound, "service identity cannot be nil", nil)
	case reflect.Type:
		return v, nil
	default:
		t := reflect.TypeOf(service)
		if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
			return t.Elem(), nil
		}
		return t, nil
	}
}
