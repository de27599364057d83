package anvil

import (
	"context"
	"fmt"
	"reflect"
)

// Resolve is a generic helper that resolves a typed service from a provider
// or scope. It is the recommended way to retrieve values:
//
//	repo, err := anvil.Resolve[Repository](scope)
func Resolve[T any](r Resolver) (T, error) {
	return ResolveContext[T](context.Background(), r)
}

// ResolveContext is the context-aware variant of Resolve.
func ResolveContext[T any](ctx context.Context, r Resolver) (T, error) {
	var zero T
	t := reflect.TypeOf((*T)(nil)).Elem()

	v, err := r.ResolveContext(ctx, t)
	if err != nil {
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("cannot convert %T to %s", v, t)
	}
	return out, nil
}

// MustResolve is Resolve that panics on failure. Intended for wiring done
// once at startup where a failure is unrecoverable anyway.
func MustResolve[T any](r Resolver) T {
	v, err := Resolve[T](r)
	if err != nil {
		panic(err)
	}
	return v
}
