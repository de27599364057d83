package anvil

import (
	"context"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/xraph/anvil/errors"
)

// instanceCache is one cache tier: the shared singleton tier on the root
// provider, or the private scoped tier on each scope. Transient resolutions
// never touch it.
//
// The create-once guarantee comes from a per-identity singleflight slot: the
// map lock is never held across construction, concurrent callers for the same
// identity share one in-flight construction, and a waiter whose context is
// cancelled walks away while the construction keeps running for the others.
// A failed or cancelled construction leaves the slot empty for a future
// attempt.
type instanceCache struct {
	mu        sync.RWMutex
	instances map[reflect.Type]any
	flight    singleflight.Group
}

func newInstanceCache() *instanceCache {
	return &instanceCache{instances: make(map[reflect.Type]any)}
}

// get returns the cached instance for the identity, if any.
func (c *instanceCache) get(t reflect.Type) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.instances[t]
	return v, ok
}

// getOrCreate returns the cached instance or runs factory exactly once per
// identity, storing the result on success.
func (c *instanceCache) getOrCreate(ctx context.Context, t reflect.Type, factory func() (any, error)) (any, error) {
	if v, ok := c.get(t); ok {
		return v, nil
	}

	ch := c.flight.DoChan(cacheKey(t), func() (any, error) {
		// Re-check under the flight: a previous winner may have populated the
		// slot between the fast path and joining the flight.
		if v, ok := c.get(t); ok {
			return v, nil
		}

		v, err := factory()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.instances[t] = v
		c.mu.Unlock()
		return v, nil
	})

	select {
	case res := <-ch:
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, errors.ErrContextCancelled("awaiting construction of "+typeName(t), ctx.Err())
	}
}

// len returns the number of cached instances.
func (c *instanceCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.instances)
}

// cacheKey produces the singleflight key for an identity.
func cacheKey(t reflect.Type) string {
	return t.PkgPath() + "/" + t.String()
}

// typeName renders an identity for error messages and log fields.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
