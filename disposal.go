package anvil

import (
	"context"

	"github.com/xraph/anvil/errors"
)

// Disposable is implemented by services that own resources needing release
// when their scope ends.
type Disposable interface {
	Close() error
}

// DisposableWithContext is the context-aware disposal variant. When a scope
// is torn down through EndContext or CloseContext this form is preferred.
type DisposableWithContext interface {
	Close(ctx context.Context) error
}

// disposalList records resolved instances that require cleanup, in
// construction order. Teardown walks it in reverse: the last instance
// constructed is the first disposed, mirroring stack unwinding so that
// later-constructed objects holding references to earlier ones release first.
type disposalList struct {
	instances []any
}

// track records the instance if it exposes disposal capability. Returns true
// when the instance was recorded. The caller must hold the owning scope's
// lock; tracking order is construction order.
func (l *disposalList) track(instance any) bool {
	switch instance.(type) {
	case Disposable, DisposableWithContext:
		l.instances = append(l.instances, instance)
		return true
	default:
		return false
	}
}

// len returns the number of tracked instances.
func (l *disposalList) len() int {
	return len(l.instances)
}

// dispose releases every tracked instance in reverse tracking order. One
// instance failing never prevents the attempt on the remainder; failures are
// collected and surfaced as a single aggregate.
func (l *disposalList) dispose(ctx context.Context, scopeID string) error {
	instances := l.instances
	l.instances = nil

	var errs []error
	for i := len(instances) - 1; i >= 0; i-- {
		if err := disposeOne(ctx, instances[i]); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.NewDisposalError(scopeID, errs)
}

// disposeOne releases a single instance, preferring the context-aware path
// when the instance supports it.
func disposeOne(ctx context.Context, instance any) error {
	switch d := instance.(type) {
	case DisposableWithContext:
		return d.Close(ctx)
	case Disposable:
		return d.Close()
	default:
		return nil
	}
}
