package anvil

import (
	"context"

	"github.com/xraph/anvil/errors"
	"github.com/xraph/anvil/logger"
)

// Provider is the root service provider produced by Collection.Build. It
// owns the frozen registry and the shared singleton tier, and wraps the root
// scope: resolving against the Provider is resolving against that scope.
//
// Close tears down the root scope, which disposes every un-ended descendant
// scope first and the root-owned singletons last.
type Provider struct {
	registry   *registry
	singletons *instanceCache
	root       *Scope
	log        logger.Logger
	metrics    *Metrics
}

func newProvider(reg *registry, log logger.Logger, metrics *Metrics) *Provider {
	p := &Provider{
		registry:   reg,
		singletons: newInstanceCache(),
		log:        log,
		metrics:    metrics,
	}
	p.root = newScope(p, nil, log)
	metrics.scopeOpened()
	return p
}

// Resolve returns the instance registered for the service identity,
// resolving against the root scope.
func (p *Provider) Resolve(service any) (any, error) {
	return p.root.Resolve(service)
}

// ResolveContext is Resolve with a cancellation signal.
func (p *Provider) ResolveContext(ctx context.Context, service any) (any, error) {
	return p.root.ResolveContext(ctx, service)
}

// CreateScope opens a scope under the root.
func (p *Provider) CreateScope() (*Scope, error) {
	return p.root.CreateScope()
}

// Close tears down the provider: descendant scopes innermost-first, then the
// root's tracked instances, singletons included, in reverse construction
// order. Further resolution fails with a scope-ended error.
func (p *Provider) Close() error {
	return p.CloseContext(context.Background())
}

// CloseContext is Close with a cancellation signal, preferred when any
// tracked instance supports context-aware disposal.
func (p *Provider) CloseContext(ctx context.Context) error {
	err := p.root.EndContext(ctx)
	switch {
	case err == nil:
		p.log.Info("provider closed", logger.String("scope_id", p.root.id))
	case errors.IsScopeEnded(err):
		// Double close; nothing was disposed twice.
	default:
		p.log.Error("provider close finished with disposal failures", logger.Error(err))
	}
	return err
}
