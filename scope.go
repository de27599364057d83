package anvil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/xraph/anvil/errors"
	"github.com/xraph/anvil/logger"
)

// Scope is a bounded resolution context. It shares the registry and the
// singleton tier with the root provider it descends from, and privately owns
// a scoped-instance cache and a disposal list. Scopes nest; ending a scope
// tears down its un-ended children first, innermost out.
//
// A Scope is safe for concurrent use; racing resolutions of the same scoped
// identity within one scope still construct exactly once.
type Scope struct {
	id       string
	provider *Provider
	parent   *Scope
	cache    *instanceCache
	log      logger.Logger

	mu        sync.Mutex
	ended     bool
	children  []*Scope
	disposals disposalList
}

func newScope(provider *Provider, parent *Scope, log logger.Logger) *Scope {
	return &Scope{
		id:       uuid.NewString(),
		provider: provider,
		parent:   parent,
		cache:    newInstanceCache(),
		log:      log,
	}
}

// ID returns the scope's unique identifier, used in diagnostics and errors.
func (s *Scope) ID() string {
	return s.id
}

// Resolve returns the instance registered for the service identity.
func (s *Scope) Resolve(service any) (any, error) {
	return s.ResolveContext(context.Background(), service)
}

// ResolveContext resolves with a cancellation signal. Cancellation abandons
// the wait on an in-flight construction without aborting it; a singleton slot
// is only ever fully populated or left empty.
func (s *Scope) ResolveContext(ctx context.Context, service any) (any, error) {
	t, err := identityOf(service)
	if err != nil {
		return nil, err
	}
	return s.resolve(&resolution{ctx: ctx}, t)
}

// CreateScope opens a child scope. The child shares the registry and
// singleton tier and starts with an empty scoped cache and disposal list.
func (s *Scope) CreateScope() (*Scope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return nil, errors.ErrScopeEnded(s.id)
	}

	child := newScope(s.provider, s, s.log)
	s.children = append(s.children, child)

	s.provider.metrics.scopeOpened()
	s.log.Debug("scope created",
		logger.String("scope_id", child.id),
		logger.String("parent_id", s.id),
	)

	return child, nil
}

// End tears the scope down, disposing every tracked instance in reverse
// construction order. Further resolution against the scope fails with a
// scope-ended error, as does a second End.
func (s *Scope) End() error {
	return s.EndContext(context.Background())
}

// EndContext is End with a cancellation signal, preferred when any tracked
// instance supports context-aware disposal.
func (s *Scope) EndContext(ctx context.Context) error {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return errors.ErrScopeEnded(s.id)
	}
	s.ended = true
	children := s.children
	s.children = nil
	disposals := s.disposals
	s.disposals = disposalList{}
	s.mu.Unlock()

	var errs []error

	// Children first, innermost out. A child the caller already ended is not
	// an error here.
	for i := len(children) - 1; i >= 0; i-- {
		if err := children[i].EndContext(ctx); err != nil && !errors.IsScopeEnded(err) {
			errs = append(errs, err)
		}
	}

	if err := disposals.dispose(ctx, s.id); err != nil {
		errs = append(errs, err)
	}

	s.provider.metrics.scopeClosed()
	s.log.Debug("scope ended", logger.String("scope_id", s.id))

	if len(errs) == 0 {
		return nil
	}
	return errors.NewDisposalError(s.id, flattenDisposalErrors(errs))
}

// isEnded reports whether the scope has been torn down.
func (s *Scope) isEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// trackInstance records a freshly constructed instance with the scope's
// disposal list. An instance that lands here after the scope ended is
// disposed immediately rather than leaked.
func (s *Scope) trackInstance(v any) {
	s.mu.Lock()
	if !s.ended {
		s.disposals.track(v)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err := disposeOne(context.Background(), v); err != nil {
		s.log.Warn("disposing instance constructed after scope end",
			logger.String("scope_id", s.id),
			logger.Error(err),
		)
	}
}

// flattenDisposalErrors merges child aggregates into a single flat error
// list so the caller of EndContext sees one aggregate per teardown.
func flattenDisposalErrors(errs []error) []error {
	var flat []error
	for _, err := range errs {
		var disposal *errors.DisposalError
		if errors.As(err, &disposal) {
			flat = append(flat, disposal.Errors...)
			continue
		}
		flat = append(flat, err)
	}
	return flat
}
