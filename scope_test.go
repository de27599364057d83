package anvil

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/anvil/errors"
)

// Test services for scope behavior: a shared application logger and a
// per-request session store, mirroring a typical web request pipeline.
type appLogger struct {
	id int64
}

type sessionStore struct {
	log *appLogger
	id  int64
}

func newScopeFixture(t *testing.T) *Provider {
	t.Helper()

	var nextLogger atomic.Int64
	var nextSession atomic.Int64

	c := NewCollection()
	require.NoError(t, c.AddSingleton(nil, func() *appLogger {
		return &appLogger{id: nextLogger.Add(1)}
	}))
	require.NoError(t, c.AddScoped(nil, func(log *appLogger) *sessionStore {
		return &sessionStore{log: log, id: nextSession.Add(1)}
	}))

	provider, err := c.Build()
	require.NoError(t, err)
	return provider
}

func TestScope_ScopedIsolation(t *testing.T) {
	provider := newScopeFixture(t)
	defer provider.Close()

	scopeA, err := provider.CreateScope()
	require.NoError(t, err)
	defer scopeA.End()
	scopeB, err := provider.CreateScope()
	require.NoError(t, err)
	defer scopeB.End()

	fromA, err := Resolve[*sessionStore](scopeA)
	require.NoError(t, err)
	fromAAgain, err := Resolve[*sessionStore](scopeA)
	require.NoError(t, err)
	fromB, err := Resolve[*sessionStore](scopeB)
	require.NoError(t, err)

	assert.Same(t, fromA, fromAAgain, "one instance per scope")
	assert.NotSame(t, fromA, fromB, "sibling scopes must not share scoped instances")

	// The singleton dependency is one and the same everywhere.
	assert.Same(t, fromA.log, fromB.log)
	rootLogger, err := Resolve[*appLogger](provider)
	require.NoError(t, err)
	assert.Same(t, rootLogger, fromA.log)
}

func TestScope_ScopedAtRoot(t *testing.T) {
	// The root provider behaves as a scope of its own; a scoped service
	// resolved against it is cached there, separate from child scopes.
	provider := newScopeFixture(t)
	defer provider.Close()

	atRoot, err := Resolve[*sessionStore](provider)
	require.NoError(t, err)
	atRootAgain, err := Resolve[*sessionStore](provider)
	require.NoError(t, err)
	assert.Same(t, atRoot, atRootAgain)

	scope, err := provider.CreateScope()
	require.NoError(t, err)
	defer scope.End()

	inScope, err := Resolve[*sessionStore](scope)
	require.NoError(t, err)
	assert.NotSame(t, atRoot, inScope)
}

func TestScope_ConcurrentScopedResolve(t *testing.T) {
	var constructed atomic.Int64

	c := NewCollection()
	require.NoError(t, c.AddScoped(nil, func() *sessionStore {
		return &sessionStore{id: constructed.Add(1)}
	}))

	provider, err := c.Build()
	require.NoError(t, err)
	defer provider.Close()

	scope, err := provider.CreateScope()
	require.NoError(t, err)
	defer scope.End()

	const workers = 32
	results := make([]*sessionStore, workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			v, err := Resolve[*sessionStore](scope)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), constructed.Load())
	for i := 1; i < workers; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestScope_End(t *testing.T) {
	t.Run("resolution after end fails", func(t *testing.T) {
		provider := newScopeFixture(t)
		defer provider.Close()

		scope, err := provider.CreateScope()
		require.NoError(t, err)
		require.NoError(t, scope.End())

		_, err = Resolve[*sessionStore](scope)
		require.Error(t, err)
		assert.True(t, errors.IsScopeEnded(err))
		assert.Contains(t, err.Error(), scope.ID())
	})

	t.Run("double end fails", func(t *testing.T) {
		provider := newScopeFixture(t)
		defer provider.Close()

		scope, err := provider.CreateScope()
		require.NoError(t, err)
		require.NoError(t, scope.End())

		err = scope.End()
		require.Error(t, err)
		assert.True(t, errors.IsScopeEnded(err))
	})

	t.Run("child scope creation after end fails", func(t *testing.T) {
		provider := newScopeFixture(t)
		defer provider.Close()

		scope, err := provider.CreateScope()
		require.NoError(t, err)
		require.NoError(t, scope.End())

		_, err = scope.CreateScope()
		require.Error(t, err)
		assert.True(t, errors.IsScopeEnded(err))
	})
}

func TestScope_NestedEnd(t *testing.T) {
	provider := newScopeFixture(t)
	defer provider.Close()

	parent, err := provider.CreateScope()
	require.NoError(t, err)
	child, err := parent.CreateScope()
	require.NoError(t, err)
	grandchild, err := child.CreateScope()
	require.NoError(t, err)

	// Ending the parent sweeps the whole subtree.
	require.NoError(t, parent.End())
	assert.True(t, child.isEnded())
	assert.True(t, grandchild.isEnded())

	t.Run("already ended child is tolerated", func(t *testing.T) {
		parent, err := provider.CreateScope()
		require.NoError(t, err)
		child, err := parent.CreateScope()
		require.NoError(t, err)

		require.NoError(t, child.End())
		require.NoError(t, parent.End())
	})
}

func TestScope_SingletonDependsOnScoped_UsesRoot(t *testing.T) {
	// A singleton's dependencies resolve against the root scope so the
	// shared instance never captures scoped state.
	type tenantConfig struct{ id int64 }
	type configWatcher struct{ cfg *tenantConfig }

	var next atomic.Int64

	c := NewCollection()
	require.NoError(t, c.AddScoped(nil, func() *tenantConfig {
		return &tenantConfig{id: next.Add(1)}
	}))
	require.NoError(t, c.AddSingleton(nil, func(cfg *tenantConfig) *configWatcher {
		return &configWatcher{cfg: cfg}
	}))

	provider, err := c.Build()
	require.NoError(t, err)
	defer provider.Close()

	scope, err := provider.CreateScope()
	require.NoError(t, err)
	defer scope.End()

	watcher, err := Resolve[*configWatcher](scope)
	require.NoError(t, err)
	scopedCfg, err := Resolve[*tenantConfig](scope)
	require.NoError(t, err)
	rootCfg, err := Resolve[*tenantConfig](provider)
	require.NoError(t, err)

	assert.Same(t, rootCfg, watcher.cfg, "singleton dependency must come from the root scope")
	assert.NotSame(t, scopedCfg, watcher.cfg)
}
