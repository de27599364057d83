package anvil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/anvil/errors"
)

// Test services for constructor selection.
// Non-zero size so pointer identity assertions can distinguish instances:
// distinct zero-size allocations may share an address in Go.
type dataSource struct{ _ byte }

func newDataSource() *dataSource { return &dataSource{} }

type formatter struct{}

func newFormatter() *formatter { return &formatter{} }

type reportBuilder struct {
	via   string
	ds    *dataSource
	fmt   *formatter
	limit int
}

func TestSelectConstructor_RichestWins(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.AddSingleton(nil, newDataSource))
	require.NoError(t, c.AddSingleton(nil, newFormatter))
	require.NoError(t, c.AddTransient(nil,
		func() *reportBuilder { return &reportBuilder{via: "arity0"} },
		func(ds *dataSource) *reportBuilder { return &reportBuilder{via: "arity1", ds: ds} },
		func(ds *dataSource, f *formatter) *reportBuilder {
			return &reportBuilder{via: "arity2", ds: ds, fmt: f}
		},
	))

	provider, err := c.Build()
	require.NoError(t, err)
	defer provider.Close()

	rb, err := Resolve[*reportBuilder](provider)
	require.NoError(t, err)
	assert.Equal(t, "arity2", rb.via)
	assert.NotNil(t, rb.ds)
	assert.NotNil(t, rb.fmt)
}

func TestSelectConstructor_FallsBackWhenDependencyMissing(t *testing.T) {
	// formatter is not registered, so the two-parameter constructor is not
	// viable and the next richest takes over.
	c := NewCollection()
	require.NoError(t, c.AddSingleton(nil, newDataSource))
	require.NoError(t, c.AddTransient(nil,
		func(ds *dataSource, f *formatter) *reportBuilder {
			return &reportBuilder{via: "arity2"}
		},
		func(ds *dataSource) *reportBuilder { return &reportBuilder{via: "arity1", ds: ds} },
		func() *reportBuilder { return &reportBuilder{via: "arity0"} },
	))

	provider, err := c.Build()
	require.NoError(t, err)
	defer provider.Close()

	rb, err := Resolve[*reportBuilder](provider)
	require.NoError(t, err)
	assert.Equal(t, "arity1", rb.via)
}

func TestSelectConstructor_DeclarationOrderBreaksTies(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.AddSingleton(nil, newDataSource))
	require.NoError(t, c.AddTransient(nil,
		func(ds *dataSource) *reportBuilder { return &reportBuilder{via: "first"} },
		func(ds *dataSource) *reportBuilder { return &reportBuilder{via: "second"} },
	))

	provider, err := c.Build()
	require.NoError(t, err)
	defer provider.Close()

	// Deterministic across repeated resolutions.
	for i := 0; i < 10; i++ {
		rb, err := Resolve[*reportBuilder](provider)
		require.NoError(t, err)
		assert.Equal(t, "first", rb.via)
	}
}

func TestSelectConstructor_Defaults(t *testing.T) {
	t.Run("defaulted parameter keeps constructor viable", func(t *testing.T) {
		c := NewCollection()
		require.NoError(t, c.AddSingleton(nil, newDataSource))
		require.NoError(t, c.AddTransient(nil,
			func() *reportBuilder { return &reportBuilder{via: "arity0"} },
			WithDefaults(func(ds *dataSource, limit int) *reportBuilder {
				return &reportBuilder{via: "defaulted", ds: ds, limit: limit}
			}, 50),
		))

		provider, err := c.Build()
		require.NoError(t, err)
		defer provider.Close()

		rb, err := Resolve[*reportBuilder](provider)
		require.NoError(t, err)
		assert.Equal(t, "defaulted", rb.via)
		assert.Equal(t, 50, rb.limit)
	})

	t.Run("registered dependency beats default", func(t *testing.T) {
		c := NewCollection()
		require.NoError(t, c.AddSingleton(nil, newDataSource))
		fallback := &dataSource{}
		require.NoError(t, c.AddTransient(nil,
			WithDefaults(func(ds *dataSource) *reportBuilder {
				return &reportBuilder{ds: ds}
			}, fallback),
		))

		provider, err := c.Build()
		require.NoError(t, err)
		defer provider.Close()

		rb, err := Resolve[*reportBuilder](provider)
		require.NoError(t, err)
		assert.NotSame(t, fallback, rb.ds, "registry should win over the default value")
	})
}

func TestSelectConstructor_InjectedParameters(t *testing.T) {
	// context.Context and Resolver are provided by the engine and never need
	// a registration.
	c := NewCollection()
	require.NoError(t, c.AddTransient(nil,
		func(ctx context.Context, r Resolver) *reportBuilder {
			if ctx == nil || r == nil {
				return &reportBuilder{via: "missing"}
			}
			return &reportBuilder{via: "injected"}
		},
	))

	provider, err := c.Build()
	require.NoError(t, err)
	defer provider.Close()

	rb, err := Resolve[*reportBuilder](provider)
	require.NoError(t, err)
	assert.Equal(t, "injected", rb.via)
}

func TestSelectConstructor_VariadicTail(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.AddTransient(nil,
		func(extras ...string) *reportBuilder {
			return &reportBuilder{via: "variadic", limit: len(extras)}
		},
	))

	provider, err := c.Build()
	require.NoError(t, err)
	defer provider.Close()

	rb, err := Resolve[*reportBuilder](provider)
	require.NoError(t, err)
	assert.Equal(t, "variadic", rb.via)
	assert.Zero(t, rb.limit)
}

func TestSelectConstructor_NoViable(t *testing.T) {
	c := NewCollection()
	require.NoError(t, c.AddTransient(nil,
		func(ds *dataSource) *reportBuilder { return nil },
		func(f *formatter) *reportBuilder { return nil },
	))

	provider, err := c.Build()
	require.NoError(t, err)
	defer provider.Close()

	_, err = Resolve[*reportBuilder](provider)
	require.Error(t, err)
	assert.True(t, errors.IsNoViableConstructor(err))
	assert.Contains(t, err.Error(), "dataSource")
	assert.Contains(t, err.Error(), "formatter")
}
