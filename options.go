package anvil

import (
	"github.com/xraph/anvil/logger"
)

// CollectionOption configures a Collection during construction.
type CollectionOption func(*Collection)

// WithLogger sets the structured logger used by the collection, the provider
// it builds, and every scope. The default logger discards everything.
func WithLogger(l logger.Logger) CollectionOption {
	return func(c *Collection) {
		c.log = l
	}
}

// WithMetrics attaches prometheus-backed container metrics.
func WithMetrics(m *Metrics) CollectionOption {
	return func(c *Collection) {
		c.metrics = m
	}
}

// defaultedConstructor pairs a constructor with fallback argument values.
type defaultedConstructor struct {
	fn     any
	values []any
}

// WithDefaults wraps a constructor for registration with default argument
// values. Each value is matched to the first assignable parameter in
// declaration order; a matched parameter no longer disqualifies the
// constructor during selection when its type is unregistered, and the value
// is used as the argument whenever the type cannot be resolved.
func WithDefaults(constructor any, values ...any) any {
	return defaultedConstructor{fn: constructor, values: values}
}

// unwrapDefaults splits a registration argument into the constructor
// function and any default values attached by WithDefaults.
func unwrapDefaults(raw any) (any, []any) {
	if dc, ok := raw.(defaultedConstructor); ok {
		return dc.fn, dc.values
	}
	return raw, nil
}
