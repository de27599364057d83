package anvil

import (
	"reflect"
	"sync"

	"github.com/xraph/anvil/errors"
	"github.com/xraph/anvil/logger"
)

// Collection is the registration seam: declarative builders and manual code
// add descriptors here, then Build freezes the set and produces the root
// Provider. A frozen collection rejects further registration.
type Collection struct {
	mu       sync.Mutex
	registry *registry
	log      logger.Logger
	metrics  *Metrics
	built    bool
}

// NewCollection creates an empty Collection ready for registration.
func NewCollection(opts ...CollectionOption) *Collection {
	c := &Collection{
		registry: newRegistry(),
		log:      logger.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Add registers an implementation for a service identity. The identity may
// be a nil interface pointer such as (*Logger)(nil), a reflect.Type, or nil
// to infer it from the first constructor's product type. Every constructor
// must produce the same concrete type, assignable to the identity; a
// constructor may be wrapped with WithDefaults to mark parameters as
// defaulted. Registering the same identity again makes the newest entry
// primary unless an earlier TryAdd pinned one.
func (c *Collection) Add(service any, lifetime Lifetime, constructors ...any) error {
	return c.add(service, lifetime, constructors, false)
}

// TryAdd registers like Add but only when the identity has no descriptor
// yet, and pins the entry so later Adds never displace it as primary.
func (c *Collection) TryAdd(service any, lifetime Lifetime, constructors ...any) error {
	return c.add(service, lifetime, constructors, true)
}

// AddSingleton registers with the Singleton lifetime.
func (c *Collection) AddSingleton(service any, constructors ...any) error {
	return c.Add(service, Singleton, constructors...)
}

// AddScoped registers with the Scoped lifetime.
func (c *Collection) AddScoped(service any, constructors ...any) error {
	return c.Add(service, Scoped, constructors...)
}

// AddTransient registers with the Transient lifetime.
func (c *Collection) AddTransient(service any, constructors ...any) error {
	return c.Add(service, Transient, constructors...)
}

// AddInstance registers a pre-built singleton. The instance is returned
// as-is on every resolution and is never tracked for disposal: the caller
// built it, the caller owns its teardown.
func (c *Collection) AddInstance(service any, instance any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.built {
		return errors.ErrAlreadyBuilt("register")
	}
	if instance == nil {
		return errors.ErrInvalidConstructor("instance cannot be nil")
	}

	impl := reflect.TypeOf(instance)
	identity := impl
	if service != nil {
		t, err := identityOf(service)
		if err != nil {
			return err
		}
		identity = t
	}
	if !impl.AssignableTo(identity) {
		return errors.ErrTypeMismatch(typeName(impl), typeName(identity))
	}

	c.registry.add(&descriptor{
		service:     identity,
		impl:        impl,
		lifetime:    Singleton,
		instance:    instance,
		hasInstance: true,
	})

	c.metrics.serviceRegistered()
	c.log.Debug("instance registered",
		logger.String("service", typeName(identity)),
		logger.String("impl", typeName(impl)),
	)
	return nil
}

func (c *Collection) add(service any, lifetime Lifetime, constructors []any, tryAdd bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.built {
		return errors.ErrAlreadyBuilt("register")
	}
	if len(constructors) == 0 {
		return errors.ErrInvalidConstructor("at least one constructor is required")
	}

	infos := make([]*constructorInfo, 0, len(constructors))
	var impl reflect.Type
	for i, raw := range constructors {
		fn, defaults := unwrapDefaults(raw)
		info, product, err := describeConstructor(fn, defaults, i)
		if err != nil {
			return err
		}
		if impl == nil {
			impl = product
		} else if product != impl {
			return errors.ErrInvalidConstructor(
				"constructors produce different types: " + typeName(impl) + " and " + typeName(product))
		}
		infos = append(infos, info)
	}

	identity := impl
	if service != nil {
		t, err := identityOf(service)
		if err != nil {
			return err
		}
		identity = t
	}
	if !impl.AssignableTo(identity) {
		return errors.ErrTypeMismatch(typeName(impl), typeName(identity))
	}

	if tryAdd && c.registry.has(identity) {
		c.log.Debug("service already registered, try-add skipped",
			logger.String("service", typeName(identity)))
		return nil
	}

	c.registry.add(&descriptor{
		service:      identity,
		impl:         impl,
		lifetime:     lifetime,
		constructors: infos,
		pinned:       tryAdd,
	})

	c.metrics.serviceRegistered()
	c.log.Debug("service registered",
		logger.String("service", typeName(identity)),
		logger.String("impl", typeName(impl)),
		logger.String("lifetime", lifetime.String()),
		logger.Int("constructors", len(infos)),
	)
	return nil
}

// Build freezes the collection and produces the root Provider. The registry
// is read-only from here on and shared by every scope the provider opens.
func (c *Collection) Build() (*Provider, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.built {
		return nil, errors.ErrAlreadyBuilt("build")
	}
	c.built = true

	provider := newProvider(c.registry, c.log, c.metrics)
	c.log.Info("provider built",
		logger.Int("services", len(c.registry.order)),
		logger.String("scope_id", provider.root.id),
	)
	return provider, nil
}
