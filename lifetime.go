package anvil

// Lifetime controls how many instances of a service the resolver creates and
// which cache tier owns them.
type Lifetime int

const (
	// Singleton services are constructed once per root provider and shared by
	// every scope derived from it.
	Singleton Lifetime = iota

	// Scoped services are constructed once per scope. Sibling scopes receive
	// distinct instances.
	Scoped

	// Transient services are constructed on every resolution and never cached.
	Transient
)

// String returns the human-readable name of the lifetime.
func (l Lifetime) String() string {
	switch l {
	case Singleton:
		return "singleton"
	case Scoped:
		return "scoped"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}
