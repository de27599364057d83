// Package anvil is a scoped service-resolution engine: it turns a declarative
// set of service registrations into live object graphs, enforcing lifetime
// rules, selecting constructors under partial resolvability, detecting
// dependency cycles, and tracking disposal across nested scopes.
//
// # Quick Start
//
//	col := anvil.NewCollection()
//	col.AddSingleton((*Logger)(nil), NewConsoleLogger)
//	col.AddScoped((*Repository)(nil), NewSQLRepository)
//
//	provider, err := col.Build()
//	defer provider.Close()
//
//	scope, _ := provider.CreateScope()
//	defer scope.End()
//
//	repo, err := anvil.Resolve[Repository](scope)
//
// # Lifetimes
//
// [Singleton]: one instance per root provider, shared by every scope and
// constructed exactly once even under concurrent resolution.
//
// [Scoped]: one instance per scope; sibling scopes get distinct instances.
//
// [Transient]: a fresh instance on every resolution, never cached.
//
// # Constructor selection
//
// An identity may be registered with several constructors. Resolution picks
// the one with the most parameters whose types are all registered (or
// defaulted via [WithDefaults]), falling back toward a zero-parameter
// constructor. Selection is deterministic for a fixed registration set.
//
// # Disposal
//
// Instances implementing [Disposable] or [DisposableWithContext] are tracked
// by the scope that owns their lifetime and released in reverse construction
// order when that scope ends. Disposal failures are collected into a single
// aggregate; one failing instance never blocks the rest.
package anvil
