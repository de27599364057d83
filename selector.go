package anvil

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/xraph/anvil/errors"
)

// selectConstructor picks the constructor to invoke for a descriptor:
// candidates are ordered by parameter count descending, ties broken by
// declaration order, and the first whose every parameter is either resolvable
// under canResolve or carries a default wins. A zero-parameter constructor is
// always viable, so it acts as the final fallback. Richest-first keeps the
// object graph as full as the current registrations allow, and the result is
// deterministic for a fixed predicate.
//
// The predicate answers "is this identity registered" only. A dependency that
// is registered but would fail to construct does not disqualify a candidate
// here; that failure surfaces when the chosen constructor is invoked.
func selectConstructor(d *descriptor, canResolve func(t reflect.Type) bool) (*constructorInfo, error) {
	candidates := make([]*constructorInfo, len(d.constructors))
	copy(candidates, d.constructors)
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].arity() != candidates[j].arity() {
			return candidates[i].arity() > candidates[j].arity()
		}
		return candidates[i].index < candidates[j].index
	})

	attempted := make([]string, 0, len(candidates))
	for _, ctor := range candidates {
		unresolved := unresolvedParams(ctor, canResolve)
		if len(unresolved) == 0 {
			return ctor, nil
		}
		attempted = append(attempted, fmt.Sprintf("%s unresolved [%s]",
			ctor, strings.Join(unresolved, ", ")))
	}

	return nil, errors.ErrNoViableConstructor(typeName(d.impl), attempted)
}

// unresolvedParams returns the names of parameters that are neither
// resolvable nor defaulted.
func unresolvedParams(ctor *constructorInfo, canResolve func(t reflect.Type) bool) []string {
	var unresolved []string
	for _, p := range ctor.params {
		if p.hasDefault || canResolve(p.typ) {
			continue
		}
		unresolved = append(unresolved, typeName(p.typ))
	}
	return unresolved
}
