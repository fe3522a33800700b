package context

import (
	"sort"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
)

// DependencyCollector accumulates what an expression still needs before it
// becomes evaluable: the undefined symbols and unresolved spaces it
// mentions, and whether collecting them already hit a structural error
// (spec.md §4.3 "Dependency collector"), grounded on the C++
// `dependency_collector` struct and its `+=`/`-=`/`*=`/`/=` operators.
type DependencyCollector struct {
	HasError         bool
	UnresolvedOffset *Address // set when the expression IS an address, not merely dependent on one

	symbols set[ids.Index]
	spaces  set[SpaceID]
	attrs   set[AttrRef]
}

type set[T comparable] struct {
	items []T
	seen  map[T]struct{}
}

func (s *set[T]) add(v T) {
	if s.seen == nil {
		s.seen = make(map[T]struct{})
	}
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
}

func (s set[T]) contains(v T) bool {
	_, ok := s.seen[v]
	return ok
}

// AddUndefinedSymbol records that name's value is needed.
func (d *DependencyCollector) AddUndefinedSymbol(name ids.Index) { d.symbols.add(name) }

// AddUnresolvedSpace records that id's length is needed.
func (d *DependencyCollector) AddUnresolvedSpace(id SpaceID) { d.spaces.add(id) }

// AddUndefinedAttr records that one attribute of a symbol (e.g. `L'FOO`
// before FOO's length is known) is needed.
func (d *DependencyCollector) AddUndefinedAttr(ref AttrRef) { d.attrs.add(ref) }

// Merge folds other's dependencies into d (the `+=`/`-=` behavior: address
// arithmetic's dependency set is the union of its operands' sets,
// regardless of sign, since either side being unresolved holds the whole
// expression back).
func (d *DependencyCollector) Merge(other DependencyCollector) {
	d.HasError = d.HasError || other.HasError
	for _, s := range other.symbols.items {
		d.symbols.add(s)
	}
	for _, s := range other.spaces.items {
		d.spaces.add(s)
	}
	for _, a := range other.attrs.items {
		d.attrs.add(a)
	}
}

// MergeMulDiv folds other in for a `*` or `/` operand: per spec.md §4.4, a
// relocatable (address-valued) operand of `*`/`/` is always an error
// (ME002), so this both merges dependencies and raises HasError whenever
// other denotes an address rather than a plain dependent scalar.
func (d *DependencyCollector) MergeMulDiv(other DependencyCollector) {
	d.Merge(other)
	if other.IsAddress() {
		d.HasError = true
	}
}

// MarkAddress records that the expression being collected for is itself an
// address expression (as opposed to one that merely mentions a dependent
// symbol/space while ultimately producing a scalar).
func (d *DependencyCollector) MarkAddress(addr Address) { d.UnresolvedOffset = &addr }

// IsAddress reports whether MarkAddress was called.
func (d DependencyCollector) IsAddress() bool { return d.UnresolvedOffset != nil }

// ContainsDependencies reports whether anything still blocks evaluation.
func (d DependencyCollector) ContainsDependencies() bool {
	return len(d.symbols.items) > 0 || len(d.spaces.items) > 0 || len(d.attrs.items) > 0
}

// HasSymbol reports whether name is already recorded as undefined.
func (d DependencyCollector) HasSymbol(name ids.Index) bool { return d.symbols.contains(name) }

// UndefinedSymbols returns the undefined symbols mentioned, ordered by
// symbol name (spec.md requires a sorted set here so diagnostics
// are deterministic).
func (d DependencyCollector) UndefinedSymbols(store *ids.Store) []ids.Index {
	out := append([]ids.Index(nil), d.symbols.items...)
	sort.Slice(out, func(i, j int) bool { return store.Less(out[i], out[j]) })
	return out
}

// UnresolvedSpaces returns the unresolved spaces mentioned, in ascending
// SpaceID order.
func (d DependencyCollector) UnresolvedSpaces() []SpaceID {
	out := append([]SpaceID(nil), d.spaces.items...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CollectUniqueSymbolicDependencies returns every distinct Dependant this
// collector blocks on: one DependOnSymbol per undefined symbol, one
// DependOnSpace per unresolved space, and one DependOnSymbolAttr per
// unknown symbol attribute.
func (d DependencyCollector) CollectUniqueSymbolicDependencies() []Dependant {
	out := make([]Dependant, 0, len(d.symbols.items)+len(d.spaces.items)+len(d.attrs.items))
	for _, s := range d.symbols.items {
		out = append(out, OnSymbol(s))
	}
	for _, s := range d.spaces.items {
		out = append(out, OnSpace(s))
	}
	for _, a := range d.attrs.items {
		out = append(out, OnSymbolAttr(a))
	}
	return out
}
