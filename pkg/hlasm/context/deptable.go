package context

import "github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"

// StatementID identifies a statement within one open translation unit well
// enough for the dependency tables to remember "this statement is waiting
// on that Dependant" and "this statement is what will eventually define
// that Dependant" (spec.md §4.3 "Dependency tables", §5 "postponed
// statements"). The pipeline package owns the actual statement values;
// this package only ever sees the opaque ID.
type StatementID int

// DependencyTables tracks, for every Dependant a statement couldn't
// resolve on first evaluation, which statement is blocked on it and which
// statement is on the hook to define it — recording which statements a new
// definition unblocks (spec.md §5's re-evaluation model) and letting the
// pipeline detect definition cycles before looping forever, grounded on
// the C++ `symbol_dependency_tables` class.
type DependencyTables struct {
	store *ids.Store
	arena *SpaceArena

	waiters      map[Dependant][]StatementID
	stmtDeps     map[StatementID][]Dependant
	definingStmt map[Dependant]StatementID
	postponed    []StatementID
}

// NewDependencyTables returns an empty table bound to store (for ordering
// diagnostics) and arena (for resolving space dependants).
func NewDependencyTables(store *ids.Store, arena *SpaceArena) *DependencyTables {
	return &DependencyTables{
		store:        store,
		arena:        arena,
		waiters:      make(map[Dependant][]StatementID),
		stmtDeps:     make(map[StatementID][]Dependant),
		definingStmt: make(map[Dependant]StatementID),
	}
}

// AddDependency records that stmt cannot complete until dep is resolved.
func (t *DependencyTables) AddDependency(stmt StatementID, dep Dependant) {
	t.waiters[dep] = append(t.waiters[dep], stmt)
	t.stmtDeps[stmt] = append(t.stmtDeps[stmt], dep)
}

// AddDependencies is AddDependency for every Dependant a DependencyCollector
// gathered while trying (and failing) to evaluate an expression.
func (t *DependencyTables) AddDependencies(stmt StatementID, deps DependencyCollector) {
	for _, d := range deps.CollectUniqueSymbolicDependencies() {
		t.AddDependency(stmt, d)
	}
}

// AddDefined records that stmt is the statement which will (eventually)
// define dep — e.g. the EQU statement that will give a symbol its value,
// or the DC/DS statement that will resolve a space's length. CheckCycle
// follows only the definers recorded here, so a cycle through dep is
// visible to it once AddDefined has been called for dep.
func (t *DependencyTables) AddDefined(dep Dependant, stmt StatementID) {
	t.definingStmt[dep] = stmt
}

// CheckCycle reports whether stmt's own pending dependencies loop back to
// a statement that is itself waiting (transitively) on stmt to complete —
// the "a symbol depends on a location counter that depends on the symbol"
// case spec.md §4.3 calls out, grounded on `check_loctr_cycle`.
func (t *DependencyTables) CheckCycle(stmt StatementID) bool {
	visited := make(map[StatementID]bool)
	var visit func(StatementID) bool
	visit = func(s StatementID) bool {
		if s == stmt {
			return true
		}
		if visited[s] {
			return false
		}
		visited[s] = true
		for _, d := range t.stmtDeps[s] {
			if ds, ok := t.definingStmt[d]; ok && visit(ds) {
				return true
			}
		}
		return false
	}
	for _, d := range t.stmtDeps[stmt] {
		if ds, ok := t.definingStmt[d]; ok && visit(ds) {
			return true
		}
	}
	return false
}

// Resolve reports the statements that were waiting on dep and forgets
// about that wait, along with dep's recorded definer.
func (t *DependencyTables) Resolve(dep Dependant) []StatementID {
	stmts := t.waiters[dep]
	delete(t.waiters, dep)
	delete(t.definingStmt, dep)
	return stmts
}

// ResolveSymbol is Resolve(OnSymbol(name)).
func (t *DependencyTables) ResolveSymbol(name ids.Index) []StatementID {
	return t.Resolve(OnSymbol(name))
}

// ResolveSpace is Resolve(OnSpace(id)).
func (t *DependencyTables) ResolveSpace(id SpaceID) []StatementID {
	return t.Resolve(OnSpace(id))
}

// ResolveSymbolAttr is Resolve(OnSymbolAttr(ref)).
func (t *DependencyTables) ResolveSymbolAttr(ref AttrRef) []StatementID {
	return t.Resolve(OnSymbolAttr(ref))
}

// ForgetStatement drops stmt's own bookkeeping once it completes
// successfully, so a later, unrelated cycle check never walks through a
// finished statement's stale dependency list.
func (t *DependencyTables) ForgetStatement(stmt StatementID) {
	delete(t.stmtDeps, stmt)
}

// Postpone records stmt as unable to complete this round; the pipeline
// should retry it once any of its outstanding dependencies resolve, and
// report it (via CollectPostponed) as permanently unresolved if end of
// program is reached while it is still pending.
func (t *DependencyTables) Postpone(stmt StatementID) {
	t.postponed = append(t.postponed, stmt)
}

// CollectPostponed drains and returns every statement Postpone has
// recorded since the last call.
func (t *DependencyTables) CollectPostponed() []StatementID {
	out := t.postponed
	t.postponed = nil
	return out
}
