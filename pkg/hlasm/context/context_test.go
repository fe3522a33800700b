package context

import (
	"testing"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
	"github.com/stretchr/testify/require"
)

func TestSpaceArenaResolveLength(t *testing.T) {
	arena := NewSpaceArena()
	sp := arena.New(SpaceOrdinary, Alignment{})

	require.False(t, arena.Resolved(sp))
	_, ok := arena.Offset(sp)
	require.False(t, ok)

	arena.ResolveLength(sp, 42)
	require.True(t, arena.Resolved(sp))
	off, ok := arena.Offset(sp)
	require.True(t, ok)
	require.Equal(t, 42, off)

	// Resolving twice is a no-op, not a second write.
	arena.ResolveLength(sp, 99)
	off, _ = arena.Offset(sp)
	require.Equal(t, 42, off)
}

func TestSpaceArenaChainedResolution(t *testing.T) {
	arena := NewSpaceArena()
	leaf := arena.New(SpaceOrdinary, Alignment{})
	parent := arena.New(SpaceOrdinary, Alignment{})

	arena.ResolveToAddress(parent, 10, []SpaceMult{{Space: leaf, Mult: 2}})
	_, ok := arena.Offset(parent)
	require.False(t, ok, "parent depends on an unresolved leaf")

	arena.ResolveLength(leaf, 5)
	off, ok := arena.Offset(parent)
	require.True(t, ok)
	require.Equal(t, 10+5*2, off)
}

func TestAlignmentAlign(t *testing.T) {
	a := Alignment{Boundary: 4}
	require.Equal(t, 0, a.Align(0))
	require.Equal(t, 4, a.Align(1))
	require.Equal(t, 4, a.Align(4))
	require.Equal(t, 8, a.Align(5))

	none := Alignment{}
	require.Equal(t, 7, none.Align(7))
}

func TestAddressNormalizeFoldsResolvedSpaces(t *testing.T) {
	arena := NewSpaceArena()
	sp := arena.New(SpaceOrdinary, Alignment{})
	arena.ResolveLength(sp, 16)

	addr := Address{Offset: 4, Spaces: []SpaceMult{{Space: sp, Mult: 1}}}
	norm := addr.Normalize(arena)
	require.Equal(t, 20, norm.Offset)
	require.Empty(t, norm.Spaces)
}

func TestAddressArithmeticAndInSameLoctr(t *testing.T) {
	arena := NewSpaceArena()
	sec := newSection(ids.Index{}, SectionExecutable)
	base := Base{Section: sec}

	a := NewAddress(base, 10)
	b := NewAddress(base, 4)

	sum := Add(a, b)
	require.Equal(t, 14, sum.Offset)
	require.True(t, a.InSameLoctr(b))

	diff := Sub(a, b)
	require.Equal(t, 6, diff.Offset)
	require.True(t, diff.IsSimple())

	other := NewAbsoluteAddress(0)
	require.False(t, a.InSameLoctr(other))
	_ = arena
}

func TestAddressIgnoreQualificationMergesSameSectionDifferentQualifier(t *testing.T) {
	store := ids.New()
	sec := newSection(ids.Index{}, SectionExecutable)
	q1 := store.Intern("Q1")
	q2 := store.Intern("Q2")

	a := Address{Bases: []BaseMult{{Base: Base{Section: sec, Qualifier: q1}, Mult: 1}}, Offset: 14}
	b := Address{Bases: []BaseMult{{Base: Base{Section: sec, Qualifier: q2}, Mult: 1}}, Offset: 4}

	diff := Sub(a, b)
	require.False(t, diff.IsAbsolute(NewSpaceArena()), "differently-qualified bases of the same section do not cancel without ignore-qualification")

	ignored := diff.IgnoreQualification()
	require.True(t, ignored.IsAbsolute(NewSpaceArena()))
	require.Equal(t, 10, ignored.Offset)
}

func TestLocationCounterOrgRewind(t *testing.T) {
	arena := NewSpaceArena()
	sec := newSection(ids.Index{}, SectionExecutable)
	lc := newLocationCounter(arena, ids.Index{}, sec, LoctrStarting)

	start := lc.ReserveStorageArea(8, Alignment{})
	require.Equal(t, 0, start.Normalize(arena).Offset)

	mid := lc.ReserveStorageArea(8, Alignment{})
	require.Equal(t, 8, mid.Normalize(arena).Offset)

	// ORG back to start: rewinding within the same run.
	lc.SetValue(start)
	require.Equal(t, 0, lc.CurrentAddress().Normalize(arena).Offset)

	lc.ReserveStorageArea(4, Alignment{})
	lc.FinishLayout()

	off, ok := arena.Offset(lc.MaxSpace())
	require.True(t, ok)
	require.Equal(t, 16, off, "LOCTR_MAX must remember the furthest point any branch reached")
}

func TestLocationCounterAlignment(t *testing.T) {
	arena := NewSpaceArena()
	sec := newSection(ids.Index{}, SectionExecutable)
	lc := newLocationCounter(arena, ids.Index{}, sec, LoctrStarting)

	lc.ReserveStorageArea(3, Alignment{})
	start := lc.ReserveStorageArea(4, Alignment{Boundary: 4})
	require.Equal(t, 4, start.Normalize(arena).Offset)
}

func TestCheckUnderflowClampsNegativeOffset(t *testing.T) {
	addr := Address{Offset: -5}
	require.Equal(t, 0, checkUnderflow(addr).Offset)

	addr2 := Address{Offset: 5}
	require.Equal(t, 5, checkUnderflow(addr2).Offset)
}

func TestSymbolAttributesUndefinedDefaults(t *testing.T) {
	store := ids.New()
	name := store.Intern("FOO")
	sym := NewSymbol(name, OriginUnknown)

	require.True(t, sym.Value().Undefined())
	require.Equal(t, UndefType, sym.Attributes.Type())
	require.Equal(t, UndefLen, sym.Attributes.Length())
	require.Equal(t, UndefScale, sym.Attributes.Scale())

	sym.Attributes.SetLength(4)
	require.Equal(t, 4, sym.Attributes.Length())

	// Set-once: a second SetLength must not overwrite the first.
	sym.Attributes.SetLength(8)
	require.Equal(t, 4, sym.Attributes.Length())
}

func TestSymbolValueArithmetic(t *testing.T) {
	arena := NewSpaceArena()
	sec := newSection(ids.Index{}, SectionExecutable)
	base := Base{Section: sec}

	abs := AbsValue(5)
	reloc := RelocValue(NewAddress(base, 10))

	sum := AddValue(abs, reloc, arena)
	require.Equal(t, ValueReloc, sum.Kind())
	require.Equal(t, 15, sum.Address().Offset)

	require.True(t, AddValue(UndefValue, abs, arena).Undefined())

	diff := SubValue(reloc, abs, arena)
	require.Equal(t, 5, diff.Address().Offset)
}

func TestDependencyCollectorSortedSets(t *testing.T) {
	store := ids.New()
	b := store.Intern("BBB")
	a := store.Intern("AAA")

	var d DependencyCollector
	d.AddUndefinedSymbol(b)
	d.AddUndefinedSymbol(a)
	d.AddUndefinedSymbol(b) // duplicate, must not appear twice

	sorted := d.UndefinedSymbols(store)
	require.Len(t, sorted, 2)
	require.Equal(t, a, sorted[0])
	require.Equal(t, b, sorted[1])
	require.True(t, d.ContainsDependencies())
}

func TestDependencyTablesResolveUnblocksWaiters(t *testing.T) {
	store := ids.New()
	arena := NewSpaceArena()
	tables := NewDependencyTables(store, arena)

	foo := store.Intern("FOO")
	const stmt StatementID = 1

	tables.AddDependency(stmt, OnSymbol(foo))
	unblocked := tables.ResolveSymbol(foo)
	require.Equal(t, []StatementID{stmt}, unblocked)

	// Resolving again must not re-yield the same statement.
	require.Empty(t, tables.ResolveSymbol(foo))
}

func TestDependencyTablesDetectsCycle(t *testing.T) {
	store := ids.New()
	arena := NewSpaceArena()
	tables := NewDependencyTables(store, arena)

	foo := store.Intern("FOO")
	bar := store.Intern("BAR")
	const stmtA StatementID = 1
	const stmtB StatementID = 2

	// stmtA is waiting on BAR, and stmtB (which will define BAR) is waiting
	// on FOO, which stmtA itself is set up to define: a cycle.
	tables.AddDependency(stmtA, OnSymbol(bar))
	tables.AddDefined(OnSymbol(foo), stmtA)
	tables.AddDependency(stmtB, OnSymbol(foo))
	tables.AddDefined(OnSymbol(bar), stmtB)

	require.True(t, tables.CheckCycle(stmtA))
}
