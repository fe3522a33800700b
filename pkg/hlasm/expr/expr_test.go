package expr

import (
	"testing"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
	"github.com/stretchr/testify/require"
)

// fakeSolver is a minimal Solver good enough to drive expression tests
// without the full statement pipeline.
type fakeSolver struct {
	store   *ids.Store
	symbols *context.SymbolTable
	loctr   context.Address
	mention []ids.Index
}

func newFakeSolver() *fakeSolver {
	return &fakeSolver{store: ids.New(), symbols: context.NewSymbolTable()}
}

func (s *fakeSolver) Symbol(name ids.Index) *context.Symbol {
	return s.symbols.GetOrCreate(name, context.OriginUnknown)
}
func (s *fakeSolver) Loctr() context.Address { return s.loctr }
func (s *fakeSolver) LiteralID(text string) ids.Index {
	return s.store.Intern("=" + text)
}
func (s *fakeSolver) UsingActive(ids.Index, context.Address) bool { return false }
func (s *fakeSolver) UsingEvaluate(ids.Index, context.Address) (int, int, bool) {
	return 0, 0, false
}
func (s *fakeSolver) MentionSymbol(name ids.Index) { s.mention = append(s.mention, name) }
func (s *fakeSolver) OpcodeAttr(ids.Index) byte     { return context.UndefType }

func TestConstantEvaluatesDirectly(t *testing.T) {
	c := Constant{Value: 42}
	solver := newFakeSolver()
	require.False(t, c.GetDependencies(solver).ContainsDependencies())
	v := c.Evaluate(solver, diag.Discard, diag.Range{})
	require.Equal(t, 42, v.AbsOrZero())
}

func TestUndefinedSymbolBlocksAndDiagnoses(t *testing.T) {
	solver := newFakeSolver()
	name := solver.store.Intern("FOO")
	ref := SymbolRef{Name: name}

	deps := ref.GetDependencies(solver)
	require.True(t, deps.ContainsDependencies())
	require.True(t, deps.HasSymbol(name))

	collector := diag.NewCollector()
	v := ref.Evaluate(solver, collector, diag.Range{})
	require.True(t, v.Undefined())
	require.Len(t, collector.Items(), 1)
	require.Equal(t, diag.CodeUndefinedSymbol, collector.Items()[0].Code)
}

func TestSymbolBecomesEvaluableAfterDefinition(t *testing.T) {
	solver := newFakeSolver()
	name := solver.store.Intern("FOO")
	solver.Symbol(name).SetValue(context.AbsValue(7))

	ref := SymbolRef{Name: name}
	require.False(t, ref.GetDependencies(solver).ContainsDependencies())
	v := ref.Evaluate(solver, diag.Discard, diag.Range{})
	require.Equal(t, 7, v.AbsOrZero())
}

func TestBinaryAddAndMulDiv(t *testing.T) {
	solver := newFakeSolver()
	arena := context.NewSpaceArena()

	sum := Binary{Op: OpAdd, Left: Constant{Value: 2}, Right: Constant{Value: 3}, Arena: arena}
	v := sum.Evaluate(solver, diag.Discard, diag.Range{})
	require.Equal(t, 5, v.AbsOrZero())

	product := Binary{Op: OpMul, Left: Constant{Value: 4}, Right: Constant{Value: 5}, Arena: arena}
	v = product.Evaluate(solver, diag.Discard, diag.Range{})
	require.Equal(t, 20, v.AbsOrZero())
}

func TestRelocatableInMulDivIsAnError(t *testing.T) {
	solver := newFakeSolver()
	arena := context.NewSpaceArena()
	sec := context.Base{}
	lc := LocationCounterRef{Arena: arena}
	solver.loctr = context.NewAddress(sec, 4)

	mul := Binary{Op: OpMul, Left: lc, Right: Constant{Value: 2}, Arena: arena}
	collector := diag.NewCollector()
	v := mul.Evaluate(solver, collector, diag.Range{})
	require.True(t, v.Undefined())
	require.Len(t, collector.Items(), 1)
	require.Equal(t, diag.CodeRelocInMulDiv, collector.Items()[0].Code)
}

func TestDataAttrLengthBlocksUntilKnown(t *testing.T) {
	solver := newFakeSolver()
	name := solver.store.Intern("FOO")
	ref := DataAttrRef{Attribute: context.AttrLength, Symbol: name}

	require.True(t, ref.GetDependencies(solver).ContainsDependencies())

	solver.Symbol(name).Attributes.SetLength(4)
	require.False(t, ref.GetDependencies(solver).ContainsDependencies())
	v := ref.Evaluate(solver, diag.Discard, diag.Range{})
	require.Equal(t, 4, v.AbsOrZero())
}

func TestDivisionByZeroYieldsAbsZero(t *testing.T) {
	solver := newFakeSolver()
	arena := context.NewSpaceArena()

	div := Binary{Op: OpDiv, Left: Constant{Value: 7}, Right: Constant{Value: 0}, Arena: arena}
	collector := diag.NewCollector()
	v := div.Evaluate(solver, collector, diag.Range{})
	require.False(t, v.Undefined())
	require.Equal(t, context.ValueAbs, v.Kind())
	require.Equal(t, 0, v.AbsOrZero())
	require.Empty(t, collector.Items(), "HLASM division by zero yields Abs(0), not a diagnostic")
}

func TestRelAddrDividesEvenDifferenceByTwo(t *testing.T) {
	solver := newFakeSolver()
	arena := context.NewSpaceArena()
	sec := context.Base{}
	solver.loctr = context.NewAddress(sec, 4)

	name := solver.store.Intern("TARGET")
	solver.Symbol(name).SetValue(context.RelocValue(context.NewAddress(sec, 14)))

	r := RelAddr{Target: SymbolRef{Name: name}, Arena: arena}
	collector := diag.NewCollector()
	v := r.Evaluate(solver, collector, diag.Range{})
	require.Empty(t, collector.Items())
	require.Equal(t, 5, v.AbsOrZero())
}

func TestRelAddrFlagsOddDifference(t *testing.T) {
	solver := newFakeSolver()
	arena := context.NewSpaceArena()
	sec := context.Base{}
	solver.loctr = context.NewAddress(sec, 4)

	name := solver.store.Intern("TARGET")
	solver.Symbol(name).SetValue(context.RelocValue(context.NewAddress(sec, 15)))

	r := RelAddr{Target: SymbolRef{Name: name}, Arena: arena}
	collector := diag.NewCollector()
	r.Evaluate(solver, collector, diag.Range{})
	require.Len(t, collector.Items(), 1)
	require.Equal(t, diag.CodeOddRelAddr, collector.Items()[0].Code)
}

func TestRelAddrIgnoresQualifierMismatch(t *testing.T) {
	solver := newFakeSolver()
	arena := context.NewSpaceArena()
	store := ids.New()
	sec := &context.Section{}
	q1 := store.Intern("Q1")
	q2 := store.Intern("Q2")

	solver.loctr = context.Address{Bases: []context.BaseMult{{Base: context.Base{Section: sec, Qualifier: q1}, Mult: 1}}, Offset: 4}

	name := solver.store.Intern("TARGET")
	targetAddr := context.Address{Bases: []context.BaseMult{{Base: context.Base{Section: sec, Qualifier: q2}, Mult: 1}}, Offset: 14}
	solver.Symbol(name).SetValue(context.RelocValue(targetAddr))

	r := RelAddr{Target: SymbolRef{Name: name}, Arena: arena}
	collector := diag.NewCollector()
	v := r.Evaluate(solver, collector, diag.Range{})
	require.Empty(t, collector.Items(), "%v", collector.Items())
	require.Equal(t, 5, v.AbsOrZero())
}

func TestRelAddrOnAbsoluteTargetWarnsAndReturnsUnchanged(t *testing.T) {
	solver := newFakeSolver()
	arena := context.NewSpaceArena()

	r := RelAddr{Target: Constant{Value: 9}, Arena: arena}
	collector := diag.NewCollector()
	v := r.Evaluate(solver, collector, diag.Range{})
	require.Equal(t, 9, v.AbsOrZero())
	require.Len(t, collector.Items(), 1)
	require.Equal(t, diag.CodeRelAddrAbsolute, collector.Items()[0].Code)
	require.Equal(t, diag.Warning, collector.Items()[0].Severity)
}

func TestUnaryNegate(t *testing.T) {
	solver := newFakeSolver()
	u := Unary{Negate: true, Operand: Constant{Value: 9}}
	v := u.Evaluate(solver, diag.Discard, diag.Range{})
	require.Equal(t, -9, v.AbsOrZero())
}
