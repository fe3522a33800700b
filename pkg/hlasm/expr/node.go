package expr

import (
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
)

// Node is one machine-expression AST node (spec.md §4.4). GetDependencies
// is always safe to call, even on a node that will never resolve;
// Evaluate assumes GetDependencies has already come back empty (or the
// caller is accepting a best-effort UNDEF result otherwise).
type Node interface {
	GetDependencies(solver Solver) context.DependencyCollector
	Evaluate(solver Solver, consumer diag.Consumer, rng diag.Range) context.SymbolValue
}

// Constant is a plain numeric literal, already parsed by the (out of
// scope) lexer/parser — this layer only ever sees its value.
type Constant struct {
	Value int
}

func (c Constant) GetDependencies(Solver) context.DependencyCollector {
	return context.DependencyCollector{}
}

func (c Constant) Evaluate(Solver, diag.Consumer, diag.Range) context.SymbolValue {
	return context.AbsValue(c.Value)
}

// SymbolRef is a plain symbol reference.
type SymbolRef struct {
	Name ids.Index
}

func (s SymbolRef) GetDependencies(solver Solver) context.DependencyCollector {
	var d context.DependencyCollector
	solver.MentionSymbol(s.Name)
	if sym := solver.Symbol(s.Name); sym.Value().Undefined() {
		d.AddUndefinedSymbol(s.Name)
	}
	return d
}

func (s SymbolRef) Evaluate(solver Solver, consumer diag.Consumer, rng diag.Range) context.SymbolValue {
	sym := solver.Symbol(s.Name)
	if sym.Value().Undefined() {
		consumer.Add(diag.Diagnostic{
			Range: rng, Severity: diag.Error, Code: diag.CodeUndefinedSymbol,
			Message: "symbol was never defined",
		})
		return context.UndefValue
	}
	return sym.Value()
}

// DataAttrRef is a `T'`/`L'`/`S'`/`I'`/`D'`/`K'`/`N'`/`O'` reference to one
// symbol's attribute.
type DataAttrRef struct {
	Attribute context.DataAttrKind
	Symbol    ids.Index
}

func (a DataAttrRef) GetDependencies(solver Solver) context.DependencyCollector {
	var d context.DependencyCollector
	sym := solver.Symbol(a.Symbol)
	// D' is always immediately evaluable (it asks "is X known", not "what
	// is X"), so it never blocks.
	if a.Attribute == context.AttrDefined {
		return d
	}
	if !sym.Attributes.IsDefined(a.Attribute) {
		d.AddUndefinedAttr(context.AttrRef{Attribute: a.Attribute, Symbol: a.Symbol})
	}
	return d
}

func (a DataAttrRef) Evaluate(solver Solver, consumer diag.Consumer, rng diag.Range) context.SymbolValue {
	sym := solver.Symbol(a.Symbol)
	if a.Attribute == context.AttrDefined {
		if sym.Attributes.IsDefined(context.AttrLength) || !sym.Value().Undefined() {
			return context.AbsValue(1)
		}
		return context.AbsValue(0)
	}
	if !sym.Attributes.IsDefined(a.Attribute) {
		consumer.Add(diag.Diagnostic{
			Range: rng, Severity: diag.Error, Code: diag.CodeUndefinedSymbol,
			Message: "attribute referenced before it is known",
		})
	}
	return context.AbsValue(sym.Attributes.GetAttributeValue(a.Attribute))
}

// LocationCounterRef is the `*` (current location counter) term.
type LocationCounterRef struct {
	Arena *context.SpaceArena
}

func (l LocationCounterRef) GetDependencies(solver Solver) context.DependencyCollector {
	var d context.DependencyCollector
	loctr := solver.Loctr()
	for _, sm := range loctr.NormalizedSpaces(l.Arena) {
		d.AddUnresolvedSpace(sm.Space)
	}
	return d
}

func (l LocationCounterRef) Evaluate(solver Solver, consumer diag.Consumer, rng diag.Range) context.SymbolValue {
	return context.RelocValue(solver.Loctr())
}

// LiteralRef is a `=<literal>` reference: its dependency/value is that of
// the pseudo-symbol naming its eventual pooled address.
type LiteralRef struct {
	Text string
}

func (l LiteralRef) GetDependencies(solver Solver) context.DependencyCollector {
	return SymbolRef{Name: solver.LiteralID(l.Text)}.GetDependencies(solver)
}

func (l LiteralRef) Evaluate(solver Solver, consumer diag.Consumer, rng diag.Range) context.SymbolValue {
	return SymbolRef{Name: solver.LiteralID(l.Text)}.Evaluate(solver, consumer, rng)
}

// BinaryOp enumerates the four machine-expression binary operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
)

// Binary is a two-operand arithmetic expression.
type Binary struct {
	Op          BinaryOp
	Left, Right Node
	Arena       *context.SpaceArena
}

func (b Binary) GetDependencies(solver Solver) context.DependencyCollector {
	l := b.Left.GetDependencies(solver)
	r := b.Right.GetDependencies(solver)
	switch b.Op {
	case OpMul, OpDiv:
		l.MergeMulDiv(r)
	default:
		l.Merge(r)
	}
	return l
}

func (b Binary) Evaluate(solver Solver, consumer diag.Consumer, rng diag.Range) context.SymbolValue {
	lv := b.Left.Evaluate(solver, consumer, rng)
	rv := b.Right.Evaluate(solver, consumer, rng)
	if lv.Undefined() || rv.Undefined() {
		return context.UndefValue
	}

	switch b.Op {
	case OpAdd:
		return context.AddValue(lv, rv, b.Arena)
	case OpSub:
		return context.SubValue(lv, rv, b.Arena)
	case OpMul, OpDiv:
		if lv.Kind() != context.ValueAbs || rv.Kind() != context.ValueAbs {
			consumer.Add(diag.Diagnostic{
				Range: rng, Severity: diag.Error, Code: diag.CodeRelocInMulDiv,
				Message: "relocatable value may not appear in * or /",
			})
			return context.UndefValue
		}
		if b.Op == OpMul {
			return context.AbsValue(lv.AbsOrZero() * rv.AbsOrZero())
		}
		if rv.AbsOrZero() == 0 {
			// HLASM semantics: division by zero yields 0, not a diagnostic.
			return context.AbsValue(0)
		}
		return context.AbsValue(lv.AbsOrZero() / rv.AbsOrZero())
	default:
		return context.UndefValue
	}
}

// UsingBase and UsingDisplacement wrap an address-valued operand term
// (typically a SymbolRef or a Binary built on one) and resolve it through
// the active USING context, the way the operand parser expands a
// storage-operand's implicit D(X,B) form against whichever base the
// instruction checker ends up needing: the register half and the
// displacement half are evaluated as two independent terms sharing the
// same address expression and qualifier (spec.md §4.7).
type UsingBase struct {
	Qualifier ids.Index
	Address   Node
}

func (u UsingBase) GetDependencies(solver Solver) context.DependencyCollector {
	return u.Address.GetDependencies(solver)
}

func (u UsingBase) Evaluate(solver Solver, consumer diag.Consumer, rng diag.Range) context.SymbolValue {
	av := u.Address.Evaluate(solver, consumer, rng)
	if av.Undefined() {
		return context.UndefValue
	}
	reg, _, ok := solver.UsingEvaluate(u.Qualifier, av.Address())
	if !ok {
		consumer.Add(diag.Diagnostic{
			Range: rng, Severity: diag.Error, Code: diag.CodeUsingNoActiveMapping,
			Message: "address is not reachable through any active USING",
		})
		return context.UndefValue
	}
	return context.AbsValue(reg)
}

// UsingDisplacement is UsingBase's counterpart producing the displacement
// half of the same D(X,B) resolution.
type UsingDisplacement struct {
	Qualifier ids.Index
	Address   Node
}

func (u UsingDisplacement) GetDependencies(solver Solver) context.DependencyCollector {
	return u.Address.GetDependencies(solver)
}

func (u UsingDisplacement) Evaluate(solver Solver, consumer diag.Consumer, rng diag.Range) context.SymbolValue {
	av := u.Address.Evaluate(solver, consumer, rng)
	if av.Undefined() {
		return context.UndefValue
	}
	_, disp, ok := solver.UsingEvaluate(u.Qualifier, av.Address())
	if !ok {
		consumer.Add(diag.Diagnostic{
			Range: rng, Severity: diag.Error, Code: diag.CodeUsingNoActiveMapping,
			Message: "address is not reachable through any active USING",
		})
		return context.UndefValue
	}
	return context.AbsValue(disp)
}

// RelAddr wraps a relative-immediate operand's target address expression:
// the instruction checker builds one around a displacement expression
// whenever an instruction's reladdr_mask selects that operand (spec.md
// §4.7). It evaluates `(target - loctr).ignore_qualification()` and
// divides by 2 for halfword addressing, flagging an odd difference; a
// target that is already absolute (not relocatable) has no loctr distance
// to take, so it is returned unchanged, with a warning.
type RelAddr struct {
	Target Node
	Arena  *context.SpaceArena
}

func (r RelAddr) GetDependencies(solver Solver) context.DependencyCollector {
	d := r.Target.GetDependencies(solver)
	for _, sm := range solver.Loctr().NormalizedSpaces(r.Arena) {
		d.AddUnresolvedSpace(sm.Space)
	}
	return d
}

func (r RelAddr) Evaluate(solver Solver, consumer diag.Consumer, rng diag.Range) context.SymbolValue {
	tv := r.Target.Evaluate(solver, consumer, rng)
	if tv.Undefined() {
		return context.UndefValue
	}
	if tv.Kind() == context.ValueAbs {
		consumer.Add(diag.Diagnostic{
			Range: rng, Severity: diag.Warning, Code: diag.CodeRelAddrAbsolute,
			Message: "relative-address operand is already absolute; used unchanged",
		})
		return tv
	}

	diff := context.SubValue(tv, context.RelocValue(solver.Loctr()), r.Arena)
	if diff.Undefined() {
		return context.UndefValue
	}
	if diff.Kind() == context.ValueReloc {
		addr := diff.Address().IgnoreQualification().Normalize(r.Arena)
		if addr.IsAbsolute(r.Arena) {
			diff = context.AbsValue(addr.Offset)
		} else {
			diff = context.RelocValue(addr)
		}
	}
	if diff.Kind() != context.ValueAbs {
		consumer.Add(diag.Diagnostic{
			Range: rng, Severity: diag.Error, Code: diag.CodeUsingNoActiveMapping,
			Message: "relative-address target is not reachable from the current location counter",
		})
		return context.UndefValue
	}
	if diff.AbsOrZero()%2 != 0 {
		consumer.Add(diag.Diagnostic{
			Range: rng, Severity: diag.Error, Code: diag.CodeOddRelAddr,
			Message: "relative-address displacement must be halfword-aligned",
		})
	}
	return context.AbsValue(diff.AbsOrZero() / 2)
}

// Unary is a unary `+`/`-` expression.
type Unary struct {
	Negate  bool
	Operand Node
}

func (u Unary) GetDependencies(solver Solver) context.DependencyCollector {
	return u.Operand.GetDependencies(solver)
}

func (u Unary) Evaluate(solver Solver, consumer diag.Consumer, rng diag.Range) context.SymbolValue {
	v := u.Operand.Evaluate(solver, consumer, rng)
	if !u.Negate || v.Undefined() {
		return v
	}
	return context.NegValue(v)
}
