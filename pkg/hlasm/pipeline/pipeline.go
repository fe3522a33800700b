package pipeline

import (
	"io"
	"log/slog"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/datadef"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/expr"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/instr"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/using"
)

// Pipeline drives a slice of already-parsed Statements through one ordinary
// assembly context: each statement is tried once in source order, deferred
// (and retried in later sweeps) when it depends on something not yet
// known, and reported as unresolved if end of program arrives while it is
// still stuck (spec.md §5). This is a sweep-to-fixpoint simplification of
// the original's event-driven re-fire-on-notify model: a deferred
// statement is retried whenever ANY dependency resolved that round rather
// than exactly the ones it was waiting on, traded for a much simpler
// driver at the cost of some wasted re-evaluation, documented in
// DESIGN.md.
type Pipeline struct {
	Ctx   *context.OrdinaryAssemblyContext
	Using *using.Collection
	Pool  *datadef.Pool
	Diags diag.Consumer

	// Logger receives Debug-level traces of dependency-resolution rounds,
	// cycle detection, and USING resolution passes. Defaults to a discard
	// logger; set it (e.g. to obslog.New(...)) to observe a run.
	Logger *slog.Logger

	// DefSites and RefSites hold the definition site and every mention site
	// recorded for each symbol across the run, the raw material a query.Engine
	// needs for definition/references/hover lookups (spec.md §6).
	DefSites map[ids.Index]diag.Range
	RefSites map[ids.Index][]diag.Range

	nextID     context.StatementID
	byID       map[context.StatementID]*Statement
	usingMarks map[context.StatementID]using.Mark

	// Idle-driven resumption state (spec.md §5): once a caller starts
	// draining statements through Idle, the same slice and cursor are
	// reused across calls rather than restarting from source position 0.
	statements []*Statement
	resumeIdx  int
	registered bool
	finished   bool
}

// NewPipeline returns an empty pipeline interning names through store and
// reporting diagnostics to consumer.
func NewPipeline(store *ids.Store, consumer diag.Consumer) *Pipeline {
	ctx := context.NewOrdinaryAssemblyContext(store)
	return &Pipeline{
		Ctx:        ctx,
		Using:      using.NewCollection(store, ctx.Arena),
		Pool:       datadef.NewPool(),
		Diags:      consumer,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		DefSites:   make(map[ids.Index]diag.Range),
		RefSites:   make(map[ids.Index][]diag.Range),
		byID:       make(map[context.StatementID]*Statement),
		usingMarks: make(map[context.StatementID]using.Mark),
	}
}

// Run processes every statement in order, settles whatever was deferred,
// flushes the final literal pool, and resolves every location counter's
// high-water mark. Statements are expected to come from one translation
// unit's open code, already in source order.
func (p *Pipeline) Run(statements []*Statement) {
	for !p.Idle(statements, nil) {
	}
}

// Idle drives statements through the pipeline, one statement at a time,
// checking yield between each (spec.md §5's "idle(yield_indicator)"
// operation): callers may pass a volatile byte sentinel the evaluator
// polls between statements; when non-zero, Idle returns false and the
// caller may resume later, from the same source position, with another
// call passing the same statements slice. yield may be nil, meaning "run
// to completion". Idle returns true once every statement has been tried
// at least once, deferred statements have been settled to a fixpoint,
// and the final literal pool and location-counter layout have been
// resolved.
func (p *Pipeline) Idle(statements []*Statement, yield *byte) bool {
	if p.finished {
		return true
	}

	if !p.registered {
		p.statements = statements
		for _, st := range statements {
			p.nextID++
			st.id = p.nextID
			p.byID[st.id] = st
			if !st.Label.Empty() {
				p.Ctx.Dependencies.AddDefined(context.OnSymbol(st.Label), st.id)
			}
		}
		p.registered = true
	}

	for p.resumeIdx < len(p.statements) {
		st := p.statements[p.resumeIdx]
		p.usingMarks[st.id] = p.Using.Current()
		p.process(st)
		p.resumeIdx++
		if yield != nil && *yield != 0 {
			return false
		}
	}

	p.settle()

	if lc := p.Ctx.CurrentLocationCounter(); lc != nil {
		p.Pool.GeneratePool(lc, p.Ctx.Symbols)
	}
	p.Ctx.FinishLayout()
	p.finished = true
	return true
}

// settle retries every statement CollectPostponed hands back, round after
// round, until a round makes no further progress; whatever is still
// pending at that point is reported as permanently unresolved (E016).
func (p *Pipeline) settle() {
	for round := 1; ; round++ {
		pending := p.Ctx.Dependencies.CollectPostponed()
		if len(pending) == 0 {
			return
		}
		p.Logger.Debug("settle round", "round", round, "pending", len(pending))
		progressed := false
		for _, id := range pending {
			st := p.byID[id]
			if st == nil {
				continue
			}
			if p.process(st) {
				progressed = true
				p.Ctx.Dependencies.ForgetStatement(id)
			}
		}
		if progressed {
			continue
		}
		p.Logger.Debug("settle reached fixpoint", "round", round, "still_pending", len(pending))
		p.Ctx.Dependencies.CollectPostponed()
		for _, id := range pending {
			if st := p.byID[id]; st != nil {
				p.Diags.Add(diag.Diagnostic{
					Range: st.Range, Severity: diag.Error, Code: diag.CodeUnresolved,
					Message: "statement could not be resolved by end of program",
				})
			}
		}
		return
	}
}

// process tries to complete st against the USING state active when it was
// first reached, reporting true when st needs no further retry (whether
// it succeeded, or failed with a diagnostic there's no point retrying) and
// false when it was deferred.
func (p *Pipeline) process(st *Statement) bool {
	solver := &pipelineSolver{p: p, usingAt: p.usingMarks[st.id], rng: st.Range}

	switch st.Op {
	case OpNoop, OpEnd:
		return true
	case OpSection:
		p.Ctx.SetSection(st.SectionName, st.SectionKind)
		p.defineLabelAddress(st, solver)
		return true
	case OpLoctr:
		if sec := p.Ctx.CurrentSection(); sec != nil {
			sec.SetCurrentLocationCounter(p.Ctx.Arena, st.LoctrName)
		}
		p.defineLabelAddress(st, solver)
		return true
	case OpUsing:
		return p.processUsing(st, solver)
	case OpDrop:
		p.Using.AddDrop(st.DropRegisters)
		return true
	case OpOrg:
		return p.processOrg(st, solver)
	case OpEqu:
		return p.processEqu(st, solver)
	case OpDC, OpDS:
		return p.processData(st, solver)
	case OpLtorg:
		if lc := p.Ctx.CurrentLocationCounter(); lc != nil {
			p.Pool.GeneratePool(lc, p.Ctx.Symbols)
		}
		p.defineLabelAddress(st, solver)
		return true
	case OpMachine:
		return p.processMachine(st, solver)
	default:
		return true
	}
}

// deferOn records st's still-unresolved dependencies and postpones it,
// first checking whether doing so would only close a definition cycle
// (spec.md §4.3's "loctr depends on the symbol that depends on the
// loctr" case): a cyclic statement is reported once and abandoned rather
// than retried forever.
func (p *Pipeline) deferOn(st *Statement, deps context.DependencyCollector) bool {
	if deps.HasError {
		p.Diags.Add(diag.Diagnostic{
			Range: st.Range, Severity: diag.Error, Code: diag.CodeRelocInMulDiv,
			Message: "expression could not be evaluated",
		})
		return true
	}
	p.Ctx.Dependencies.AddDependencies(st.id, deps)
	if p.Ctx.Dependencies.CheckCycle(st.id) {
		p.Logger.Debug("dependency cycle detected", "statement_id", st.id, "line", st.Range.Start.Line)
		p.Diags.Add(diag.Diagnostic{
			Range: st.Range, Severity: diag.Error, Code: diag.CodeDependencyCycle,
			Message: "definition cycle detected",
		})
		p.Ctx.Dependencies.ForgetStatement(st.id)
		return true
	}
	p.Ctx.Dependencies.Postpone(st.id)
	return false
}

// evaluate probes node with diagnostics discarded first, so a speculative
// attempt that turns out to be blocked never leaks an "undefined symbol"
// diagnostic the statement will outlive once its dependency resolves;
// only a probe that actually resolves gets evaluated again against the
// real consumer, to pick up whatever diagnostics a successful-but-flawed
// evaluation still owes (ME002, USING failures, division by zero, ...).
func (p *Pipeline) evaluate(node expr.Node, solver *pipelineSolver, st *Statement) (context.SymbolValue, bool) {
	probe := node.Evaluate(solver, diag.Discard, st.Range)
	if probe.Undefined() {
		return probe, false
	}
	return node.Evaluate(solver, p.Diags, st.Range), true
}

// defineLabelAddress gives st.Label the current address, for statement
// kinds whose label names a location rather than a computed value
// (CSECT/DSECT/COM/RSECT, LOCTR, LTORG).
func (p *Pipeline) defineLabelAddress(st *Statement, solver *pipelineSolver) {
	if st.Label.Empty() {
		return
	}
	sym := p.Ctx.Symbols.GetOrCreate(st.Label, context.OriginSection)
	if !sym.Value().Undefined() {
		return
	}
	sym.SetValue(context.RelocValue(p.Ctx.CurrentAddress()))
	sym.Attributes = context.MakeSectionAttrs()
	p.Ctx.Dependencies.ResolveSymbol(st.Label)
	p.DefSites[st.Label] = st.Range
}

func (p *Pipeline) processUsing(st *Statement, solver *pipelineSolver) bool {
	beginVal, ok := p.evaluate(st.Using.Begin, solver, st)
	if !ok {
		return p.deferOn(st, st.Using.Begin.GetDependencies(solver))
	}
	begin := valueToAddress(beginVal)

	var endAddr *context.Address
	if st.Using.End != nil {
		endVal, ok := p.evaluate(st.Using.End, solver, st)
		if !ok {
			return p.deferOn(st, st.Using.End.GetDependencies(solver))
		}
		e := valueToAddress(endVal)
		endAddr = &e
	}

	p.Logger.Debug("using resolved", "qualifier", st.Using.Qualifier, "registers", st.Using.Registers, "line", st.Range.Start.Line)
	p.Using.AddUsing(st.Label, st.Using.Qualifier, begin, endAddr, st.Using.Registers)
	p.defineLabelAddress(st, solver)
	return true
}

func (p *Pipeline) processOrg(st *Statement, solver *pipelineSolver) bool {
	lc := p.Ctx.CurrentLocationCounter()
	if lc == nil {
		return true
	}
	if st.OrgTarget == nil {
		lc.SetValue(context.Address{Spaces: []context.SpaceMult{{Space: lc.MaxSpace(), Mult: 1}}})
		p.defineLabelAddress(st, solver)
		return true
	}
	val, ok := p.evaluate(st.OrgTarget, solver, st)
	if !ok {
		return p.deferOn(st, st.OrgTarget.GetDependencies(solver))
	}
	lc.SetValue(valueToAddress(val))
	p.defineLabelAddress(st, solver)
	return true
}

func (p *Pipeline) processEqu(st *Statement, solver *pipelineSolver) bool {
	if st.Label.Empty() {
		return true
	}
	val, ok := p.evaluate(st.EquValue, solver, st)
	if !ok {
		return p.deferOn(st, st.EquValue.GetDependencies(solver))
	}
	var typeVal *context.SymbolValue
	if st.EquType != nil {
		tv, ok := p.evaluate(st.EquType, solver, st)
		if !ok {
			return p.deferOn(st, st.EquType.GetDependencies(solver))
		}
		typeVal = &tv
	}

	sym := p.Ctx.Symbols.GetOrCreate(st.Label, context.OriginEqu)
	if !sym.Value().Undefined() {
		return true
	}
	sym.SetValue(val)
	sym.Attributes = context.MakeEmptyAttrs(context.OriginEqu)
	switch {
	case typeVal != nil:
		sym.Attributes.SetType(byte(typeVal.AbsOrZero()))
	case val.Kind() == context.ValueAbs:
		sym.Attributes.SetType('U')
	default:
		sym.Attributes.SetType('J')
	}
	p.Ctx.Dependencies.ResolveSymbol(st.Label)
	p.DefSites[st.Label] = st.Range
	return true
}

func (p *Pipeline) processData(st *Statement, solver *pipelineSolver) bool {
	lc := p.Ctx.CurrentLocationCounter()
	if lc == nil {
		return true
	}

	var start context.Address
	haveStart := false
	for i := range st.Data {
		op := &st.Data[i]
		op.Validate(p.Diags, st.Range)
		length, ok := op.ElementLength()
		if !ok {
			length = 0
		}
		total := length * maxInt(op.DupFactor, 1)
		addr := lc.ReserveStorageArea(total, op.Alignment())
		if !haveStart {
			start, haveStart = addr, true
		}
		// Address nominals (A'/Y'-type values) are evaluated here with
		// diagnostics discarded, so each symbol they name gets a
		// symbol-table entry; this layer never materializes the actual
		// stored bytes and reports nothing about these values.
		for _, av := range op.AddressValues {
			av.Evaluate(solver, diag.Discard, st.Range)
		}
	}

	if !st.Label.Empty() && len(st.Data) > 0 {
		sym := p.Ctx.Symbols.GetOrCreate(st.Label, context.OriginData)
		if sym.Value().Undefined() {
			sym.SetValue(context.RelocValue(start))
			length, _ := st.Data[0].ElementLength()
			sym.Attributes = context.MakeEmptyAttrs(context.OriginData)
			sym.Attributes.SetType(st.Data[0].Type)
			sym.Attributes.SetLength(length)
			if total, ok := st.Data[0].TotalLength(); ok {
				sym.Attributes.SetInteger(total)
			}
			p.Ctx.Dependencies.ResolveSymbol(st.Label)
			p.DefSites[st.Label] = st.Range
		}
	}
	return true
}

func (p *Pipeline) processMachine(st *Statement, solver *pipelineSolver) bool {
	inst, ok := instr.Lookup(st.Mnemonic)
	mnemonic, isMnemonic := instr.MnemonicCode{}, false
	if !ok {
		if mnemonic, isMnemonic = instr.LookupMnemonic(st.Mnemonic); isMnemonic {
			inst, ok = instr.Lookup(mnemonic.Parent)
		}
	}
	if !ok {
		p.Diags.Add(diag.Diagnostic{
			Range: st.Range, Severity: diag.Error, Code: diag.CodeInstructionError,
			Message: "unknown machine instruction mnemonic",
		})
		return true
	}
	solver.longForm = inst.UsesLongDisplacement()

	operands := st.Machine
	if !isMnemonic {
		operands = wrapRelAddrOperands(inst, operands, p.Ctx.Arena)
	}

	var deps context.DependencyCollector
	blocked := false
	for _, mo := range operands {
		if mo.Value.Evaluate(solver, diag.Discard, st.Range).Undefined() {
			deps.Merge(mo.Value.GetDependencies(solver))
			blocked = true
		}
	}
	if blocked {
		return p.deferOn(st, deps)
	}

	values := make([]instr.OperandValue, 0, len(operands))
	for _, mo := range operands {
		v := mo.Value.Evaluate(solver, p.Diags, st.Range)
		values = append(values, instr.OperandValue{Kind: mo.Kind, Value: v.AbsOrZero()})
	}
	if isMnemonic {
		values = mnemonic.Expand(inst, values)
	}
	instr.Check(inst, values, p.Diags, st.Range)

	if !st.Label.Empty() {
		sym := p.Ctx.Symbols.GetOrCreate(st.Label, context.OriginMachine)
		if sym.Value().Undefined() {
			sym.SetValue(context.RelocValue(p.Ctx.CurrentAddress()))
			sym.Attributes = context.MakeMachineAttrs(inst.Length)
			p.Ctx.Dependencies.ResolveSymbol(st.Label)
			p.DefSites[st.Label] = st.Range
		}
	}

	if lc := p.Ctx.CurrentLocationCounter(); lc != nil {
		lc.ReserveStorageArea(inst.Length, context.Alignment{Boundary: 2, Byte: 0})
	}
	return true
}

// wrapRelAddrOperands wraps each operand inst.ReladdrMask selects in
// expr.RelAddr, so the instruction checker's relative-immediate operands
// (e.g. LARL's target) evaluate a (target - loctr)/2 displacement instead
// of the raw target address (spec.md §4.7).
func wrapRelAddrOperands(inst instr.MachineInstruction, operands []MachineOperand, arena *context.SpaceArena) []MachineOperand {
	if inst.ReladdrMask == 0 {
		return operands
	}
	out := make([]MachineOperand, len(operands))
	for i, mo := range operands {
		if inst.UsesRelAddr(i) {
			out[i] = MachineOperand{Kind: mo.Kind, Value: expr.RelAddr{Target: mo.Value, Arena: arena}}
			continue
		}
		out[i] = mo
	}
	return out
}

// valueToAddress reads the address out of a SymbolValue regardless of
// whether it resolved absolute or relocatable, the way an expression
// consumer that only cares about "where" (never "is this plain number or
// not") wants it: USING and ORG both accept either a CSECT-relative
// address or a plain absolute number as their target.
func valueToAddress(v context.SymbolValue) context.Address {
	if v.Kind() == context.ValueAbs {
		return context.NewAbsoluteAddress(v.AbsOrZero())
	}
	return v.Address()
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
