package pipeline

import (
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/datadef"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/using"
)

// pipelineSolver implements expr.Solver against one Pipeline's ordinary
// assembly context, evaluating USING lookups against the mark captured
// when the current statement started (so a statement always sees exactly
// the USING state active at its own position, per spec.md §4.7's ordering
// guarantee — not whatever the collection has grown to by the time a
// deferred re-evaluation happens).
type pipelineSolver struct {
	p        *Pipeline
	usingAt  using.Mark
	rng      diag.Range
	mentions []ids.Index

	// longForm is set by processMachine, per statement, to the current
	// instruction's UsesLongDisplacement() before its operands are
	// evaluated, so UsingEvaluate picks the 12-bit or 20-bit displacement
	// range the instruction actually encodes (spec.md §4.7/§8 scenario 6).
	longForm bool
}

func (s *pipelineSolver) Symbol(name ids.Index) *context.Symbol {
	return s.p.Ctx.Symbols.GetOrCreate(name, context.OriginUnknown)
}

func (s *pipelineSolver) Loctr() context.Address {
	return s.p.Ctx.CurrentAddress()
}

func (s *pipelineSolver) LiteralID(text string) ids.Index {
	return s.p.Pool.AddLiteral(s.p.Ctx.Ids, text, datadef.NewOperandForLiteral(text), s.Loctr())
}

func (s *pipelineSolver) UsingActive(qualifier ids.Index, addr context.Address) bool {
	res := s.p.Using.Evaluate(s.usingAt, qualifier, addr, s.longForm)
	return res.Mapped
}

func (s *pipelineSolver) UsingEvaluate(qualifier ids.Index, addr context.Address) (int, int, bool) {
	res := s.p.Using.Evaluate(s.usingAt, qualifier, addr, s.longForm)
	return res.Reg, res.Disp, res.Mapped && res.InRange
}

func (s *pipelineSolver) MentionSymbol(name ids.Index) {
	s.mentions = append(s.mentions, name)
	s.p.RefSites[name] = append(s.p.RefSites[name], s.rng)
}

func (s *pipelineSolver) OpcodeAttr(ids.Index) byte { return context.UndefType }
