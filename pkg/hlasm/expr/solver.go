// Package expr implements the machine-expression evaluator: the AST nodes
// a machine expression operand parses into (spec.md §4.4), each able to
// report what it still depends on and, once that's satisfied, to
// evaluate to a context.SymbolValue.
package expr

import (
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
)

// Solver is the collaborator every expression node evaluates against: the
// statement pipeline's view of the current ordinary assembly context,
// generalized behind an interface so expr never needs to import pipeline
// (spec.md §4.4's "dependency_solver" collaborator; grounded on the C++
// `dependency_solver` interface).
type Solver interface {
	// Symbol returns the symbol named name, mentioning it (as UNDEF) if
	// this is the solver's first time seeing it.
	Symbol(name ids.Index) *context.Symbol
	// Loctr returns the current location counter's address.
	Loctr() context.Address
	// LiteralID interns text (e.g. "F'5'") as the pseudo-symbol naming that
	// literal's eventual address within the active literal pool, deduped
	// against the loctr in effect for this mention (spec.md §4.6's
	// "compatible loctr" rule).
	LiteralID(text string) ids.Index
	// UsingActive reports whether any USING currently maps addr under
	// qualifier (empty Index means unqualified).
	UsingActive(qualifier ids.Index, addr context.Address) bool
	// UsingEvaluate resolves addr to a (base register, displacement) pair
	// through the active USING context, qualified by qualifier.
	UsingEvaluate(qualifier ids.Index, addr context.Address) (reg int, disp int, ok bool)
	// MentionSymbol records that name was referenced by this statement,
	// regardless of whether it resolves (spec.md's `symbol_candidate`).
	// The pipeline's solver records each mention as a reference site.
	MentionSymbol(name ids.Index)
	// OpcodeAttr returns the O' attribute for an operation-code symbol.
	OpcodeAttr(name ids.Index) byte
}
