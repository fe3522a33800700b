// Package query implements the read-only surface spec.md §6 exposes to a
// front-end/debugger: definition, references, hover, semantic_tokens, and
// idle. Apart from Idle, which drives the pipeline it wraps, every query is a plain
// lookup over the DefSites/RefSites maps the pipeline records as it runs,
// plus the symbol table and statement list already in memory.
package query

import (
	"fmt"
	"strings"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/pipeline"
)

// Scope is one of the closed set of semantic-token categories spec.md §6
// names. Only the scopes this package can actually tell apart from a
// Statement list are ever produced; the rest of the closed set belongs to
// the (out of scope) lexer/parser that would see raw source text.
type Scope string

const (
	ScopeLabel          Scope = "label"
	ScopeInstruction    Scope = "instruction"
	ScopeOperand        Scope = "operand"
	ScopeDataDefType    Scope = "data_def_type"
	ScopeOrdinarySymbol Scope = "ordinary_symbol"
)

// Token is one (range, scope) pair of a SemanticTokens result.
type Token struct {
	Range diag.Range
	Scope Scope
}

// Engine answers queries against one pipeline.Pipeline and the statement
// list that was (or is being) run through it. It holds no state of its
// own beyond the store used to print symbol names; everything else is
// read straight from the pipeline.
type Engine struct {
	store      *ids.Store
	p          *pipeline.Pipeline
	statements []*pipeline.Statement
}

// NewEngine wraps p, answering queries against statements and resolving
// names through store.
func NewEngine(store *ids.Store, p *pipeline.Pipeline, statements []*pipeline.Statement) *Engine {
	return &Engine{store: store, p: p, statements: statements}
}

// symbolAt finds the symbol mentioned or defined at pos, the shared first
// step definition/hover both need: spec.md §6 only ever asks "the symbol
// referenced at this location", never "the symbol named X at this exact
// range", so a linear scan over every recorded site is sufficient (no
// front-end in the pack queries locations fast enough to need an interval
// tree over this).
func (e *Engine) symbolAt(pos diag.Position) (ids.Index, bool) {
	for name, rng := range e.p.DefSites {
		if rng.Contains(pos) {
			return name, true
		}
	}
	for name, sites := range e.p.RefSites {
		for _, rng := range sites {
			if rng.Contains(pos) {
				return name, true
			}
		}
	}
	return ids.Index{}, false
}

// Definition returns the definition site of the symbol referenced at pos,
// or false if pos names no known symbol or that symbol was never defined
// (spec.md §6 "definition(location) -> source_location?").
func (e *Engine) Definition(pos diag.Position) (diag.Range, bool) {
	name, ok := e.symbolAt(pos)
	if !ok {
		return diag.Range{}, false
	}
	rng, ok := e.p.DefSites[name]
	return rng, ok
}

// References returns every recorded mention of symbol, in the order they
// were encountered while the pipeline ran (spec.md §6
// "references(symbol) -> [location]").
func (e *Engine) References(symbol ids.Index) []diag.Range {
	sites := e.p.RefSites[symbol]
	out := make([]diag.Range, len(sites))
	copy(out, sites)
	return out
}

// Hover renders the symbol referenced at pos as a description text:
// its value (UNDEF / absolute / relocatable) and whichever of its T/L/S
// attributes are known, in the style the teacher's debugger prints
// register/memory values (spec.md §6 "hover(location) -> description
// text").
func (e *Engine) Hover(pos diag.Position) (string, bool) {
	name, ok := e.symbolAt(pos)
	if !ok {
		return "", false
	}
	sym, ok := e.p.Ctx.Symbols.Lookup(name)
	if !ok {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: ", e.store.Name(name))

	switch sym.Value().Kind() {
	case context.ValueUndef:
		b.WriteString("undefined")
	case context.ValueAbs:
		fmt.Fprintf(&b, "X'%X' (%d)", sym.Value().AbsOrZero(), sym.Value().AbsOrZero())
	case context.ValueReloc:
		b.WriteString("relocatable")
	}

	attrs := sym.Attributes
	if attrs.IsTypeKnown() {
		fmt.Fprintf(&b, ", T'=%c", attrs.Type())
	}
	if attrs.IsLengthKnown() {
		fmt.Fprintf(&b, ", L'=%d", attrs.Length())
	}
	if attrs.IsScaleKnown() {
		fmt.Fprintf(&b, ", S'=%d", attrs.Scale())
	}
	return b.String(), true
}

// SemanticTokens classifies every statement's label and body into a
// (range, scope) pair. This layer only ever sees statement-granularity
// ranges (the lexer/parser that would split a line into label/opcode/
// operand sub-ranges is out of scope, per spec.md's own Non-goals), so
// the label — when present — gets its own token over the same range as
// the rest of the statement, and the statement body is classified by its
// Op: a documented approximation rather than a true column-accurate
// tokenization.
func (e *Engine) SemanticTokens() []Token {
	var out []Token
	for _, st := range e.statements {
		if !st.Label.Empty() {
			out = append(out, Token{Range: st.Range, Scope: ScopeLabel})
		}
		out = append(out, Token{Range: st.Range, Scope: bodyScope(st)})
	}
	return out
}

func bodyScope(st *pipeline.Statement) Scope {
	if st.Op == pipeline.OpDC || st.Op == pipeline.OpDS {
		return ScopeDataDefType
	}
	return ScopeInstruction
}

// Idle drains the wrapped pipeline, yielding between statements exactly
// as pipeline.Pipeline.Idle does; see that method's doc comment for the
// cooperative-scheduling contract (spec.md §5).
func (e *Engine) Idle(yield *byte) bool {
	return e.p.Idle(e.statements, yield)
}
