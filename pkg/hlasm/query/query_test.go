package query

import (
	"testing"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/expr"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/pipeline"
	"github.com/stretchr/testify/require"
)

func rng(line int) diag.Range {
	return diag.Range{Start: diag.Position{Line: line, Column: 0}, End: diag.Position{Line: line, Column: 20}}
}

func TestDefinitionAndReferencesFollowASymbol(t *testing.T) {
	store := ids.New()
	collector := diag.NewCollector()
	p := pipeline.NewPipeline(store, collector)

	a := store.Intern("A")
	b := store.Intern("B")

	statements := []*pipeline.Statement{
		{Range: rng(0), Label: a, Op: pipeline.OpEqu, EquValue: expr.Constant{Value: 5}},
		{Range: rng(1), Label: b, Op: pipeline.OpEqu, EquValue: expr.SymbolRef{Name: a}},
	}

	p.Run(statements)
	require.False(t, collector.HasErrors(), "%v", collector.Items())

	e := NewEngine(store, p, statements)

	def, ok := e.Definition(diag.Position{Line: 1, Column: 5})
	require.True(t, ok)
	require.Equal(t, rng(0), def)

	refs := e.References(a)
	require.Len(t, refs, 1)
	require.Equal(t, rng(1), refs[0])
}

func TestHoverRendersKnownAttributes(t *testing.T) {
	store := ids.New()
	collector := diag.NewCollector()
	p := pipeline.NewPipeline(store, collector)

	a := store.Intern("A")
	statements := []*pipeline.Statement{
		{Range: rng(0), Label: a, Op: pipeline.OpEqu, EquValue: expr.Constant{Value: 42}},
	}
	p.Run(statements)
	require.False(t, collector.HasErrors())

	e := NewEngine(store, p, statements)
	text, ok := e.Hover(diag.Position{Line: 0, Column: 2})
	require.True(t, ok)
	require.Contains(t, text, "A:")
	require.Contains(t, text, "42")
}

func TestSemanticTokensCoverEveryStatement(t *testing.T) {
	store := ids.New()
	collector := diag.NewCollector()
	p := pipeline.NewPipeline(store, collector)

	a := store.Intern("A")
	statements := []*pipeline.Statement{
		{Range: rng(0), Label: a, Op: pipeline.OpEqu, EquValue: expr.Constant{Value: 1}},
		{Range: rng(1), Op: pipeline.OpDC, Data: nil},
	}
	p.Run(statements)

	e := NewEngine(store, p, statements)
	tokens := e.SemanticTokens()
	require.True(t, len(tokens) >= 3)
	require.Equal(t, ScopeLabel, tokens[0].Scope)
}

func TestIdleYieldsBetweenStatements(t *testing.T) {
	store := ids.New()
	collector := diag.NewCollector()
	p := pipeline.NewPipeline(store, collector)

	a := store.Intern("A")
	b := store.Intern("B")
	statements := []*pipeline.Statement{
		{Range: rng(0), Label: a, Op: pipeline.OpEqu, EquValue: expr.Constant{Value: 1}},
		{Range: rng(1), Label: b, Op: pipeline.OpEqu, EquValue: expr.Constant{Value: 2}},
	}

	e := NewEngine(store, p, statements)
	yield := byte(1)
	require.False(t, e.Idle(&yield))
	require.True(t, e.Idle(nil))
}
