package pipeline

import (
	"io"
	"testing"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/expr"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/obslog"
	"github.com/stretchr/testify/require"
)

func TestSettleRoundsAreLoggedAtDebug(t *testing.T) {
	store := ids.New()
	collector := diag.NewCollector()
	p := NewPipeline(store, collector)

	ring := obslog.NewRing(64)
	p.Logger = obslog.New(io.Discard, ring)

	a := store.Intern("A")
	b := store.Intern("B")

	statements := []*Statement{
		{Label: b, Op: OpEqu, EquValue: expr.Binary{Op: expr.OpAdd, Left: expr.SymbolRef{Name: a}, Right: expr.Constant{Value: 1}}},
		{Label: a, Op: OpEqu, EquValue: expr.Constant{Value: 5}},
	}

	p.Run(statements)
	require.False(t, collector.HasErrors(), "%v", collector.Items())

	messages := ring.Messages()
	require.Contains(t, messages, "settle round")
}

func TestDependencyCyclesAreLoggedAtDebug(t *testing.T) {
	store := ids.New()
	collector := diag.NewCollector()
	p := NewPipeline(store, collector)

	ring := obslog.NewRing(64)
	p.Logger = obslog.New(io.Discard, ring)

	a := store.Intern("A")
	b := store.Intern("B")

	statements := []*Statement{
		{Label: a, Op: OpEqu, EquValue: expr.SymbolRef{Name: b}},
		{Label: b, Op: OpEqu, EquValue: expr.SymbolRef{Name: a}},
	}

	p.Run(statements)
	require.True(t, collector.HasErrors())

	messages := ring.Messages()
	require.Contains(t, messages, "dependency cycle detected")
}
