package datadef

import (
	"testing"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
	"github.com/stretchr/testify/require"
)

func TestOperandElementLength(t *testing.T) {
	op := NewOperand('F')
	l, ok := op.ElementLength()
	require.True(t, ok)
	require.Equal(t, 4, l)

	cop := NewOperand('C')
	cop.RawValues = []string{"HELLO"}
	l, ok = cop.ElementLength()
	require.True(t, ok)
	require.Equal(t, 5, l)

	explicit := 10
	lop := NewOperand('C')
	lop.ExplicitLength = &explicit
	l, ok = lop.ElementLength()
	require.True(t, ok)
	require.Equal(t, 10, l)
}

func TestOperandValidateFlagsBadModifiers(t *testing.T) {
	op := NewOperand('F')
	op.DupFactor = -1
	collector := diag.NewCollector()
	op.Validate(collector, diag.Range{})
	require.True(t, collector.HasErrors())
}

func TestPoolDeduplicatesByText(t *testing.T) {
	store := ids.New()
	pool := NewPool()

	id1 := pool.AddLiteral(store, "F'5'", NewOperand('F'), context.Address{})
	id2 := pool.AddLiteral(store, "F'5'", NewOperand('F'), context.Address{Offset: 4})
	id3 := pool.AddLiteral(store, "F'6'", NewOperand('F'), context.Address{})

	require.Equal(t, id1, id2)
	require.NotEqual(t, id1, id3)
	require.Len(t, pool.Pending(), 2)
}

func TestPoolSplitsLocationCounterRelativeLiteralsByOffset(t *testing.T) {
	store := ids.New()
	pool := NewPool()

	id1 := pool.AddLiteral(store, "A(*)", NewOperand('A'), context.Address{Offset: 0})
	id2 := pool.AddLiteral(store, "A(*)", NewOperand('A'), context.Address{Offset: 6})
	id3 := pool.AddLiteral(store, "A(*)", NewOperand('A'), context.Address{Offset: 0})

	require.NotEqual(t, id1, id2)
	require.Equal(t, id1, id3)
	require.Len(t, pool.Pending(), 2)
}

func TestPoolDoesNotDedupeAcrossIncompatibleLoctrs(t *testing.T) {
	store := ids.New()
	pool := NewPool()

	baseA := context.Base{Section: &context.Section{Name: store.Intern("CSECTA")}}
	baseB := context.Base{Section: &context.Section{Name: store.Intern("CSECTB")}}
	addrA := context.Address{Bases: []context.BaseMult{{Base: baseA, Mult: 1}}}
	addrB := context.Address{Bases: []context.BaseMult{{Base: baseB, Mult: 1}}}

	id1 := pool.AddLiteral(store, "F'5'", NewOperand('F'), addrA)
	id2 := pool.AddLiteral(store, "F'5'", NewOperand('F'), addrB)

	require.NotEqual(t, id1, id2)
	require.Len(t, pool.Pending(), 2)
}

func TestGeneratePoolPlacesAndDefines(t *testing.T) {
	store := ids.New()
	ordinary := context.NewOrdinaryAssemblyContext(store)
	ordinary.SetSection(store.Intern("CSECT1"), context.SectionExecutable)
	lc := ordinary.CurrentLocationCounter()

	pool := NewPool()
	id := pool.AddLiteral(store, "F'5'", NewOperand('F'), context.Address{})
	pool.GeneratePool(lc, ordinary.Symbols)

	sym, ok := ordinary.Symbols.Lookup(id)
	require.True(t, ok)
	require.False(t, sym.Value().Undefined())
	require.Equal(t, 4, sym.Attributes.Length())
	require.Empty(t, pool.Pending())
}
