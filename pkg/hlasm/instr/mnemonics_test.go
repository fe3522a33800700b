package instr

import (
	"testing"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/stretchr/testify/require"
)

func TestMnemonicBExpandsToBcWithMaskFifteen(t *testing.T) {
	b, ok := LookupMnemonic("B")
	require.True(t, ok)
	require.Equal(t, "BC", b.Parent)

	bc, ok := Lookup(b.Parent)
	require.True(t, ok)

	expanded := b.Expand(bc, []OperandValue{
		{Kind: OperandIndexRegister, Value: 0},
		{Kind: OperandBaseRegister, Value: 12},
		{Kind: OperandDisplacement, Value: 4},
	})
	require.Equal(t, []OperandValue{
		{Kind: OperandMask, Value: 15},
		{Kind: OperandIndexRegister, Value: 0},
		{Kind: OperandBaseRegister, Value: 12},
		{Kind: OperandDisplacement, Value: 4},
	}, expanded)

	collector := diag.NewCollector()
	Check(bc, expanded, collector, diag.Range{})
	require.False(t, collector.HasErrors(), "%v", collector.Items())
}

func TestMnemonicNopExpandsToBcWithMaskZero(t *testing.T) {
	nop, ok := LookupMnemonic("NOP")
	require.True(t, ok)
	bc, _ := Lookup(nop.Parent)

	expanded := nop.Expand(bc, []OperandValue{
		{Kind: OperandIndexRegister, Value: 0},
		{Kind: OperandBaseRegister, Value: 12},
		{Kind: OperandDisplacement, Value: 4},
	})
	require.Equal(t, 0, expanded[0].Value)
	require.Equal(t, OperandMask, expanded[0].Kind)
}

func TestUsesLongDisplacementDistinguishesLaFromLay(t *testing.T) {
	la, _ := Lookup("LA")
	lay, _ := Lookup("LAY")
	require.False(t, la.UsesLongDisplacement())
	require.True(t, lay.UsesLongDisplacement())
}

func TestLayAcceptsTwentyBitDisplacement(t *testing.T) {
	lay, _ := Lookup("LAY")
	collector := diag.NewCollector()
	Check(lay, []OperandValue{
		{Kind: OperandRegister, Value: 1},
		{Kind: OperandIndexRegister, Value: 0},
		{Kind: OperandBaseRegister, Value: 12},
		{Kind: OperandDisplacement, Value: 100000},
	}, collector, diag.Range{})
	require.False(t, collector.HasErrors(), "%v", collector.Items())
}

func TestLarlUsesRelAddrOnItsImmediateOperand(t *testing.T) {
	larl, ok := Lookup("LARL")
	require.True(t, ok)
	require.False(t, larl.UsesRelAddr(0))
	require.True(t, larl.UsesRelAddr(1))
}

func TestDocStringModulesCoverNewTables(t *testing.T) {
	require.Contains(t, MnemonicDocString(), "B -> BC")
	require.Contains(t, AssemblerDocString(), "USING")
	require.Contains(t, CaDocString(), "AIF")
}
