package instr

import (
	"strings"
	"testing"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/stretchr/testify/require"
)

func TestCheckValidLR(t *testing.T) {
	lr, ok := Lookup("LR")
	require.True(t, ok)

	collector := diag.NewCollector()
	Check(lr, []OperandValue{{Kind: OperandRegister, Value: 1}, {Kind: OperandRegister, Value: 2}}, collector, diag.Range{})
	require.False(t, collector.HasErrors())
}

func TestCheckBadOperandCount(t *testing.T) {
	lr, _ := Lookup("LR")
	collector := diag.NewCollector()
	Check(lr, []OperandValue{{Kind: OperandRegister, Value: 1}}, collector, diag.Range{})
	require.True(t, collector.HasErrors())
	require.Equal(t, diag.CodeBadOperandCount, collector.Items()[0].Code)
}

func TestCheckRegisterOutOfRange(t *testing.T) {
	lr, _ := Lookup("LR")
	collector := diag.NewCollector()
	Check(lr, []OperandValue{{Kind: OperandRegister, Value: 20}, {Kind: OperandRegister, Value: 1}}, collector, diag.Range{})
	require.True(t, collector.HasErrors())
	require.Equal(t, diag.CodeRegisterRange, collector.Items()[0].Code)
}

func TestCheckDisplacementRange(t *testing.T) {
	l, _ := Lookup("L")
	collector := diag.NewCollector()
	Check(l, []OperandValue{
		{Kind: OperandRegister, Value: 1},
		{Kind: OperandIndexRegister, Value: 0},
		{Kind: OperandBaseRegister, Value: 12},
		{Kind: OperandDisplacement, Value: 5000},
	}, collector, diag.Range{})
	require.True(t, collector.HasErrors())
	require.Equal(t, diag.CodeDisplacementMax, collector.Items()[0].Code)
}

func TestDocStringListsEveryMnemonicInOrder(t *testing.T) {
	text := DocString()
	require.Contains(t, text, "total instructions:")

	lr := strings.Index(text, "LR ")
	mvi := strings.Index(text, "MVI ")
	require.True(t, lr >= 0)
	require.True(t, mvi >= 0)
	require.True(t, lr < mvi, "expected LR before MVI in mnemonic order")
}

func TestDocumentationListsEveryOperand(t *testing.T) {
	agrk, _ := Lookup("AGRK")
	text := agrk.Documentation(0)
	require.Contains(t, text, "AGRK")
	require.Contains(t, text, "operand 1:")
	require.Contains(t, text, "operand 3:")
}
