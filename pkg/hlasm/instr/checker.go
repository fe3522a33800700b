package instr

import (
	"fmt"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
)

// OperandValue is one already-evaluated operand, tagged by which numeric
// field applies (spec.md §4.8). The statement pipeline is responsible for
// evaluating operand expressions down to this shape before calling Check;
// this package only validates the result's shape/range.
type OperandValue struct {
	Kind  OperandKind
	Value int
}

// Check validates operands against instr's expected shape, reporting the
// M-series diagnostics spec.md §7 defines for operand-shape errors. It
// always checks every operand it can, rather than stopping at the first
// problem, per spec.md §6's "must not abort" rule.
func Check(inst MachineInstruction, operands []OperandValue, consumer diag.Consumer, rng diag.Range) {
	if len(operands) != len(inst.Operands) {
		consumer.Add(diag.Diagnostic{
			Range: rng, Severity: diag.Error, Code: diag.CodeBadOperandCount,
			Message: fmt.Sprintf("%s expects %d operands, got %d", inst.Mnemonic, len(inst.Operands), len(operands)),
		})
		return
	}

	for i, shape := range inst.Operands {
		v := operands[i]
		if v.Kind != shape.Kind {
			consumer.Add(diag.Diagnostic{
				Range: rng, Severity: diag.Error, Code: diag.CodeBadOperandShape,
				Message: fmt.Sprintf("%s operand %d has the wrong shape", inst.Mnemonic, i+1),
			})
			continue
		}
		checkRange(inst, i, shape, v.Value, consumer, rng)
	}
}

func checkRange(inst MachineInstruction, index int, shape OperandShape, value int, consumer diag.Consumer, rng diag.Range) {
	switch shape.Kind {
	case OperandRegister, OperandBaseRegister, OperandIndexRegister:
		if value < 0 || value > 15 {
			consumer.Add(diag.Diagnostic{
				Range: rng, Severity: diag.Error, Code: diag.CodeRegisterRange,
				Message: fmt.Sprintf("%s operand %d: register out of range 0-15", inst.Mnemonic, index+1),
			})
		}
	case OperandVectorRegister:
		if value < 0 || value > 31 {
			consumer.Add(diag.Diagnostic{
				Range: rng, Severity: diag.Error, Code: diag.CodeVectorRegRange,
				Message: fmt.Sprintf("%s operand %d: vector register out of range 0-31", inst.Mnemonic, index+1),
			})
		}
	case OperandMask:
		if value < 0 || value > 15 {
			consumer.Add(diag.Diagnostic{
				Range: rng, Severity: diag.Error, Code: diag.CodeMaskRange,
				Message: fmt.Sprintf("%s operand %d: mask out of range 0-15", inst.Mnemonic, index+1),
			})
		}
	case OperandDisplacement:
		lo, hi := 0, (1<<shape.BitWidth)-1
		if shape.Signed {
			lo, hi = -(1 << (shape.BitWidth - 1)), (1<<(shape.BitWidth-1))-1
		}
		if value < lo {
			consumer.Add(diag.Diagnostic{Range: rng, Severity: diag.Error, Code: diag.CodeDisplacementMin, Message: fmt.Sprintf("%s operand %d: displacement below minimum %d", inst.Mnemonic, index+1, lo)})
		} else if value > hi {
			consumer.Add(diag.Diagnostic{Range: rng, Severity: diag.Error, Code: diag.CodeDisplacementMax, Message: fmt.Sprintf("%s operand %d: displacement above maximum %d", inst.Mnemonic, index+1, hi)})
		}
	case OperandImmediate, OperandLength:
		lo, hi := 0, (1<<shape.BitWidth)-1
		if shape.Signed {
			lo, hi = -(1 << (shape.BitWidth - 1)), (1<<(shape.BitWidth-1))-1
		}
		if value < lo || value > hi {
			consumer.Add(diag.Diagnostic{
				Range: rng, Severity: diag.Error, Code: diag.CodeImmediateRange,
				Message: fmt.Sprintf("%s operand %d: value out of range %d..%d", inst.Mnemonic, index+1, lo, hi),
			})
		}
	}
}
