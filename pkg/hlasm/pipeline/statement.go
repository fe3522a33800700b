// Package pipeline implements the statement pipeline (spec.md §4.9/§5):
// it drives already-parsed statements through the ordinary assembly
// context, the USING engine, and the instruction checker, deferring a
// statement that can't complete yet and re-firing it once its
// dependencies resolve.
package pipeline

import (
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/datadef"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/expr"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/instr"
)

// Op names the statement shapes the pipeline dispatches on. The
// lexer/parser collaborator (out of scope, per spec.md's non-goals) is
// what would normally classify raw source text into one of these; the
// fixture package does the same job for pre-structured test input.
type Op int

const (
	OpMachine Op = iota
	OpSection // CSECT/DSECT/COM/RSECT
	OpLoctr   // LOCTR
	OpEqu
	OpUsing
	OpDrop
	OpOrg
	OpDC
	OpDS
	OpLtorg
	OpEnd
	OpNoop
)

// UsingOperand is one USING statement's operands, already split into its
// begin/end addressing expressions and the register list it claims.
type UsingOperand struct {
	Qualifier ids.Index
	Begin     expr.Node
	End       expr.Node // nil: unranged
	Registers []int
}

// MachineOperand is one machine-instruction operand, already classified by
// kind; Value is evaluated through the solver at processing time.
type MachineOperand struct {
	Kind  instr.OperandKind
	Value expr.Node
}

// Statement is one already-parsed program statement (spec.md §4.9). Which
// fields are meaningful depends on Op.
type Statement struct {
	Range diag.Range
	Label ids.Index
	Op    Op

	// OpMachine
	Mnemonic string
	Machine  []MachineOperand

	// OpSection
	SectionName ids.Index
	SectionKind context.SectionKind

	// OpLoctr
	LoctrName ids.Index

	// OpEqu
	EquValue expr.Node
	EquType  expr.Node // optional assembler-type/program-type operand

	// OpUsing
	Using UsingOperand

	// OpDrop; empty Registers means "drop everything active"
	DropRegisters []int

	// OpOrg; nil Target means "ORG with no operand" (rewind to LOCTR_MAX)
	OrgTarget expr.Node

	// OpDC / OpDS
	Data []datadef.Operand

	id context.StatementID
}
