// Package instr holds the static machine-instruction table and the
// operand-shape checker (spec.md §4.8 "Instruction & operand checker").
package instr

import (
	"fmt"
	"sort"
	"strings"
)

// Format names the instruction encoding family an opcode belongs to,
// grounded on the teacher's `mc.InstructionsDescriptor` table-of-opcodes
// pattern, generalized from the teacher's single made-up ISA to a small
// slice of the real S/390 formats this analyzer's operand checker needs
// to distinguish.
type Format int

const (
	FormatRR  Format = iota // reg, reg
	FormatRX                // reg, D(X,B)
	FormatRS                // reg, reg, D(B)
	FormatSI                // D(B), immediate
	FormatSS                // D(L,B), D(B)
	FormatRSI               // reg, reg, immediate (relative branch)
	FormatRRE               // reg, reg (extended opcode)
	FormatRXY               // reg, D(X,B) with a 20-bit signed displacement
	FormatRIL               // reg, 32-bit relative-immediate halfword count
)

// OperandKind tags what an instruction operand slot expects.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandMask
	OperandImmediate
	OperandDisplacement
	OperandLength
	OperandBaseRegister
	OperandIndexRegister
	OperandVectorRegister
)

// OperandShape describes one operand slot's expected kind and numeric
// range.
type OperandShape struct {
	Kind     OperandKind
	BitWidth int
	Signed   bool
}

// MachineInstruction is one opcode's static shape: how many operands, of
// what kind, and the instruction's encoded length — grounded on
// `mc.InstructionDescriptor` (OpCode/Operands/Description), generalized
// from the teacher's single made-up instruction set to a representative
// slice of the S/390 instruction set spec.md §4.8 requires the checker to
// validate against.
type MachineInstruction struct {
	Mnemonic string
	Format   Format
	Length   int
	Operands []OperandShape

	// ReladdrMask has bit i set when operand i is a relative-immediate
	// term the instruction checker must wrap in expr.RelAddr before
	// evaluation (spec.md §4.7), rather than checking it as a plain
	// displacement/immediate.
	ReladdrMask uint32
}

// UsesRelAddr reports whether operand index is a relative-immediate
// operand under this instruction's ReladdrMask.
func (i MachineInstruction) UsesRelAddr(index int) bool {
	return i.ReladdrMask&(1<<uint(index)) != 0
}

// Table is the static set of machine instructions this analyzer checks
// operands against. It is intentionally a representative slice (spec.md
// explicitly scopes the full opcode table as "instruction sets beyond the
// opcode table" out of bounds) rather than the full S/390 instruction set.
var Table = map[string]MachineInstruction{
	"LR": {Mnemonic: "LR", Format: FormatRR, Length: 2, Operands: []OperandShape{
		{Kind: OperandRegister, BitWidth: 4}, {Kind: OperandRegister, BitWidth: 4},
	}},
	"AR": {Mnemonic: "AR", Format: FormatRR, Length: 2, Operands: []OperandShape{
		{Kind: OperandRegister, BitWidth: 4}, {Kind: OperandRegister, BitWidth: 4},
	}},
	"SR": {Mnemonic: "SR", Format: FormatRR, Length: 2, Operands: []OperandShape{
		{Kind: OperandRegister, BitWidth: 4}, {Kind: OperandRegister, BitWidth: 4},
	}},
	"L": {Mnemonic: "L", Format: FormatRX, Length: 4, Operands: []OperandShape{
		{Kind: OperandRegister, BitWidth: 4},
		{Kind: OperandIndexRegister, BitWidth: 4},
		{Kind: OperandBaseRegister, BitWidth: 4},
		{Kind: OperandDisplacement, BitWidth: 12},
	}},
	"ST": {Mnemonic: "ST", Format: FormatRX, Length: 4, Operands: []OperandShape{
		{Kind: OperandRegister, BitWidth: 4},
		{Kind: OperandIndexRegister, BitWidth: 4},
		{Kind: OperandBaseRegister, BitWidth: 4},
		{Kind: OperandDisplacement, BitWidth: 12},
	}},
	"LA": {Mnemonic: "LA", Format: FormatRX, Length: 4, Operands: []OperandShape{
		{Kind: OperandRegister, BitWidth: 4},
		{Kind: OperandIndexRegister, BitWidth: 4},
		{Kind: OperandBaseRegister, BitWidth: 4},
		{Kind: OperandDisplacement, BitWidth: 12},
	}},
	"A": {Mnemonic: "A", Format: FormatRX, Length: 4, Operands: []OperandShape{
		{Kind: OperandRegister, BitWidth: 4},
		{Kind: OperandIndexRegister, BitWidth: 4},
		{Kind: OperandBaseRegister, BitWidth: 4},
		{Kind: OperandDisplacement, BitWidth: 12},
	}},
	"BC": {Mnemonic: "BC", Format: FormatRX, Length: 4, Operands: []OperandShape{
		{Kind: OperandMask, BitWidth: 4},
		{Kind: OperandIndexRegister, BitWidth: 4},
		{Kind: OperandBaseRegister, BitWidth: 4},
		{Kind: OperandDisplacement, BitWidth: 12},
	}},
	"MVC": {Mnemonic: "MVC", Format: FormatSS, Length: 6, Operands: []OperandShape{
		{Kind: OperandBaseRegister, BitWidth: 4},
		{Kind: OperandDisplacement, BitWidth: 12},
		{Kind: OperandLength, BitWidth: 8},
		{Kind: OperandBaseRegister, BitWidth: 4},
		{Kind: OperandDisplacement, BitWidth: 12},
	}},
	"MVI": {Mnemonic: "MVI", Format: FormatSI, Length: 4, Operands: []OperandShape{
		{Kind: OperandBaseRegister, BitWidth: 4},
		{Kind: OperandDisplacement, BitWidth: 12},
		{Kind: OperandImmediate, BitWidth: 8},
	}},
	"AGRK": {Mnemonic: "AGRK", Format: FormatRRE, Length: 4, Operands: []OperandShape{
		{Kind: OperandRegister, BitWidth: 4}, {Kind: OperandRegister, BitWidth: 4}, {Kind: OperandRegister, BitWidth: 4},
	}},
	"LAY": {Mnemonic: "LAY", Format: FormatRXY, Length: 6, Operands: []OperandShape{
		{Kind: OperandRegister, BitWidth: 4},
		{Kind: OperandIndexRegister, BitWidth: 4},
		{Kind: OperandBaseRegister, BitWidth: 4},
		{Kind: OperandDisplacement, BitWidth: 20, Signed: true},
	}},
	"LARL": {Mnemonic: "LARL", Format: FormatRIL, Length: 6, Operands: []OperandShape{
		{Kind: OperandRegister, BitWidth: 4},
		{Kind: OperandImmediate, BitWidth: 32, Signed: true},
	}, ReladdrMask: 1 << 1},
}

// Lookup returns the MachineInstruction named mnemonic, if known.
func Lookup(mnemonic string) (MachineInstruction, bool) {
	i, ok := Table[mnemonic]
	return i, ok
}

// UsesLongDisplacement reports whether any of an instruction's
// displacement operands use the 20-bit signed form (RXY-class opcodes
// such as LAY) rather than the 12-bit unsigned form (RX-class opcodes such
// as LA) — the USING engine's Evaluate needs this bit to pick its range
// (spec.md §4.7/§8 scenario 6: switching LA to LAY widens the range and
// drops the ME008 out-of-range diagnostic).
func (i MachineInstruction) UsesLongDisplacement() bool {
	for _, op := range i.Operands {
		if op.Kind == OperandDisplacement && op.BitWidth > 12 {
			return true
		}
	}
	return false
}

func (f Format) String() string {
	switch f {
	case FormatRR:
		return "RR"
	case FormatRX:
		return "RX"
	case FormatRS:
		return "RS"
	case FormatSI:
		return "SI"
	case FormatSS:
		return "SS"
	case FormatRSI:
		return "RSI"
	case FormatRRE:
		return "RRE"
	case FormatRXY:
		return "RXY"
	case FormatRIL:
		return "RIL"
	default:
		return "?"
	}
}

func (k OperandKind) String() string {
	switch k {
	case OperandRegister:
		return "register"
	case OperandMask:
		return "mask"
	case OperandImmediate:
		return "immediate"
	case OperandDisplacement:
		return "displacement"
	case OperandLength:
		return "length"
	case OperandBaseRegister:
		return "base_register"
	case OperandIndexRegister:
		return "index_register"
	case OperandVectorRegister:
		return "vector_register"
	default:
		return "?"
	}
}

// Documentation renders one instruction's shape as a multiline string,
// mirroring the teacher's InstructionDescriptor.Documentation(leftpad)
// pattern: a header line followed by one indented line per operand.
func (i MachineInstruction) Documentation(leftpad int) string {
	pad := strings.Repeat(" ", leftpad)
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s (%s, %d bytes)\n", pad, i.Mnemonic, i.Format, i.Length)
	for n, op := range i.Operands {
		fmt.Fprintf(&b, "%s  operand %d: %s (%d bits, signed=%v)\n", pad, n+1, op.Kind, op.BitWidth, op.Signed)
	}
	return b.String()
}

// DocString dumps the whole Table as one multiline string, in mnemonic
// order, for the CLI's `docs instructions` subcommand.
func DocString() string {
	names := make([]string, 0, len(Table))
	for name := range Table {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "total instructions: %d\n\n", len(Table))
	for _, name := range names {
		b.WriteString(Table[name].Documentation(0))
		b.WriteString("\n")
	}
	return b.String()
}
