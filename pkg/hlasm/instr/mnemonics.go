package instr

import (
	"fmt"
	"sort"
	"strings"
)

// TransformKind enumerates the operations a MnemonicCode's
// operand_transformations list can apply while expanding a mnemonic's
// user-supplied operands into its parent instruction's full operand list
// (spec.md §4.8 point 4).
type TransformKind int

const (
	// TransformCopy passes the next user-supplied operand through as-is.
	TransformCopy TransformKind = iota
	// TransformSkip consumes the next user-supplied operand without
	// emitting anything for it (used when a mnemonic drops an operand
	// its parent instruction carries some other way).
	TransformSkip
	// TransformInsert emits Value as a fixed operand, consuming nothing
	// from the user's operand list (e.g. B's implied mask 15 on BC).
	TransformInsert
	// TransformOrWith ORs Value into the next user-supplied operand.
	TransformOrWith
	// TransformAddTo adds Value to the next user-supplied operand.
	TransformAddTo
	// TransformSubtractFrom computes Value minus the next user-supplied
	// operand.
	TransformSubtractFrom
	// TransformComplement bitwise-complements the next user-supplied
	// operand.
	TransformComplement
)

// OperandTransformation is one step of a MnemonicCode's expansion
// template.
type OperandTransformation struct {
	Kind  TransformKind
	Value int
}

// MnemonicCode is an instruction-table alias that expands to one of
// Table's MachineInstruction entries with some operands fixed or
// transformed — spec.md §3's `MnemonicCode { name, parent_instruction_idx,
// operand_transformations[], reladdr_mask, arch-affiliation }`, grounded
// on real HLASM extended mnemonics (`B`/`NOP` as masked forms of `BC`).
type MnemonicCode struct {
	Name            string
	Parent          string
	Transformations []OperandTransformation
	ReladdrMask     uint32
	ArchAffiliation uint32
}

// Mnemonics is the static set of mnemonic aliases this analyzer resolves
// against Table. It is a representative slice, not the full HLASM
// extended-mnemonic set, matching Table's own scope note.
var Mnemonics = map[string]MnemonicCode{
	"B": {
		Name: "B", Parent: "BC",
		Transformations: []OperandTransformation{
			{Kind: TransformInsert, Value: 15},
			{Kind: TransformCopy},
			{Kind: TransformCopy},
			{Kind: TransformCopy},
		},
	},
	"NOP": {
		Name: "NOP", Parent: "BC",
		Transformations: []OperandTransformation{
			{Kind: TransformInsert, Value: 0},
			{Kind: TransformCopy},
			{Kind: TransformCopy},
			{Kind: TransformCopy},
		},
	},
}

// LookupMnemonic returns the MnemonicCode named name, if known.
func LookupMnemonic(name string) (MnemonicCode, bool) {
	m, ok := Mnemonics[name]
	return m, ok
}

// Expand applies m's operand_transformations against user (the operands
// as written at the mnemonic's own call site) to produce the full operand
// list parent expects, inserting/skipping/copying/combining per
// transformation (spec.md §4.8 point 4). When user holds exactly the
// operands the transformations consume, the result has one entry per
// transformation other than skip. Too few user operands never panic: the
// missing ones are dropped from the result, and surplus user operands are
// appended unchanged, so in both cases Check reports the bad operand count.
func (m MnemonicCode) Expand(parent MachineInstruction, user []OperandValue) []OperandValue {
	out := make([]OperandValue, 0, len(m.Transformations))
	ui := 0
	next := func() OperandValue {
		if ui < len(user) {
			v := user[ui]
			ui++
			return v
		}
		ui++
		return OperandValue{}
	}
	for _, t := range m.Transformations {
		idx := len(out)
		kind := OperandKind(0)
		if idx < len(parent.Operands) {
			kind = parent.Operands[idx].Kind
		}
		switch t.Kind {
		case TransformInsert:
			out = append(out, OperandValue{Kind: kind, Value: t.Value})
		case TransformSkip:
			next()
		case TransformCopy:
			v := next()
			out = append(out, OperandValue{Kind: kind, Value: v.Value})
		case TransformOrWith:
			v := next()
			out = append(out, OperandValue{Kind: kind, Value: v.Value | t.Value})
		case TransformAddTo:
			v := next()
			out = append(out, OperandValue{Kind: kind, Value: v.Value + t.Value})
		case TransformSubtractFrom:
			v := next()
			out = append(out, OperandValue{Kind: kind, Value: t.Value - v.Value})
		case TransformComplement:
			v := next()
			out = append(out, OperandValue{Kind: kind, Value: ^v.Value})
		}
	}
	switch {
	case ui > len(user):
		keep := len(out) - (ui - len(user))
		if keep < 0 {
			keep = 0
		}
		out = out[:keep]
	case ui < len(user):
		out = append(out, user[ui:]...)
	}
	return out
}

// AssemblerInstruction is one assembler-statement opcode's static shape —
// spec.md §3's `AssemblerInstruction { name, min/max operands,
// has_ordinary_symbols, description }`. The statement pipeline dispatches
// these by Op kind rather than by table lookup (spec.md §4.8 scopes
// assembler-instruction *operand checking* out, beyond this static
// inventory), so AssemblerTable exists to drive `docs assembler` and to
// give a home to each opcode's operand-count contract.
type AssemblerInstruction struct {
	Name              string
	MinOperands       int
	MaxOperands       int
	HasOrdinarySymbol bool
	Description       string
}

// AssemblerTable lists the assembler instructions this analyzer's
// statement pipeline recognizes (by Op kind, not by name lookup), mirrors
// spec.md §3's static AssemblerInstruction inventory.
var AssemblerTable = map[string]AssemblerInstruction{
	"CSECT": {Name: "CSECT", MinOperands: 0, MaxOperands: 0, HasOrdinarySymbol: true, Description: "begin or resume a control section"},
	"DSECT": {Name: "DSECT", MinOperands: 0, MaxOperands: 0, HasOrdinarySymbol: true, Description: "begin or resume a dummy section"},
	"LOCTR": {Name: "LOCTR", MinOperands: 0, MaxOperands: 0, HasOrdinarySymbol: true, Description: "begin or resume a named location counter"},
	"EQU":   {Name: "EQU", MinOperands: 1, MaxOperands: 5, HasOrdinarySymbol: true, Description: "define a symbol's value, length, scale, type and program-type attributes"},
	"USING": {Name: "USING", MinOperands: 2, MaxOperands: 17, HasOrdinarySymbol: false, Description: "establish a base-register mapping"},
	"DROP":  {Name: "DROP", MinOperands: 1, MaxOperands: 16, HasOrdinarySymbol: false, Description: "remove a base-register mapping"},
	"ORG":   {Name: "ORG", MinOperands: 0, MaxOperands: 3, HasOrdinarySymbol: false, Description: "move the current location counter"},
	"DC":    {Name: "DC", MinOperands: 1, MaxOperands: -1, HasOrdinarySymbol: true, Description: "define storage with an initial nominal value"},
	"DS":    {Name: "DS", MinOperands: 1, MaxOperands: -1, HasOrdinarySymbol: true, Description: "define uninitialized storage"},
	"LTORG": {Name: "LTORG", MinOperands: 0, MaxOperands: 0, HasOrdinarySymbol: false, Description: "flush the pending literal pool"},
	"END":   {Name: "END", MinOperands: 0, MaxOperands: 2, HasOrdinarySymbol: false, Description: "end of the translation unit"},
}

// CaInstruction is one conditional-assembly opcode's static shape —
// spec.md §3's `CaInstruction { name, opless: bool }`. The macro expander
// itself is out of scope (spec.md §1); CaTable is a static inventory of
// these opcodes, kept apart from the machine and assembler tables. The
// statement pipeline does not consult it; it drives `docs ca`.
type CaInstruction struct {
	Name   string
	Opless bool
}

// CaTable lists the conditional-assembly opcodes by name; evaluating their
// semantics is out of scope.
var CaTable = map[string]CaInstruction{
	"AIF":    {Name: "AIF", Opless: false},
	"AGO":    {Name: "AGO", Opless: false},
	"ACTR":   {Name: "ACTR", Opless: false},
	"ANOP":   {Name: "ANOP", Opless: true},
	"MEXIT":  {Name: "MEXIT", Opless: true},
	"MEND":   {Name: "MEND", Opless: true},
	"SETA":   {Name: "SETA", Opless: false},
	"SETB":   {Name: "SETB", Opless: false},
	"SETC":   {Name: "SETC", Opless: false},
	"GBLA":   {Name: "GBLA", Opless: false},
	"GBLB":   {Name: "GBLB", Opless: false},
	"GBLC":   {Name: "GBLC", Opless: false},
	"LCLA":   {Name: "LCLA", Opless: false},
	"LCLB":   {Name: "LCLB", Opless: false},
	"LCLC":   {Name: "LCLC", Opless: false},
}

func (k TransformKind) String() string {
	switch k {
	case TransformCopy:
		return "copy"
	case TransformSkip:
		return "skip"
	case TransformInsert:
		return "insert"
	case TransformOrWith:
		return "or_with"
	case TransformAddTo:
		return "add_to"
	case TransformSubtractFrom:
		return "subtract_from"
	case TransformComplement:
		return "complement"
	default:
		return "?"
	}
}

// MnemonicDocString dumps Mnemonics as one multiline string, in mnemonic
// order, for the CLI's `docs mnemonics` subcommand.
func MnemonicDocString() string {
	names := make([]string, 0, len(Mnemonics))
	for name := range Mnemonics {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "total mnemonics: %d\n\n", len(Mnemonics))
	for _, name := range names {
		m := Mnemonics[name]
		fmt.Fprintf(&b, "%s -> %s\n", m.Name, m.Parent)
		for n, t := range m.Transformations {
			fmt.Fprintf(&b, "  step %d: %s(%d)\n", n+1, t.Kind, t.Value)
		}
	}
	return b.String()
}

// AssemblerDocString dumps AssemblerTable as one multiline string, in
// name order, for the CLI's `docs assembler` subcommand.
func AssemblerDocString() string {
	names := make([]string, 0, len(AssemblerTable))
	for name := range AssemblerTable {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "total assembler instructions: %d\n\n", len(AssemblerTable))
	for _, name := range names {
		a := AssemblerTable[name]
		fmt.Fprintf(&b, "%s (%d..%d operands, ordinary symbol=%v): %s\n", a.Name, a.MinOperands, a.MaxOperands, a.HasOrdinarySymbol, a.Description)
	}
	return b.String()
}

// CaDocString dumps CaTable as one multiline string, in name order, for
// the CLI's `docs ca` subcommand.
func CaDocString() string {
	names := make([]string, 0, len(CaTable))
	for name := range CaTable {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "total CA instructions: %d\n\n", len(CaTable))
	for _, name := range names {
		c := CaTable[name]
		fmt.Fprintf(&b, "%s (opless=%v)\n", c.Name, c.Opless)
	}
	return b.String()
}
