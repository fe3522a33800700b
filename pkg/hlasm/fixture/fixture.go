// Package fixture loads pre-structured statement lists from YAML, the
// stand-in for "already-parsed HLASM statements" spec.md §6 describes as
// coming from a parser collaborator explicitly out of this repo's scope.
// A fixture file is not HLASM source: it names each statement's kind and
// operand values directly, the same way a parser's own AST would, and
// this package performs no grammar analysis of its own.
package fixture

import (
	"errors"
	"fmt"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/datadef"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/expr"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/instr"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/pipeline"
	yaml2 "gopkg.in/yaml.v2"
	yaml3 "gopkg.in/yaml.v3"
)

// Errors returned while converting a decoded fixture document into
// Statements; these are programmer/fixture-author mistakes, not
// diagnostics, so they surface as plain Go errors (spec.md §7's
// "evaluation never throws" policy only governs the pipeline itself).
var (
	ErrUnknownOp          = errors.New("fixture: unknown statement op")
	ErrUnknownExprKind    = errors.New("fixture: unknown expression kind")
	ErrUnknownOperandKind = errors.New("fixture: unknown operand kind")
	ErrUnknownSectionKind = errors.New("fixture: unknown section kind")
	ErrUnknownAttribute   = errors.New("fixture: unknown data attribute")
)


// Doc is the top-level shape of a fixture file, shared between the
// current (yaml.v3) and legacy (yaml.v2) dialects — both libraries honor
// the same `yaml:"..."` struct tags, so one type serves both readers.
type Doc struct {
	Statements []StatementDoc `yaml:"statements"`
}

// StatementDoc mirrors pipeline.Statement field for field; which fields
// matter depends on Op, exactly as in the type it builds.
type StatementDoc struct {
	Line int    `yaml:"line"`
	Label string `yaml:"label"`
	Op    string `yaml:"op"`

	Mnemonic string       `yaml:"mnemonic"`
	Operands []OperandDoc `yaml:"operands"`

	SectionName string `yaml:"section_name"`
	SectionKind string `yaml:"section_kind"`

	LoctrName string `yaml:"loctr_name"`

	EquValue *ExprDoc `yaml:"equ_value"`
	EquType  *ExprDoc `yaml:"equ_type"`

	UsingQualifier string   `yaml:"using_qualifier"`
	UsingBegin     *ExprDoc `yaml:"using_begin"`
	UsingEnd       *ExprDoc `yaml:"using_end"`
	UsingRegisters []int    `yaml:"using_registers"`

	DropRegisters []int `yaml:"drop_registers"`

	OrgTarget *ExprDoc `yaml:"org_target"`

	Data []DataDoc `yaml:"data"`
}

// OperandDoc is one machine-instruction operand slot.
type OperandDoc struct {
	Kind  string  `yaml:"kind"`
	Value ExprDoc `yaml:"value"`
}

// ExprDoc is one expr.Node, tagged by Kind so the loader can build the
// concrete node type without parsing any operator syntax itself.
type ExprDoc struct {
	Kind string `yaml:"kind"`

	Value int    `yaml:"value"`      // const
	Name  string `yaml:"name"`       // symbol / data-attr-ref's symbol
	Attribute string `yaml:"attribute"` // data-attr-ref's attribute letter
	Text  string `yaml:"text"`       // literal

	Op          string   `yaml:"bin_op"` // binary: add/sub/mul/div
	Left        *ExprDoc `yaml:"left"`
	Right       *ExprDoc `yaml:"right"`

	Negate  bool     `yaml:"negate"` // unary
	Operand *ExprDoc `yaml:"operand"`

	Qualifier string   `yaml:"qualifier"` // using_base / using_disp
	Address   *ExprDoc `yaml:"address"`
}

// DataDoc is one DC/DS operand.
type DataDoc struct {
	DupFactor      int       `yaml:"dup_factor"`
	Type           string    `yaml:"type"`
	ExplicitLength *int      `yaml:"length"`
	ExplicitScale  *int      `yaml:"scale"`
	RawValues      []string  `yaml:"raw_values"`
	AddressValues  []ExprDoc `yaml:"address_values"`
}

// Loader converts decoded fixture documents into pipeline.Statements,
// interning names through store and building address arithmetic against
// arena — both must be the same Store/SpaceArena the target
// pipeline.Pipeline was constructed with.
type Loader struct {
	store *ids.Store
	arena *context.SpaceArena
}

// New returns a Loader that interns names through store and builds
// address-arithmetic nodes against arena.
func New(store *ids.Store, arena *context.SpaceArena) *Loader {
	return &Loader{store: store, arena: arena}
}

// Load decodes data as the current (yaml.v3) fixture dialect.
func (l *Loader) Load(data []byte) ([]*pipeline.Statement, error) {
	var doc Doc
	if err := yaml3.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fixture: decode: %w", err)
	}
	return l.build(doc)
}

// LoadLegacy decodes data as the older yaml.v2 fixture dialect, kept for
// golden files migrated from a previous fixture format.
func (l *Loader) LoadLegacy(data []byte) ([]*pipeline.Statement, error) {
	var doc Doc
	if err := yaml2.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("fixture: decode legacy: %w", err)
	}
	return l.build(doc)
}

func (l *Loader) build(doc Doc) ([]*pipeline.Statement, error) {
	out := make([]*pipeline.Statement, 0, len(doc.Statements))
	for i, sd := range doc.Statements {
		st, err := l.buildStatement(sd)
		if err != nil {
			return nil, fmt.Errorf("fixture: statement %d: %w", i, err)
		}
		out = append(out, st)
	}
	return out, nil
}

func (l *Loader) rangeFor(sd StatementDoc) diag.Range {
	return diag.Range{
		Start: diag.Position{Line: sd.Line, Column: 0},
		End:   diag.Position{Line: sd.Line, Column: 1 << 20},
	}
}

func (l *Loader) buildStatement(sd StatementDoc) (*pipeline.Statement, error) {
	st := &pipeline.Statement{
		Range: l.rangeFor(sd),
		Label: l.store.Intern(sd.Label),
	}

	switch sd.Op {
	case "machine":
		st.Op = pipeline.OpMachine
	case "section":
		st.Op = pipeline.OpSection
	case "loctr":
		st.Op = pipeline.OpLoctr
	case "equ":
		st.Op = pipeline.OpEqu
	case "using":
		st.Op = pipeline.OpUsing
	case "drop":
		st.Op = pipeline.OpDrop
	case "org":
		st.Op = pipeline.OpOrg
	case "dc":
		st.Op = pipeline.OpDC
	case "ds":
		st.Op = pipeline.OpDS
	case "ltorg":
		st.Op = pipeline.OpLtorg
	case "end":
		st.Op = pipeline.OpEnd
	case "noop", "":
		st.Op = pipeline.OpNoop
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, sd.Op)
	}

	var err error
	switch st.Op {
	case pipeline.OpMachine:
		st.Mnemonic = sd.Mnemonic
		st.Machine, err = l.buildOperands(sd.Operands)
	case pipeline.OpSection:
		st.SectionName = l.store.Intern(sd.SectionName)
		st.SectionKind, err = sectionKindOf(sd.SectionKind)
	case pipeline.OpLoctr:
		st.LoctrName = l.store.Intern(sd.LoctrName)
	case pipeline.OpEqu:
		st.EquValue, err = l.buildExpr(sd.EquValue)
		if err == nil && sd.EquType != nil {
			st.EquType, err = l.buildExpr(sd.EquType)
		}
	case pipeline.OpUsing:
		st.Using.Qualifier = l.store.Intern(sd.UsingQualifier)
		st.Using.Registers = sd.UsingRegisters
		st.Using.Begin, err = l.buildExpr(sd.UsingBegin)
		if err == nil && sd.UsingEnd != nil {
			st.Using.End, err = l.buildExpr(sd.UsingEnd)
		}
	case pipeline.OpDrop:
		st.DropRegisters = sd.DropRegisters
	case pipeline.OpOrg:
		if sd.OrgTarget != nil {
			st.OrgTarget, err = l.buildExpr(sd.OrgTarget)
		}
	case pipeline.OpDC, pipeline.OpDS:
		st.Data, err = l.buildData(sd.Data)
	}
	if err != nil {
		return nil, err
	}
	return st, nil
}

func sectionKindOf(s string) (context.SectionKind, error) {
	switch s {
	case "dummy", "":
		return context.SectionDummy, nil
	case "common":
		return context.SectionCommon, nil
	case "executable":
		return context.SectionExecutable, nil
	case "readonly":
		return context.SectionReadonly, nil
	case "external":
		return context.SectionExternal, nil
	case "weak_external":
		return context.SectionWeakExternal, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSectionKind, s)
	}
}

func operandKindOf(s string) (instr.OperandKind, error) {
	switch s {
	case "register":
		return instr.OperandRegister, nil
	case "mask":
		return instr.OperandMask, nil
	case "immediate":
		return instr.OperandImmediate, nil
	case "displacement":
		return instr.OperandDisplacement, nil
	case "length":
		return instr.OperandLength, nil
	case "base":
		return instr.OperandBaseRegister, nil
	case "index":
		return instr.OperandIndexRegister, nil
	case "vector":
		return instr.OperandVectorRegister, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOperandKind, s)
	}
}

func attributeOf(s string) (context.DataAttrKind, error) {
	switch s {
	case "type":
		return context.AttrType, nil
	case "length":
		return context.AttrLength, nil
	case "scale":
		return context.AttrScale, nil
	case "integer":
		return context.AttrInteger, nil
	case "count":
		return context.AttrCount, nil
	case "number":
		return context.AttrNumber, nil
	case "defined":
		return context.AttrDefined, nil
	case "opcode":
		return context.AttrOpcode, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownAttribute, s)
	}
}

func binaryOpOf(s string) (expr.BinaryOp, error) {
	switch s {
	case "add":
		return expr.OpAdd, nil
	case "sub":
		return expr.OpSub, nil
	case "mul":
		return expr.OpMul, nil
	case "div":
		return expr.OpDiv, nil
	default:
		return 0, fmt.Errorf("%w: binary op %q", ErrUnknownExprKind, s)
	}
}

func (l *Loader) buildOperands(docs []OperandDoc) ([]pipeline.MachineOperand, error) {
	out := make([]pipeline.MachineOperand, 0, len(docs))
	for _, od := range docs {
		kind, err := operandKindOf(od.Kind)
		if err != nil {
			return nil, err
		}
		value, err := l.buildExpr(&od.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, pipeline.MachineOperand{Kind: kind, Value: value})
	}
	return out, nil
}

func (l *Loader) buildExpr(ed *ExprDoc) (expr.Node, error) {
	if ed == nil {
		return nil, nil
	}
	switch ed.Kind {
	case "const":
		return expr.Constant{Value: ed.Value}, nil
	case "symbol":
		return expr.SymbolRef{Name: l.store.Intern(ed.Name)}, nil
	case "attr":
		attr, err := attributeOf(ed.Attribute)
		if err != nil {
			return nil, err
		}
		return expr.DataAttrRef{Attribute: attr, Symbol: l.store.Intern(ed.Name)}, nil
	case "loctr":
		return expr.LocationCounterRef{Arena: l.arena}, nil
	case "literal":
		return expr.LiteralRef{Text: ed.Text}, nil
	case "binary":
		op, err := binaryOpOf(ed.Op)
		if err != nil {
			return nil, err
		}
		left, err := l.buildExpr(ed.Left)
		if err != nil {
			return nil, err
		}
		right, err := l.buildExpr(ed.Right)
		if err != nil {
			return nil, err
		}
		return expr.Binary{Op: op, Left: left, Right: right, Arena: l.arena}, nil
	case "unary":
		operand, err := l.buildExpr(ed.Operand)
		if err != nil {
			return nil, err
		}
		return expr.Unary{Negate: ed.Negate, Operand: operand}, nil
	case "using_base":
		address, err := l.buildExpr(ed.Address)
		if err != nil {
			return nil, err
		}
		return expr.UsingBase{Qualifier: l.store.Intern(ed.Qualifier), Address: address}, nil
	case "using_disp":
		address, err := l.buildExpr(ed.Address)
		if err != nil {
			return nil, err
		}
		return expr.UsingDisplacement{Qualifier: l.store.Intern(ed.Qualifier), Address: address}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExprKind, ed.Kind)
	}
}

func (l *Loader) buildData(docs []DataDoc) ([]datadef.Operand, error) {
	out := make([]datadef.Operand, 0, len(docs))
	for _, dd := range docs {
		if len(dd.Type) != 1 {
			return nil, fmt.Errorf("fixture: data type must be one character, got %q", dd.Type)
		}
		op := datadef.NewOperand(dd.Type[0])
		op.DupFactor = dd.DupFactor
		if op.DupFactor == 0 {
			op.DupFactor = 1
		}
		op.ExplicitLength = dd.ExplicitLength
		op.ExplicitScale = dd.ExplicitScale
		op.RawValues = dd.RawValues
		for _, av := range dd.AddressValues {
			node, err := l.buildExpr(&av)
			if err != nil {
				return nil, err
			}
			op.AddressValues = append(op.AddressValues, node)
		}
		out = append(out, op)
	}
	return out, nil
}
