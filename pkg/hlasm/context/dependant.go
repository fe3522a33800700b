package context

import "github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"

// DependantKind tags which of the three things a Dependant refers to
// (spec.md §4.3), grounded on the C++ `dependant_kind` enum.
type DependantKind int

const (
	DependOnSymbol DependantKind = iota
	DependOnSymbolAttr
	DependOnSpace
)

// AttrRef names one attribute of one symbol, the payload of a
// DependOnSymbolAttr Dependant (e.g. `L'FOO`).
type AttrRef struct {
	Attribute DataAttrKind
	Symbol    ids.Index
}

// Dependant identifies one thing a statement's dependency solver must
// resolve before an expression mentioning it becomes evaluable: a symbol's
// value, one attribute of a symbol, or a space. It is a small, comparable
// value type so it can key maps directly.
type Dependant struct {
	kind DependantKind
	sym  ids.Index
	attr AttrRef
	spc  SpaceID
}

// OnSymbol returns a Dependant naming a symbol's value.
func OnSymbol(name ids.Index) Dependant { return Dependant{kind: DependOnSymbol, sym: name} }

// OnSymbolAttr returns a Dependant naming one attribute of a symbol.
func OnSymbolAttr(ref AttrRef) Dependant { return Dependant{kind: DependOnSymbolAttr, attr: ref} }

// OnSpace returns a Dependant naming a space.
func OnSpace(id SpaceID) Dependant { return Dependant{kind: DependOnSpace, spc: id} }

// Kind reports which of the three payloads d carries.
func (d Dependant) Kind() DependantKind { return d.kind }

// Symbol returns the named symbol, valid when Kind is DependOnSymbol.
func (d Dependant) Symbol() ids.Index { return d.sym }

// AttrRef returns the named attribute, valid when Kind is
// DependOnSymbolAttr.
func (d Dependant) AttrRef() AttrRef { return d.attr }

// Space returns the named space, valid when Kind is DependOnSpace.
func (d Dependant) Space() SpaceID { return d.spc }
