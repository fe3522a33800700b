package context

import "github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"

// DataAttrKind enumerates the data attributes a symbol or literal exposes
// to expressions (spec.md §4.2: T/L/S/I/K/N/D/O), grounded on the C++
// `data_attr_kind` enum.
type DataAttrKind int

const (
	AttrUnknown DataAttrKind = iota
	AttrType                 // T'
	AttrLength                // L'
	AttrScale                 // S'
	AttrInteger               // I'
	AttrCount                 // K'
	AttrNumber                // N'
	AttrDefined                // D'
	AttrOpcode                // O'
)

// SymbolOrigin records which statement kind first defined a symbol
// (spec.md §3 "Symbol"), grounded on the C++ `symbol_origin` enum.
type SymbolOrigin int

const (
	OriginUnknown SymbolOrigin = iota
	OriginSection
	OriginMachine
	OriginEqu
	OriginData
	OriginAsm
)

// AssemblerType is the register-class hint recorded by EQU's optional
// assembler-type operand (spec.md §4.2).
type AssemblerType int

const (
	AsmTypeNone AssemblerType = iota
	AsmTypeAR
	AsmTypeCR
	AsmTypeCR32
	AsmTypeCR64
	AsmTypeFPR
	AsmTypeGR
	AsmTypeGR32
	AsmTypeGR64
	AsmTypeVR
)

// Undefined attribute sentinels (spec.md §4.2), matching the C++ constants
// exactly so T'/L'/S' on a not-yet-attributed symbol read the values a real
// assembler would print.
const (
	UndefType  byte = 0xE4 // EBCDIC 'U'
	UndefLen   int  = -1
	UndefScale int  = 32767
)

// SymbolAttributes carries a symbol's T/L/S/I (and, for section symbols,
// program-type/assembler-type) attributes. Each attribute is set-once: the
// zero value means "still undefined" and the first SetX call wins,
// mirroring `symbol_attributes`'s get/set semantics (an attribute that
// becomes known during resolution never changes again afterwards).
type SymbolAttributes struct {
	origin SymbolOrigin

	typeKnown bool
	typeAttr  byte

	lenKnown bool
	lenAttr  int

	scaleKnown bool
	scaleAttr  int

	intKnown bool
	intAttr  int

	programType ids.Index
	asmType     AssemblerType
}

// MakeSectionAttrs returns the attributes a SECTION/CSECT/DSECT symbol
// gets at definition time.
func MakeSectionAttrs() SymbolAttributes {
	return SymbolAttributes{origin: OriginSection, typeKnown: true, typeAttr: 'J'}
}

// MakeMachineAttrs returns the attributes an instruction-defined label
// gets: type 'I', length from the instruction's operand format.
func MakeMachineAttrs(length int) SymbolAttributes {
	return SymbolAttributes{origin: OriginMachine, typeKnown: true, typeAttr: 'I', lenKnown: true, lenAttr: length}
}

// MakeExtrnAttrs returns the attributes an EXTRN/WXTRN symbol gets: type
// 'U' (unknown, same as UndefType) until something else defines it.
func MakeExtrnAttrs() SymbolAttributes {
	return SymbolAttributes{origin: OriginAsm, typeKnown: true, typeAttr: UndefType}
}

// MakeEmptyAttrs returns an attribute set with nothing known yet: every
// attribute reads as its undefined sentinel until set.
func MakeEmptyAttrs(origin SymbolOrigin) SymbolAttributes { return SymbolAttributes{origin: origin} }

// Origin returns which kind of statement produced this symbol.
func (a SymbolAttributes) Origin() SymbolOrigin { return a.origin }

// Type returns the T' attribute, or UndefType if not yet known.
func (a SymbolAttributes) Type() byte {
	if a.typeKnown {
		return a.typeAttr
	}
	return UndefType
}

// IsTypeKnown reports whether T' has been set.
func (a SymbolAttributes) IsTypeKnown() bool { return a.typeKnown }

// SetType sets T' if it isn't already known; a later call is a no-op.
func (a *SymbolAttributes) SetType(t byte) {
	if !a.typeKnown {
		a.typeKnown = true
		a.typeAttr = t
	}
}

// Length returns the L' attribute, or UndefLen if not yet known.
func (a SymbolAttributes) Length() int {
	if a.lenKnown {
		return a.lenAttr
	}
	return UndefLen
}

// IsLengthKnown reports whether L' has been set.
func (a SymbolAttributes) IsLengthKnown() bool { return a.lenKnown }

// SetLength sets L' if it isn't already known.
func (a *SymbolAttributes) SetLength(l int) {
	if !a.lenKnown {
		a.lenKnown = true
		a.lenAttr = l
	}
}

// Scale returns the S' attribute, or UndefScale if not yet known.
func (a SymbolAttributes) Scale() int {
	if a.scaleKnown {
		return a.scaleAttr
	}
	return UndefScale
}

// IsScaleKnown reports whether S' has been set.
func (a SymbolAttributes) IsScaleKnown() bool { return a.scaleKnown }

// SetScale sets S' if it isn't already known.
func (a *SymbolAttributes) SetScale(s int) {
	if !a.scaleKnown {
		a.scaleKnown = true
		a.scaleAttr = s
	}
}

// Integer returns the I' attribute, defaulting to L' when I' was never set
// explicitly (the assembler's own fallback rule).
func (a SymbolAttributes) Integer() int {
	if a.intKnown {
		return a.intAttr
	}
	return a.Length()
}

// SetInteger sets I' if it isn't already known.
func (a *SymbolAttributes) SetInteger(i int) {
	if !a.intKnown {
		a.intKnown = true
		a.intAttr = i
	}
}

// ProgramType returns the program-type name recorded by a section symbol.
func (a SymbolAttributes) ProgramType() ids.Index { return a.programType }

// SetProgramType records a section symbol's program-type operand.
func (a *SymbolAttributes) SetProgramType(p ids.Index) { a.programType = p }

// AsmType returns the assembler-type hint recorded by EQU.
func (a SymbolAttributes) AsmType() AssemblerType { return a.asmType }

// SetAsmType records an EQU's assembler-type operand.
func (a *SymbolAttributes) SetAsmType(t AssemblerType) { a.asmType = t }

// IsDefined reports whether kind's attribute is known yet, used to
// implement the D' attribute reference.
func (a SymbolAttributes) IsDefined(kind DataAttrKind) bool {
	switch kind {
	case AttrType:
		return a.typeKnown
	case AttrLength:
		return a.lenKnown
	case AttrScale:
		return a.scaleKnown
	case AttrInteger:
		return a.intKnown || a.lenKnown
	default:
		return false
	}
}

// GetAttributeValue reads one attribute by DataAttrKind, the dispatch used
// by a T'/L'/S'/I' expression node.
func (a SymbolAttributes) GetAttributeValue(kind DataAttrKind) int {
	switch kind {
	case AttrType:
		return int(a.Type())
	case AttrLength:
		return a.Length()
	case AttrScale:
		return a.Scale()
	case AttrInteger:
		return a.Integer()
	default:
		return 0
	}
}
