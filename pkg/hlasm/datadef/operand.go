package datadef

import (
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/diag"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/expr"
)

// Operand is one DC/DS operand: a duplication factor, a type letter, the
// optional explicit length/scale modifiers, and the nominal value(s)
// (spec.md §4.6). Byte-pattern types (C/X/B/...) carry their nominal as
// raw tokens whose length this layer only measures; address types
// (A/Y/S/Q/V) carry their nominal as expr.Node values this layer must
// resolve to learn the operand's element length and eventual contents.
type Operand struct {
	DupFactor      int
	Type           byte
	ExplicitLength *int
	ExplicitScale  *int
	RawValues      []string
	AddressValues  []expr.Node
}

// NewOperand returns an Operand with DupFactor defaulted to 1.
func NewOperand(typ byte) Operand {
	return Operand{DupFactor: 1, Type: typ}
}

// NewOperandForLiteral builds the Operand a `=<text>` literal implies,
// reading its leading type letter (e.g. "F" in "F'5'") the way a real
// literal's nominal value does; text whose first byte isn't a known type
// letter defaults to 'C' packed-text, matching how an unrecognized prefix
// still needs some element length to reserve storage with.
func NewOperandForLiteral(text string) Operand {
	if len(text) == 0 {
		return NewOperand('C')
	}
	if _, ok := Lookup(text[0]); ok {
		return NewOperand(text[0])
	}
	return NewOperand('C')
}

// ElementLength returns one element's byte length: the explicit L
// modifier if present, the type's default for address types, or the
// length of the (first) raw nominal value for byte-pattern types.
func (o Operand) ElementLength() (int, bool) {
	if o.ExplicitLength != nil {
		return *o.ExplicitLength, true
	}
	info, known := Lookup(o.Type)
	if !known {
		return 0, false
	}
	if info.IsAddressType {
		return info.DefaultLength, true
	}
	if len(o.RawValues) > 0 {
		return len(o.RawValues[0]), true
	}
	return info.DefaultLength, true
}

// Alignment returns the operand's storage alignment: the type's default,
// unless an explicit length was given (an explicit L suppresses automatic
// alignment, matching real HLASM behavior).
func (o Operand) Alignment() context.Alignment {
	if o.ExplicitLength != nil {
		return context.Alignment{}
	}
	if info, ok := Lookup(o.Type); ok {
		return info.Alignment
	}
	return context.Alignment{}
}

// TotalLength returns DupFactor * element length.
func (o Operand) TotalLength() (int, bool) {
	el, ok := o.ElementLength()
	if !ok {
		return 0, false
	}
	return el * o.DupFactor, true
}

// Validate reports structural diagnostics (D-series) that don't require
// resolving any address-valued nominal.
func (o Operand) Validate(consumer diag.Consumer, rng diag.Range) {
	if o.DupFactor < 0 {
		consumer.Add(diag.Diagnostic{Range: rng, Severity: diag.Error, Code: diag.CodeBadDupFactor, Message: "duplication factor must not be negative"})
	}
	if _, known := Lookup(o.Type); !known {
		consumer.Add(diag.Diagnostic{Range: rng, Severity: diag.Error, Code: diag.CodeBadNominalValue, Message: "unknown data type"})
		return
	}
	if o.ExplicitLength != nil && (*o.ExplicitLength < 1 || *o.ExplicitLength > 65535) {
		consumer.Add(diag.Diagnostic{Range: rng, Severity: diag.Error, Code: diag.CodeBadLength, Message: "length modifier out of range"})
	}
	if o.ExplicitScale != nil && (*o.ExplicitScale < -185 || *o.ExplicitScale > 185) {
		consumer.Add(diag.Diagnostic{Range: rng, Severity: diag.Error, Code: diag.CodeBadScale, Message: "scale modifier out of range"})
	}
}
