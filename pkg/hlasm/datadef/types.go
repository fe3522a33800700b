// Package datadef implements DC/DS data-definition operand modeling and
// the literal pool (spec.md §4.6).
package datadef

import "github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"

// TypeInfo describes one DC/DS type letter's default shape.
type TypeInfo struct {
	Letter        byte
	DefaultLength int
	Alignment     context.Alignment
	IsAddressType bool // A/Y/S/Q/V: nominal values are expressions, not byte patterns
}

// Types is the static table of type letters this analyzer understands.
// Grounded on spec.md §4.6's "the common HLASM data types" and
// `original_source/parser_library/src/checking/data_definition/data_def_type.h`'s
// length/alignment table.
var Types = map[byte]TypeInfo{
	'C': {Letter: 'C', DefaultLength: 1},
	'X': {Letter: 'X', DefaultLength: 1},
	'B': {Letter: 'B', DefaultLength: 1},
	'Z': {Letter: 'Z', DefaultLength: 1},
	'P': {Letter: 'P', DefaultLength: 1},
	'H': {Letter: 'H', DefaultLength: 2, Alignment: context.Alignment{Boundary: 2}},
	'F': {Letter: 'F', DefaultLength: 4, Alignment: context.Alignment{Boundary: 4}},
	'D': {Letter: 'D', DefaultLength: 8, Alignment: context.Alignment{Boundary: 8}},
	'E': {Letter: 'E', DefaultLength: 4, Alignment: context.Alignment{Boundary: 4}},
	'A': {Letter: 'A', DefaultLength: 4, Alignment: context.Alignment{Boundary: 4}, IsAddressType: true},
	'Y': {Letter: 'Y', DefaultLength: 2, Alignment: context.Alignment{Boundary: 2}, IsAddressType: true},
	'S': {Letter: 'S', DefaultLength: 2, Alignment: context.Alignment{Boundary: 2}, IsAddressType: true},
	'Q': {Letter: 'Q', DefaultLength: 4, Alignment: context.Alignment{Boundary: 4}, IsAddressType: true},
	'V': {Letter: 'V', DefaultLength: 4, Alignment: context.Alignment{Boundary: 4}, IsAddressType: true},
}

// Lookup returns the TypeInfo for letter, if known.
func Lookup(letter byte) (TypeInfo, bool) {
	info, ok := Types[letter]
	return info, ok
}
