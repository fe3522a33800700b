package context

import "github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"

// Symbol is an ordinary-assembly symbol: a name, its value (possibly still
// undefined), and its attributes (spec.md §3 "Symbol").
type Symbol struct {
	Name       ids.Index
	value      SymbolValue
	Attributes SymbolAttributes
}

// NewSymbol returns a freshly mentioned, still-undefined symbol.
func NewSymbol(name ids.Index, origin SymbolOrigin) *Symbol {
	return &Symbol{Name: name, value: UndefValue, Attributes: MakeEmptyAttrs(origin)}
}

// Value returns the symbol's current value.
func (s *Symbol) Value() SymbolValue { return s.value }

// SetValue assigns a symbol's value. Unlike attributes, a symbol's value
// is not set-once at this layer: callers (the dependency tables) are
// responsible for only ever calling this on an UNDEF symbol, per spec.md's
// monotone resolution guarantee; redefinition diagnostics are the caller's
// responsibility (ME family / E-series), not this type's.
func (s *Symbol) SetValue(v SymbolValue) { s.value = v }

// SymbolTable stores every symbol mentioned in one ordinary assembly
// context, keyed by interned name.
type SymbolTable struct {
	byName map[ids.Index]*Symbol
	order  []ids.Index
}

// NewSymbolTable returns an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byName: make(map[ids.Index]*Symbol)}
}

// GetOrCreate returns the symbol named name, mentioning it for the first
// time (as UNDEF) if this is the first reference.
func (t *SymbolTable) GetOrCreate(name ids.Index, origin SymbolOrigin) *Symbol {
	if s, ok := t.byName[name]; ok {
		return s
	}
	s := NewSymbol(name, origin)
	t.byName[name] = s
	t.order = append(t.order, name)
	return s
}

// Lookup returns the symbol named name, if it has been mentioned.
func (t *SymbolTable) Lookup(name ids.Index) (*Symbol, bool) {
	s, ok := t.byName[name]
	return s, ok
}

// All returns every symbol in first-mention order.
func (t *SymbolTable) All() []*Symbol {
	out := make([]*Symbol, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.byName[name])
	}
	return out
}
