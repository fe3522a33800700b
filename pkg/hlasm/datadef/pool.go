package datadef

import (
	"fmt"
	"strings"

	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
)

// Literal is one distinct `=<nominal>` mentioned so far: interned once per
// distinct source text at a compatible loctr, placed into storage only
// when its pool is generated (spec.md §4.6 "literal pool"), grounded on
// `original_source/parser_library/src/context/ordinary_assembly/
// literal_pool.h`'s dedup-by-text-and-loctr behavior.
type Literal struct {
	Text    string
	ID      ids.Index
	Operand Operand
	Placed  bool
	Address context.Address
	Space   context.SpaceID

	// loctrAt is the location counter in effect when this literal was
	// first mentioned, used to decide whether a later mention of the
	// same Text is the "compatible loctr" spec.md §4.6 requires for
	// dedup, or a distinct literal.
	loctrAt context.Address
}

// Pool collects literals mentioned since the last time it was generated
// (by LTORG or end of program).
type Pool struct {
	byText map[string][]*Literal
	order  []string
}

// NewPool returns an empty pool.
func NewPool() *Pool {
	return &Pool{byText: make(map[string][]*Literal)}
}

// AddLiteral interns text's pseudo-symbol and records its operand shape,
// returning the same ids.Index on every subsequent mention of the same
// text at a compatible loctr (spec.md §4.6), and a fresh ids.Index
// otherwise. A nominal value that names the current location counter
// (contains "*") is loctr-sensitive: its eventual content differs with
// the offset within the run, so only an exact repeat of the same address
// is compatible. Any other nominal value is loctr-insensitive: it
// dedupes across the whole location-counter run
// (context.Address.InSameLoctr), regardless of offset, since its content
// does not depend on where in that run it was mentioned.
func (p *Pool) AddLiteral(store *ids.Store, text string, op Operand, loctr context.Address) ids.Index {
	locRelative := strings.Contains(text, "*")
	existing := p.byText[text]
	for _, lit := range existing {
		if locRelative {
			if lit.loctrAt.InSameLoctr(loctr) && lit.loctrAt.Offset == loctr.Offset {
				return lit.ID
			}
			continue
		}
		if lit.loctrAt.InSameLoctr(loctr) {
			return lit.ID
		}
	}

	name := "=" + text
	if len(existing) > 0 {
		name = fmt.Sprintf("=%s#%d", text, len(existing)+1)
	}
	lit := &Literal{Text: text, ID: store.Intern(name), Operand: op, loctrAt: loctr}
	if len(existing) == 0 {
		p.order = append(p.order, text)
	}
	p.byText[text] = append(existing, lit)
	return lit.ID
}

// Pending returns every literal mentioned but not yet placed, in
// first-mention order.
func (p *Pool) Pending() []*Literal {
	var out []*Literal
	for _, text := range p.order {
		for _, lit := range p.byText[text] {
			if !lit.Placed {
				out = append(out, lit)
			}
		}
	}
	return out
}

// GeneratePool places every pending literal into lc (in first-mention
// order, each aligned per its type) and defines its pseudo-symbol,
// implementing `LTORG` and the implicit pool flush at end of program.
func (p *Pool) GeneratePool(lc *context.LocationCounter, symbols *context.SymbolTable) {
	for _, lit := range p.Pending() {
		length, ok := lit.Operand.ElementLength()
		if !ok {
			length = 1
		}
		total := length * maxInt(lit.Operand.DupFactor, 1)
		addr := lc.ReserveStorageArea(total, lit.Operand.Alignment())

		lit.Placed = true
		lit.Address = addr

		sym := symbols.GetOrCreate(lit.ID, context.OriginData)
		sym.SetValue(context.RelocValue(addr))
		sym.Attributes.SetType(lit.Operand.Type)
		sym.Attributes.SetLength(length)
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
