// Package using implements the USING/DROP mapping engine (spec.md §4.7):
// an append-only history of USING and DROP statements, and the search
// that turns a relocatable address into a (base register, displacement)
// pair.
package using

import (
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"
)

// entryKind distinguishes a USING record from a DROP record in the
// history chain.
type entryKind int

const (
	entryUsing entryKind = iota
	entryDrop
)

// entry is one link of the append-only USING/DROP history, grounded on
// the C++ `using_entry`/`using_drop_definition` pair: USING records a
// label, an optional qualifier, a begin (and optional end) address, and
// the registers it claims; DROP records only the registers it releases.
// Entries are never mutated after creation — DROP is processed as a pure
// append, never as surgery on history, which is what lets an address
// resolved against an earlier point in the program see the mapping that
// was active then.
type entry struct {
	kind      entryKind
	label     ids.Index
	qualifier ids.Index
	begin     context.Address
	end       context.Address
	hasEnd    bool
	registers []int
	parent    *entry
}

// Collection is one open USING/DROP history. Every AddUsing/AddDrop
// appends a new entry whose parent is the collection's current tail;
// Evaluate always walks from a chosen point backwards, so two statements
// evaluating against different points in the program never see each
// other's USING context, matching spec.md §4.7's ordering guarantee.
type Collection struct {
	store *ids.Store
	arena *context.SpaceArena
	head  *entry
}

// NewCollection returns an empty USING history.
func NewCollection(store *ids.Store, arena *context.SpaceArena) *Collection {
	return &Collection{store: store, arena: arena}
}

// Mark is an opaque handle to one point in the USING history, taken via
// Current and later replayed via Evaluate — the persistent-tree
// equivalent of "rewind to here".
type Mark struct{ e *entry }

// Current returns a Mark denoting the collection's present point.
func (c *Collection) Current() Mark { return Mark{c.head} }

// AddUsing appends a USING record mapping registers to addresses counted
// from begin (optionally qualified, optionally range-limited by end), and
// returns the Mark for the state right after this statement.
func (c *Collection) AddUsing(label, qualifier ids.Index, begin context.Address, end *context.Address, registers []int) Mark {
	e := &entry{kind: entryUsing, label: label, qualifier: qualifier, begin: begin, registers: append([]int(nil), registers...), parent: c.head}
	if end != nil {
		e.end = *end
		e.hasEnd = true
	}
	c.head = e
	return Mark{e}
}

// AddDrop appends a DROP record releasing registers (DROP with no operand
// is recorded with an empty registers list, which releases every register
// active at that point).
func (c *Collection) AddDrop(registers []int) Mark {
	e := &entry{kind: entryDrop, registers: append([]int(nil), registers...), parent: c.head}
	c.head = e
	return Mark{e}
}

// activeAt replays the chain ending at m from its root forward, producing
// the register -> defining USING entry map in effect at that point.
func activeAt(m Mark) map[int]*entry {
	var chain []*entry
	for e := m.e; e != nil; e = e.parent {
		chain = append(chain, e)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	active := make(map[int]*entry)
	for _, e := range chain {
		switch e.kind {
		case entryUsing:
			for _, r := range e.registers {
				active[r] = e
			}
		case entryDrop:
			if len(e.registers) == 0 {
				for r := range active {
					delete(active, r)
				}
				continue
			}
			for _, r := range e.registers {
				delete(active, r)
			}
		}
	}
	return active
}

// ActiveRegisters returns the registers mapped at m, in ascending order.
func ActiveRegisters(m Mark) []int {
	active := activeAt(m)
	return sortedKeys(active)
}

// IsActive reports whether reg is currently mapped at m.
func IsActive(m Mark, reg int) bool {
	_, ok := activeAt(m)[reg]
	return ok
}
