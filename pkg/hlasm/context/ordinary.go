package context

import "github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"

// OrdinaryAssemblyContext is the root object one open translation unit's
// symbol/address/dependency state lives in (spec.md §3's "ordinary
// assembly context"): every Section, the SpaceArena all their location
// counters allocate from, the SymbolTable, and the DependencyTables that
// tie statements to the things they're still waiting on.
type OrdinaryAssemblyContext struct {
	Ids          *ids.Store
	Arena        *SpaceArena
	Symbols      *SymbolTable
	Dependencies *DependencyTables

	sections     []*Section
	sectionByKey map[sectionKey]*Section
	current      *Section
}

// NewOrdinaryAssemblyContext returns an empty context interning names
// through store.
func NewOrdinaryAssemblyContext(store *ids.Store) *OrdinaryAssemblyContext {
	arena := NewSpaceArena()
	return &OrdinaryAssemblyContext{
		Ids:          store,
		Arena:        arena,
		Symbols:      NewSymbolTable(),
		Dependencies: NewDependencyTables(store, arena),
		sectionByKey: make(map[sectionKey]*Section),
	}
}

// SetSection switches the current section to (name, kind), creating it
// (with its first, STARTING location counter) on first reference, and
// returns it. This implements CSECT/DSECT/COM/RSECT.
func (c *OrdinaryAssemblyContext) SetSection(name ids.Index, kind SectionKind) *Section {
	key := sectionKey{name: name, kind: kind}
	if s, ok := c.sectionByKey[key]; ok {
		c.current = s
		return s
	}
	s := newSection(name, kind)
	s.SetCurrentLocationCounter(c.Arena, ids.Index{})
	c.sectionByKey[key] = s
	c.sections = append(c.sections, s)
	c.current = s
	return s
}

// CurrentSection returns the section currently receiving code/data, or nil
// before the first section-defining statement.
func (c *OrdinaryAssemblyContext) CurrentSection() *Section { return c.current }

// CurrentLocationCounter returns the current section's active counter, or
// nil before the first section-defining statement.
func (c *OrdinaryAssemblyContext) CurrentLocationCounter() *LocationCounter {
	if c.current == nil {
		return nil
	}
	return c.current.CurrentLocationCounter()
}

// CurrentAddress returns the address the next byte of code/data would be
// placed at: the current section (as an implicit Base, since where a
// section ultimately lands is itself resolved no earlier than link time)
// plus the current location counter's running offset/spaces.
func (c *OrdinaryAssemblyContext) CurrentAddress() Address {
	lc := c.CurrentLocationCounter()
	if lc == nil {
		return Address{}
	}
	addr := lc.CurrentAddress()
	base := Base{Section: c.current}
	addr.Bases = append([]BaseMult{{Base: base, Mult: 1}}, addr.Bases...)
	addr.Spaces = append([]SpaceMult{{Space: lc.BeginSpace(), Mult: 1}}, addr.Spaces...)
	return addr
}

// Sections returns every section defined so far, in first-definition
// order.
func (c *OrdinaryAssemblyContext) Sections() []*Section {
	return append([]*Section(nil), c.sections...)
}

// FinishLayout resolves every location counter's LOCTR_MAX space across
// every section, once no further statements will touch them (spec.md §5,
// end of open-code processing).
func (c *OrdinaryAssemblyContext) FinishLayout() {
	for _, s := range c.sections {
		for _, lc := range s.counters {
			lc.FinishLayout()
		}
	}
}
