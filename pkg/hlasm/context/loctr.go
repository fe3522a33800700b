package context

import "github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"

// LoctrKind distinguishes a section's first location counter (which owns
// the section's base address) from any later ones opened by `LOCTR`.
type LoctrKind int

const (
	LoctrStarting LoctrKind = iota
	LoctrNonStarting
)

// LocationCounter tracks "where the next byte goes" within one named
// counter of a section (spec.md §3 "Location counter"). It is grounded on
// the C++ `location_counter` class: a running Address that `ORG` can
// rewind within one contiguous run (LOCTR_SET keeps the run going) or
// redirect to an unrelated value (opening a fresh branch), plus a
// high-water mark (LOCTR_MAX) tracking the furthest any branch reached so
// that layout never shrinks a section below what any branch used.
type LocationCounter struct {
	arena *SpaceArena
	Name  ids.Index
	owner *Section
	kind  LoctrKind

	beginSpace SpaceID
	current    Address
	branchEnds []Address
	maxSpace   SpaceID
	layoutDone bool
}

func newLocationCounter(arena *SpaceArena, name ids.Index, owner *Section, kind LoctrKind) *LocationCounter {
	begin := arena.New(SpaceLoctrBegin, Alignment{})
	maxSpace := arena.New(SpaceLoctrMax, Alignment{})
	return &LocationCounter{
		arena:      arena,
		Name:       name,
		owner:      owner,
		kind:       kind,
		beginSpace: begin,
		maxSpace:   maxSpace,
		// current tracks the offset *within this counter's run*, starting
		// at zero; BeginSpace is where that run ultimately lands within the
		// section once layout resolves it, combined in separately by
		// whoever needs an absolute address (OrdinaryAssemblyContext).
		current: Address{},
	}
}

// CurrentAddress returns the counter's present value.
func (lc *LocationCounter) CurrentAddress() Address { return lc.current }

// BeginSpace is the space representing "the section-relative offset this
// counter started at". Nothing in this package resolves it; addresses
// built from it keep it as an unresolved space term.
func (lc *LocationCounter) BeginSpace() SpaceID { return lc.beginSpace }

// Align advances the counter, if necessary, so it satisfies a.
func (lc *LocationCounter) Align(a Alignment) { lc.alignCurrent(a) }

func (lc *LocationCounter) alignCurrent(a Alignment) {
	if a.Boundary <= 1 {
		return
	}
	if lc.current.HasUnresolvedSpace(lc.arena) {
		// The padding needed can't be computed until whatever the current
		// value depends on resolves. Open a space for "the eventual pad"
		// and let it resolve the same way any other dependent space does.
		pad := lc.arena.New(SpaceAlignment, a)
		lc.current = Add(lc.current, Address{Spaces: []SpaceMult{{Space: pad, Mult: 1}}})
		return
	}
	norm := lc.current.Normalize(lc.arena)
	aligned := a.Align(norm.Offset)
	if pad := aligned - norm.Offset; pad > 0 {
		lc.current = lc.current.AddOffset(pad)
	}
}

// ReserveStorageArea advances the counter by length bytes (after aligning
// to a) and returns the address of the first reserved byte, matching
// `location_counter::reserve_storage_area`.
func (lc *LocationCounter) ReserveStorageArea(length int, a Alignment) Address {
	lc.alignCurrent(a)
	start := lc.current
	lc.current = lc.current.AddOffset(length)
	return start
}

// ReserveUnresolvedStorage is used when a DC/DS's length isn't known yet
// (e.g. it depends on a forward-referenced symbol): it opens a fresh
// ordinary space, advances the counter past it, and returns both the
// start address and the space the caller must later resolve (via the
// owning SpaceArena's ResolveLength) once the length becomes known.
func (lc *LocationCounter) ReserveUnresolvedStorage(a Alignment) (start Address, space SpaceID) {
	lc.alignCurrent(a)
	start = lc.current
	space = lc.arena.New(SpaceOrdinary, Alignment{})
	lc.current = Add(lc.current, Address{Spaces: []SpaceMult{{Space: space, Mult: 1}}})
	return start, space
}

// SetValue implements `ORG`: it repoints the counter at value. The current
// branch's end is recorded (for LOCTR_MAX purposes) before every jump,
// whether value lies in the same run or not; FinishLayout later decides
// which recorded ends are comparable.
func (lc *LocationCounter) SetValue(value Address) {
	lc.branchEnds = append(lc.branchEnds, lc.current)
	lc.current = value
}

// checkUnderflow clamps a negative offset to zero. The original
// implementation applies this at exactly two sites: the begin space's
// storage-after value, and a counter's initial storage; here FinishLayout
// routes every candidate offset through it so a negative ORG target never
// produces a negative section size.
func checkUnderflow(addr Address) Address {
	if addr.Offset < 0 {
		addr.Offset = 0
	}
	return addr
}

// FinishLayout resolves this counter's LOCTR_MAX space to the greatest
// normalized offset reached by any recorded branch (including the current,
// final one), when that comparison is possible: branches that used
// unrelated bases, or that never resolved, are left out of the max and the
// layout conservatively falls back to the final branch's own extent. When
// the final branch itself still has an unresolved space, no branch is
// comparable and the LOCTR_MAX space is left unresolved. This
// is a narrowing of the C++ potential-max tracking, documented in
// DESIGN.md, rather than a byte-for-byte port of its branch-redirection
// chains.
func (lc *LocationCounter) FinishLayout() {
	if lc.layoutDone {
		return
	}
	lc.layoutDone = true

	candidates := append(append([]Address(nil), lc.branchEnds...), lc.current)
	best, haveBest := 0, false
	for _, c := range candidates {
		if c.HasUnresolvedSpace(lc.arena) {
			continue
		}
		norm := checkUnderflow(c.Normalize(lc.arena))
		if !norm.InSameLoctr(checkUnderflow(lc.current.Normalize(lc.arena))) {
			continue
		}
		if !haveBest || norm.Offset > best {
			best = norm.Offset
			haveBest = true
		}
	}
	if haveBest {
		lc.arena.ResolveLength(lc.maxSpace, best)
	}
}

// MaxSpace is the LOCTR_MAX space tracking the high-water mark across every
// ORG branch this counter ever took.
func (lc *LocationCounter) MaxSpace() SpaceID { return lc.maxSpace }

// Section returns the section that owns this counter.
func (lc *LocationCounter) Section() *Section { return lc.owner }

// Kind reports whether this is a section's first (STARTING) counter.
func (lc *LocationCounter) Kind() LoctrKind { return lc.kind }
