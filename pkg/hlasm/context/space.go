package context

// SpaceKind distinguishes why a space was opened, mirroring the C++
// `space_kind` enum (original_source/.../address.h).
type SpaceKind int

const (
	// SpaceOrdinary is opened by a DS/DC with an unresolved length.
	SpaceOrdinary SpaceKind = iota
	// SpaceLoctrUnknown is opened when a location counter's value becomes
	// entirely dependent on something not yet known (LOCTR_UNKNOWN).
	SpaceLoctrUnknown
	// SpaceLoctrBegin is the very first space of a location counter.
	SpaceLoctrBegin
	// SpaceLoctrSet is opened by `location_counter::set_value` when the
	// counter is pointed somewhere unrelated to its current alternatives.
	SpaceLoctrSet
	// SpaceLoctrMax is opened to track the high-water mark across ORG
	// alternatives (LOCTR_MAX).
	SpaceLoctrMax
	// SpaceAlignment is opened when an alignment boundary cannot yet be
	// computed because the base address is unresolved.
	SpaceAlignment
)

// Alignment is a (boundary, byte) pair: the address is required to be a
// multiple of Boundary after adding Byte, matching the C++ `alignment`
// struct. The zero value (Boundary 0) imposes no alignment.
type Alignment struct {
	Boundary int
	Byte     int
}

// Align rounds addr up to satisfy a, the way `location_counter::align` does.
func (a Alignment) Align(addr int) int {
	if a.Boundary <= 1 {
		return addr
	}
	rem := (addr - a.Byte) % a.Boundary
	if rem == 0 {
		return addr
	}
	if rem < 0 {
		rem += a.Boundary
	}
	return addr + (a.Boundary - rem)
}

// SpaceID identifies a Space within the SpaceArena that owns it. The zero
// value never denotes a live space.
type SpaceID int

// SpaceMult pairs a space with the multiplier it contributes at some use
// site (spec.md §9 design note: "addresses carry small (SpaceId,
// multiplicity) pairs" rather than embedding full space values).
type SpaceMult struct {
	Space SpaceID
	Mult  int
}

type spaceEntry struct {
	kind  SpaceKind
	align Alignment

	resolved       bool
	resolvedLength int
	resolvedChain  []SpaceMult // non-nil only when resolved into further spaces
}

// SpaceArena owns every Space of one ordinary assembly context. Spaces
// never move or get freed once created (spec.md §9): resolving one only
// ever flips it from unresolved to resolved, exactly once.
type SpaceArena struct {
	entries []spaceEntry
}

// NewSpaceArena returns an empty arena. Index 0 is reserved so the zero
// SpaceID never aliases a real space.
func NewSpaceArena() *SpaceArena {
	return &SpaceArena{entries: []spaceEntry{{}}}
}

// New opens a fresh, unresolved space of the given kind/alignment.
func (a *SpaceArena) New(kind SpaceKind, align Alignment) SpaceID {
	a.entries = append(a.entries, spaceEntry{kind: kind, align: align})
	return SpaceID(len(a.entries) - 1)
}

func (a *SpaceArena) entry(id SpaceID) *spaceEntry { return &a.entries[id] }

// Kind returns the kind the space was opened with.
func (a *SpaceArena) Kind(id SpaceID) SpaceKind { return a.entry(id).kind }

// Alignment returns the alignment the space was opened with.
func (a *SpaceArena) Alignment(id SpaceID) Alignment { return a.entry(id).align }

// Resolved reports whether the space has been resolved to a concrete
// length (or length-bearing chain) yet.
func (a *SpaceArena) Resolved(id SpaceID) bool { return a.entry(id).resolved }

// ResolveLength resolves id to a fixed byte length. This is the "DS/DC
// finally knows its length" case (`space::resolve(space_ptr, length)`).
// Resolving an already-resolved space is a no-op: spec.md's monotone
// resolution guarantee means callers resolve each space exactly once, but
// staying idempotent here keeps re-fired postponed statements safe.
func (a *SpaceArena) ResolveLength(id SpaceID, length int) {
	e := a.entry(id)
	if e.resolved {
		return
	}
	e.resolved = true
	e.resolvedLength = length
}

// ResolveToAddress resolves id using a (possibly still partially
// unresolved) address: the address's concrete offset becomes the space's
// resolved length, and the address's own remaining unresolved spaces
// become id's resolved chain, mirroring the three-argument
// `space::resolve` overload that redirects through another address.
func (a *SpaceArena) ResolveToAddress(id SpaceID, offset int, chain []SpaceMult) {
	e := a.entry(id)
	if e.resolved {
		return
	}
	e.resolved = true
	e.resolvedLength = offset
	if len(chain) > 0 {
		e.resolvedChain = append([]SpaceMult(nil), chain...)
	}
}

// Offset returns the concrete length id contributes, recursing through a
// resolved chain. It returns (0, false) while id (or anything in its
// chain) remains unresolved.
func (a *SpaceArena) Offset(id SpaceID) (int, bool) {
	e := a.entry(id)
	if !e.resolved {
		return 0, false
	}
	total := e.resolvedLength
	for _, sm := range e.resolvedChain {
		off, ok := a.Offset(sm.Space)
		if !ok {
			return 0, false
		}
		total += off * sm.Mult
	}
	return total, true
}

// UnresolvedLeaves appends, to out, the still-unresolved spaces reachable
// from id (itself if unresolved, or the unresolved leaves of its chain).
// It is the building block for Address.HasUnresolvedSpace and for
// DependencyCollector's unresolved_spaces set.
func (a *SpaceArena) UnresolvedLeaves(id SpaceID, mult int, out []SpaceMult) []SpaceMult {
	e := a.entry(id)
	if !e.resolved {
		return append(out, SpaceMult{Space: id, Mult: mult})
	}
	for _, sm := range e.resolvedChain {
		out = a.UnresolvedLeaves(sm.Space, mult*sm.Mult, out)
	}
	return out
}
