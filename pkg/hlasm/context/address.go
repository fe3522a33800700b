package context

import "github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"

// Base identifies one USING-mappable origin: a section, optionally
// qualified (section:qualifier), matching spec.md §4.7's "base register
// maps a Base".
type Base struct {
	Section   *Section
	Qualifier ids.Index
}

// BaseMult pairs a Base with the signed multiplicity it contributes to an
// Address (+1 from addition, -1 from subtraction, and so on after like
// terms combine).
type BaseMult struct {
	Base Base
	Mult int
}

// Address is a relocatable value: a constant Offset plus a linear
// combination of Bases and Spaces. It mirrors the C++ `address` class
// (original_source/.../address.h) but keeps spaces as small (SpaceID,
// multiplier) pairs per spec.md §9, rather than owning pointers.
//
// Address is a plain value type: copying it is cheap and always safe.
// Resolving what a Space inside it means requires passing the owning
// SpaceArena to the methods that need it.
type Address struct {
	Bases  []BaseMult
	Offset int
	Spaces []SpaceMult
}

// NewAbsoluteAddress returns the absolute (base-less, space-less) address
// offset.
func NewAbsoluteAddress(offset int) Address {
	return Address{Offset: offset}
}

// NewAddress returns the address of offset bytes into base's space with
// multiplicity 1.
func NewAddress(base Base, offset int) Address {
	return Address{Bases: []BaseMult{{Base: base, Mult: 1}}, Offset: offset}
}

// IsSimple reports whether the address has at most one base (the common
// case the instruction checker and USING engine optimize for).
func (a Address) IsSimple() bool { return len(a.Bases) <= 1 }

// IsAbsolute reports whether the address has no bases and no unresolved
// spaces, i.e. it denotes a plain number.
func (a Address) IsAbsolute(arena *SpaceArena) bool {
	return len(a.Bases) == 0 && !a.HasUnresolvedSpace(arena)
}

// HasUnresolvedSpace reports whether any space term of a is still
// unresolved (directly or through its resolution chain).
func (a Address) HasUnresolvedSpace(arena *SpaceArena) bool {
	for _, sm := range a.Spaces {
		if _, ok := arena.Offset(sm.Space); !ok {
			return true
		}
	}
	return false
}

// HasDependentSpace is an alias kept for readers coming from the
// `has_dependant_space` name in the original implementation.
func (a Address) HasDependentSpace(arena *SpaceArena) bool { return a.HasUnresolvedSpace(arena) }

// Normalize folds every resolved space's contribution into Offset and
// collapses like Base/Space terms (after cancellation, a multiplier of 0
// drops the term), mirroring `address::normalize`.
func (a Address) Normalize(arena *SpaceArena) Address {
	out := Address{Offset: a.Offset}

	out.Bases = mergeBases(a.Bases)

	for _, sm := range a.Spaces {
		if off, ok := arena.Offset(sm.Space); ok {
			out.Offset += off * sm.Mult
			continue
		}
		out.Spaces = mergeSpaceInto(out.Spaces, sm)
	}
	out.Spaces = dropZeroSpaces(out.Spaces)
	return out
}

func mergeBases(in []BaseMult) []BaseMult {
	var out []BaseMult
	for _, bm := range in {
		out = mergeBaseInto(out, bm)
	}
	return dropZeroBases(out)
}

func mergeBaseInto(entries []BaseMult, bm BaseMult) []BaseMult {
	for i := range entries {
		if entries[i].Base == bm.Base {
			entries[i].Mult += bm.Mult
			return entries
		}
	}
	return append(entries, bm)
}

func mergeSpaceInto(entries []SpaceMult, sm SpaceMult) []SpaceMult {
	for i := range entries {
		if entries[i].Space == sm.Space {
			entries[i].Mult += sm.Mult
			return entries
		}
	}
	return append(entries, sm)
}

func dropZeroBases(in []BaseMult) []BaseMult {
	var out []BaseMult
	for _, bm := range in {
		if bm.Mult != 0 {
			out = append(out, bm)
		}
	}
	return out
}

func dropZeroSpaces(in []SpaceMult) []SpaceMult {
	var out []SpaceMult
	for _, sm := range in {
		if sm.Mult != 0 {
			out = append(out, sm)
		}
	}
	return out
}

// Add implements address + address (`operator+`): offsets sum, base and
// space terms merge by like terms.
func Add(a, b Address) Address {
	out := Address{Offset: a.Offset + b.Offset}
	out.Bases = append(append([]BaseMult(nil), a.Bases...), b.Bases...)
	out.Bases = mergeBases(out.Bases)
	out.Spaces = append([]SpaceMult(nil), a.Spaces...)
	for _, sm := range b.Spaces {
		out.Spaces = mergeSpaceInto(out.Spaces, sm)
	}
	out.Spaces = dropZeroSpaces(out.Spaces)
	return out
}

// AddOffset adds a plain number to an address (`operator+` with a scalar).
func (a Address) AddOffset(n int) Address {
	out := a
	out.Offset += n
	return out
}

// Neg negates every base/space multiplier and the offset (`operator-`,
// unary).
func (a Address) Neg() Address {
	out := Address{Offset: -a.Offset}
	for _, bm := range a.Bases {
		out.Bases = append(out.Bases, BaseMult{Base: bm.Base, Mult: -bm.Mult})
	}
	for _, sm := range a.Spaces {
		out.Spaces = append(out.Spaces, SpaceMult{Space: sm.Space, Mult: -sm.Mult})
	}
	return out
}

// Sub implements address - address.
func Sub(a, b Address) Address { return Add(a, b.Neg()) }

// IgnoreQualification returns a with every Base's Qualifier cleared and
// like Sections re-merged, so that two bases differing only by qualifier
// collapse into one (and, if that leaves no bases at all, the address
// reads as absolute). This is the "ignore-qualification" post-processing
// step spec.md §4.2/§4.5 requires before dividing a rel_addr difference by
// 2: a relative branch target is reachable regardless of which qualifier
// named it.
func (a Address) IgnoreQualification() Address {
	bases := make([]BaseMult, len(a.Bases))
	for i, bm := range a.Bases {
		bases[i] = BaseMult{Base: Base{Section: bm.Base.Section}, Mult: bm.Mult}
	}
	return Address{Offset: a.Offset, Bases: mergeBases(bases), Spaces: a.Spaces}
}

// InSameLoctr reports whether a and b were both produced by the same
// location counter "run": they agree on every base/space term except
// Offset. This is the exact test `ORG` relies on (grounded on
// `address::in_same_loctr`).
func (a Address) InSameLoctr(b Address) bool {
	if len(a.Bases) != len(b.Bases) || len(a.Spaces) != len(b.Spaces) {
		return false
	}
	for _, bm := range a.Bases {
		found := false
		for _, obm := range b.Bases {
			if obm.Base == bm.Base && obm.Mult == bm.Mult {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, sm := range a.Spaces {
		found := false
		for _, osm := range b.Spaces {
			if osm.Space == sm.Space && osm.Mult == sm.Mult {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// NormalizedSpaces returns the unresolved leaf spaces reachable from a,
// after resolving everything that can currently be resolved (mirrors
// `address::normalized_spaces`, used by DependencyCollector).
func (a Address) NormalizedSpaces(arena *SpaceArena) []SpaceMult {
	var out []SpaceMult
	for _, sm := range a.Spaces {
		out = arena.UnresolvedLeaves(sm.Space, sm.Mult, out)
	}
	return out
}
