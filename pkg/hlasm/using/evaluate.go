package using

import (
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/context"
	"github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"

	"golang.org/x/exp/slices"
)

// Displacement ranges an instruction's base-register operand can encode
// (spec.md §4.7 / §4.8): 12-bit unsigned "short" displacement, or 20-bit
// signed "long" displacement.
const (
	MinShortDisp = 0
	MaxShortDisp = (1 << 12) - 1
	MinLongDisp  = -(1 << 19)
	MaxLongDisp  = (1 << 19) - 1
)

// Result is what Evaluate found: Mapped reports whether any active USING
// (including the implicit register-0-at-address-0 mapping) could express
// addr at all; InRange additionally reports whether the chosen
// register/displacement pair fits the requested displacement width. A
// caller sees Mapped && !InRange when the best available base put addr
// out of range (ME008) and !Mapped when nothing maps addr under the
// requested qualifier at all (ME010).
type Result struct {
	Reg     int
	Disp    int
	Mapped  bool
	InRange bool
}

type candidate struct {
	reg     int
	dist    int
	inRange bool
}

// isBetterCandidate is the tie-break the original `using_context::evaluate`
// applies: a candidate within range always beats one that isn't; among
// candidates of the same validity, the smaller absolute displacement
// wins; ties beyond that favor the higher-numbered register.
func isBetterCandidate(newC, oldC candidate) bool {
	if newC.inRange != oldC.inRange {
		return newC.inRange
	}
	newAbs, oldAbs := abs(newC.dist), abs(oldC.dist)
	if newAbs != oldAbs {
		return newAbs < oldAbs
	}
	return newC.reg > oldC.reg
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Evaluate searches every USING active at m for the best base/displacement
// pair expressing addr under qualifier (empty Index matches any USING
// that itself carries no qualifier, or any qualifier if addr has none),
// using longForm to pick the displacement's valid range. Register 0 at
// absolute address 0 is always an implicit candidate (grounded on the
// `zero_entry` in the original using_context::evaluate), so Evaluate
// always returns Mapped=true for an address that normalizes to a plain
// absolute number.
func (c *Collection) Evaluate(m Mark, qualifier ids.Index, addr context.Address, longForm bool) Result {
	minD, maxD := MinShortDisp, MaxShortDisp
	if longForm {
		minD, maxD = MinLongDisp, MaxLongDisp
	}

	var best *candidate
	consider := func(reg int, base context.Address) {
		diff := context.Sub(addr, base).Normalize(c.arena)
		if !diff.IsAbsolute(c.arena) {
			return
		}
		cand := candidate{reg: reg, dist: diff.Offset, inRange: diff.Offset >= minD && diff.Offset <= maxD}
		if best == nil || isBetterCandidate(cand, *best) {
			best = &cand
		}
	}

	consider(0, context.NewAbsoluteAddress(0))

	active := activeAt(m)
	for _, reg := range sortedKeys(active) {
		e := active[reg]
		if !e.qualifier.Empty() && !qualifier.Empty() && e.qualifier != qualifier {
			continue
		}
		if e.hasEnd {
			size := context.Sub(e.end, e.begin).Normalize(c.arena)
			if size.IsAbsolute(c.arena) {
				within := context.Sub(addr, e.begin).Normalize(c.arena)
				if within.IsAbsolute(c.arena) && (within.Offset < 0 || within.Offset > size.Offset) {
					continue
				}
			}
		}
		consider(reg, e.begin)
	}

	if best == nil {
		return Result{}
	}
	return Result{Reg: best.reg, Disp: best.dist, Mapped: true, InRange: best.inRange}
}

func sortedKeys(m map[int]*entry) []int {
	out := make([]int, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
