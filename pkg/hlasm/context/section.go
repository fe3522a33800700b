package context

import "github.com/hlasm-tools/hlasmcore/pkg/hlasm/ids"

// SectionKind enumerates the section kinds from spec.md §3 "Section".
type SectionKind int

const (
	SectionDummy SectionKind = iota
	SectionCommon
	SectionExecutable
	SectionReadonly
	SectionExternal
	SectionWeakExternal
)

func (k SectionKind) String() string {
	switch k {
	case SectionDummy:
		return "DUMMY"
	case SectionCommon:
		return "COMMON"
	case SectionExecutable:
		return "EXECUTABLE"
	case SectionReadonly:
		return "READONLY"
	case SectionExternal:
		return "EXTERNAL"
	case SectionWeakExternal:
		return "WEAK_EXTERNAL"
	default:
		return "UNKNOWN"
	}
}

// sectionKey is how sections are keyed: a name with different kind is a
// distinct, invalid-to-redefine section (spec.md §3).
type sectionKey struct {
	name ids.Index
	kind SectionKind
}

// Section owns an ordered list of location counters, one of which is
// "current" for new allocations.
type Section struct {
	Name ids.Index
	Kind SectionKind

	counters    []*LocationCounter
	counterByID map[ids.Index]int
	current     int // index into counters, -1 if none yet
}

func newSection(name ids.Index, kind SectionKind) *Section {
	return &Section{
		Name:        name,
		Kind:        kind,
		counterByID: make(map[ids.Index]int),
		current:     -1,
	}
}

// LocationCounters returns the section's counters in declaration order.
func (s *Section) LocationCounters() []*LocationCounter {
	out := make([]*LocationCounter, len(s.counters))
	copy(out, s.counters)
	return out
}

// CurrentLocationCounter returns the section's active counter, or nil if
// the section has none yet.
func (s *Section) CurrentLocationCounter() *LocationCounter {
	if s.current < 0 {
		return nil
	}
	return s.counters[s.current]
}

// addCounter appends a freshly constructed counter and makes it current.
func (s *Section) addCounter(lc *LocationCounter) {
	s.counterByID[lc.Name] = len(s.counters)
	s.counters = append(s.counters, lc)
	s.current = len(s.counters) - 1
}

// SetCurrentLocationCounter switches the section's active counter to the
// one named name, creating it (as NONSTARTING unless it is the section's
// first counter) if it does not exist yet. This implements the assembler
// instruction `LOCTR`.
func (s *Section) SetCurrentLocationCounter(arena *SpaceArena, name ids.Index) *LocationCounter {
	if idx, ok := s.counterByID[name]; ok {
		s.current = idx
		return s.counters[idx]
	}
	kind := LoctrNonStarting
	if len(s.counters) == 0 {
		kind = LoctrStarting
	}
	lc := newLocationCounter(arena, name, s, kind)
	s.addCounter(lc)
	return lc
}
