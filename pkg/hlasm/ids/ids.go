// Package ids implements the identifier store: HLASM symbol and operand
// names are interned once and thereafter referenced by a small, comparable
// handle instead of by string.
package ids

import "sync"

// Index is an opaque handle into a Store. Two Index values compare equal
// iff they denote the same interned name. The zero value denotes "no name".
type Index struct {
	n int
}

// Empty reports whether idx denotes "no name".
func (idx Index) Empty() bool { return idx.n == 0 }

// Store interns strings and hands back stable Index values for them.
//
// A Store is not safe for unsynchronized concurrent use from multiple
// goroutines, mirroring the spec's single-threaded cooperative scheduling
// model (§5): all assembly context state, including the identifier store,
// belongs to one statement pipeline at a time.
type Store struct {
	mu      sync.Mutex
	byName  map[string]Index
	byIndex []string
}

// New creates an empty identifier store. Index zero is reserved so that the
// zero Index value always means "no name".
func New() *Store {
	return &Store{
		byName:  make(map[string]Index),
		byIndex: []string{""},
	}
}

// Intern returns the Index for name, interning it if this is the first time
// the store has seen it.
func (s *Store) Intern(name string) Index {
	if name == "" {
		return Index{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx, ok := s.byName[name]; ok {
		return idx
	}

	idx := Index{n: len(s.byIndex)}
	s.byIndex = append(s.byIndex, name)
	s.byName[name] = idx
	return idx
}

// Lookup returns the Index for name if it has already been interned,
// without interning it.
func (s *Store) Lookup(name string) (Index, bool) {
	if name == "" {
		return Index{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byName[name]
	return idx, ok
}

// Name returns the interned string denoted by idx, or "" for the empty
// Index.
func (s *Store) Name(idx Index) string {
	if idx.Empty() {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if idx.n < 0 || idx.n >= len(s.byIndex) {
		return ""
	}
	return s.byIndex[idx.n]
}

// Less orders two indices by their interned name, giving callers a
// deterministic total order for the sorted sets the spec requires
// (DependencyCollector.undefined_symbols, unresolved_spaces, ...).
func (s *Store) Less(a, b Index) bool {
	return s.Name(a) < s.Name(b)
}
