package presence

import "sync"

// ConnSet holds the live connection ids of a single user. All operations run
// under the set's own mutex, so Add, Remove, Snapshot and the size reads are
// linearizable with respect to each other.
type ConnSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newConnSet() *ConnSet {
	return &ConnSet{ids: make(map[string]struct{})}
}

// Add inserts connID and returns the resulting size.
func (s *ConnSet) Add(connID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids[connID] = struct{}{}
	return len(s.ids)
}

// Remove deletes connID if present and returns the resulting size.
func (s *ConnSet) Remove(connID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.ids, connID)
	return len(s.ids)
}

// Snapshot returns a copy of the current members. Callers iterate the copy,
// never the live set, so no lock is held across delivery I/O.
func (s *ConnSet) Snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.appendLocked(make([]string, 0, len(s.ids)))
}

// Contains reports whether connID is a member.
func (s *ConnSet) Contains(connID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.ids[connID]
	return ok
}

// Len returns the current size.
func (s *ConnSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ids)
}

// Empty reports whether the set has no members.
func (s *ConnSet) Empty() bool {
	return s.Len() == 0
}

// appendLocked copies the members into dst. Callers must hold s.mu.
func (s *ConnSet) appendLocked(dst []string) []string {
	for id := range s.ids {
		dst = append(dst, id)
	}
	return dst
}
