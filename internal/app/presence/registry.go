package presence

import (
	"strings"
	"sync"
)

// User is a logical user that currently holds at least one live connection.
type User struct {
	// Name preserves the casing supplied on the user's first registration.
	Name string

	conns *ConnSet
}

// Conns returns the user's connection set.
func (u *User) Conns() *ConnSet {
	return u.conns
}

// Registry is the process-wide source of truth for who is online and which
// connections each user holds. Keys are case-folded usernames.
//
// Invariants:
//   - a user record exists in the map iff its connection set is non-empty;
//     emptying the set and deleting the record happen in one critical section,
//   - a connection id belongs to at most one user's set at any time,
//   - get-or-create on first registration is atomic, so concurrent first
//     connections for the same username never produce two records.
type Registry struct {
	mu    sync.RWMutex
	users map[string]*User
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{users: make(map[string]*User)}
}

func normalize(username string) string {
	return strings.ToLower(username)
}

// Register adds connID to username's connection set, creating the user record
// if this is the user's first connection. It reports whether the add was the
// offline→online transition (resulting set size exactly 1).
func (r *Registry) Register(username, connID string) (*User, bool) {
	key := normalize(username)

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[key]
	if !ok {
		u = &User{Name: username, conns: newConnSet()}
		r.users[key] = u
	}

	return u, u.conns.Add(connID) == 1
}

// Unregister removes connID from username's connection set and reports
// whether that emptied the set. The user record is deleted in the same
// critical section that empties it, so a racing Register for the same name
// can never attach to a record that is about to disappear.
//
// An unknown username, or a connection id not present in the set, is a silent
// no-op: disconnect notifications may race registration and must be tolerated.
func (r *Registry) Unregister(username, connID string) (*User, bool) {
	key := normalize(username)

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[key]
	if !ok {
		return nil, false
	}

	last := u.conns.Remove(connID) == 0
	if last {
		delete(r.users, key)
	}

	return u, last
}

// Lookup returns the user record for username, matched case-insensitively.
func (r *Registry) Lookup(username string) (*User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[normalize(username)]
	return u, ok
}

// OnlineUsernames lists every online username whose connection set does not
// contain excludeConnID. The exclusion is by connection id, not by username:
// a user with several tabs open still sees themselves listed from their other
// tabs. That matches the historical behavior and clients rely on it.
//
// The result is a best-effort snapshot, not a linearizable point-in-time view.
func (r *Registry) OnlineUsernames(excludeConnID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.users))
	for _, u := range r.users {
		if u.conns.Contains(excludeConnID) {
			continue
		}
		names = append(names, u.Name)
	}
	return names
}

// OnlineCount returns the number of online users.
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.users)
}

// JointSnapshot returns the union of two users' connection ids, copied while
// both sets are held so the pair is mutually consistent. The two set locks
// are always acquired in case-folded name order, lower name first, regardless
// of which user is sender or receiver — crossing direct messages between two
// users would otherwise lock the same pair in opposite orders and deadlock.
func (r *Registry) JointSnapshot(a, b *User) []string {
	if a == b || normalize(a.Name) == normalize(b.Name) {
		return a.conns.Snapshot()
	}

	first, second := a, b
	if normalize(second.Name) < normalize(first.Name) {
		first, second = second, first
	}

	first.conns.mu.Lock()
	second.conns.mu.Lock()

	ids := make([]string, 0, len(first.conns.ids)+len(second.conns.ids))
	ids = first.conns.appendLocked(ids)
	ids = second.conns.appendLocked(ids)

	second.conns.mu.Unlock()
	first.conns.mu.Unlock()

	return ids
}
