package realtime

import "sort"

// Tracker maintains membership of connections in named scopes. Rooms and
// chats each get their own Tracker; voice channels wrap one with extra
// exclusivity logic (see Coordinator).
//
// A Tracker holds no lock of its own: the Hub serializes all access.
type Tracker struct {
	// members maps a scope ID to the set of member connection IDs.
	members map[string]map[string]struct{}

	// scopes is the reverse index: connection ID to the scopes it is in.
	scopes map[string]map[string]struct{}
}

func NewTracker() *Tracker {
	return &Tracker{
		members: make(map[string]map[string]struct{}),
		scopes:  make(map[string]map[string]struct{}),
	}
}

// Join adds the connection to the scope's member set. Joining a scope the
// connection is already in is a no-op.
func (t *Tracker) Join(connID, scopeID string) {
	if _, ok := t.members[scopeID]; !ok {
		t.members[scopeID] = make(map[string]struct{})
	}
	t.members[scopeID][connID] = struct{}{}

	if _, ok := t.scopes[connID]; !ok {
		t.scopes[connID] = make(map[string]struct{})
	}
	t.scopes[connID][scopeID] = struct{}{}
}

// Leave removes the connection from the scope. Leaving a scope the
// connection never joined is a no-op. Empty scopes are pruned.
func (t *Tracker) Leave(connID, scopeID string) {
	if set, ok := t.members[scopeID]; ok {
		delete(set, connID)
		if len(set) == 0 {
			delete(t.members, scopeID)
		}
	}
	if set, ok := t.scopes[connID]; ok {
		delete(set, scopeID)
		if len(set) == 0 {
			delete(t.scopes, connID)
		}
	}
}

// Members returns the connection IDs currently in the scope, ordered.
// Unknown scopes have no members.
func (t *Tracker) Members(scopeID string) []string {
	return sortedKeys(t.members[scopeID])
}

// ScopesOf returns the scopes the connection currently belongs to, ordered.
func (t *Tracker) ScopesOf(connID string) []string {
	return sortedKeys(t.scopes[connID])
}

// LeaveAll removes the connection from every scope it belongs to and
// returns the scopes that were left.
func (t *Tracker) LeaveAll(connID string) []string {
	left := t.ScopesOf(connID)
	for _, scopeID := range left {
		t.Leave(connID, scopeID)
	}
	return left
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
