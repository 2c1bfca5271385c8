package realtime

import "sort"

// OnlineUser is one entry of the online-user set: a user and the connection
// currently representing it.
type OnlineUser struct {
	UserID       string `json:"user_id"`
	ConnectionID string `json:"connection_id"`
}

// Presence maintains the set of currently-online users. A user is online
// between its explicit announcement and its removal, not merely while its
// transport is connected.
//
// Presence holds no lock of its own: the Hub serializes all access.
type Presence struct {
	online map[string]string // user ID -> connection ID
}

func NewPresence() *Presence {
	return &Presence{
		online: make(map[string]string),
	}
}

// Add marks the user as online on the given connection. A user announcing
// itself again, e.g. after a reconnect, replaces its previous connection
// rather than duplicating or keeping the stale entry.
func (p *Presence) Add(userID, connID string) {
	p.online[userID] = connID
}

// Remove marks the user as offline. Removing an unknown user is a no-op.
func (p *Presence) Remove(userID string) {
	delete(p.online, userID)
}

// ConnectionOf returns the connection currently representing the user.
func (p *Presence) ConnectionOf(userID string) (string, bool) {
	connID, ok := p.online[userID]
	return connID, ok
}

// Snapshot returns the full online-user set, ordered by user ID.
func (p *Presence) Snapshot() []OnlineUser {
	users := make([]OnlineUser, 0, len(p.online))
	for userID, connID := range p.online {
		users = append(users, OnlineUser{UserID: userID, ConnectionID: connID})
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].UserID < users[j].UserID
	})
	return users
}
