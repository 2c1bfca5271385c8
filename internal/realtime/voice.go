package realtime

// VoiceMembership records the channel a connection occupies and the room
// the channel belongs to.
type VoiceMembership struct {
	ChannelID string
	RoomID    string
}

// Coordinator manages voice-channel membership. Unlike plain rooms and
// chats, a connection occupies at most one voice channel at a time: joining
// a channel leaves the previous one first.
//
// The Coordinator holds no lock of its own: the Hub serializes all access.
type Coordinator struct {
	tracker *Tracker

	// current maps a connection ID to the channel it occupies. The tracker
	// is authoritative for membership; current remembers the channel's room
	// so leave notifications can reach room-level observers.
	current map[string]VoiceMembership
}

func NewCoordinator() *Coordinator {
	return &Coordinator{
		tracker: NewTracker(),
		current: make(map[string]VoiceMembership),
	}
}

// Join moves the connection into the channel, leaving any channel it
// currently occupies. prevChannelID is the channel the client believes it
// is leaving; it is honored even when the coordinator has no record of it.
// The memberships actually left are returned.
func (c *Coordinator) Join(connID, channelID, roomID, prevChannelID string) []VoiceMembership {
	left := c.LeaveAll(connID)
	if prevChannelID != "" {
		c.tracker.Leave(connID, prevChannelID)
	}

	c.tracker.Join(connID, channelID)
	c.current[connID] = VoiceMembership{ChannelID: channelID, RoomID: roomID}
	return left
}

// Leave removes the connection from the channel and returns the membership
// that was released. Leaving a channel the connection is not in is a no-op.
func (c *Coordinator) Leave(connID, channelID string) VoiceMembership {
	c.tracker.Leave(connID, channelID)

	released := VoiceMembership{ChannelID: channelID}
	if cur, ok := c.current[connID]; ok && cur.ChannelID == channelID {
		released.RoomID = cur.RoomID
		delete(c.current, connID)
	}
	return released
}

// LeaveAll removes the connection from every channel it belongs to and
// returns the memberships that were left. Channels the coordinator never
// recorded a room for come back with an empty RoomID.
func (c *Coordinator) LeaveAll(connID string) []VoiceMembership {
	cur, tracked := c.current[connID]

	channels := c.tracker.LeaveAll(connID)
	left := make([]VoiceMembership, 0, len(channels))
	for _, channelID := range channels {
		membership := VoiceMembership{ChannelID: channelID}
		if tracked && cur.ChannelID == channelID {
			membership.RoomID = cur.RoomID
		}
		left = append(left, membership)
	}

	delete(c.current, connID)
	return left
}

// Members returns the connection IDs currently in the channel, ordered.
func (c *Coordinator) Members(channelID string) []string {
	return c.tracker.Members(channelID)
}

// ChannelOf returns the channel the connection currently occupies.
func (c *Coordinator) ChannelOf(connID string) (string, bool) {
	cur, ok := c.current[connID]
	if !ok {
		return "", false
	}
	return cur.ChannelID, true
}
