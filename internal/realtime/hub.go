package realtime

import (
	"sync"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/conmale73/myspace-be/internal/models"
)

// Hub is the process-wide coordination point of the real-time layer: the
// connection registry, the online-user set, room and chat membership, and
// voice-channel membership. A single mutex serializes every state
// transition, so each operation is one atomic step and events arriving on
// different connections cannot interleave mid-transition.
//
// Nothing here is persisted. The state is fully reconstructible from the
// currently open connections, and a restart legitimately resets it.
type Hub struct {
	mtx sync.Mutex

	connections map[string]*models.Connection
	presence    *Presence
	rooms       *Tracker
	chats       *Tracker
	voice       *Coordinator

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[string]*models.Connection),
		presence:    NewPresence(),
		rooms:       NewTracker(),
		chats:       NewTracker(),
		voice:       NewCoordinator(),
		logger:      logger,
	}
}

// VoiceDeparture describes one voice channel a connection left: the peers
// that remain in the channel and the members of the channel's room, both
// excluding the departed connection.
type VoiceDeparture struct {
	ChannelID    string
	RoomID       string
	UserID       string
	ChannelPeers []*models.Connection
	RoomPeers    []*models.Connection
}

// VoiceJoinResult describes a voice-channel join: the peers to notify in
// the channel and the room (both excluding the joiner), and the channels
// the connection implicitly left.
type VoiceJoinResult struct {
	ChannelPeers []*models.Connection
	RoomPeers    []*models.Connection
	Departures   []VoiceDeparture
}

// VoiceLeaveResult describes an explicit voice-channel leave.
type VoiceLeaveResult struct {
	ChannelPeers []*models.Connection
	RoomPeers    []*models.Connection
}

// DisconnectResult describes the cleanup performed for a closed connection.
type DisconnectResult struct {
	// UserID is the identity the connection had announced, if any.
	UserID string

	// VoiceDepartures lists the voice channels the connection was in.
	VoiceDepartures []VoiceDeparture

	// OnlineUsers is the updated online set when PresenceChanged is true.
	OnlineUsers []OnlineUser

	// PresenceChanged reports whether the online-user set changed.
	PresenceChanged bool
}

// Register allocates an identifier for the transport connection and adds
// it to the registry.
func (h *Hub) Register(conn models.Conn) *models.Connection {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	c := &models.Connection{
		ID:   ulid.Make().String(),
		Conn: conn,
	}
	h.connections[c.ID] = c
	h.logger.Info("connection registered", zap.String("connectionID", c.ID))
	return c
}

// Unregister releases every room, chat and voice membership held by the
// connection and removes it from the registry. Calling it again for the
// same identifier is a no-op.
//
// Disconnect doubles as logout here: the presence entry is dropped unless
// the user already re-announced itself on a newer connection.
func (h *Hub) Unregister(connID string) DisconnectResult {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	c, ok := h.connections[connID]
	if !ok {
		return DisconnectResult{}
	}

	h.rooms.LeaveAll(connID)
	h.chats.LeaveAll(connID)

	result := DisconnectResult{UserID: c.UserID}
	for _, membership := range h.voice.LeaveAll(connID) {
		result.VoiceDepartures = append(result.VoiceDepartures, h.departureLocked(c, membership))
	}

	if c.UserID != "" {
		if current, online := h.presence.ConnectionOf(c.UserID); online && current == connID {
			h.presence.Remove(c.UserID)
			result.OnlineUsers = h.presence.Snapshot()
			result.PresenceChanged = true
		}
	}

	delete(h.connections, connID)
	h.logger.Info("connection unregistered", zap.String("connectionID", connID))
	return result
}

// SetOnline marks userID as online on connID and binds the identity to the
// connection, replacing any previous connection of the same user. Returns
// the updated online set, or nil when the connection is unknown.
func (h *Hub) SetOnline(userID, connID string) []OnlineUser {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	c, ok := h.connections[connID]
	if !ok {
		return nil
	}
	c.UserID = userID
	h.presence.Add(userID, connID)
	h.logger.Info("user online",
		zap.String("userID", userID),
		zap.String("connectionID", connID))
	return h.presence.Snapshot()
}

// SetOffline removes userID from the online set and returns the updated
// set. Removing a user that is not online is a no-op.
func (h *Hub) SetOffline(userID string) []OnlineUser {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.presence.Remove(userID)
	h.logger.Info("user offline", zap.String("userID", userID))
	return h.presence.Snapshot()
}

// JoinRoom adds the connection to the room's member set.
func (h *Hub) JoinRoom(connID, roomID string) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.rooms.Join(connID, roomID)
}

// JoinChat adds the connection to the chat's member set.
func (h *Hub) JoinChat(connID, chatID string) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.chats.Join(connID, chatID)
}

// ChatPeers returns the connections joined to the chat, excluding except.
func (h *Hub) ChatPeers(chatID, except string) []*models.Connection {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return h.connsLocked(h.chats.Members(chatID), except)
}

// JoinVoice moves the connection into the voice channel, leaving any
// channel it currently occupies.
func (h *Hub) JoinVoice(connID, channelID, roomID, prevChannelID string) VoiceJoinResult {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	c, ok := h.connections[connID]
	if !ok {
		return VoiceJoinResult{}
	}

	var result VoiceJoinResult
	for _, membership := range h.voice.Join(connID, channelID, roomID, prevChannelID) {
		result.Departures = append(result.Departures, h.departureLocked(c, membership))
	}
	result.ChannelPeers = h.connsLocked(h.voice.Members(channelID), connID)
	result.RoomPeers = h.connsLocked(h.rooms.Members(roomID), connID)
	return result
}

// LeaveVoice removes the connection from the voice channel. The room
// broadcast targets the room supplied by the client, matching the wire
// protocol.
func (h *Hub) LeaveVoice(connID, channelID, roomID string) VoiceLeaveResult {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	if _, ok := h.connections[connID]; !ok {
		return VoiceLeaveResult{}
	}

	h.voice.Leave(connID, channelID)
	return VoiceLeaveResult{
		ChannelPeers: h.connsLocked(h.voice.Members(channelID), connID),
		RoomPeers:    h.connsLocked(h.rooms.Members(roomID), connID),
	}
}

// LeaveAllVoice removes every connection bound to userID from every voice
// channel it occupies and returns the resulting departures. Used for
// global cleanup on logout.
func (h *Hub) LeaveAllVoice(userID string) []VoiceDeparture {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	var departures []VoiceDeparture
	for _, c := range h.connections {
		if c.UserID != userID {
			continue
		}
		for _, membership := range h.voice.LeaveAll(c.ID) {
			departures = append(departures, h.departureLocked(c, membership))
		}
	}
	return departures
}

// Connections returns every registered connection.
func (h *Hub) Connections() []*models.Connection {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	conns := make([]*models.Connection, 0, len(h.connections))
	for _, c := range h.connections {
		conns = append(conns, c)
	}
	return conns
}

// Connection returns the connection with the given identifier.
func (h *Hub) Connection(connID string) (*models.Connection, bool) {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	c, ok := h.connections[connID]
	return c, ok
}

// departureLocked resolves the broadcast targets for a released voice
// membership. Callers must hold the hub lock.
func (h *Hub) departureLocked(c *models.Connection, membership VoiceMembership) VoiceDeparture {
	return VoiceDeparture{
		ChannelID:    membership.ChannelID,
		RoomID:       membership.RoomID,
		UserID:       c.UserID,
		ChannelPeers: h.connsLocked(h.voice.Members(membership.ChannelID), c.ID),
		RoomPeers:    h.connsLocked(h.rooms.Members(membership.RoomID), c.ID),
	}
}

// connsLocked resolves connection IDs to registered connections, skipping
// except and identifiers that are no longer registered. Callers must hold
// the hub lock.
func (h *Hub) connsLocked(connIDs []string, except string) []*models.Connection {
	conns := make([]*models.Connection, 0, len(connIDs))
	for _, connID := range connIDs {
		if connID == except {
			continue
		}
		if c, ok := h.connections[connID]; ok {
			conns = append(conns, c)
		}
	}
	return conns
}
