package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/conmale73/myspace-be/internal/cache"
	"github.com/conmale73/myspace-be/internal/models"
	"github.com/conmale73/myspace-be/internal/realtime"
)

var (
	ErrInvalidMessage = errors.New("invalid message")
	ErrValidatingJWT  = errors.New("failed to validate jwt")
)

type Handler struct {
	// upgrader is used to upgrade the HTTP connection to a WebSocket connection
	upgrader *websocket.Upgrader

	// hub holds presence, room, chat and voice-channel state
	hub *realtime.Hub

	// jwtHeaderName is the name of the header that carries the JWT token
	jwtHeaderName string

	// jwtValidationURL is the URL that validates the JWT token; when empty,
	// the handshake is not authorized
	jwtValidationURL string

	// tokenCache remembers recently validated tokens
	tokenCache cache.Cache

	// cacheTTL is how long a validated token stays cached, in seconds
	cacheTTL int64

	logger *zap.Logger
}

func NewHandler(
	hub *realtime.Hub,
	tokenCache cache.Cache,
	cacheTTL int64,
	jwtHeaderName string,
	jwtValidationURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		upgrader: &websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		hub:              hub,
		tokenCache:       tokenCache,
		cacheTTL:         cacheTTL,
		jwtHeaderName:    jwtHeaderName,
		jwtValidationURL: jwtValidationURL,
		logger:           logger,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if err := h.authorize(r); err != nil {
		h.logger.Debug("Connection rejected", zap.Error(err))
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	c := h.hub.Register(conn)
	h.logger.Info("Connection upgraded successfully", zap.String("connectionID", c.ID))

	for {
		mt, raw, err := conn.ReadMessage()
		if err != nil || mt == websocket.CloseMessage {
			h.disconnect(c)
			h.logger.Info("Connection closed", zap.String("connectionID", c.ID))
			break
		}

		// Events from one connection are handled in arrival order.
		h.dispatch(c, raw)
	}
}

func (h *Handler) dispatch(c *models.Connection, raw []byte) {
	event, err := decodeEvent(raw)
	if err != nil {
		h.logger.Debug("Failed to decode event", zap.Error(err))
		return
	}

	switch v := event.(type) {
	case AddNewOnlineUserRequest:
		h.addOnlineUser(c, v)
	case DeleteOnlineUserRequest:
		h.deleteOnlineUser(c, v)
	case JoinRoomRequest:
		h.joinRoom(c, v)
	case JoinChatRequest:
		h.joinChat(c, v)
	case SendMessageRequest:
		h.sendMessage(c, v)
	case JoinVoiceChannelRequest:
		h.joinVoiceChannel(c, v)
	case LeaveVoiceChannelRequest:
		h.leaveVoiceChannel(c, v)
	}
}

func (h *Handler) addOnlineUser(c *models.Connection, request AddNewOnlineUserRequest) {
	if request.UserID == "" {
		return
	}

	onlineUsers := h.hub.SetOnline(request.UserID, c.ID)
	if onlineUsers == nil {
		return
	}

	// The full set goes to every connection, the announcing one included.
	h.broadcast(h.hub.Connections(), OnlineUsersResponse{
		Message:     Message{Event: EventGetOnlineUsers},
		OnlineUsers: onlineUsers,
	})
}

func (h *Handler) deleteOnlineUser(c *models.Connection, request DeleteOnlineUserRequest) {
	if request.UserID == "" {
		return
	}

	// Logout releases any voice channels the user still occupies.
	for _, departure := range h.hub.LeaveAllVoice(request.UserID) {
		h.notifyVoiceDeparture(departure)
	}

	onlineUsers := h.hub.SetOffline(request.UserID)

	// The updated set goes back to the requesting connection only.
	h.send(c, OnlineUsersResponse{
		Message:     Message{Event: EventGetOnlineUsers},
		OnlineUsers: onlineUsers,
	})
}

func (h *Handler) joinRoom(c *models.Connection, request JoinRoomRequest) {
	if request.RoomID == "" {
		return
	}

	h.hub.JoinRoom(c.ID, request.RoomID)
	h.logger.Info("user joined room",
		zap.String("userID", request.UserID),
		zap.String("roomID", request.RoomID))
}

func (h *Handler) joinChat(c *models.Connection, request JoinChatRequest) {
	if request.ChatID == "" {
		return
	}

	h.hub.JoinChat(c.ID, request.ChatID)
	h.logger.Info("user joined chat",
		zap.String("userID", request.UserID),
		zap.String("chatID", request.ChatID))
}

func (h *Handler) sendMessage(c *models.Connection, request SendMessageRequest) {
	var ref chatRef
	if err := json.Unmarshal(request.Data, &ref); err != nil || ref.ChatID == "" {
		h.logger.Debug("Dropped message without chat_id")
		return
	}

	// Relay to the other chat members; persistence is the HTTP layer's job.
	h.broadcast(h.hub.ChatPeers(ref.ChatID, c.ID), ReceiveMessageResponse{
		Message: Message{Event: EventReceiveMessage},
		Data:    request.Data,
	})
}

func (h *Handler) joinVoiceChannel(c *models.Connection, request JoinVoiceChannelRequest) {
	if request.VoiceChannelID == "" {
		return
	}

	result := h.hub.JoinVoice(c.ID, request.VoiceChannelID, request.RoomID, request.PrevVoiceChannelID)

	for _, departure := range result.Departures {
		h.notifyVoiceDeparture(departure)
	}
	h.broadcast(result.ChannelPeers, JoinVoiceChannelResponse{
		Message:        Message{Event: EventReceiveJoinVoiceChannel},
		VoiceChannelID: request.VoiceChannelID,
	})
	h.broadcast(result.RoomPeers, JoinVoiceChannelRoomResponse{
		Message: Message{Event: EventReceiveJoinVoiceChannelRoom},
	})

	h.logger.Info("user joined voice channel",
		zap.String("userID", request.UserID),
		zap.String("voiceChannelID", request.VoiceChannelID))
}

func (h *Handler) leaveVoiceChannel(c *models.Connection, request LeaveVoiceChannelRequest) {
	if request.VoiceChannelID == "" {
		return
	}

	result := h.hub.LeaveVoice(c.ID, request.VoiceChannelID, request.RoomID)

	h.broadcast(result.ChannelPeers, LeaveVoiceChannelResponse{
		Message: Message{Event: EventReceiveLeaveVoiceChannel},
	})
	h.broadcast(result.RoomPeers, LeaveVoiceChannelRoomResponse{
		Message: Message{Event: EventReceiveLeaveVoiceChannelRoom},
		UserID:  request.UserID,
	})

	h.logger.Info("user left voice channel",
		zap.String("userID", request.UserID),
		zap.String("voiceChannelID", request.VoiceChannelID))
}

func (h *Handler) disconnect(c *models.Connection) {
	result := h.hub.Unregister(c.ID)

	for _, departure := range result.VoiceDepartures {
		h.notifyVoiceDeparture(departure)
	}
	if result.PresenceChanged {
		h.broadcast(h.hub.Connections(), OnlineUsersResponse{
			Message:     Message{Event: EventGetOnlineUsers},
			OnlineUsers: result.OnlineUsers,
		})
	}
}

// notifyVoiceDeparture tells a departed channel's remaining members and the
// channel's room that the user left.
func (h *Handler) notifyVoiceDeparture(departure realtime.VoiceDeparture) {
	h.broadcast(departure.ChannelPeers, LeaveVoiceChannelResponse{
		Message: Message{Event: EventReceiveLeaveVoiceChannel},
	})
	h.broadcast(departure.RoomPeers, LeaveVoiceChannelRoomResponse{
		Message: Message{Event: EventReceiveLeaveVoiceChannelRoom},
		UserID:  departure.UserID,
	})
}

// broadcast delivers v to each connection best-effort, evicting connections
// whose transport write fails.
func (h *Handler) broadcast(conns []*models.Connection, v interface{}) {
	for _, c := range conns {
		if err := c.Send(v); err != nil {
			h.logger.Debug("Write failed, evicting connection",
				zap.String("connectionID", c.ID),
				zap.Error(err))
			h.hub.Unregister(c.ID)
			_ = c.Close()
		}
	}
}

func (h *Handler) send(c *models.Connection, v interface{}) {
	h.broadcast([]*models.Connection{c}, v)
}

// authorize validates the JWT header against the configured validation URL.
// Recently validated tokens are answered from the cache.
func (h *Handler) authorize(r *http.Request) error {
	if h.jwtValidationURL == "" {
		return nil
	}

	token := r.Header.Get(h.jwtHeaderName)
	if token == "" {
		return fmt.Errorf("missing token: %w", ErrValidatingJWT)
	}

	if v, _ := h.tokenCache.Get(token); v != nil {
		return nil
	}

	req, _ := http.NewRequestWithContext(r.Context(), http.MethodGet, h.jwtValidationURL, nil)
	req.Header.Set(h.jwtHeaderName, token)
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		h.logger.Error("Failed to send validation request", zap.Error(err))
		return fmt.Errorf("failed to send validation request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("unauthorized: %w", ErrValidatingJWT)
	case http.StatusForbidden:
		return fmt.Errorf("forbidden: %w", ErrValidatingJWT)
	case http.StatusInternalServerError:
		return fmt.Errorf("internal server error: %w", ErrValidatingJWT)
	}

	_ = h.tokenCache.SetWithTTL(token, true, h.cacheTTL)
	return nil
}

func decodeEvent(raw []byte) (interface{}, error) {
	var envelope Message
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, ErrInvalidMessage
	}

	switch envelope.Event {
	case EventAddNewOnlineUser:
		var request AddNewOnlineUserRequest
		if err := json.Unmarshal(raw, &request); err != nil {
			return nil, fmt.Errorf("error unmarshaling AddNewOnlineUserRequest: %w", err)
		}
		return request, nil
	case EventDeleteOnlineUser:
		var request DeleteOnlineUserRequest
		if err := json.Unmarshal(raw, &request); err != nil {
			return nil, fmt.Errorf("error unmarshaling DeleteOnlineUserRequest: %w", err)
		}
		return request, nil
	case EventJoinRoom:
		var request JoinRoomRequest
		if err := json.Unmarshal(raw, &request); err != nil {
			return nil, fmt.Errorf("error unmarshaling JoinRoomRequest: %w", err)
		}
		return request, nil
	case EventJoinChat:
		var request JoinChatRequest
		if err := json.Unmarshal(raw, &request); err != nil {
			return nil, fmt.Errorf("error unmarshaling JoinChatRequest: %w", err)
		}
		return request, nil
	case EventSendMessage:
		var request SendMessageRequest
		if err := json.Unmarshal(raw, &request); err != nil {
			return nil, fmt.Errorf("error unmarshaling SendMessageRequest: %w", err)
		}
		return request, nil
	case EventJoinVoiceChannel:
		var request JoinVoiceChannelRequest
		if err := json.Unmarshal(raw, &request); err != nil {
			return nil, fmt.Errorf("error unmarshaling JoinVoiceChannelRequest: %w", err)
		}
		return request, nil
	case EventLeaveVoiceChannel:
		var request LeaveVoiceChannelRequest
		if err := json.Unmarshal(raw, &request); err != nil {
			return nil, fmt.Errorf("error unmarshaling LeaveVoiceChannelRequest: %w", err)
		}
		return request, nil
	}
	return nil, ErrInvalidMessage
}
