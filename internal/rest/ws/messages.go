package ws

import (
	"encoding/json"

	"github.com/conmale73/myspace-be/internal/realtime"
)

// Client-emitted events.
const (
	EventAddNewOnlineUser  = "addNewOnlineUser"
	EventDeleteOnlineUser  = "deleteOnlineUser"
	EventJoinRoom          = "joinRoom"
	EventJoinChat          = "joinChat"
	EventSendMessage       = "sendMessage"
	EventJoinVoiceChannel  = "joinVoiceChannel"
	EventLeaveVoiceChannel = "leaveVoiceChannel"
)

// Server-emitted events.
const (
	EventGetOnlineUsers               = "getOnlineUsers"
	EventReceiveMessage               = "receiveMessage"
	EventReceiveJoinVoiceChannel      = "receiveJoinVoiceChannel"
	EventReceiveJoinVoiceChannelRoom  = "receiveJoinVoiceChannelRoom"
	EventReceiveLeaveVoiceChannel     = "receiveLeaveVoiceChannel"
	EventReceiveLeaveVoiceChannelRoom = "receiveLeaveVoiceChannelRoom"
)

type Message struct {
	Event string `json:"event"`
}

type AddNewOnlineUserRequest struct {
	Message
	UserID string `json:"user_id"`
}

type DeleteOnlineUserRequest struct {
	Message
	UserID string `json:"user_id"`
}

type JoinRoomRequest struct {
	Message
	RoomID string `json:"room_id"`
	UserID string `json:"user_id"`
}

type JoinChatRequest struct {
	Message
	UserID string `json:"user_id"`
	ChatID string `json:"chat_id"`
}

// SendMessageRequest carries the chat message verbatim. The document store
// owns the message schema, so only chat_id is read here for routing.
type SendMessageRequest struct {
	Message
	Data   json.RawMessage `json:"message"`
	UserID string          `json:"user_id"`
}

// chatRef is the part of a chat message this layer routes on.
type chatRef struct {
	ChatID string `json:"chat_id"`
}

type JoinVoiceChannelRequest struct {
	Message
	VoiceChannelID     string `json:"voice_channel_id"`
	UserID             string `json:"user_id"`
	RoomID             string `json:"room_id"`
	PrevVoiceChannelID string `json:"prev_voice_channel_id"`
}

type LeaveVoiceChannelRequest struct {
	Message
	VoiceChannelID string `json:"voice_channel_id"`
	UserID         string `json:"user_id"`
	RoomID         string `json:"room_id"`
}

type OnlineUsersResponse struct {
	Message
	OnlineUsers []realtime.OnlineUser `json:"online_users"`
}

type ReceiveMessageResponse struct {
	Message
	Data json.RawMessage `json:"message"`
}

type JoinVoiceChannelResponse struct {
	Message
	VoiceChannelID string `json:"voice_channel_id"`
}

type JoinVoiceChannelRoomResponse struct {
	Message
}

type LeaveVoiceChannelResponse struct {
	Message
}

type LeaveVoiceChannelRoomResponse struct {
	Message
	UserID string `json:"user_id"`
}
