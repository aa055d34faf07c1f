package runtime

import "chat-relay/domain"

// Inbound event names, as sent by clients inside a transport frame.
const (
	EventRegister     = "register"
	EventCreateRoom   = "create_room"
	EventJoinRoom     = "join_room"
	EventGetRoomUsers = "get_room_users"
	EventSendMessage  = "send_message"
)

// Outbound event names.
const (
	EventError            = "error"
	EventRegisterResponse = "register_response"
	EventRoomCreated      = "room_created"
	EventChatHistory      = "chat_history"
	EventRoomUsers        = "room_users"
	EventUserJoined       = "user_joined"
	EventUserLeft         = "user_left"
	EventNewMessage       = "new_message"
)

type registerPayload struct {
	Username string `json:"username"`
}

type joinRoomPayload struct {
	RoomID string `json:"room_id" validate:"required"`
}

type sendMessagePayload struct {
	Content string `json:"content" validate:"max=5000"`
}

type RegisterResponse struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
}

type RoomCreatedPayload struct {
	RoomID domain.RoomID `json:"room_id"`
}

type ChatHistoryPayload struct {
	Messages []domain.Message `json:"messages"`
	RoomID   domain.RoomID    `json:"room_id"`
}

type RoomUsersPayload struct {
	Users []string `json:"users"`
}

// PresencePayload announces a join or leave to a whole room, together
// with the system message that was appended to the log for it.
type PresencePayload struct {
	Username string         `json:"username"`
	Message  domain.Message `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
