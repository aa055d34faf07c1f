package runtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	apperrors "chat-relay/errors"
	"chat-relay/moderation"
)

// Coordinator is the event-handling core. Every inbound client event is
// validated against the identity store and the registry, applied, and
// answered through the transport. A single mutex serializes the whole
// validate-mutate-emit sequence, which is what keeps membership
// bidirectionally consistent under concurrent connections.
//
// Failed preconditions never mutate state: the offending connection
// gets a direct error event and nothing else happens.
type Coordinator struct {
	mu         sync.Mutex
	log        *slog.Logger
	identities *IdentityStore
	registry   *Registry
	transport  contract.Transport
	moderator  *moderation.Moderator
	validate   *validator.Validate
	events     chan event.DomainEvent

	// currentRoom tracks the one room a connection occupies, mirroring
	// the registry's member sets.
	currentRoom map[string]domain.RoomID
}

var _ contract.SessionHandler = (*Coordinator)(nil)

func NewCoordinator(
	log *slog.Logger,
	identities *IdentityStore,
	registry *Registry,
	transport contract.Transport,
	moderator *moderation.Moderator,
	bufferSize int,
) *Coordinator {
	return &Coordinator{
		log:         log,
		identities:  identities,
		registry:    registry,
		transport:   transport,
		moderator:   moderator,
		validate:    validator.New(),
		events:      make(chan event.DomainEvent, bufferSize),
		currentRoom: make(map[string]domain.RoomID),
	}
}

// Events exposes the domain event stream consumed by the fanout worker.
func (c *Coordinator) Events() <-chan event.DomainEvent {
	return c.events
}

func (c *Coordinator) OnConnect(connectionID string) {
	c.log.Debug("Client connected", "connection_id", connectionID)
}

// OnEvent dispatches one inbound event to completion before returning.
func (c *Coordinator) OnEvent(connectionID, eventName string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch eventName {
	case EventRegister:
		c.handleRegister(connectionID, data)
	case EventCreateRoom:
		c.handleCreateRoom(connectionID)
	case EventJoinRoom:
		c.handleJoinRoom(connectionID, data)
	case EventGetRoomUsers:
		c.handleGetRoomUsers(connectionID)
	case EventSendMessage:
		c.handleSendMessage(connectionID, data)
	default:
		c.sendError(connectionID, fmt.Sprintf("unknown event %q", eventName))
	}
}

// OnDisconnect cleans up membership and identity. The transport fires
// it exactly once per connection; a stray second call finds no identity
// and is a no-op.
func (c *Coordinator) OnDisconnect(connectionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	username, ok := c.identities.Get(connectionID)
	if !ok {
		c.log.Debug("Client disconnected before registering", "connection_id", connectionID)
		return
	}

	if roomID, inRoom := c.currentRoom[connectionID]; inRoom {
		c.leaveRoomLocked(connectionID, username, roomID, true)
	}
	c.identities.Remove(connectionID)
	c.log.Debug("Client disconnected", "connection_id", connectionID, "username", username)
}

func (c *Coordinator) handleRegister(connectionID string, data []byte) {
	var payload registerPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &payload); err != nil {
			c.sendError(connectionID, "invalid register payload")
			return
		}
	}

	username := c.identities.Register(connectionID, payload.Username)
	c.transport.SendTo(connectionID, EventRegisterResponse, RegisterResponse{
		Success:  true,
		Username: username,
	})
}

func (c *Coordinator) handleCreateRoom(connectionID string) {
	username, ok := c.identities.Get(connectionID)
	if !ok {
		c.sendError(connectionID, apperrors.ErrNotRegistered.Error())
		return
	}

	// Switching out of a previous room is silent for that room's
	// remaining members, same as the join_room switch path.
	if oldRoom, inRoom := c.currentRoom[connectionID]; inRoom {
		c.leaveRoomLocked(connectionID, username, oldRoom, false)
	}

	roomID, err := c.registry.CreateRoom(connectionID)
	if err != nil {
		c.log.Error("Room id generation failed", "error", err)
		c.sendError(connectionID, "could not create room")
		return
	}
	c.currentRoom[connectionID] = roomID
	c.transport.Attach(connectionID, roomID)

	c.transport.SendTo(connectionID, EventRoomCreated, RoomCreatedPayload{RoomID: roomID})
	c.publish(event.RoomCreated{Room: roomID, CreatedBy: username})
}

func (c *Coordinator) handleJoinRoom(connectionID string, data []byte) {
	username, ok := c.identities.Get(connectionID)
	if !ok {
		c.sendError(connectionID, apperrors.ErrNotRegistered.Error())
		return
	}

	var payload joinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError(connectionID, "invalid join_room payload")
		return
	}
	// A missing room id reads the same as an unknown one.
	if err := c.validate.Struct(payload); err != nil {
		c.sendError(connectionID, apperrors.ErrRoomNotFound.Error())
		return
	}

	roomID := domain.RoomID(payload.RoomID)
	if !c.registry.Exists(roomID) {
		c.sendError(connectionID, apperrors.ErrRoomNotFound.Error())
		return
	}

	// Same-room rejoin: resend the snapshot to the requester only.
	// No log append, no presence broadcast.
	if current, inRoom := c.currentRoom[connectionID]; inRoom && current == roomID {
		c.sendSnapshot(connectionID, roomID)
		return
	}

	if oldRoom, inRoom := c.currentRoom[connectionID]; inRoom {
		c.leaveRoomLocked(connectionID, username, oldRoom, false)
	}

	if err := c.registry.Join(roomID, connectionID); err != nil {
		c.sendError(connectionID, err.Error())
		return
	}
	c.currentRoom[connectionID] = roomID
	c.transport.Attach(connectionID, roomID)

	// History goes out before the join notice is appended, so the
	// joiner sees the notice exactly once: via the broadcast.
	c.transport.SendTo(connectionID, EventChatHistory, ChatHistoryPayload{
		Messages: c.historyPayload(roomID),
		RoomID:   roomID,
	})

	joinMessage := domain.NewSystemMessage(fmt.Sprintf("%s joined the room", username))
	if err := c.registry.AppendMessage(roomID, joinMessage); err != nil {
		c.sendError(connectionID, err.Error())
		return
	}

	c.transport.BroadcastToRoom(roomID, EventRoomUsers, RoomUsersPayload{Users: c.memberNames(roomID)})
	c.transport.BroadcastToRoom(roomID, EventUserJoined, PresencePayload{
		Username: username,
		Message:  joinMessage,
	})
	c.publish(event.ParticipantJoined{Room: roomID, Username: username})
}

func (c *Coordinator) handleGetRoomUsers(connectionID string) {
	if _, ok := c.identities.Get(connectionID); !ok {
		c.sendError(connectionID, apperrors.ErrNotRegistered.Error())
		return
	}
	roomID, inRoom := c.currentRoom[connectionID]
	if !inRoom {
		c.sendError(connectionID, apperrors.ErrNotInRoom.Error())
		return
	}
	c.transport.SendTo(connectionID, EventRoomUsers, RoomUsersPayload{Users: c.memberNames(roomID)})
}

func (c *Coordinator) handleSendMessage(connectionID string, data []byte) {
	username, ok := c.identities.Get(connectionID)
	if !ok {
		c.sendError(connectionID, apperrors.ErrNotRegistered.Error())
		return
	}
	roomID, inRoom := c.currentRoom[connectionID]
	if !inRoom {
		c.sendError(connectionID, apperrors.ErrNotInRoom.Error())
		return
	}

	var payload sendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.sendError(connectionID, "invalid send_message payload")
		return
	}
	if err := c.validate.Struct(payload); err != nil {
		c.sendError(connectionID, "message too long")
		return
	}

	// Whitespace-only content is dropped silently, not an error.
	if strings.TrimSpace(payload.Content) == "" {
		return
	}

	message := domain.NewUserMessage(username, c.moderator.Censor(payload.Content))
	if err := c.registry.AppendMessage(roomID, message); err != nil {
		c.sendError(connectionID, err.Error())
		return
	}

	c.transport.BroadcastToRoom(roomID, EventNewMessage, message)
	c.publish(event.MessagePosted{Room: roomID, Message: message})
}

// leaveRoomLocked removes the connection from roomID and detaches its
// transport channel. With announce set (disconnect path), survivors get
// the system leave message plus updated presence; an emptied room is
// deleted with no broadcast since no one is left to notify.
// Callers hold c.mu.
func (c *Coordinator) leaveRoomLocked(connectionID, username string, roomID domain.RoomID, announce bool) {
	deleted := c.registry.Leave(roomID, connectionID)
	c.transport.Detach(connectionID, roomID)
	delete(c.currentRoom, connectionID)

	if deleted {
		c.log.Debug("Room deleted", "room_id", roomID)
		c.publish(event.RoomClosed{Room: roomID})
		return
	}

	if announce {
		leaveMessage := domain.NewSystemMessage(fmt.Sprintf("%s left the room", username))
		if err := c.registry.AppendMessage(roomID, leaveMessage); err != nil {
			c.log.Warn("Leave notice dropped", "room_id", roomID, "error", err)
			return
		}
		c.transport.BroadcastToRoom(roomID, EventRoomUsers, RoomUsersPayload{Users: c.memberNames(roomID)})
		c.transport.BroadcastToRoom(roomID, EventUserLeft, PresencePayload{
			Username: username,
			Message:  leaveMessage,
		})
	}
	c.publish(event.ParticipantLeft{Room: roomID, Username: username})
}

func (c *Coordinator) sendSnapshot(connectionID string, roomID domain.RoomID) {
	c.transport.SendTo(connectionID, EventChatHistory, ChatHistoryPayload{
		Messages: c.historyPayload(roomID),
		RoomID:   roomID,
	})
	c.transport.SendTo(connectionID, EventRoomUsers, RoomUsersPayload{Users: c.memberNames(roomID)})
}

// historyPayload never serializes as null: an empty log is an empty array.
func (c *Coordinator) historyPayload(roomID domain.RoomID) []domain.Message {
	messages := c.registry.History(roomID)
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages
}

func (c *Coordinator) memberNames(roomID domain.RoomID) []string {
	return lo.Map(c.registry.ListMembers(roomID), func(connectionID string, _ int) string {
		name, _ := c.identities.Get(connectionID)
		return name
	})
}

func (c *Coordinator) sendError(connectionID, message string) {
	c.transport.SendTo(connectionID, EventError, ErrorPayload{Message: message})
}

// publish hands an event to the sink pipeline without ever blocking the
// coordinator; a full channel drops the event.
func (c *Coordinator) publish(e event.DomainEvent) {
	select {
	case c.events <- e:
	default:
		c.log.Warn("Event channel full, dropping event", "room_id", e.RoomID())
	}
}
