package event

import (
	"chat-relay/domain"
)

// DomainEvent is anything the coordinator publishes after a successful
// room mutation. Sinks consume these for retention and telemetry.
type DomainEvent interface {
	RoomID() domain.RoomID
}

type MessagePosted struct {
	Room    domain.RoomID
	Message domain.Message
}

func (e MessagePosted) RoomID() domain.RoomID { return e.Room }

type ParticipantJoined struct {
	Room     domain.RoomID
	Username string
}

func (e ParticipantJoined) RoomID() domain.RoomID { return e.Room }

type ParticipantLeft struct {
	Room     domain.RoomID
	Username string
}

func (e ParticipantLeft) RoomID() domain.RoomID { return e.Room }

type RoomCreated struct {
	Room      domain.RoomID
	CreatedBy string
}

func (e RoomCreated) RoomID() domain.RoomID { return e.Room }

// RoomClosed is published when the last member leaves and the room is
// deleted along with its log.
type RoomClosed struct {
	Room domain.RoomID
}

func (e RoomClosed) RoomID() domain.RoomID { return e.Room }
