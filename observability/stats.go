// Package observability aggregates relay counters for the health
// endpoint and the heartbeat log line.
package observability

import (
	"context"
	"sync/atomic"

	"chat-relay/domain/event"
)

// RelayStats is a point-in-time snapshot of the relay counters.
type RelayStats struct {
	ActiveConnections int64  `json:"active_connections"`
	RoomsCreated      uint64 `json:"rooms_created"`
	RoomsClosed       uint64 `json:"rooms_closed"`
	MessagesPosted    uint64 `json:"messages_posted"`
	Joins             uint64 `json:"joins"`
	Leaves            uint64 `json:"leaves"`
}

// StatsRecorder keeps atomic counters. It is also an EventSink: room
// events flow into it through the fanout worker, while the transport
// maintains the connection gauge directly.
type StatsRecorder struct {
	activeConnections int64
	roomsCreated      uint64
	roomsClosed       uint64
	messagesPosted    uint64
	joins             uint64
	leaves            uint64
}

func NewStatsRecorder() *StatsRecorder {
	return &StatsRecorder{}
}

func (s *StatsRecorder) ConnOpened() {
	atomic.AddInt64(&s.activeConnections, 1)
}

func (s *StatsRecorder) ConnClosed() {
	atomic.AddInt64(&s.activeConnections, -1)
}

func (s *StatsRecorder) Consume(_ context.Context, e event.DomainEvent) error {
	switch e.(type) {
	case event.RoomCreated:
		atomic.AddUint64(&s.roomsCreated, 1)
	case event.RoomClosed:
		atomic.AddUint64(&s.roomsClosed, 1)
	case event.MessagePosted:
		atomic.AddUint64(&s.messagesPosted, 1)
	case event.ParticipantJoined:
		atomic.AddUint64(&s.joins, 1)
	case event.ParticipantLeft:
		atomic.AddUint64(&s.leaves, 1)
	}
	return nil
}

func (s *StatsRecorder) Snapshot() RelayStats {
	return RelayStats{
		ActiveConnections: atomic.LoadInt64(&s.activeConnections),
		RoomsCreated:      atomic.LoadUint64(&s.roomsCreated),
		RoomsClosed:       atomic.LoadUint64(&s.roomsClosed),
		MessagesPosted:    atomic.LoadUint64(&s.messagesPosted),
		Joins:             atomic.LoadUint64(&s.joins),
		Leaves:            atomic.LoadUint64(&s.leaves),
	}
}
