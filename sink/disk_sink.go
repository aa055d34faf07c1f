// Package sink holds the consumers of the relay's domain event stream.
package sink

import (
	"context"
	"log/slog"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/repositories"
)

// DiskSink archives user messages as they are posted. Presence noise
// (joins, leaves, room lifecycle) is deliberately not written: only the
// in-memory log carries it, and it dies with the room.
type DiskSink struct {
	repository repositories.IMessageRepository
	log        *slog.Logger
}

func NewDiskSink(repository repositories.IMessageRepository, log *slog.Logger) *DiskSink {
	return &DiskSink{repository: repository, log: log}
}

func (s *DiskSink) Consume(_ context.Context, e event.DomainEvent) error {
	posted, ok := e.(event.MessagePosted)
	if !ok || posted.Message.Type != domain.MessageTypeUser {
		return nil
	}
	return s.repository.StoreMessage(repositories.ArchivedMessage{
		ID:      posted.Message.ID,
		Room:    posted.Room,
		Author:  posted.Message.Username,
		Content: posted.Message.Content,
		At:      posted.Message.CreatedAt,
	})
}
