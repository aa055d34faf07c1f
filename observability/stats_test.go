package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/domain/event"
)

func TestStatsRecorder_CountsEvents(t *testing.T) {
	req := require.New(t)
	stats := NewStatsRecorder()
	ctx := context.Background()

	req.NoError(stats.Consume(ctx, event.RoomCreated{Room: "abababab", CreatedBy: "alice"}))
	req.NoError(stats.Consume(ctx, event.ParticipantJoined{Room: "abababab", Username: "bob"}))
	req.NoError(stats.Consume(ctx, event.MessagePosted{Room: "abababab", Message: domain.NewUserMessage("alice", "hi")}))
	req.NoError(stats.Consume(ctx, event.MessagePosted{Room: "abababab", Message: domain.NewUserMessage("bob", "hi")}))
	req.NoError(stats.Consume(ctx, event.ParticipantLeft{Room: "abababab", Username: "bob"}))
	req.NoError(stats.Consume(ctx, event.RoomClosed{Room: "abababab"}))

	snap := stats.Snapshot()
	req.Equal(uint64(1), snap.RoomsCreated)
	req.Equal(uint64(1), snap.RoomsClosed)
	req.Equal(uint64(2), snap.MessagesPosted)
	req.Equal(uint64(1), snap.Joins)
	req.Equal(uint64(1), snap.Leaves)
}

func TestStatsRecorder_ConnectionGauge(t *testing.T) {
	req := require.New(t)
	stats := NewStatsRecorder()

	stats.ConnOpened()
	stats.ConnOpened()
	stats.ConnClosed()

	req.Equal(int64(1), stats.Snapshot().ActiveConnections)
}
