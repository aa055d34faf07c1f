package workers

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chat-relay/domain/event"
	"chat-relay/mocks"
)

func TestEventFanout_DeliversToEverySink(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	firstSink := mocks.NewMockEventSink(ctrl)
	secondSink := mocks.NewMockEventSink(ctrl)

	evt := event.MessagePosted{Room: "abababab"}
	firstSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)
	secondSink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	events := make(chan event.DomainEvent, 1)
	worker := NewEventFanout(log, events, time.Second, firstSink, secondSink)

	// When an event arrives on the stream
	events <- evt

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req.NoError(worker.Run(ctx))
}

func TestEventFanout_FailingSinkDoesNotBlockOthers(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	failingSink := mocks.NewMockEventSink(ctrl)
	healthySink := mocks.NewMockEventSink(ctrl)

	evt := event.RoomCreated{Room: "abababab", CreatedBy: "alice"}

	// Given the first sink rejects the event
	failingSink.EXPECT().Consume(gomock.Any(), evt).Return(errors.New("disk full")).Times(1)
	// Then the second sink is still fed
	healthySink.EXPECT().Consume(gomock.Any(), evt).Return(nil).Times(1)

	worker := NewEventFanout(log, nil, time.Second, failingSink, healthySink)
	worker.Fanout(context.Background(), evt)
}

func TestEventFanout_SlowSinkIsCutOffByTimeout(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	slowSink := mocks.NewMockEventSink(ctrl)

	sinkTimeout := 20 * time.Millisecond
	var sawDeadline bool
	slowSink.EXPECT().Consume(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ event.DomainEvent) error {
			select {
			case <-ctx.Done():
				sawDeadline = true
				return ctx.Err()
			case <-time.After(time.Second):
				return nil
			}
		}).Times(1)

	worker := NewEventFanout(log, nil, sinkTimeout, slowSink)
	worker.Fanout(context.Background(), event.RoomClosed{Room: "abababab"})

	req.True(sawDeadline, "Sink context should expire after the timeout")
}
