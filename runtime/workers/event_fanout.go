package workers

import (
	"context"
	"log/slog"
	"time"

	"chat-relay/contract"
	"chat-relay/domain/event"
)

// EventFanout drains the coordinator's event stream and hands each
// event to every sink. Best-effort only: no delivery guarantees, no
// retries, no ordering promises across sinks. A slow sink is cut off by
// the per-consume timeout so it cannot stall the others.
type EventFanout struct {
	log         *slog.Logger
	events      <-chan event.DomainEvent
	sinks       []contract.EventSink
	sinkTimeout time.Duration
}

func NewEventFanout(log *slog.Logger, events <-chan event.DomainEvent, sinkTimeout time.Duration, sinks ...contract.EventSink) *EventFanout {
	return &EventFanout{
		log:         log,
		events:      events,
		sinks:       sinks,
		sinkTimeout: sinkTimeout,
	}
}

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping event fanout")
			return nil
		case evt := <-w.events:
			w.Fanout(ctx, evt)
		}
	}
}

func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	for _, sink := range w.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
		if err := sink.Consume(sinkCtx, evt); err != nil {
			w.log.Warn("Sink rejected event", "room_id", evt.RoomID(), "error", err)
		}
		cancel()
	}
}
