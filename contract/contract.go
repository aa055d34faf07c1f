//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"context"
	"reflect"
)

// Transport is the narrow surface the coordinator uses to reach clients.
// Sends are fire-and-forget: implementations must never block the caller,
// dropping on a slow consumer instead.
type Transport interface {
	SendTo(connectionID string, eventName string, payload any)
	BroadcastToRoom(roomID domain.RoomID, eventName string, payload any)
	Attach(connectionID string, roomID domain.RoomID)
	Detach(connectionID string, roomID domain.RoomID)
}

// SessionHandler receives inbound callbacks from the transport.
// OnDisconnect is delivered exactly once per connection.
type SessionHandler interface {
	OnConnect(connectionID string)
	OnDisconnect(connectionID string)
	OnEvent(connectionID string, eventName string, data []byte)
}

type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
