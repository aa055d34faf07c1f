// Package ws is the websocket transport adapter. It owns the live
// connections and the room channel routing; all protocol decisions
// live in the session handler it forwards to.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/observability"
)

const (
	socketBufferSize = 1024
	sendBufferSize   = 256
)

// Frame is the wire envelope: a named event and its JSON payload.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Hub implements contract.Transport over gorilla websockets.
// Sends are fire-and-forget: a client whose send buffer is full has the
// frame dropped rather than blocking the coordinator.
type Hub struct {
	mu           sync.RWMutex
	log          *slog.Logger
	handler      contract.SessionHandler
	clients      map[string]*Client
	roomChannels map[domain.RoomID]map[string]struct{}
	stats        *observability.StatsRecorder
	upgrader     websocket.Upgrader
}

var _ contract.Transport = (*Hub)(nil)

func NewHub(log *slog.Logger, stats *observability.StatsRecorder) *Hub {
	return &Hub{
		log:          log,
		clients:      make(map[string]*Client),
		roomChannels: make(map[domain.RoomID]map[string]struct{}),
		stats:        stats,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  socketBufferSize,
			WriteBufferSize: socketBufferSize,
			// The relay has no origin policy of its own; browsers on
			// any host may connect, same as the side endpoints.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// SetHandler wires the session handler. Must be called before serving;
// the hub and the coordinator reference each other, so one side is
// injected after construction.
func (h *Hub) SetHandler(handler contract.SessionHandler) {
	h.handler = handler
}

// ServeHTTP upgrades the connection and blocks on its read pump.
// Cleanup runs exactly once when the pump exits, whichever way the
// connection died.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Websocket upgrade failed", "error", err)
		return
	}

	client := newClient(uuid.NewString(), socket, h)

	h.mu.Lock()
	h.clients[client.id] = client
	h.mu.Unlock()

	h.stats.ConnOpened()
	h.handler.OnConnect(client.id)

	go client.writePump()
	client.readPump()

	h.drop(client)
}

// drop tears a connection down: handler notification first so the
// coordinator can still broadcast to the rooms the client leaves
// behind, then routing and socket cleanup.
func (h *Hub) drop(client *Client) {
	h.handler.OnDisconnect(client.id)

	h.mu.Lock()
	delete(h.clients, client.id)
	for roomID, members := range h.roomChannels {
		delete(members, client.id)
		if len(members) == 0 {
			delete(h.roomChannels, roomID)
		}
	}
	h.mu.Unlock()

	close(client.send)
	h.stats.ConnClosed()
}

func (h *Hub) SendTo(connectionID string, eventName string, payload any) {
	data, err := h.encode(eventName, payload)
	if err != nil {
		return
	}
	h.mu.RLock()
	client, ok := h.clients[connectionID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	client.push(data)
}

func (h *Hub) BroadcastToRoom(roomID domain.RoomID, eventName string, payload any) {
	data, err := h.encode(eventName, payload)
	if err != nil {
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.roomChannels[roomID]))
	for connectionID := range h.roomChannels[roomID] {
		if client, ok := h.clients[connectionID]; ok {
			members = append(members, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range members {
		client.push(data)
	}
}

func (h *Hub) Attach(connectionID string, roomID domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.roomChannels[roomID]; !ok {
		h.roomChannels[roomID] = make(map[string]struct{})
	}
	h.roomChannels[roomID][connectionID] = struct{}{}
}

func (h *Hub) Detach(connectionID string, roomID domain.RoomID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if members, ok := h.roomChannels[roomID]; ok {
		delete(members, connectionID)
		if len(members) == 0 {
			delete(h.roomChannels, roomID)
		}
	}
}

func (h *Hub) encode(eventName string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error("Payload marshal failed", "event", eventName, "error", err)
		return nil, err
	}
	frame, err := json.Marshal(Frame{Event: eventName, Data: data})
	if err != nil {
		h.log.Error("Frame marshal failed", "event", eventName, "error", err)
		return nil, err
	}
	return frame, nil
}
