package runtime

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"sync"

	"chat-relay/domain"
	apperrors "chat-relay/errors"
)

// Registry owns the set of live rooms. A room exists iff it has at
// least one member: the last leave deletes the room and its log.
type Registry struct {
	mu      sync.RWMutex
	rooms   map[domain.RoomID]*domain.Room
	entropy io.Reader
}

// NewRegistry builds an empty registry. entropy feeds room id
// generation; nil falls back to crypto/rand. Injected so tests can
// assert deterministic ids.
func NewRegistry(entropy io.Reader) *Registry {
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Registry{
		rooms:   make(map[domain.RoomID]*domain.Room),
		entropy: entropy,
	}
}

// CreateRoom generates a fresh 8-hex-character id from a 128-bit random
// read and inserts a room already holding its first member. Creation
// and first join happen under one lock so a room is never observable
// with zero members.
func (r *Registry) CreateRoom(connectionID string) (domain.RoomID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for {
		var raw [16]byte
		if _, err := io.ReadFull(r.entropy, raw[:]); err != nil {
			return "", err
		}
		id := domain.RoomID(hex.EncodeToString(raw[:])[:8])
		if _, taken := r.rooms[id]; taken {
			continue
		}
		room := domain.NewRoom(id)
		room.AddMember(connectionID)
		r.rooms[id] = room
		return id, nil
	}
}

func (r *Registry) Exists(roomID domain.RoomID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[roomID]
	return ok
}

// Join adds the connection to the room's member set. Re-adding an
// existing member is a no-op, not an error.
func (r *Registry) Join(roomID domain.RoomID, connectionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return apperrors.ErrRoomNotFound
	}
	room.AddMember(connectionID)
	return nil
}

// Leave removes the connection from the room. If the member set becomes
// empty the room is deleted entirely, log included; deleted reports
// whether that happened. Unknown rooms or non-members are no-ops.
func (r *Registry) Leave(roomID domain.RoomID, connectionID string) (deleted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	room.RemoveMember(connectionID)
	if room.Empty() {
		delete(r.rooms, roomID)
		return true
	}
	return false
}

// AppendMessage appends to the room's log.
func (r *Registry) AppendMessage(roomID domain.RoomID, message domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return apperrors.ErrRoomNotFound
	}
	room.PostMessage(message)
	return nil
}

// ListMembers returns the room's connection ids in join order,
// nil for an unknown room.
func (r *Registry) ListMembers(roomID domain.RoomID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	return room.Members()
}

// History returns the room's log oldest first, nil for an unknown room.
func (r *Registry) History(roomID domain.RoomID) []domain.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil
	}
	return room.Log()
}

// ListRoomIDs returns the ids of all live rooms.
func (r *Registry) ListRoomIDs() []domain.RoomID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]domain.RoomID, 0, len(r.rooms))
	for id := range r.rooms {
		ids = append(ids, id)
	}
	return ids
}
