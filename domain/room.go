package domain

type RoomID string

// Room owns a membership set and an append-only message log.
// Membership iteration is stable (join order). A Room is not safe for
// concurrent use; the registry serializes access to it.
type Room struct {
	ID        RoomID
	members   []string
	memberSet map[string]struct{}
	log       []Message
}

func NewRoom(id RoomID) *Room {
	return &Room{
		ID:        id,
		memberSet: make(map[string]struct{}),
	}
}

// AddMember inserts a connection into the membership set.
// Re-adding an existing member is a no-op and returns false.
func (r *Room) AddMember(connectionID string) bool {
	if _, ok := r.memberSet[connectionID]; ok {
		return false
	}
	r.memberSet[connectionID] = struct{}{}
	r.members = append(r.members, connectionID)
	return true
}

// RemoveMember deletes a connection from the membership set.
// Returns false if it was not a member.
func (r *Room) RemoveMember(connectionID string) bool {
	if _, ok := r.memberSet[connectionID]; !ok {
		return false
	}
	delete(r.memberSet, connectionID)
	for i, id := range r.members {
		if id == connectionID {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
	return true
}

func (r *Room) HasMember(connectionID string) bool {
	_, ok := r.memberSet[connectionID]
	return ok
}

func (r *Room) Empty() bool {
	return len(r.members) == 0
}

// Members returns the connection ids in join order.
func (r *Room) Members() []string {
	out := make([]string, len(r.members))
	copy(out, r.members)
	return out
}

func (r *Room) PostMessage(message Message) {
	r.log = append(r.log, message)
}

// Log returns the full message log, oldest first.
func (r *Room) Log() []Message {
	out := make([]Message, len(r.log))
	copy(out, r.log)
	return out
}
