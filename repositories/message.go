//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"chat-relay/domain"
)

// IMessageRepository is the optional retention hook behind the relay.
// The in-memory room log stays authoritative; this archive survives the
// room's deletion.
type IMessageRepository interface {
	StoreMessage(message ArchivedMessage) error
	RoomMessages(roomID domain.RoomID) ([]ArchivedMessage, error)
}

// ArchivedMessage is the disk representation of a user message.
type ArchivedMessage struct {
	ID      string        `json:"id"`
	Room    domain.RoomID `json:"room"`
	Author  string        `json:"author"`
	Content string        `json:"content"`
	At      time.Time     `json:"at"`
}

type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// StoreMessage persists a message in BadgerDB.
// The key is formatted as "msg:{room_id}:{timestamp_padded}:{id}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the message id as a collision
//     disconnector if two messages arrive at the same nanosecond.
func (m MessageRepository) StoreMessage(message ArchivedMessage) error {
	key := fmt.Sprintf("msg:%s:%019d:%s",
		message.Room,
		message.At.UnixNano(),
		message.ID,
	)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// RoomMessages retrieves the archive for a room using a prefix scan.
// Thanks to the padded timestamp in the key, messages come back in
// arrival order. Collection stops at limitMessages when configured.
func (m MessageRepository) RoomMessages(roomID domain.RoomID) ([]ArchivedMessage, error) {
	var messages []ArchivedMessage
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", roomID))
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(messages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				var message ArchivedMessage
				if err := json.Unmarshal(value, &message); err != nil {
					return err
				}
				messages = append(messages, message)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return messages, err
}
