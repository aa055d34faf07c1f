// Package domain contains core concepts of the chat relay.
// This file defines Message entries of a room log.
// Messages are immutable once appended.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageType string

const (
	MessageTypeSystem MessageType = "system"
	MessageTypeUser   MessageType = "user"
)

// Message is a single entry of a room log.
// System messages carry content only; user messages also carry
// the author's display name and a unique id.
type Message struct {
	ID        string      `json:"id,omitempty"`
	Type      MessageType `json:"type"`
	Username  string      `json:"username,omitempty"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewUserMessage(username, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Type:      MessageTypeUser,
		Username:  username,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

func NewSystemMessage(content string) Message {
	return Message{
		Type:      MessageTypeSystem,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}
