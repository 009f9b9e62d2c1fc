// Package domain contains core concepts of the chat system.
// This file defines Message events and related rules.
// Messages are immutable once appended to a conversation.
package domain

import (
	"time"
)

// Message represents an immutable private chat message.
type Message struct {
	AuthorIsLow bool // true when the low member of the key wrote it
	Content     string
	ServerTime  time.Time
}

// StoredMessage is a Message with its conversation id.
type StoredMessage struct {
	ID uint32
	Message
}

// MessageMetadata is what the server adds to a message once it is appended.
type MessageMetadata struct {
	ID         uint32
	ServerTime time.Time
}

// SequenceRef points to one element of a previously allocated sequence.
type SequenceRef struct {
	ID    uint32
	Index uint32
}
