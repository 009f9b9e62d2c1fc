// Package domain contains core concepts of the chat system.
// This file defines private conversations and their keys.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"
)

// Direction selects the per-author sequencing state of a conversation.
type Direction int

const (
	LowToHigh Direction = iota
	HighToLow
)

// ConversationKey identifies the conversation of an unordered pair of users.
// Fields are normalized at construction so Key(a, b) == Key(b, a) and the
// struct can be used directly as a map key.
type ConversationKey struct {
	low  string
	high string
}

// MakeKey normalizes the pair with the lexicographic order of usernames.
func MakeKey(a, b string) ConversationKey {
	if isLow(a, b) {
		return ConversationKey{low: a, high: b}
	}
	return ConversationKey{low: b, high: a}
}

// isLow is the single ordering used for usernames across the package.
func isLow(a, b string) bool {
	return a <= b
}

func (k ConversationKey) Low() string  { return k.low }
func (k ConversationKey) High() string { return k.high }

// DirectionOf returns the direction of messages authored by sender.
func (k ConversationKey) DirectionOf(sender string) Direction {
	if sender == k.low {
		return LowToHigh
	}
	return HighToLow
}

// Partner returns the other member of the pair.
func (k ConversationKey) Partner(user string) string {
	if user == k.low {
		return k.high
	}
	return k.low
}

// Conversation is the message log of a pair of users plus the sequencing
// state of each direction.
type Conversation struct {
	idOffset   uint32
	messages   []Message
	directions [2]DirectionState
}

func NewConversation() *Conversation {
	return &Conversation{}
}

// Append stores a message and returns its conversation-global id.
// Ids are shared by both directions, start at 1 and are never reused.
func (c *Conversation) Append(authorIsLow bool, content string, at time.Time) uint32 {
	c.messages = append(c.messages, Message{
		AuthorIsLow: authorIsLow,
		Content:     content,
		ServerTime:  at,
	})
	return c.idOffset + uint32(len(c.messages))
}

// Direction returns the sequencing state of one author.
func (c *Conversation) Direction(d Direction) *DirectionState {
	return &c.directions[d]
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

// Last returns at most n of the most recent messages, oldest first.
func (c *Conversation) Last(n int) []StoredMessage {
	if n <= 0 || len(c.messages) == 0 {
		return nil
	}
	start := max(len(c.messages)-n, 0)
	res := make([]StoredMessage, 0, len(c.messages)-start)
	for i := start; i < len(c.messages); i++ {
		res = append(res, StoredMessage{
			ID:      c.idOffset + uint32(i) + 1,
			Message: c.messages[i],
		})
	}
	return res
}
