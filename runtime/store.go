package runtime

import (
	"private-chat/domain"
	"private-chat/errors"
	"time"

	"github.com/samber/lo"
)

// ConversationStore owns every private conversation, keyed by the
// order-independent pair of usernames.
// Like Registry, it is only touched by the state actor.
type ConversationStore struct {
	conversations map[domain.ConversationKey]*domain.Conversation
	messages      int
	now           func() time.Time
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{
		conversations: make(map[domain.ConversationKey]*domain.Conversation),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// resolve returns the conversation of the pair, creating it when absent.
func (s *ConversationStore) resolve(key domain.ConversationKey) *domain.Conversation {
	conversation, ok := s.conversations[key]
	if !ok {
		conversation = domain.NewConversation()
		s.conversations[key] = conversation
	}
	return conversation
}

// Lookup returns the conversation of the pair without creating it.
func (s *ConversationStore) Lookup(a, b string) (*domain.Conversation, bool) {
	conversation, ok := s.conversations[domain.MakeKey(a, b)]
	return conversation, ok
}

// AppendMessage stores content from sender to receiver.
// The returned id is shared by both directions of the conversation.
func (s *ConversationStore) AppendMessage(sender, receiver, content string) domain.MessageMetadata {
	key := domain.MakeKey(sender, receiver)
	at := s.now()
	id := s.resolve(key).Append(key.DirectionOf(sender) == domain.LowToHigh, content, at)
	s.messages++
	return domain.MessageMetadata{ID: id, ServerTime: at}
}

// AllocateSequence opens a new sequence from sender toward receiver.
func (s *ConversationStore) AllocateSequence(sender, receiver string) uint32 {
	key := domain.MakeKey(sender, receiver)
	return s.resolve(key).Direction(key.DirectionOf(sender)).Allocate()
}

// AdvanceSequence validates that expectedIndex is the next element of the
// sequence. A conversation that was never created has no sequence at all.
func (s *ConversationStore) AdvanceSequence(sender, receiver string, sequenceID, expectedIndex uint32) error {
	key := domain.MakeKey(sender, receiver)
	conversation, ok := s.conversations[key]
	if !ok {
		return errors.ErrSequenceNotFound
	}
	return conversation.Direction(key.DirectionOf(sender)).Advance(sequenceID, expectedIndex)
}

// History returns up to limit of the latest messages between requester and partner.
func (s *ConversationStore) History(requester, partner string, limit int) []domain.HistoryEntry {
	key := domain.MakeKey(requester, partner)
	conversation, ok := s.conversations[key]
	if !ok {
		return nil
	}
	return lo.Map(conversation.Last(limit), func(m domain.StoredMessage, _ int) domain.HistoryEntry {
		author := key.High()
		if m.AuthorIsLow {
			author = key.Low()
		}
		return domain.HistoryEntry{
			ID:         m.ID,
			Author:     author,
			Content:    m.Content,
			ServerTime: m.ServerTime,
		}
	})
}

func (s *ConversationStore) Conversations() int {
	return len(s.conversations)
}

func (s *ConversationStore) Messages() int {
	return s.messages
}
