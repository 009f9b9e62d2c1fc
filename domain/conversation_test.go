package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMakeKey_Is_Order_Independent(t *testing.T) {
	req := require.New(t)
	pairs := [][2]string{
		{"alice", "bob"},
		{"bob", "alice"},
		{"Zed", "abe"},
		{"same", "same"},
		{"", "x"},
	}
	for _, p := range pairs {
		req.Equal(MakeKey(p[0], p[1]), MakeKey(p[1], p[0]))
	}

	key := MakeKey("bob", "alice")
	req.Equal("alice", key.Low())
	req.Equal("bob", key.High())
}

func TestMakeKey_Used_As_Map_Key(t *testing.T) {
	req := require.New(t)
	conversations := map[ConversationKey]string{}

	// Given a conversation registered from alice's side
	conversations[MakeKey("alice", "bob")] = "Chat between Alice and Bob"

	// Then bob's side resolves the same entry
	req.Equal("Chat between Alice and Bob", conversations[MakeKey("bob", "alice")])
	// And an unrelated pair does not
	_, ok := conversations[MakeKey("bob", "greg")]
	req.False(ok)
}

func TestConversationKey_Direction_And_Partner(t *testing.T) {
	req := require.New(t)
	key := MakeKey("bob", "alice")

	req.Equal(LowToHigh, key.DirectionOf("alice"))
	req.Equal(HighToLow, key.DirectionOf("bob"))
	req.Equal("bob", key.Partner("alice"))
	req.Equal("alice", key.Partner("bob"))
}

func TestConversation_Append_Ids_Shared_Across_Directions(t *testing.T) {
	req := require.New(t)
	conversation := NewConversation()
	now := time.Now().UTC()

	// When A, then B, then A append
	req.Equal(uint32(1), conversation.Append(true, "hi", now))
	req.Equal(uint32(2), conversation.Append(false, "hello", now))
	req.Equal(uint32(3), conversation.Append(true, "how are you", now))

	// Then ids are strictly increasing by one
	req.Equal(3, conversation.Len())
}

func TestConversation_Last(t *testing.T) {
	req := require.New(t)
	conversation := NewConversation()
	now := time.Now().UTC()
	for _, content := range []string{"one", "two", "three"} {
		conversation.Append(true, content, now)
	}

	last := conversation.Last(2)
	req.Len(last, 2)
	req.Equal(uint32(2), last[0].ID)
	req.Equal("two", last[0].Content)
	req.Equal(uint32(3), last[1].ID)

	req.Len(conversation.Last(10), 3)
	req.Nil(conversation.Last(0))
	req.Nil(NewConversation().Last(5))
}
