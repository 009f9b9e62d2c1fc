package sink

import (
	"private-chat/domain"
	"private-chat/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionSink_Send_Keeps_Order(t *testing.T) {
	req := require.New(t)
	session := NewSessionSink(2)

	req.NoError(session.Send(domain.SequenceAllocated{Receiver: "bob", SequenceID: 0}))
	req.NoError(session.Send(domain.CloseSession{Reason: "bye"}))

	req.Equal(domain.SequenceAllocated{Receiver: "bob", SequenceID: 0}, <-session.Outbound)
	req.Equal(domain.CloseSession{Reason: "bye"}, <-session.Outbound)
}

func TestSessionSink_Send_Backpressure(t *testing.T) {
	req := require.New(t)
	session := NewSessionSink(1)

	// Given the buffer is full
	req.NoError(session.Send(domain.CloseSession{}))

	// When another message is pushed
	err := session.Send(domain.CloseSession{})

	// Then it is refused without blocking
	req.ErrorIs(err, errors.ErrSessionBackpressure)
	req.Len(session.Outbound, 1)
}

func TestSessionSink_Handles_Are_Distinct(t *testing.T) {
	req := require.New(t)
	first := NewSessionSink(1)
	second := NewSessionSink(1)

	var a, b domain.Session = first, second
	req.NotEqual(first.ID, second.ID)
	req.False(a == b)
	req.True(a == domain.Session(first))
}
