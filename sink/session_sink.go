package sink

import (
	"private-chat/contract"
	"private-chat/domain"
	"private-chat/errors"

	"github.com/google/uuid"
)

// Ensure *SessionSink implements contract.Session at compile time.
var _ contract.Session = (*SessionSink)(nil)

// SessionSink is the outbound channel of one live connection.
// The state actor pushes into it, the connection writer drains Outbound in
// FIFO order. The channel is never closed, a late push to a finished
// connection only fills the buffer.
type SessionSink struct {
	ID       uuid.UUID
	Outbound chan domain.Outbound
}

func NewSessionSink(bufferSize int) *SessionSink {
	return &SessionSink{
		ID:       uuid.New(),
		Outbound: make(chan domain.Outbound, bufferSize),
	}
}

// Send never blocks: a slow connection loses messages instead of stalling
// the state actor.
func (s *SessionSink) Send(out domain.Outbound) error {
	select {
	case s.Outbound <- out:
		return nil
	default:
		return errors.ErrSessionBackpressure
	}
}

func (s *SessionSink) String() string {
	return s.ID.String()
}
