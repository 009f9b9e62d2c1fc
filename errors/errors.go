package errors

import (
	"fmt"
)

var (
	ErrWorkerPanic         = fmt.Errorf("worker panic")
	ErrOrchestratorStopped = fmt.Errorf("orchestrator stopped")

	ErrSessionCapExceeded  = fmt.Errorf("exceeded the limit of sessions per user")
	ErrSessionBackpressure = fmt.Errorf("session outbound buffer is full")
	ErrSequenceNotFound    = fmt.Errorf("sequence does not exist")
	ErrOutOfOrder          = fmt.Errorf("sequence index out of order")
	ErrRecipientOffline    = fmt.Errorf("recipient has no live session")

	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidLogin       = fmt.Errorf("invalid login request")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidToken       = fmt.Errorf("invalid token")
	ErrEmptyWords         = fmt.Errorf("no words have been found")

	ErrNotAuthenticated     = fmt.Errorf("connection is not authenticated")
	ErrAlreadyAuthenticated = fmt.Errorf("connection is already authenticated")
	ErrInvalidPayload       = fmt.Errorf("invalid payload")
	ErrUnknownSubject       = fmt.Errorf("unknown subject")
)

// OutOfOrderError reports the index a sequence expected next.
// It matches ErrOutOfOrder with errors.Is.
type OutOfOrderError struct {
	SequenceID uint32
	Expected   uint32
	Got        uint32
}

func (e *OutOfOrderError) Error() string {
	return fmt.Sprintf("sequence %d: expected index %d, got %d", e.SequenceID, e.Expected, e.Got)
}

func (e *OutOfOrderError) Is(target error) bool {
	return target == ErrOutOfOrder
}
