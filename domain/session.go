//go:generate go run go.uber.org/mock/mockgen -source=session.go -destination=../mocks/mock_session.go -package=mocks
package domain

// Session is the outbound sink of one live connection.
// The core only stores and compares Session handles, it never inspects them.
// Implementations must be comparable (pointer types) and Send must not block.
type Session interface {
	Send(out Outbound) error
}
