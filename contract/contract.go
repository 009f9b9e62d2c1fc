//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"private-chat/domain"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Session is re-exported so outer layers only depend on contract.
type Session = domain.Session

// IRegistry is owned by the state actor, it is not safe for concurrent use.
type IRegistry interface {
	AddSession(user string, session Session) AddSessionResult
	RemoveSession(user string, session Session)
	Fanout(user string, out domain.Outbound) int
	Sessions(user string) []Session
	Users() int
	Count() int
}

// AddSessionResult is Accepted unless Rejected carries the refused session back.
type AddSessionResult struct {
	Rejected Session
}

func (r AddSessionResult) Accepted() bool {
	return r.Rejected == nil
}

// IConversationStore is owned by the state actor, it is not safe for concurrent use.
type IConversationStore interface {
	AppendMessage(sender, receiver, content string) domain.MessageMetadata
	AllocateSequence(sender, receiver string) uint32
	AdvanceSequence(sender, receiver string, sequenceID, expectedIndex uint32) error
	History(requester, partner string, limit int) []domain.HistoryEntry
	Conversations() int
	Messages() int
}

type IOrchestrator interface {
	Dispatch(ctx context.Context, cmd domain.Command) error
	Inspect(ctx context.Context) (domain.StateSnapshot, error)
	Start(ctx context.Context) error
	Stop()
}
