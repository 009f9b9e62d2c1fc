package workers

import (
	"context"
	"fmt"
	"log/slog"
	"private-chat/contract"
	"private-chat/domain"
	"private-chat/errors"
)

// Ensure *StateActor implements the contract.Worker interface at compile time.
var _ contract.Worker = (*StateActor)(nil)

// StateActor is the single owner of the session registry and the
// conversation store. It drains the command queue one command at a time,
// which is what makes registry and store mutations linearizable without
// any lock around them.
//
// Side effects on sessions (notices, close signals) are issued here, never
// inside the registry or the store.
type StateActor struct {
	registry     contract.IRegistry
	store        contract.IConversationStore
	commands     <-chan domain.Command
	historyLimit int
	log          *slog.Logger
}

func NewStateActor(registry contract.IRegistry, store contract.IConversationStore,
	commands <-chan domain.Command, historyLimit int, log *slog.Logger) *StateActor {
	return &StateActor{
		registry:     registry,
		store:        store,
		commands:     commands,
		historyLimit: historyLimit,
		log:          log,
	}
}

// Run blocks until ctx is canceled or the queue is closed.
// On cancellation the commands already buffered are still executed so no
// producer that got its command accepted is left without an answer.
func (a *StateActor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			a.drain()
			a.log.Debug("Stopping state actor")
			return nil
		case cmd, ok := <-a.commands:
			if !ok {
				a.log.Info("Command queue closed, stopping state actor")
				return nil
			}
			a.Handle(cmd)
		}
	}
}

func (a *StateActor) drain() {
	for {
		select {
		case cmd, ok := <-a.commands:
			if !ok {
				return
			}
			a.Handle(cmd)
		default:
			return
		}
	}
}

// Handle executes one command to completion.
func (a *StateActor) Handle(cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.AssignSession:
		a.assignSession(c)
	case domain.UnassignSession:
		a.registry.RemoveSession(c.User, c.Session)
		a.log.Debug("Session unassigned", "user", c.User, "sessions", len(a.registry.Sessions(c.User)))
	case domain.RequestNewSequence:
		a.requestNewSequence(c)
	case domain.DeliverMessage:
		a.deliverMessage(c)
	case domain.FetchHistory:
		a.fetchHistory(c)
	case domain.InspectState:
		a.inspectState(c)
	default:
		a.log.Warn("Dropping unknown command", "type", fmt.Sprintf("%T", cmd))
	}
}

func (a *StateActor) assignSession(c domain.AssignSession) {
	result := a.registry.AddSession(c.User, c.Session)
	if result.Accepted() {
		a.log.Debug("Session assigned", "user", c.User, "sessions", len(a.registry.Sessions(c.User)))
		return
	}
	a.log.Warn("Session rejected", "user", c.User, "error", errors.ErrSessionCapExceeded)
	a.reply(result.Rejected, c.User, domain.SessionRejected{Err: errors.ErrSessionCapExceeded})
	a.reply(result.Rejected, c.User, domain.CloseSession{Reason: errors.ErrSessionCapExceeded.Error()})
}

func (a *StateActor) requestNewSequence(c domain.RequestNewSequence) {
	sequenceID := a.store.AllocateSequence(c.Sender, c.Receiver)
	a.log.Debug("Sequence allocated", "sender", c.Sender, "receiver", c.Receiver, "sequence_id", sequenceID)
	a.reply(c.ReplySession, c.Sender, domain.SequenceAllocated{
		Receiver:   c.Receiver,
		SequenceID: sequenceID,
	})
}

// deliverMessage validates the sequence, then appends, then fans out.
// A rejected message is neither stored nor delivered.
func (a *StateActor) deliverMessage(c domain.DeliverMessage) {
	if c.Sequence != nil {
		if err := a.store.AdvanceSequence(c.Sender, c.Receiver, c.Sequence.ID, c.Sequence.Index); err != nil {
			a.log.Info("Message rejected by sequencing",
				"sender", c.Sender, "receiver", c.Receiver,
				"sequence_id", c.Sequence.ID, "index", c.Sequence.Index, "error", err)
			a.reply(c.ReplySession, c.Sender, domain.DeliveryRejected{
				Receiver: c.Receiver,
				Sequence: *c.Sequence,
				Err:      err,
			})
			return
		}
	}

	metadata := a.store.AppendMessage(c.Sender, c.Receiver, c.Content)
	delivered := a.registry.Fanout(c.Receiver, domain.PrivateMessage{
		ID:         metadata.ID,
		Sender:     c.Sender,
		Receiver:   c.Receiver,
		Content:    c.Content,
		ServerTime: metadata.ServerTime,
		Sequence:   c.Sequence,
	})
	if delivered == 0 {
		a.log.Info("Message stored but not delivered",
			"sender", c.Sender, "receiver", c.Receiver, "id", metadata.ID, "error", errors.ErrRecipientOffline)
		return
	}
	a.log.Debug("Message delivered", "sender", c.Sender, "receiver", c.Receiver, "id", metadata.ID, "sessions", delivered)
}

func (a *StateActor) fetchHistory(c domain.FetchHistory) {
	limit := c.Limit
	if limit <= 0 || limit > a.historyLimit {
		limit = a.historyLimit
	}
	a.reply(c.ReplySession, c.Requester, domain.ConversationHistory{
		Partner:  c.Partner,
		Messages: a.store.History(c.Requester, c.Partner, limit),
	})
}

func (a *StateActor) inspectState(c domain.InspectState) {
	snapshot := domain.StateSnapshot{
		Users:         a.registry.Users(),
		Sessions:      a.registry.Count(),
		Conversations: a.store.Conversations(),
		Messages:      a.store.Messages(),
	}
	select {
	case c.Reply <- snapshot:
	default:
		a.log.Warn("Dropping state snapshot, reply channel not ready")
	}
}

// reply sends out to a single session. Without a session the answer is
// logged as dropped.
func (a *StateActor) reply(session contract.Session, user string, out domain.Outbound) {
	if session == nil {
		a.log.Warn("Dropping reply, no session to answer", "user", user, "type", fmt.Sprintf("%T", out))
		return
	}
	if err := session.Send(out); err != nil {
		a.log.Warn("Failed to reply to session", "user", user, "type", fmt.Sprintf("%T", out), "error", err)
	}
}
