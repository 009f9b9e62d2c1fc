// Package runtime owns the chat state and the queue feeding it.
// It wires the registry, the conversation store and the state actor under
// a supervisor without containing transport or credential logic.
package runtime

import (
	"context"
	"log/slog"
	"private-chat/contract"
	"private-chat/domain"
	"private-chat/errors"
	"private-chat/runtime/workers"
	"sync"
)

// Ensure *Orchestrator implements contract.IOrchestrator at compile time.
var _ contract.IOrchestrator = (*Orchestrator)(nil)

// Orchestrator owns the shared command queue. Any connection holding it can
// Dispatch commands; the state actor is the only consumer.
type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	actor      *workers.StateActor
	commands   chan domain.Command
	stopped    chan struct{}
	done       chan struct{}
	started    bool
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, store contract.IConversationStore,
	bufferSize, historyLimit int) *Orchestrator {
	commands := make(chan domain.Command, bufferSize)
	return &Orchestrator{
		log:        log,
		supervisor: supervisor,
		actor:      workers.NewStateActor(registry, store, commands, historyLimit, log),
		commands:   commands,
		stopped:    make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Dispatch enqueues cmd. It blocks until the queue accepts it, ctx ends or
// the orchestrator stops; a command is never dropped without an error.
func (o *Orchestrator) Dispatch(ctx context.Context, cmd domain.Command) error {
	select {
	case <-o.stopped:
		return errors.ErrOrchestratorStopped
	default:
	}
	select {
	case o.commands <- cmd:
		return nil
	case <-o.stopped:
		return errors.ErrOrchestratorStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Queue exposes the command queue for load sampling.
func (o *Orchestrator) Queue() workers.NamedChannel {
	return workers.NamedChannel{Name: "commands", Channel: o.commands}
}

// Inspect returns a snapshot of the chat state, read by the actor itself.
func (o *Orchestrator) Inspect(ctx context.Context) (domain.StateSnapshot, error) {
	reply := make(chan domain.StateSnapshot, 1)
	if err := o.Dispatch(ctx, domain.InspectState{Reply: reply}); err != nil {
		return domain.StateSnapshot{}, err
	}
	select {
	case snapshot := <-reply:
		return snapshot, nil
	case <-o.done:
		return domain.StateSnapshot{}, errors.ErrOrchestratorStopped
	case <-ctx.Done():
		return domain.StateSnapshot{}, ctx.Err()
	}
}

// Start registers the state actor and runs the supervisor in the background.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return nil
	}
	o.started = true
	o.supervisor.Add(o.actor)
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and the state actor")
	go func() {
		defer close(o.done)
		o.supervisor.Run(ctx)
	}()
	return nil
}

// Stop refuses new commands, cancels the supervised context and waits for
// the actor to finish the commands it had already accepted.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.mu.Lock()
	select {
	case <-o.stopped:
	default:
		close(o.stopped)
	}
	started := o.started
	o.mu.Unlock()

	o.supervisor.Stop()
	if started {
		<-o.done
	}
	o.log.Debug("Orchestrator stopped")
}
