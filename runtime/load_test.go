package runtime_test

import (
	"context"
	"fmt"
	"log/slog"
	"private-chat/domain"
	"private-chat/runtime"
	"private-chat/runtime/workers"
	"private-chat/sink"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Many senders share the queue, the actor must store every message and give
// each conversation gap-free ids.
func TestOrchestrator_LoadTest(t *testing.T) {
	if testing.Short() {
		t.Skip("load test")
	}
	req := require.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log := slog.New(slog.DiscardHandler)
	o := runtime.NewOrchestrator(log,
		workers.NewSupervisor(log, 100*time.Millisecond),
		runtime.NewRegistry(log, 2),
		runtime.NewConversationStore(),
		1000, 10)
	req.NoError(o.Start(ctx))
	defer o.Stop()

	numClients := 100
	messagesPerClient := 200

	// Given a single receiver with a session large enough for every message
	receiver := sink.NewSessionSink(numClients * messagesPerClient)
	req.NoError(o.Dispatch(ctx, domain.AssignSession{User: "sink", Session: receiver}))

	var successCount atomic.Uint64
	var failureCount atomic.Uint64
	start := time.Now()
	var wg sync.WaitGroup

	for i := 0; i < numClients; i++ {
		wg.Add(1)
		go func(clientID int) {
			defer wg.Done()
			sender := fmt.Sprintf("user%d", clientID)
			for j := 0; j < messagesPerClient; j++ {
				err := o.Dispatch(ctx, domain.DeliverMessage{
					Sender:   sender,
					Receiver: "sink",
					Content:  "load test message",
				})
				if err != nil {
					failureCount.Add(1)
				} else {
					successCount.Add(1)
				}
			}
		}(i)
	}
	wg.Wait()

	// Then every message is stored once
	req.Eventually(func() bool {
		snapshot, err := o.Inspect(ctx)
		return err == nil && snapshot.Messages == numClients*messagesPerClient
	}, 5*time.Second, 20*time.Millisecond)
	duration := time.Since(start)

	// And each conversation got ids 1..N in order
	nextID := make(map[string]uint32)
	for received := 0; received < numClients*messagesPerClient; received++ {
		msg, ok := (<-receiver.Outbound).(domain.PrivateMessage)
		req.True(ok)
		nextID[msg.Sender]++
		req.Equal(nextID[msg.Sender], msg.ID, "sender=%s", msg.Sender)
	}
	req.Zero(failureCount.Load())

	t.Logf("%d messages in %v (%.2f msg/sec)", successCount.Load(), duration,
		float64(successCount.Load())/duration.Seconds())
}
