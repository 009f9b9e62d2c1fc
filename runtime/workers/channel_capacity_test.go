package workers

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type queueLoad struct {
	length, capacity int
}

type recordingQueues struct {
	mu    sync.Mutex
	loads map[string]queueLoad
}

func (r *recordingQueues) UpdateQueue(name string, length, capacity int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loads[name] = queueLoad{length: length, capacity: capacity}
}

func (r *recordingQueues) get(name string) (queueLoad, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	load, ok := r.loads[name]
	return load, ok
}

func TestChannelCapacityWorker_Samples_Channels(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	recorder := &recordingQueues{loads: make(map[string]queueLoad)}

	// Given a queue holding 3 of 4 slots and something that is not a channel
	queue := make(chan int, 4)
	queue <- 1
	queue <- 2
	queue <- 3
	worker := NewChannelCapacityWorker(log,
		[]NamedChannel{{Name: "commands", Channel: queue}, {Name: "bogus", Channel: 42}},
		recorder, 5*time.Millisecond, 0.5)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- worker.Run(ctx) }()

	// Then the queue load is recorded and the bogus entry ignored
	req.Eventually(func() bool {
		load, ok := recorder.get("commands")
		return ok && load == queueLoad{length: 3, capacity: 4}
	}, time.Second, 5*time.Millisecond)
	_, ok := recorder.get("bogus")
	req.False(ok)

	cancel()
	req.NoError(<-done)
}
