package observability

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestMonitoringManager_Counters(t *testing.T) {
	req := require.New(t)
	mm := NewMonitoringManager(logs.GetLoggerFromLevel(slog.LevelDebug), time.Second)

	// Given two connections, one of them closed
	mm.ConnectionOpened()
	mm.ConnectionOpened()
	mm.ConnectionClosed()
	mm.IncrInboundFrames()
	mm.IncrProtocolErrors()
	mm.UpdateQueue("commands", 3, 8)

	// Then the counters are visible without any sample
	stats := mm.GetLatest()
	req.Equal(int64(1), stats.ActiveConnections)
	req.Equal(uint64(2), stats.TotalConnections)
	req.Equal(uint64(1), stats.InboundFrames)
	req.Equal(uint64(1), stats.ProtocolErrors)
	req.Equal(QueueLoad{Length: 3, Capacity: 8}, stats.Queues["commands"])
}

func TestMonitoringManager_Run_Samples_Process(t *testing.T) {
	req := require.New(t)
	mm := NewMonitoringManager(logs.GetLoggerFromLevel(slog.LevelDebug), 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- mm.Run(ctx) }()

	// Then a first sample is taken right away
	req.Eventually(func() bool {
		return mm.GetLatest().SampledAt != ""
	}, time.Second, 10*time.Millisecond)
	req.Positive(mm.GetLatest().Goroutines)

	// When the context ends the worker finishes cleanly
	cancel()
	req.NoError(<-done)
}
