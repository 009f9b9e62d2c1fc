// Package observability samples the server process and counts connection
// activity for the debug endpoint.
package observability

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/process"
)

// MonitoringStats is what /debug/state exposes next to the chat snapshot.
type MonitoringStats struct {
	CPUPercent        float64              `json:"cpu_percent"`
	RSSMb             uint64               `json:"rss_mb"`
	AllocMemMb        uint64               `json:"alloc_mem_mb"`
	NumGC             uint32               `json:"num_gc"`
	Goroutines        int                  `json:"goroutines"`
	ActiveConnections int64                `json:"active_connections"`
	TotalConnections  uint64               `json:"total_connections"`
	InboundFrames     uint64               `json:"inbound_frames"`
	ProtocolErrors    uint64               `json:"protocol_errors"`
	Queues            map[string]QueueLoad `json:"queues"`
	SampledAt         string               `json:"sampled_at"`
}

type QueueLoad struct {
	Length   int `json:"length"`
	Capacity int `json:"capacity"`
}

// MonitoringManager is a supervised worker. Counters are updated by the
// connection goroutines, the process sample is refreshed on every tick.
type MonitoringManager struct {
	log      *slog.Logger
	interval time.Duration
	pid      int32

	mu          sync.RWMutex
	latestStats MonitoringStats
	queues      map[string]QueueLoad

	activeConnections atomic.Int64
	totalConnections  atomic.Uint64
	inboundFrames     atomic.Uint64
	protocolErrors    atomic.Uint64
}

func NewMonitoringManager(log *slog.Logger, interval time.Duration) *MonitoringManager {
	return &MonitoringManager{
		log:      log,
		interval: interval,
		pid:      int32(os.Getpid()),
		queues:   make(map[string]QueueLoad),
	}
}

func (mm *MonitoringManager) ConnectionOpened() {
	mm.activeConnections.Add(1)
	mm.totalConnections.Add(1)
}

func (mm *MonitoringManager) ConnectionClosed() {
	mm.activeConnections.Add(-1)
}

func (mm *MonitoringManager) IncrInboundFrames() {
	mm.inboundFrames.Add(1)
}

func (mm *MonitoringManager) IncrProtocolErrors() {
	mm.protocolErrors.Add(1)
}

func (mm *MonitoringManager) UpdateQueue(name string, length, capacity int) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.queues[name] = QueueLoad{Length: length, Capacity: capacity}
}

func (mm *MonitoringManager) Run(ctx context.Context) error {
	proc, err := process.NewProcess(mm.pid)
	if err != nil {
		return err
	}
	ticker := time.NewTicker(mm.interval)
	defer ticker.Stop()

	mm.sample(proc)
	for {
		select {
		case <-ctx.Done():
			mm.log.Debug("Context done, stopping process sampling")
			return nil
		case <-ticker.C:
			mm.sample(proc)
		}
	}
}

func (mm *MonitoringManager) sample(proc *process.Process) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := MonitoringStats{
		AllocMemMb: mem.Alloc / 1024 / 1024,
		NumGC:      mem.NumGC,
		Goroutines: runtime.NumGoroutine(),
		SampledAt:  time.Now().UTC().Format(time.RFC3339),
	}
	if cpu, err := proc.CPUPercent(); err != nil {
		mm.log.Debug("Error while finding process cpu usage", "error", err)
	} else {
		stats.CPUPercent = cpu
	}
	if info, err := proc.MemoryInfo(); err != nil {
		mm.log.Debug("Error while finding process memory usage", "error", err)
	} else {
		stats.RSSMb = info.RSS / 1024 / 1024
	}

	mm.mu.Lock()
	mm.latestStats = stats
	mm.mu.Unlock()
}

// GetLatest merges the last process sample with the live counters.
func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	stats := mm.latestStats
	stats.Queues = make(map[string]QueueLoad, len(mm.queues))
	for name, load := range mm.queues {
		stats.Queues[name] = load
	}
	mm.mu.RUnlock()

	stats.ActiveConnections = mm.activeConnections.Load()
	stats.TotalConnections = mm.totalConnections.Load()
	stats.InboundFrames = mm.inboundFrames.Load()
	stats.ProtocolErrors = mm.protocolErrors.Load()
	return stats
}
