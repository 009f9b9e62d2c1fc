package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"private-chat/domain"
	"private-chat/observability"
	"time"
)

// StateProvider reads the chat state through the command queue.
type StateProvider func(ctx context.Context) (domain.StateSnapshot, error)

// StatsProvider returns the last process sample.
type StatsProvider func() observability.MonitoringStats

type DebugState struct {
	State   domain.StateSnapshot          `json:"state"`
	Process observability.MonitoringStats `json:"process"`
}

// DebugHandler serves the chat snapshot next to the process stats as JSON.
func DebugHandler(state StateProvider, stats StatsProvider, timeout time.Duration, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		snapshot, err := state(ctx)
		if err != nil {
			log.Warn("State snapshot unavailable", "error", err)
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(DebugState{State: snapshot, Process: stats()}); err != nil {
			log.Debug("Failed to write debug state", "error", err)
		}
	}
}
