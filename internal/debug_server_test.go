package internal

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"private-chat/domain"
	"private-chat/errors"
	"private-chat/observability"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestDebugHandler(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	stats := func() observability.MonitoringStats {
		return observability.MonitoringStats{Goroutines: 7}
	}

	t.Run("should render the snapshot", func(t *testing.T) {
		req := require.New(t)
		state := func(context.Context) (domain.StateSnapshot, error) {
			return domain.StateSnapshot{Users: 2, Sessions: 3, Conversations: 1, Messages: 4}, nil
		}
		rec := httptest.NewRecorder()

		DebugHandler(state, stats, time.Second, log)(rec, httptest.NewRequest(http.MethodGet, "/debug/state", nil))

		req.Equal(http.StatusOK, rec.Code)
		var body DebugState
		req.NoError(json.Unmarshal(rec.Body.Bytes(), &body))
		req.Equal(domain.StateSnapshot{Users: 2, Sessions: 3, Conversations: 1, Messages: 4}, body.State)
		req.Equal(7, body.Process.Goroutines)
	})

	t.Run("should report a stopped chat", func(t *testing.T) {
		req := require.New(t)
		state := func(context.Context) (domain.StateSnapshot, error) {
			return domain.StateSnapshot{}, errors.ErrOrchestratorStopped
		}
		rec := httptest.NewRecorder()

		DebugHandler(state, stats, time.Second, log)(rec, httptest.NewRequest(http.MethodGet, "/debug/state", nil))

		req.Equal(http.StatusServiceUnavailable, rec.Code)
	})
}
