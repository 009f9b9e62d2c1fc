package workers

import (
	"context"
	"log/slog"
	"reflect"
	"time"
)

type NamedChannel struct {
	Name    string
	Channel any
}

// QueueRecorder receives the sampled load of each channel.
type QueueRecorder interface {
	UpdateQueue(name string, length, capacity int)
}

// ChannelCapacityWorker periodically samples the length and capacity of
// buffered channels. len and cap never block, sampling does not disturb
// the goroutines using the channels.
type ChannelCapacityWorker struct {
	log            *slog.Logger
	channels       []NamedChannel
	recorder       QueueRecorder
	metricInterval time.Duration
	warnRatio      float64
}

// NewChannelCapacityWorker warns whenever a channel is filled above warnRatio.
func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	recorder QueueRecorder, metricInterval time.Duration, warnRatio float64) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{
		log:            log,
		channels:       channels,
		recorder:       recorder,
		metricInterval: metricInterval,
		warnRatio:      warnRatio,
	}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping channel sampling")
			return nil
		case <-ticker.C:
			w.sample()
		}
	}
}

func (w *ChannelCapacityWorker) sample() {
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		capacity, length := v.Cap(), v.Len()
		w.recorder.UpdateQueue(nc.Name, length, capacity)
		if capacity > 0 && float64(length) >= w.warnRatio*float64(capacity) {
			w.log.Warn("Channel close to saturation", "name", nc.Name, "length", length, "capacity", capacity)
		}
	}
}
