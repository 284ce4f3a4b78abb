package workers

import (
	"context"
	"inbox-lab/contract"
	"log/slog"
	"reflect"
	"time"
)

var _ contract.Worker = (*QueueMonitorWorker)(nil)

type NamedChannel struct {
	Name    string
	Channel any
}

// QueueMonitorWorker periodically reports the length and capacity of internal queues,
// and warns once a queue is filled above thresholdPercent.
// Reading len(channel) and cap(channel) is non-blocking, so this won't interfere
// with other goroutines.
type QueueMonitorWorker struct {
	log              *slog.Logger
	channels         []NamedChannel
	interval         time.Duration
	thresholdPercent int
}

func NewQueueMonitorWorker(log *slog.Logger, channels []NamedChannel,
	interval time.Duration, thresholdPercent int) *QueueMonitorWorker {
	return &QueueMonitorWorker{
		log:              log.With("worker", "queue_monitor"),
		channels:         channels,
		interval:         interval,
		thresholdPercent: thresholdPercent,
	}
}

func (w *QueueMonitorWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Sample()
		}
	}
}

// Sample logs one measure per channel and returns the names of saturated ones.
func (w *QueueMonitorWorker) Sample() []string {
	var saturated []string
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		capacity, length := v.Cap(), v.Len()
		if capacity > 0 && length*100 >= capacity*w.thresholdPercent {
			saturated = append(saturated, nc.Name)
			w.log.Warn("Queue under pressure", "name", nc.Name, "length", length, "capacity", capacity)
			continue
		}
		w.log.Debug("Queue usage", "name", nc.Name, "length", length, "capacity", capacity)
	}
	return saturated
}
