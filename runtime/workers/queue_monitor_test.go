package workers

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueMonitorWorker_Sample(t *testing.T) {
	req := require.New(t)
	busy := make(chan int, 10)
	idle := make(chan int, 10)
	for i := 0; i < 9; i++ {
		busy <- i
	}
	idle <- 1

	// Given a queue filled at 90% and one at 10%
	w := NewQueueMonitorWorker(slog.Default(), []NamedChannel{
		{Name: "busy", Channel: busy},
		{Name: "idle", Channel: idle},
		{Name: "not_a_channel", Channel: 42},
	}, time.Second, 80)

	// When / Then only the busy one is reported
	req.Equal([]string{"busy"}, w.Sample())
}
