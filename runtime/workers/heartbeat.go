package workers

import (
	"context"
	"log/slog"
	"os"
	goruntime "runtime"
	"time"

	"github.com/shirou/gopsutil/process"

	"chat-relay/observability"
)

// HeartbeatWorker logs a periodic line with process health and relay
// counters. Purely observational.
type HeartbeatWorker struct {
	log      *slog.Logger
	stats    *observability.StatsRecorder
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, stats *observability.StatsRecorder, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, stats: stats, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			var rssMb uint64
			if mem, err := p.MemoryInfo(); err == nil {
				rssMb = mem.RSS / 1024 / 1024
			}
			cpu, _ := p.CPUPercent()

			snap := w.stats.Snapshot()
			w.log.Info("Relay heartbeat",
				"connections", snap.ActiveConnections,
				"rooms_created", snap.RoomsCreated,
				"rooms_closed", snap.RoomsClosed,
				"messages_posted", snap.MessagesPosted,
				"rss_mb", rssMb,
				"cpu_percent", cpu,
				"goroutines", goruntime.NumGoroutine(),
			)
		}
	}
}
