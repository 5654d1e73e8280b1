package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"replydesk/observability"
)

// TelemetryWorker samples the process itself (RSS, CPU, OS status) on
// the metric interval and folds the readings into the stats monitor.
type TelemetryWorker struct {
	log      *slog.Logger
	interval time.Duration
	monitor  *observability.Monitor
}

func NewTelemetryWorker(log *slog.Logger, interval time.Duration, monitor *observability.Monitor) *TelemetryWorker {
	return &TelemetryWorker{log: log, interval: interval, monitor: monitor}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting telemetry worker", "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, status, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			w.monitor.SetProcessStats(rss, cpu, status)

			snapshot := w.monitor.Snapshot()
			w.log.Debug("telemetry",
				"rss_mb", rss/1024/1024,
				"cpu_percent", cpu,
				"ingested", snapshot.Ingested,
				"sent", snapshot.ResponsesSent,
				"tick_errors", snapshot.TickErrors,
			)
		}
	}
}

// selfStats retrieves technical metrics (Memory, CPU, and OS Status) for the given process.
func selfStats(p *process.Process) (uint64, float64, string, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, "", err
	}

	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, "", err
	}

	status, err := p.Status()
	if err != nil {
		return 0, 0, "", err
	}
	return memInfo.RSS, cpuPercent, status, nil
}
