// Package observability aggregates runtime counters for the debug
// endpoint and the viewer. Counters are atomic; the process gauges are
// guarded by a mutex and refreshed by the telemetry worker.
package observability

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"replydesk/domain"
)

// Snapshot is the read model served by /debug/stats.
type Snapshot struct {
	Ingested       uint64            `json:"ingested"`
	ByCategory     map[string]uint64 `json:"by_category"`
	DraftsCreated  uint64            `json:"drafts_created"`
	ResponsesSent  uint64            `json:"responses_sent"`
	SendFailures   uint64            `json:"send_failures"`
	TickErrors     uint64            `json:"tick_errors"`
	WorkerRestarts uint64            `json:"worker_restarts"`
	ProcessRSS     uint64            `json:"process_rss_bytes"`
	ProcessCPU     float64           `json:"process_cpu_percent"`
	ProcessStatus  string            `json:"process_status"`
	CollectedAt    string            `json:"collected_at"`
}

type Monitor struct {
	log *slog.Logger

	ingested     uint64
	drafts       uint64
	sent         uint64
	sendFailures uint64
	tickErrors   uint64
	restarts     uint64

	mu         sync.RWMutex
	byCategory map[domain.Category]uint64
	rss        uint64
	cpu        float64
	status     string
}

func NewMonitor(log *slog.Logger) *Monitor {
	return &Monitor{
		log:        log,
		byCategory: make(map[domain.Category]uint64),
	}
}

// IncrIngested counts one persisted message under its category.
func (m *Monitor) IncrIngested(category domain.Category) {
	atomic.AddUint64(&m.ingested, 1)
	m.mu.Lock()
	m.byCategory[category]++
	m.mu.Unlock()
}

func (m *Monitor) IncrDraft() {
	atomic.AddUint64(&m.drafts, 1)
}

func (m *Monitor) IncrSent() {
	atomic.AddUint64(&m.sent, 1)
}

func (m *Monitor) IncrSendFailure() {
	atomic.AddUint64(&m.sendFailures, 1)
}

func (m *Monitor) IncrTickError() {
	atomic.AddUint64(&m.tickErrors, 1)
}

func (m *Monitor) IncrRestart() {
	atomic.AddUint64(&m.restarts, 1)
}

// SetProcessStats stores the latest self-process gauges from the
// telemetry worker.
func (m *Monitor) SetProcessStats(rss uint64, cpu float64, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rss = rss
	m.cpu = cpu
	m.status = status
}

func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byCategory := make(map[string]uint64, len(m.byCategory))
	for cat, n := range m.byCategory {
		byCategory[string(cat)] = n
	}

	return Snapshot{
		Ingested:       atomic.LoadUint64(&m.ingested),
		ByCategory:     byCategory,
		DraftsCreated:  atomic.LoadUint64(&m.drafts),
		ResponsesSent:  atomic.LoadUint64(&m.sent),
		SendFailures:   atomic.LoadUint64(&m.sendFailures),
		TickErrors:     atomic.LoadUint64(&m.tickErrors),
		WorkerRestarts: atomic.LoadUint64(&m.restarts),
		ProcessRSS:     m.rss,
		ProcessCPU:     m.cpu,
		ProcessStatus:  m.status,
		CollectedAt:    time.Now().UTC().Format(time.RFC3339),
	}
}
