package event

import (
	"log/slog"
	"time"
)

// LatencyHandler watches how long messages sit between arrival at the
// provider and landing in the queue. Slow ticks show up here first.
type LatencyHandler struct {
	log              *slog.Logger
	latencyThreshold time.Duration
}

func NewLatencyHandler(log *slog.Logger, latencyThreshold time.Duration) *LatencyHandler {
	return &LatencyHandler{log: log, latencyThreshold: latencyThreshold}
}

func (h *LatencyHandler) Handle(e Event) {
	if payload, ok := e.Payload.(MessageQueued); ok {
		leadTime := time.Since(payload.Message.ReceivedAt)

		h.log.Debug("telemetry: queueing latency",
			"source", payload.Message.Source,
			"category", payload.Message.Category,
			"lead_time_ms", leadTime.Milliseconds(),
		)

		if leadTime > h.latencyThreshold {
			h.log.Warn("high queueing latency", "source", payload.Message.Source, "lead_time", leadTime)
		}
	}
}
