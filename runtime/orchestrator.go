// Package runtime wires the supervised worker fleet to the registry,
// the queue and the event pipeline. It orchestrates the system without
// containing business logic or domain rules.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"replydesk/classify"
	"replydesk/contract"
	"replydesk/domain/event"
	"replydesk/observability"
	"replydesk/repositories"
	"replydesk/runtime/workers"
)

// Intervals groups the timing knobs the orchestrator hands to its workers.
type Intervals struct {
	Poll             time.Duration
	Backoff          time.Duration
	Metric           time.Duration
	NotifyTimeout    time.Duration
	LatencyThreshold time.Duration
}

type Orchestrator struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	registry   contract.IRegistry
	classifier *classify.Classifier
	messages   repositories.IMessageRepository
	monitor    *observability.Monitor
	notifiers  []contract.Notifier
	events     chan event.Event
	intervals  Intervals
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, classifier *classify.Classifier,
	messages repositories.IMessageRepository, monitor *observability.Monitor,
	events chan event.Event, intervals Intervals) *Orchestrator {
	return &Orchestrator{
		log:        log,
		supervisor: supervisor,
		registry:   registry,
		classifier: classifier,
		messages:   messages,
		monitor:    monitor,
		events:     events,
		intervals:  intervals,
	}
}

// Add registers notifiers that receive operator-facing text for queued
// messages and connector fallbacks. Must be called before Start.
func (o *Orchestrator) Add(notifiers ...contract.Notifier) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notifiers = append(o.notifiers, notifiers...)
}

// Start initiates the orchestrator by preparing the handler chain and
// the worker fleet, then starting the supervisor. It uses a preparation
// pattern to minimize mutex locking time, and blocks until supervision
// ends.
func (o *Orchestrator) Start(ctx context.Context) error {
	// 1. Preparation phase (No Lock)
	handlers := o.prepareHandlers()

	dispatch := workers.NewDispatchWorker(o.log, o.registry, o.classifier,
		o.messages, o.events, o.intervals.Poll, o.intervals.Backoff)
	notify := workers.NewNotifyWorker(o.log, o.events, handlers...)
	telemetry := workers.NewTelemetryWorker(o.log, o.intervals.Metric, o.monitor)

	// 2. Critical Section (Short Lock)
	o.mu.Lock()
	o.supervisor.Add(dispatch, notify, telemetry)
	o.mu.Unlock()

	// 3. Execution phase (No Lock)
	o.log.Info("Starting orchestrator and all supervised workers")
	o.supervisor.Run(ctx)
	return nil
}

// prepareHandlers builds the chain the notify worker fans events into.
// Handlers are independent of each other; one notification handler is
// created per registered notifier.
func (o *Orchestrator) prepareHandlers() []event.Handler {
	o.mu.Lock()
	notifiers := make([]contract.Notifier, len(o.notifiers))
	copy(notifiers, o.notifiers)
	o.mu.Unlock()

	handlers := []event.Handler{
		event.NewStatsHandler(o.log, o.monitor),
		event.NewWorkerRestartedAfterPanicHandler(o.log, event.NewCounter()),
		event.NewLatencyHandler(o.log, o.intervals.LatencyThreshold),
	}
	for _, notifier := range notifiers {
		handlers = append(handlers, event.NewNotificationHandler(o.log, notifier, o.intervals.NotifyTimeout))
	}
	return handlers
}

// Stop initiates a graceful shutdown of the whole fleet.
// Workers drain their current tick before the supervisor returns.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
