package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"

	"replydesk/classify"
	"replydesk/contract"
	"replydesk/domain"
	"replydesk/domain/event"
	"replydesk/repositories"
)

// DispatchWorker pulls batches from every connected source, classifies
// them and lands them in the queue. One message failing never blocks the
// rest of the batch; a failed tick backs off once, then the normal
// cadence resumes.
type DispatchWorker struct {
	log        *slog.Logger
	registry   contract.IRegistry
	classifier *classify.Classifier
	messages   repositories.IMessageRepository
	events     chan<- event.Event
	interval   time.Duration
	backoff    time.Duration
}

func NewDispatchWorker(
	log *slog.Logger,
	registry contract.IRegistry,
	classifier *classify.Classifier,
	messages repositories.IMessageRepository,
	events chan<- event.Event,
	interval time.Duration,
	backoff time.Duration,
) *DispatchWorker {
	return &DispatchWorker{
		log:        log,
		registry:   registry,
		classifier: classifier,
		messages:   messages,
		events:     events,
		interval:   interval,
		backoff:    backoff,
	}
}

func (w *DispatchWorker) Run(ctx context.Context) error {
	w.log.Info("Starting dispatch worker", "interval", w.interval)

	// One immediate pass so a fresh start does not sit idle for a full
	// interval.
	if err := w.tick(ctx); err != nil {
		if stopped := w.backOff(ctx, err); stopped {
			return ctx.Err()
		}
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Dispatch worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.tick(ctx); err != nil {
				if stopped := w.backOff(ctx, err); stopped {
					return ctx.Err()
				}
				// Drop the tick that piled up while backing off
				select {
				case <-ticker.C:
				default:
				}
			}
		}
	}
}

// tick runs one fetch-classify-persist cycle. Only a failure of the
// whole cycle is returned; per-message failures are logged and skipped.
func (w *DispatchWorker) tick(ctx context.Context) error {
	batch := w.registry.GetAllMessages(ctx)
	if len(batch) == 0 {
		return nil
	}

	stored := 0
	for _, raw := range batch {
		message := domain.Message{
			ID:         uuid.New(),
			Source:     raw.Source,
			Sender:     raw.Sender,
			Content:    raw.Content,
			ReceivedAt: raw.ReceivedAt,
			Status:     domain.StatusPending,
			Category:   w.classifier.Classify(raw.Content, raw.Sender, raw.Source),
			Language:   detectLanguage(raw.Content),
		}

		if err := w.messages.Store(message); err != nil {
			w.log.Warn("Storing message failed, skipping", "source", raw.Source, "sender", raw.Sender, "error", err)
			continue
		}
		stored++
		w.emit(event.New(event.MessageQueuedType, event.MessageQueued{Message: message}))
	}

	if err := w.messages.Flush(); err != nil {
		return err
	}

	w.log.Debug("Tick complete", "fetched", len(batch), "stored", stored)
	return nil
}

// backOff reports whether the context ended while waiting.
func (w *DispatchWorker) backOff(ctx context.Context, cause error) bool {
	w.log.Warn("Tick failed, backing off", "backoff", w.backoff, "error", cause)
	w.emit(event.New(event.TickFailedType, event.TickFailed{Reason: cause.Error()}))

	select {
	case <-ctx.Done():
		return true
	case <-time.After(w.backoff):
		return false
	}
}

func (w *DispatchWorker) emit(evt event.Event) {
	if w.events == nil {
		return
	}
	select {
	case w.events <- evt:
	default:
		w.log.Warn("event channel full, dropping", "type", evt.Type)
	}
}

// detectLanguage returns the ISO 639-1 code, empty when detection is
// not confident enough to act on.
func detectLanguage(content string) string {
	info := whatlanggo.Detect(content)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
