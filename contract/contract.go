//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"replydesk/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IRegistry is the connector fleet as seen by the dispatcher and the
// conversation controller. One connector per configured source; failures
// on one source never block the others.
type IRegistry interface {
	ConnectAll(ctx context.Context)
	GetAllMessages(ctx context.Context) []domain.RawMessage
	SendMessage(ctx context.Context, source domain.Source, recipient, content string) error
	Status() map[domain.Source]domain.ConnectorStatus
}

// Notifier delivers operator-facing notification text over some surface
// (console, or a connector-backed channel).
type Notifier interface {
	Notify(ctx context.Context, text string) error
}
