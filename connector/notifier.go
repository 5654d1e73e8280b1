package connector

import (
	"context"

	"replydesk/contract"
	"replydesk/domain"
)

// RegistryNotifier pushes operator notifications through one of the
// configured connectors, so queue activity can reach the operator on
// the platform they actually watch.
type RegistryNotifier struct {
	registry  contract.IRegistry
	source    domain.Source
	recipient string
}

func NewRegistryNotifier(registry contract.IRegistry, source domain.Source, recipient string) *RegistryNotifier {
	return &RegistryNotifier{registry: registry, source: source, recipient: recipient}
}

func (n *RegistryNotifier) Notify(ctx context.Context, text string) error {
	return n.registry.SendMessage(ctx, n.source, n.recipient, text)
}
