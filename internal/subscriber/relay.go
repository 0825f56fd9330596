package subscriber

import (
	"context"

	"github.com/servana/eventrelay/internal/domain/event"
	"github.com/servana/eventrelay/internal/infra/messaging"
)

// Relay republishes dispatched events to JetStream, subject = event type.
// The outbox record id rides along as the NATS MsgId so JetStream dedupes
// redeliveries of the same record.
type Relay struct {
	client *messaging.NATSClient
}

func NewRelay(client *messaging.NATSClient) *Relay {
	return &Relay{client: client}
}

func (r *Relay) Handle(ctx context.Context, ev event.Event) error {
	envelope, err := event.Marshal(ev)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, ev.EventType, envelope, ev.ID.String())
}
