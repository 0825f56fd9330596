package subscriber

import (
	"context"

	"github.com/servana/eventrelay/internal/domain/event"
	"github.com/servana/eventrelay/internal/infra/persistence"
	"github.com/servana/eventrelay/internal/outbox"
)

const auditHandlerName = "audit-recorder"

// AuditRecorder writes each dispatched event into audit_logs. The ledger
// guard keeps redeliveries from producing duplicate rows.
type AuditRecorder struct {
	ledger *outbox.Ledger
	audit  *persistence.AuditLogRepository
}

func NewAuditRecorder(ledger *outbox.Ledger, audit *persistence.AuditLogRepository) *AuditRecorder {
	return &AuditRecorder{ledger: ledger, audit: audit}
}

func (a *AuditRecorder) Handle(ctx context.Context, ev event.Event) error {
	envelope, err := event.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = a.ledger.ProcessOnce(ctx, ev.ID, auditHandlerName, func(ctx context.Context) error {
		return a.audit.Create(ctx, ev.EventType, envelope)
	})
	return err
}
