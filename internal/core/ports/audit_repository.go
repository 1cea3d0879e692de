package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/audit"
)

// AuditRepository appends to the event history. Events are never updated.
type AuditRepository interface {
	Append(ctx context.Context, events ...audit.Event) error
}
