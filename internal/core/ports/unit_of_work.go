package ports

import (
	"context"
)

// UnitOfWorkFactory hands out one UnitOfWork per command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork spans one database transaction. Repositories obtained from it
// read and write through that transaction; aggregates loaded through them are
// flushed on Commit.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	// Commit fails when Begin was not called.
	Commit(ctx context.Context) error
	// Rollback after Commit reports an error that deferred callers ignore.
	Rollback(ctx context.Context) error

	OrderRepository() OrderRepository
	PickerRepository() PickerRepository
	WaveRepository() WaveRepository
	PackingJobRepository() PackingJobRepository
	RiderRepository() RiderRepository
	HandoverRepository() HandoverRepository
	ShipmentRepository() ShipmentRepository
	RetryLedger() RetryLedger
	AuditRepository() AuditRepository
}
