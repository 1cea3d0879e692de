// Package postgres provides the GORM-based Unit of Work over the fulfillment
// repositories.
//
// Every repository handed out by a GormUnitOfWork runs on the transaction
// opened by Begin, or directly on the connection when no transaction is
// active:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.WaveRepository().Update(ctx, w); err != nil {
//	    return err
//	}
//	if err := uow.AuditRepository().Append(ctx, event); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Rollback after a successful Commit returns gorm.ErrInvalidTransaction and is
// safe to ignore in a deferred call.
//
// Concurrency:
//   - Each UnitOfWork owns one transaction; goroutines never share one.
//   - Aggregate reads (wave, packing job, handover, rider) take a row lock
//     that is held until Commit or Rollback.
//   - Keep the transaction short: LMS and storage calls happen after Commit.
package postgres

import (
	"context"

	"fulfillment/internal/adapters/out/postgres/auditrepo"
	"fulfillment/internal/adapters/out/postgres/handoverrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/packingrepo"
	"fulfillment/internal/adapters/out/postgres/pickerrepo"
	"fulfillment/internal/adapters/out/postgres/riderrepo"
	"fulfillment/internal/adapters/out/postgres/waverepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate is an aggregate written during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// GormUnitOfWorkFactory creates one UnitOfWork per command so concurrent
// requests never share a transaction.
//
// Example:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create()
//	waves := uow.WaveRepository()
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory wraps the connection every created unit of work
// starts its transaction on.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
//	if err != nil {
//	    return fmt.Errorf("open database: %w", err)
//	}
//	factory := NewGormUnitOfWorkFactory(db)
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create returns a fresh unit of work with no open transaction.
//
// Example:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	job, err := uow.PackingJobRepository().Get(ctx, jobID)
//	if err != nil {
//	    return err
//	}
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction across the
// repositories and records which aggregates it wrote.
//
// Example:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return fmt.Errorf("begin: %w", err)
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.HandoverRepository().Add(ctx, h); err != nil {
//	    return err
//	}
//	if err := uow.RiderRepository().Update(ctx, r); err != nil {
//	    return err
//	}
//	if err := uow.PackingJobRepository().Update(ctx, job); err != nil {
//	    return err
//	}
//
//	if err := uow.Commit(ctx); err != nil {
//	    return fmt.Errorf("commit: %w", err)
//	}
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin starts a transaction. Calling it again while one is open is a no-op
// and opens no savepoint.
//
// Example:
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	return nil
}

// Commit makes every repository write visible and releases the row locks.
// Calling it without an open transaction returns gorm.ErrInvalidTransaction.
//
// Example:
//
//	if err := uow.WaveRepository().Update(ctx, w); err != nil {
//	    return err
//	}
//	if err := uow.AuditRepository().Append(ctx, event); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction. It is meant for a deferred call right
// after Begin; once Commit has run it only reports gorm.ErrInvalidTransaction.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn())
}

func (uow *GormUnitOfWork) PickerRepository() ports.PickerRepository {
	return pickerrepo.NewGormPickerRepository(uow.conn())
}

// WaveRepository is bound to the open transaction, or to the plain
// connection before Begin.
//
// Example:
//
//	waves := uow.WaveRepository()
//	w, err := waves.Get(ctx, waveID) // row locked until Commit
//	if err != nil {
//	    return err
//	}
//	if _, err = w.Scan(pickerID, sku, bin, qty, now); err != nil {
//	    return err
//	}
//	return waves.Update(ctx, w)
func (uow *GormUnitOfWork) WaveRepository() ports.WaveRepository {
	return waverepo.NewGormWaveRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) PackingJobRepository() ports.PackingJobRepository {
	return packingrepo.NewGormPackingJobRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) RiderRepository() ports.RiderRepository {
	return riderrepo.NewGormRiderRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) HandoverRepository() ports.HandoverRepository {
	return handoverrepo.NewGormHandoverRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) ShipmentRepository() ports.ShipmentRepository {
	return handoverrepo.NewGormShipmentRepository(uow.conn())
}

// RetryLedger shares the transaction with HandoverRepository, so a failed
// LMS call and the handover's sync status are recorded together.
func (uow *GormUnitOfWork) RetryLedger() ports.RetryLedger {
	return handoverrepo.NewGormRetryLedger(uow.conn())
}

func (uow *GormUnitOfWork) AuditRepository() ports.AuditRepository {
	return auditrepo.NewGormAuditRepository(uow.conn())
}

// TrackAggregate is called by repositories after a successful write.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

// TrackedCount reports how many aggregate writes the unit of work recorded.
func (uow *GormUnitOfWork) TrackedCount() int {
	return len(uow.trackedAggregates)
}
