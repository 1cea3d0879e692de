// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"fulfillment/internal/core/application/lmssync"
	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Each stage of the pipeline sees only the repositories it writes to.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	PickerRepoFactory interface {
		PickerRepository() ports.PickerRepository
	}

	WaveRepoFactory interface {
		WaveRepository() ports.WaveRepository
	}

	PackingJobRepoFactory interface {
		PackingJobRepository() ports.PackingJobRepository
	}

	RiderRepoFactory interface {
		RiderRepository() ports.RiderRepository
	}

	HandoverRepoFactory interface {
		HandoverRepository() ports.HandoverRepository
	}

	AuditRepoFactory interface {
		AuditRepository() ports.AuditRepository
	}

	// PickingUoW covers wave generation, assignment and picking.
	PickingUoW interface {
		TxManager
		OrderRepoFactory
		PickerRepoFactory
		WaveRepoFactory
		AuditRepoFactory
	}

	PickingUoWFactory interface {
		Create() PickingUoW
	}

	// PackingUoW covers packing jobs, which read the wave they come from.
	PackingUoW interface {
		TxManager
		WaveRepoFactory
		PackingJobRepoFactory
		AuditRepoFactory
	}

	PackingUoWFactory interface {
		Create() PackingUoW
	}

	// HandoverUoW coordinates a job, its handover and the rider.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   job, err := uow.PackingJobRepository().Get(ctx, jobID)
	//   rider, err := uow.RiderRepository().Get(ctx, riderID)
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	HandoverUoW interface {
		TxManager
		PackingJobRepoFactory
		RiderRepoFactory
		HandoverRepoFactory
		AuditRepoFactory
	}

	HandoverUoWFactory interface {
		Create() HandoverUoW
	}
)

// ShipmentSyncer pushes handovers to the logistics system after commit.
// Implemented by lmssync.Engine.
type ShipmentSyncer interface {
	CreateShipment(ctx context.Context, handoverID kernel.UUID) (lmssync.Outcome, error)
	UpdateShipmentStatus(ctx context.Context, handoverID kernel.UUID, status handover.Status, reason string) (lmssync.Outcome, error)
}
