package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"
)

// PackingJobRepository persists packing jobs with their items, photo
// evidence and seals.
type PackingJobRepository interface {
	// Add inserts the job. A second job for the same wave fails with
	// errs.ErrConflict.
	Add(ctx context.Context, aggregate *packing.Job) error

	// Update writes the header and items and inserts photos and seals that
	// are not stored yet.
	Update(ctx context.Context, aggregate *packing.Job) error

	Get(ctx context.Context, id kernel.UUID) (*packing.Job, error)
}
