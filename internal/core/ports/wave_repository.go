package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/wave"
)

// WaveRepository persists picking waves together with their picklist items.
type WaveRepository interface {
	// Add inserts the wave header and every picklist item.
	Add(ctx context.Context, aggregate *wave.Wave) error

	// Update writes the header and the current state of every item.
	Update(ctx context.Context, aggregate *wave.Wave) error

	// Get loads a wave with its items.
	Get(ctx context.Context, id kernel.UUID) (*wave.Wave, error)

	// ListUnassigned returns GENERATED waves without a picker, items included.
	ListUnassigned(ctx context.Context) ([]*wave.Wave, error)

	// CountActiveByPicker counts ASSIGNED and PICKING waves per picker.
	CountActiveByPicker(ctx context.Context) (map[kernel.UUID]int, error)

	AddException(ctx context.Context, exception *wave.PickingException) error
}
