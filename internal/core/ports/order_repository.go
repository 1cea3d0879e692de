// Package ports defines the contracts between the fulfillment use cases and
// the infrastructure: repositories over the aggregates, the unit of work that
// binds them to one transaction, and the outbound collaborators (logistics
// system, photo storage, distributed lease).
package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/model/picker"
)

// OrderRepository reads orders owned by the storefront.
type OrderRepository interface {
	// GetByIDs returns the orders in the order of ids. It fails with
	// errs.ErrObjectNotFound naming the first id that does not resolve.
	GetByIDs(ctx context.Context, ids []kernel.UUID) ([]*order.Order, error)
}

// PickerRepository reads warehouse staff from the identity service's tables.
type PickerRepository interface {
	// ListActive returns active pickers. Availability and permissions are
	// checked by the caller.
	ListActive(ctx context.Context) ([]*picker.Picker, error)
}
