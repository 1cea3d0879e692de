// Package orderrepo reads storefront orders. Orders are owned upstream and
// this service never writes them outside of tests.
package orderrepo

import (
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OrderDTO is the subset of the orders table used by wave generation.
type OrderDTO struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	OrderNumber string         `gorm:"size:64;uniqueIndex"`
	Cart        datatypes.JSON `gorm:"type:jsonb"`
	Status      string         `gorm:"size:32;index"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// FromDomain is used by tests that seed orders.
func FromDomain(o *order.Order) OrderDTO {
	cart := o.RawCart()
	if len(cart) == 0 {
		cart = []byte("[]")
	}
	return OrderDTO{
		ID:          o.ID().Bytes(),
		OrderNumber: o.OrderNumber(),
		Cart:        datatypes.JSON(cart),
		Status:      o.Status(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return order.RestoreOrder(id, dto.OrderNumber, dto.Cart, dto.Status)
}
