package commands

import (
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/wave"
)

// PicklistItemView is the picked line returned by picking commands.
type PicklistItemView struct {
	ID             kernel.UUID `json:"id"`
	OrderID        kernel.UUID `json:"orderId"`
	SKU            string      `json:"sku"`
	BinLocation    string      `json:"binLocation"`
	Quantity       int         `json:"quantity"`
	PickedQuantity int         `json:"pickedQuantity"`
	Status         string      `json:"status"`
}

func newPicklistItemView(item *wave.PicklistItem) PicklistItemView {
	return PicklistItemView{
		ID:             item.ID(),
		OrderID:        item.OrderID(),
		SKU:            item.SKU(),
		BinLocation:    item.BinLocation(),
		Quantity:       item.Quantity(),
		PickedQuantity: item.PickedQuantity(),
		Status:         item.Status().String(),
	}
}
