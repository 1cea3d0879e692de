package wave

import (
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
)

// FEFOBatch tags an item with the batch that expires first.
type FEFOBatch struct {
	Batch      string
	ExpiryDate time.Time
}

// PicklistItem is one SKU line of one order inside a wave.
// pickedQuantity never exceeds quantity; status is PICKED only when they match.
type PicklistItem struct {
	id             kernel.UUID
	waveID         kernel.UUID
	orderID        kernel.UUID
	sku            string
	productName    string
	binLocation    string
	quantity       int
	pickedQuantity int
	status         ItemStatus
	fefo           *FEFOBatch
	scanSequence   int
	pickedAt       *time.Time
	partialReason  string
	notes          string
	photoURL       string
}

type NewItemParams struct {
	OrderID      kernel.UUID
	SKU          string
	ProductName  string
	BinLocation  string
	Quantity     int
	ScanSequence int
	FEFO         *FEFOBatch
}

func NewPicklistItem(p NewItemParams) (*PicklistItem, error) {
	if err := p.OrderID.Validate(); err != nil {
		return nil, err
	}
	if p.SKU == "" {
		return nil, errs.NewValueIsRequiredError("sku")
	}
	if p.Quantity <= 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", p.Quantity))
	}
	return &PicklistItem{
		id:           kernel.NewUUID(),
		orderID:      p.OrderID,
		sku:          p.SKU,
		productName:  p.ProductName,
		binLocation:  p.BinLocation,
		quantity:     p.Quantity,
		status:       ItemStatusPending,
		fefo:         p.FEFO,
		scanSequence: p.ScanSequence,
	}, nil
}

// ItemState is the persisted form of a picklist item.
type ItemState struct {
	ID             kernel.UUID
	WaveID         kernel.UUID
	OrderID        kernel.UUID
	SKU            string
	ProductName    string
	BinLocation    string
	Quantity       int
	PickedQuantity int
	Status         ItemStatus
	FEFO           *FEFOBatch
	ScanSequence   int
	PickedAt       *time.Time
	PartialReason  string
	Notes          string
	PhotoURL       string
}

func RestorePicklistItem(s ItemState) *PicklistItem {
	return &PicklistItem{
		id:             s.ID,
		waveID:         s.WaveID,
		orderID:        s.OrderID,
		sku:            s.SKU,
		productName:    s.ProductName,
		binLocation:    s.BinLocation,
		quantity:       s.Quantity,
		pickedQuantity: s.PickedQuantity,
		status:         s.Status,
		fefo:           s.FEFO,
		scanSequence:   s.ScanSequence,
		pickedAt:       s.PickedAt,
		partialReason:  s.PartialReason,
		notes:          s.Notes,
		photoURL:       s.PhotoURL,
	}
}

func (i *PicklistItem) State() ItemState {
	return ItemState{
		ID:             i.id,
		WaveID:         i.waveID,
		OrderID:        i.orderID,
		SKU:            i.sku,
		ProductName:    i.productName,
		BinLocation:    i.binLocation,
		Quantity:       i.quantity,
		PickedQuantity: i.pickedQuantity,
		Status:         i.status,
		FEFO:           i.fefo,
		ScanSequence:   i.scanSequence,
		PickedAt:       i.pickedAt,
		PartialReason:  i.partialReason,
		Notes:          i.notes,
		PhotoURL:       i.photoURL,
	}
}

func (i *PicklistItem) ID() kernel.UUID      { return i.id }
func (i *PicklistItem) WaveID() kernel.UUID  { return i.waveID }
func (i *PicklistItem) OrderID() kernel.UUID { return i.orderID }
func (i *PicklistItem) SKU() string          { return i.sku }
func (i *PicklistItem) ProductName() string  { return i.productName }
func (i *PicklistItem) BinLocation() string  { return i.binLocation }
func (i *PicklistItem) Quantity() int        { return i.quantity }
func (i *PicklistItem) PickedQuantity() int  { return i.pickedQuantity }
func (i *PicklistItem) Status() ItemStatus   { return i.status }
func (i *PicklistItem) FEFO() *FEFOBatch     { return i.fefo }
func (i *PicklistItem) ScanSequence() int    { return i.scanSequence }

func (i *PicklistItem) matches(sku, binLocation string) bool {
	return i.sku == sku && i.binLocation == binLocation
}

func (i *PicklistItem) scan(quantity int, now time.Time) {
	i.pickedQuantity = min(quantity, i.quantity)
	if i.pickedQuantity == i.quantity {
		i.status = ItemStatusPicked
	} else {
		i.status = ItemStatusPartial
	}
	i.pickedAt = &now
}

func (i *PicklistItem) markPartial(pickedQuantity int, reason PartialReason, notes, photoURL string, now time.Time) {
	i.pickedQuantity = pickedQuantity
	i.status = ItemStatusPartial
	i.partialReason = string(reason)
	i.notes = notes
	i.photoURL = photoURL
	i.pickedAt = &now
}
