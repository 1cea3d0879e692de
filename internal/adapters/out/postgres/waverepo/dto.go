// Package waverepo stores picking waves, their picklist items and the
// exceptions raised while picking.
package waverepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/wave"

	"github.com/google/uuid"
)

type WaveDTO struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WaveNumber         string     `gorm:"size:64;uniqueIndex"`
	Status             int        `gorm:"index"`
	Priority           int        `gorm:"index"`
	PickerID           *uuid.UUID `gorm:"type:uuid;index"`
	TotalOrders        int
	TotalItems         int
	SLADeadline        time.Time `gorm:"column:sla_deadline;index"`
	RouteOptimization  bool
	FEFORequired       bool `gorm:"column:fefo_required"`
	TagsAndBags        bool
	CreatedAt          time.Time
	AssignedAt         *time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	CancellationReason string
}

func (WaveDTO) TableName() string {
	return "picking_waves"
}

type PicklistItemDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	WaveID         uuid.UUID `gorm:"type:uuid;index"`
	OrderID        uuid.UUID `gorm:"type:uuid;index"`
	SKU            string    `gorm:"column:sku;size:64"`
	ProductName    string
	BinLocation    string `gorm:"size:64"`
	Quantity       int
	PickedQuantity int
	Status         int
	FEFOBatch      *string    `gorm:"column:fefo_batch;size:32"`
	ExpiryDate     *time.Time `gorm:"index"`
	ScanSequence   int
	PickedAt       *time.Time
	PartialReason  string `gorm:"size:16"`
	Notes          string
	PhotoURL       string `gorm:"column:photo_url"`
}

func (PicklistItemDTO) TableName() string {
	return "picklist_items"
}

type PickingExceptionDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	WaveID      uuid.UUID `gorm:"type:uuid;index"`
	ItemID      uuid.UUID `gorm:"type:uuid"`
	OrderID     uuid.UUID `gorm:"type:uuid"`
	SKU         string    `gorm:"column:sku;size:64"`
	Reason      string    `gorm:"size:16"`
	Severity    string    `gorm:"size:16"`
	Status      string    `gorm:"size:16;index"`
	SLADeadline time.Time `gorm:"column:sla_deadline"`
	ReportedBy  uuid.UUID `gorm:"type:uuid"`
	Notes       string
	PhotoURL    string `gorm:"column:photo_url"`
	CreatedAt   time.Time
}

func (PickingExceptionDTO) TableName() string {
	return "picking_exceptions"
}

func fromDomain(w *wave.Wave) (WaveDTO, []PicklistItemDTO) {
	s := w.State()
	dto := WaveDTO{
		ID:                 s.ID.Bytes(),
		WaveNumber:         s.Number,
		Status:             int(s.Status),
		Priority:           int(s.Priority),
		PickerID:           optionalID(s.PickerID),
		TotalOrders:        s.TotalOrders,
		TotalItems:         s.TotalItems,
		SLADeadline:        s.SLADeadline,
		RouteOptimization:  s.Options.RouteOptimization,
		FEFORequired:       s.Options.FEFORequired,
		TagsAndBags:        s.Options.TagsAndBags,
		CreatedAt:          s.CreatedAt,
		AssignedAt:         s.AssignedAt,
		StartedAt:          s.StartedAt,
		CompletedAt:        s.CompletedAt,
		CancelledAt:        s.CancelledAt,
		CancellationReason: s.CancellationReason,
	}

	items := make([]PicklistItemDTO, 0, len(w.Items()))
	for _, item := range w.Items() {
		is := item.State()
		itemDTO := PicklistItemDTO{
			ID:             is.ID.Bytes(),
			WaveID:         s.ID.Bytes(),
			OrderID:        is.OrderID.Bytes(),
			SKU:            is.SKU,
			ProductName:    is.ProductName,
			BinLocation:    is.BinLocation,
			Quantity:       is.Quantity,
			PickedQuantity: is.PickedQuantity,
			Status:         int(is.Status),
			ScanSequence:   is.ScanSequence,
			PickedAt:       is.PickedAt,
			PartialReason:  is.PartialReason,
			Notes:          is.Notes,
			PhotoURL:       is.PhotoURL,
		}
		if is.FEFO != nil {
			batch, expiry := is.FEFO.Batch, is.FEFO.ExpiryDate
			itemDTO.FEFOBatch = &batch
			itemDTO.ExpiryDate = &expiry
		}
		items = append(items, itemDTO)
	}
	return dto, items
}

func toDomain(dto WaveDTO, itemDTOs []PicklistItemDTO) (*wave.Wave, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	pickerID, err := restoreOptionalID(dto.PickerID)
	if err != nil {
		return nil, err
	}

	items := make([]*wave.PicklistItem, 0, len(itemDTOs))
	for _, itemDTO := range itemDTOs {
		itemID, err := kernel.UUIDFromBytes(itemDTO.ID[:])
		if err != nil {
			return nil, err
		}
		orderID, err := kernel.UUIDFromBytes(itemDTO.OrderID[:])
		if err != nil {
			return nil, err
		}
		var fefo *wave.FEFOBatch
		if itemDTO.FEFOBatch != nil && itemDTO.ExpiryDate != nil {
			fefo = &wave.FEFOBatch{Batch: *itemDTO.FEFOBatch, ExpiryDate: *itemDTO.ExpiryDate}
		}
		items = append(items, wave.RestorePicklistItem(wave.ItemState{
			ID:             itemID,
			WaveID:         id,
			OrderID:        orderID,
			SKU:            itemDTO.SKU,
			ProductName:    itemDTO.ProductName,
			BinLocation:    itemDTO.BinLocation,
			Quantity:       itemDTO.Quantity,
			PickedQuantity: itemDTO.PickedQuantity,
			Status:         wave.ItemStatus(itemDTO.Status),
			FEFO:           fefo,
			ScanSequence:   itemDTO.ScanSequence,
			PickedAt:       itemDTO.PickedAt,
			PartialReason:  itemDTO.PartialReason,
			Notes:          itemDTO.Notes,
			PhotoURL:       itemDTO.PhotoURL,
		}))
	}

	return wave.RestoreWave(wave.State{
		ID:          id,
		Number:      dto.WaveNumber,
		Status:      wave.Status(dto.Status),
		Priority:    kernel.Priority(dto.Priority),
		PickerID:    pickerID,
		TotalOrders: dto.TotalOrders,
		TotalItems:  dto.TotalItems,
		SLADeadline: dto.SLADeadline,
		Options: wave.Options{
			RouteOptimization: dto.RouteOptimization,
			FEFORequired:      dto.FEFORequired,
			TagsAndBags:       dto.TagsAndBags,
		},
		CreatedAt:          dto.CreatedAt,
		AssignedAt:         dto.AssignedAt,
		StartedAt:          dto.StartedAt,
		CompletedAt:        dto.CompletedAt,
		CancelledAt:        dto.CancelledAt,
		CancellationReason: dto.CancellationReason,
	}, items)
}

func exceptionFromDomain(e *wave.PickingException) PickingExceptionDTO {
	return PickingExceptionDTO{
		ID:          e.ID.Bytes(),
		WaveID:      e.WaveID.Bytes(),
		ItemID:      e.ItemID.Bytes(),
		OrderID:     e.OrderID.Bytes(),
		SKU:         e.SKU,
		Reason:      string(e.Reason),
		Severity:    string(e.Severity),
		Status:      string(e.Status),
		SLADeadline: e.SLADeadline,
		ReportedBy:  e.ReportedBy.Bytes(),
		Notes:       e.Notes,
		PhotoURL:    e.PhotoURL,
		CreatedAt:   e.CreatedAt,
	}
}

func optionalID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func restoreOptionalID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
