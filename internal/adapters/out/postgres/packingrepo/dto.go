// Package packingrepo stores packing jobs with their items, photo evidence
// and tamper seals.
package packingrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"

	"github.com/google/uuid"
)

type JobDTO struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	JobNumber         string     `gorm:"size:64;uniqueIndex"`
	WaveID            uuid.UUID  `gorm:"type:uuid;uniqueIndex"`
	PackerID          *uuid.UUID `gorm:"type:uuid;index"`
	Status            int        `gorm:"index"`
	Priority          int
	WorkflowType      string `gorm:"size:32"`
	TotalItems        int
	PackedItems       int
	VerifiedItems     int
	SLADeadline       time.Time `gorm:"column:sla_deadline;index"`
	EstimatedDuration int
	CreatedAt         time.Time
	StartedAt         *time.Time
	CompletedAt       *time.Time
}

func (JobDTO) TableName() string {
	return "packing_jobs"
}

type ItemDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	JobID            uuid.UUID `gorm:"type:uuid;index"`
	OrderID          uuid.UUID `gorm:"type:uuid"`
	SKU              string    `gorm:"column:sku;size:64"`
	ProductName      string
	Quantity         int
	PickedQuantity   int
	PackedQuantity   int
	VerifiedQuantity int
	Status           int
	VerifiedAt       *time.Time
}

func (ItemDTO) TableName() string {
	return "packing_items"
}

type PhotoDTO struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	JobID              uuid.UUID  `gorm:"type:uuid;index"`
	OrderID            *uuid.UUID `gorm:"type:uuid"`
	PhotoURL           string     `gorm:"column:photo_url"`
	ThumbnailURL       string     `gorm:"column:thumbnail_url"`
	PhotoType          string     `gorm:"size:32"`
	CapturedAt         time.Time
	Latitude           *float64
	Longitude          *float64
	DeviceInfo         string
	VerificationStatus string `gorm:"size:16"`
}

func (PhotoDTO) TableName() string {
	return "photo_evidence"
}

type SealDTO struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey"`
	JobID              uuid.UUID  `gorm:"type:uuid;index"`
	OrderID            *uuid.UUID `gorm:"type:uuid"`
	SealNumber         string     `gorm:"size:64"`
	SealType           string     `gorm:"size:32"`
	AppliedAt          time.Time
	VerificationStatus string `gorm:"size:16"`
}

func (SealDTO) TableName() string {
	return "package_seals"
}

type aggregateDTO struct {
	job    JobDTO
	items  []ItemDTO
	photos []PhotoDTO
	seals  []SealDTO
}

func fromDomain(j *packing.Job) aggregateDTO {
	s := j.State()
	out := aggregateDTO{
		job: JobDTO{
			ID:                s.ID.Bytes(),
			JobNumber:         s.Number,
			WaveID:            s.WaveID.Bytes(),
			PackerID:          optionalID(s.PackerID),
			Status:            int(s.Status),
			Priority:          int(s.Priority),
			WorkflowType:      string(s.Workflow),
			TotalItems:        s.TotalItems,
			PackedItems:       s.PackedItems,
			VerifiedItems:     s.VerifiedItems,
			SLADeadline:       s.SLADeadline,
			EstimatedDuration: s.EstimatedDuration,
			CreatedAt:         s.CreatedAt,
			StartedAt:         s.StartedAt,
			CompletedAt:       s.CompletedAt,
		},
	}

	for _, item := range j.Items() {
		out.items = append(out.items, ItemDTO{
			ID:               item.ID.Bytes(),
			JobID:            s.ID.Bytes(),
			OrderID:          item.OrderID.Bytes(),
			SKU:              item.SKU,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			PickedQuantity:   item.PickedQuantity,
			PackedQuantity:   item.PackedQuantity,
			VerifiedQuantity: item.VerifiedQuantity,
			Status:           int(item.Status),
			VerifiedAt:       item.VerifiedAt,
		})
	}
	for _, p := range j.Photos() {
		out.photos = append(out.photos, PhotoDTO{
			ID:                 p.ID.Bytes(),
			JobID:              s.ID.Bytes(),
			OrderID:            optionalID(p.OrderID),
			PhotoURL:           p.PhotoURL,
			ThumbnailURL:       p.ThumbnailURL,
			PhotoType:          p.PhotoType,
			CapturedAt:         p.CapturedAt,
			Latitude:           p.Latitude,
			Longitude:          p.Longitude,
			DeviceInfo:         p.DeviceInfo,
			VerificationStatus: p.VerificationStatus,
		})
	}
	for _, seal := range j.Seals() {
		out.seals = append(out.seals, SealDTO{
			ID:                 seal.ID.Bytes(),
			JobID:              s.ID.Bytes(),
			OrderID:            optionalID(seal.OrderID),
			SealNumber:         seal.SealNumber,
			SealType:           seal.SealType,
			AppliedAt:          seal.AppliedAt,
			VerificationStatus: seal.VerificationStatus,
		})
	}
	return out
}

func toDomain(in aggregateDTO) (*packing.Job, error) {
	id, err := kernel.UUIDFromBytes(in.job.ID[:])
	if err != nil {
		return nil, err
	}
	waveID, err := kernel.UUIDFromBytes(in.job.WaveID[:])
	if err != nil {
		return nil, err
	}
	packerID, err := restoreOptionalID(in.job.PackerID)
	if err != nil {
		return nil, err
	}

	items := make([]*packing.Item, 0, len(in.items))
	for _, dto := range in.items {
		itemID, err := kernel.UUIDFromBytes(dto.ID[:])
		if err != nil {
			return nil, err
		}
		orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
		if err != nil {
			return nil, err
		}
		items = append(items, &packing.Item{
			ID:               itemID,
			JobID:            id,
			OrderID:          orderID,
			SKU:              dto.SKU,
			ProductName:      dto.ProductName,
			Quantity:         dto.Quantity,
			PickedQuantity:   dto.PickedQuantity,
			PackedQuantity:   dto.PackedQuantity,
			VerifiedQuantity: dto.VerifiedQuantity,
			Status:           packing.ItemStatus(dto.Status),
			VerifiedAt:       dto.VerifiedAt,
		})
	}

	photos := make([]packing.PhotoEvidence, 0, len(in.photos))
	for _, dto := range in.photos {
		photoID, err := kernel.UUIDFromBytes(dto.ID[:])
		if err != nil {
			return nil, err
		}
		orderID, err := restoreOptionalID(dto.OrderID)
		if err != nil {
			return nil, err
		}
		photos = append(photos, packing.PhotoEvidence{
			ID:                 photoID,
			JobID:              id,
			OrderID:            orderID,
			PhotoURL:           dto.PhotoURL,
			ThumbnailURL:       dto.ThumbnailURL,
			PhotoType:          dto.PhotoType,
			CapturedAt:         dto.CapturedAt,
			Latitude:           dto.Latitude,
			Longitude:          dto.Longitude,
			DeviceInfo:         dto.DeviceInfo,
			VerificationStatus: dto.VerificationStatus,
		})
	}

	seals := make([]packing.Seal, 0, len(in.seals))
	for _, dto := range in.seals {
		sealID, err := kernel.UUIDFromBytes(dto.ID[:])
		if err != nil {
			return nil, err
		}
		orderID, err := restoreOptionalID(dto.OrderID)
		if err != nil {
			return nil, err
		}
		seals = append(seals, packing.Seal{
			ID:                 sealID,
			JobID:              id,
			OrderID:            orderID,
			SealNumber:         dto.SealNumber,
			SealType:           dto.SealType,
			AppliedAt:          dto.AppliedAt,
			VerificationStatus: dto.VerificationStatus,
		})
	}

	return packing.RestoreJob(packing.State{
		ID:                id,
		Number:            in.job.JobNumber,
		WaveID:            waveID,
		PackerID:          packerID,
		Status:            packing.Status(in.job.Status),
		Priority:          kernel.Priority(in.job.Priority),
		Workflow:          packing.WorkflowType(in.job.WorkflowType),
		TotalItems:        in.job.TotalItems,
		PackedItems:       in.job.PackedItems,
		VerifiedItems:     in.job.VerifiedItems,
		SLADeadline:       in.job.SLADeadline,
		EstimatedDuration: in.job.EstimatedDuration,
		CreatedAt:         in.job.CreatedAt,
		StartedAt:         in.job.StartedAt,
		CompletedAt:       in.job.CompletedAt,
	}, items, photos, seals)
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
