// Package pickerrepo reads warehouse pickers maintained by the identity
// service.
package pickerrepo

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/picker"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type PickerDTO struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Name         string         `gorm:"size:255"`
	IsActive     bool           `gorm:"index"`
	Availability string         `gorm:"size:32"`
	Permissions  pq.StringArray `gorm:"type:text[]"`
}

func (PickerDTO) TableName() string {
	return "pickers"
}

func FromDomain(p *picker.Picker) PickerDTO {
	return PickerDTO{
		ID:           p.ID().Bytes(),
		Name:         p.Name(),
		IsActive:     p.IsActive(),
		Availability: p.Availability(),
		Permissions:  pq.StringArray(p.Permissions()),
	}
}

func toDomain(dto PickerDTO) (*picker.Picker, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	return picker.RestorePicker(id, dto.Name, dto.IsActive, dto.Availability, dto.Permissions)
}

type GormPickerRepository struct {
	db *gorm.DB
}

func NewGormPickerRepository(db *gorm.DB) *GormPickerRepository {
	return &GormPickerRepository{db: db}
}

// ListActive returns active pickers ordered by name. Eligibility is decided
// by the domain.
func (r *GormPickerRepository) ListActive(ctx context.Context) ([]*picker.Picker, error) {
	var dtos []PickerDTO
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name, id").Find(&dtos).Error; err != nil {
		return nil, err
	}

	pickers := make([]*picker.Picker, 0, len(dtos))
	for _, dto := range dtos {
		p, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		pickers = append(pickers, p)
	}
	return pickers, nil
}
