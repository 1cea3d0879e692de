// Package picker models the warehouse staff member who walks a wave. Pickers
// are owned by the identity service; fulfillment only reads them.
package picker

import (
	"slices"

	"fulfillment/internal/core/domain/model/kernel"
)

const (
	PermissionView         = "picking:view"
	PermissionAssignManage = "picking:assign_manage"
	PermissionExecute      = "picking:execute"

	AvailabilityAvailable = "available"
)

type Picker struct {
	id           kernel.UUID
	name         string
	isActive     bool
	availability string
	permissions  []string
}

func RestorePicker(id kernel.UUID, name string, isActive bool, availability string, permissions []string) (*Picker, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return &Picker{
		id:           id,
		name:         name,
		isActive:     isActive,
		availability: availability,
		permissions:  slices.Clone(permissions),
	}, nil
}

func (p *Picker) ID() kernel.UUID       { return p.id }
func (p *Picker) Name() string          { return p.name }
func (p *Picker) IsActive() bool        { return p.isActive }
func (p *Picker) Availability() string  { return p.availability }
func (p *Picker) Permissions() []string { return slices.Clone(p.permissions) }

// IsEligible reports whether the picker may receive waves: active, available,
// and holding at least one picking permission.
func (p *Picker) IsEligible() bool {
	if !p.isActive || p.availability != AvailabilityAvailable {
		return false
	}
	return slices.ContainsFunc(p.permissions, func(perm string) bool {
		return perm == PermissionView || perm == PermissionAssignManage || perm == PermissionExecute
	})
}
