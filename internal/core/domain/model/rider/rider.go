package rider

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrNameIsRequired        = errs.NewValueIsRequiredError("name")
	ErrRiderIsNotConstructed = errors.New("Rider must be created via NewRider or RestoreRider")
)

// Rider delivers handed-over packages. Availability flips to BUSY on
// assignment and back to AVAILABLE when the handover ends.
type Rider struct {
	id              kernel.UUID
	name            string
	phone           string
	vehicleType     string
	availability    Availability
	rating          float64
	totalDeliveries int
	isActive        bool
	guard           guard.ConstructorGuard
}

func NewRider(id kernel.UUID, name, phone, vehicleType string) (*Rider, error) {
	r := &Rider{
		phone:        phone,
		vehicleType:  vehicleType,
		availability: Available,
		isActive:     true,
		guard:        guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(id),
		r.setName(name),
	); err != nil {
		return nil, err
	}

	return r, nil
}

// RestoreParams carries the persisted state of a rider.
type RestoreParams struct {
	ID              kernel.UUID
	Name            string
	Phone           string
	VehicleType     string
	Availability    Availability
	Rating          float64
	TotalDeliveries int
	IsActive        bool
}

func RestoreRider(p RestoreParams) (*Rider, error) {
	r := &Rider{
		phone:           p.Phone,
		vehicleType:     p.VehicleType,
		rating:          p.Rating,
		totalDeliveries: p.TotalDeliveries,
		isActive:        p.IsActive,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		r.setID(p.ID),
		r.setName(p.Name),
		p.Availability.Validate(),
	); err != nil {
		return nil, err
	}
	r.availability = p.Availability

	return r, nil
}

// State returns the persisted form of the rider.
func (r *Rider) State() RestoreParams {
	return RestoreParams{
		ID:              r.id,
		Name:            r.name,
		Phone:           r.phone,
		VehicleType:     r.vehicleType,
		Availability:    r.availability,
		Rating:          r.rating,
		TotalDeliveries: r.totalDeliveries,
		IsActive:        r.isActive,
	}
}

func (r *Rider) Validate() error {
	if r == nil {
		return ErrRiderIsNotConstructed
	}
	return r.guard.Validate(ErrRiderIsNotConstructed)
}

func (r *Rider) ID() kernel.UUID            { return r.id }
func (r *Rider) Name() string               { return r.name }
func (r *Rider) Phone() string              { return r.phone }
func (r *Rider) VehicleType() string        { return r.vehicleType }
func (r *Rider) Availability() Availability { return r.availability }
func (r *Rider) Rating() float64            { return r.rating }
func (r *Rider) TotalDeliveries() int       { return r.totalDeliveries }
func (r *Rider) IsActive() bool             { return r.isActive }

// IsAssignable reports whether the rider can take a new handover.
func (r *Rider) IsAssignable() bool {
	return r.isActive && r.availability == Available
}

// TakeHandover marks the rider BUSY.
func (r *Rider) TakeHandover() error {
	if !r.IsAssignable() {
		return errs.NewValueIsInvalidErrorWithCause(
			"rider",
			fmt.Errorf("rider %s is %s, expected AVAILABLE", r.id, r.availability),
		)
	}
	r.availability = Busy
	return nil
}

// Release makes the rider AVAILABLE again after a cancelled handover.
func (r *Rider) Release() {
	r.availability = Available
}

// CompleteDelivery releases the rider and counts the delivery.
func (r *Rider) CompleteDelivery() {
	r.availability = Available
	r.totalDeliveries++
}

func (r *Rider) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Rider) setName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameIsRequired
	}
	r.name = name
	return nil
}
