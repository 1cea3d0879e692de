package queries

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/rider"
	"fulfillment/internal/pkg/guard"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAvailableRidersQueryIsNotConstructed = errors.New(
	"AvailableRidersQuery must be created via NewAvailableRidersQuery constructor",
)

type AvailableRidersQuery struct {
	guard guard.ConstructorGuard
}

func NewAvailableRidersQuery() AvailableRidersQuery {
	return AvailableRidersQuery{guard: guard.NewConstructorGuard()}
}

func (q AvailableRidersQuery) Validate() error {
	return q.guard.Validate(ErrAvailableRidersQueryIsNotConstructed)
}

type AvailableRider struct {
	ID              kernel.UUID `json:"id"`
	Name            string      `json:"name"`
	Phone           string      `json:"phone"`
	VehicleType     string      `json:"vehicleType"`
	Rating          float64     `json:"rating"`
	TotalDeliveries int         `json:"totalDeliveries"`
}

type AvailableRidersQueryHandler struct {
	db *gorm.DB
}

func NewAvailableRidersQueryHandler(db *gorm.DB) AvailableRidersQueryHandler {
	return AvailableRidersQueryHandler{db: db}
}

// Handle lists active AVAILABLE riders, best rated first.
func (h AvailableRidersQueryHandler) Handle(ctx context.Context, query AvailableRidersQuery) ([]AvailableRider, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT id, name, phone, vehicle_type, rating, total_deliveries
		FROM riders
		WHERE is_active AND availability = ?
		ORDER BY rating DESC, total_deliveries DESC, name
	`, int(rider.Available)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	riders := make([]AvailableRider, 0)
	for rows.Next() {
		var r AvailableRider
		var id uuid.UUID

		if err = rows.Scan(&id, &r.Name, &r.Phone, &r.VehicleType, &r.Rating, &r.TotalDeliveries); err != nil {
			return nil, err
		}
		riderID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		r.ID = riderID
		riders = append(riders, r)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return riders, nil
}
