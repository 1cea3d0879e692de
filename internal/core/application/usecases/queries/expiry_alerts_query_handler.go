package queries

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/pkg/clock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExpiryAlertsQueryHandler struct {
	db    *gorm.DB
	clock clock.Clock
}

func NewExpiryAlertsQueryHandler(db *gorm.DB, clk clock.Clock) ExpiryAlertsQueryHandler {
	return ExpiryAlertsQueryHandler{db: db, clock: clk}
}

// Handle returns the alerts soonest-expiring first. Items already past
// their expiry date are included with a negative DaysToExpiry.
func (h ExpiryAlertsQueryHandler) Handle(ctx context.Context, query ExpiryAlertsQuery) ([]ExpiryAlert, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	now := h.clock.Now()
	horizon := now.AddDate(0, 0, query.daysThreshold)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			w.id,
			w.wave_number,
			i.id,
			i.sku,
			i.product_name,
			i.bin_location,
			i.fefo_batch,
			i.expiry_date,
			i.status
		FROM picklist_items i
		JOIN picking_waves w ON w.id = i.wave_id
		WHERE i.expiry_date IS NOT NULL
			AND i.expiry_date <= ?
			AND w.status IN (?, ?, ?)
		ORDER BY i.expiry_date, i.id
	`, horizon, int(wave.StatusGenerated), int(wave.StatusAssigned), int(wave.StatusPicking)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := make([]ExpiryAlert, 0)
	for rows.Next() {
		var (
			waveID, itemID uuid.UUID
			status         int
			alert          ExpiryAlert
		)
		if err = rows.Scan(
			&waveID,
			&alert.WaveNumber,
			&itemID,
			&alert.SKU,
			&alert.ProductName,
			&alert.BinLocation,
			&alert.FEFOBatch,
			&alert.ExpiryDate,
			&status,
		); err != nil {
			return nil, err
		}
		if alert.WaveID, err = kernel.UUIDFromBytes(waveID[:]); err != nil {
			return nil, err
		}
		if alert.ItemID, err = kernel.UUIDFromBytes(itemID[:]); err != nil {
			return nil, err
		}
		alert.ExpiryDate = alert.ExpiryDate.UTC()
		alert.DaysToExpiry = int(alert.ExpiryDate.Sub(now).Hours() / 24)
		alert.ItemStatus = wave.ItemStatus(status).String()
		alerts = append(alerts, alert)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return alerts, nil
}
