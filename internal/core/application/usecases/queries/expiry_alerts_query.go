package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const DefaultExpiryDaysThreshold = 7

var ErrExpiryAlertsQueryIsNotConstructed = errors.New(
	"ExpiryAlertsQuery must be created via NewExpiryAlertsQuery constructor",
)

// ExpiryAlertsQuery lists FEFO-tagged lines of unfinished waves whose batch
// expires within daysThreshold days.
type ExpiryAlertsQuery struct {
	daysThreshold int

	guard guard.ConstructorGuard
}

func NewExpiryAlertsQuery(daysThreshold int) (ExpiryAlertsQuery, error) {
	if daysThreshold == 0 {
		daysThreshold = DefaultExpiryDaysThreshold
	}
	if daysThreshold < 0 || daysThreshold > 365 {
		return ExpiryAlertsQuery{}, errs.NewValueIsOutOfRangeError("daysThreshold", daysThreshold, 1, 365)
	}
	return ExpiryAlertsQuery{daysThreshold: daysThreshold, guard: guard.NewConstructorGuard()}, nil
}

func (q ExpiryAlertsQuery) Validate() error {
	return q.guard.Validate(ErrExpiryAlertsQueryIsNotConstructed)
}

func (q ExpiryAlertsQuery) DaysThreshold() int { return q.daysThreshold }

type ExpiryAlert struct {
	WaveID       kernel.UUID `json:"waveId"`
	WaveNumber   string      `json:"waveNumber"`
	ItemID       kernel.UUID `json:"itemId"`
	SKU          string      `json:"sku"`
	ProductName  string      `json:"productName"`
	BinLocation  string      `json:"binLocation"`
	FEFOBatch    string      `json:"fefoBatch"`
	ExpiryDate   time.Time   `json:"expiryDate"`
	DaysToExpiry int         `json:"daysToExpiry"`
	ItemStatus   string      `json:"itemStatus"`
}
