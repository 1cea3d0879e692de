package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

var ErrListWavesQueryIsNotConstructed = errors.New(
	"ListWavesQuery must be created via NewListWavesQuery constructor",
)

// ListWavesQuery pages through waves, optionally filtered by status and
// priority. Newest waves come first.
type ListWavesQuery struct {
	status   *wave.Status
	priority *kernel.Priority
	page     int
	limit    int

	guard guard.ConstructorGuard
}

// NewListWavesQuery parses the filters. Empty filters match everything; a zero
// page or limit falls back to the first page of DefaultPageLimit waves.
func NewListWavesQuery(status, priority string, page, limit int) (ListWavesQuery, error) {
	q := ListWavesQuery{page: page, limit: limit, guard: guard.NewConstructorGuard()}

	if status != "" {
		s, err := wave.ParseStatus(status)
		if err != nil {
			return ListWavesQuery{}, err
		}
		q.status = &s
	}
	if priority != "" {
		p, err := kernel.ParsePriority(priority)
		if err != nil {
			return ListWavesQuery{}, err
		}
		q.priority = &p
	}

	if q.page == 0 {
		q.page = 1
	}
	if q.limit == 0 {
		q.limit = DefaultPageLimit
	}
	if q.page < 1 {
		return ListWavesQuery{}, errs.NewValueIsOutOfRangeError("page", page, 1, "unbounded")
	}
	if q.limit < 1 || q.limit > MaxPageLimit {
		return ListWavesQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxPageLimit)
	}
	return q, nil
}

func (q ListWavesQuery) Validate() error {
	return q.guard.Validate(ErrListWavesQueryIsNotConstructed)
}

type WaveSummary struct {
	ID          kernel.UUID  `json:"id"`
	WaveNumber  string       `json:"waveNumber"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	PickerID    *kernel.UUID `json:"pickerId,omitempty"`
	TotalOrders int          `json:"totalOrders"`
	TotalItems  int          `json:"totalItems"`
	PickedItems int          `json:"pickedItems"`
	SLADeadline time.Time    `json:"slaDeadline"`
	CreatedAt   time.Time    `json:"createdAt"`
}

type ListWavesResponse struct {
	Waves      []WaveSummary `json:"waves"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int64         `json:"total"`
	TotalPages int64         `json:"totalPages"`
}
