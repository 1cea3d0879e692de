package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/guard"
)

var ErrWaveSLAStatusQueryIsNotConstructed = errors.New(
	"WaveSLAStatusQuery must be created via NewWaveSLAStatusQuery constructor",
)

// WaveSLAStatusQuery reports deadline health for one wave, or for every wave
// still in progress when no wave is given.
type WaveSLAStatusQuery struct {
	waveID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewWaveSLAStatusQuery(waveID *kernel.UUID) (WaveSLAStatusQuery, error) {
	if waveID != nil {
		if err := waveID.Validate(); err != nil {
			return WaveSLAStatusQuery{}, err
		}
	}
	return WaveSLAStatusQuery{waveID: waveID, guard: guard.NewConstructorGuard()}, nil
}

func (q WaveSLAStatusQuery) Validate() error {
	return q.guard.Validate(ErrWaveSLAStatusQueryIsNotConstructed)
}

type WaveSLAView struct {
	WaveID         kernel.UUID            `json:"waveId"`
	WaveNumber     string                 `json:"waveNumber"`
	Status         string                 `json:"status"`
	Priority       string                 `json:"priority"`
	SLADeadline    time.Time              `json:"slaDeadline"`
	RemainingHours float64                `json:"remainingHours"`
	SLAStatus      services.WaveSLABucket `json:"slaStatus"`
}

type WaveSLAStatusResponse struct {
	Waves   []WaveSLAView       `json:"waves"`
	Summary services.SLASummary `json:"summary"`
}
