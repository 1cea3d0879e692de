package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/wave"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WaveSLAStatusQueryHandler struct {
	db      *gorm.DB
	clock   clock.Clock
	tracker services.SLATracker
}

func NewWaveSLAStatusQueryHandler(db *gorm.DB, clk clock.Clock) WaveSLAStatusQueryHandler {
	return WaveSLAStatusQueryHandler{db: db, clock: clk, tracker: services.NewSLATracker()}
}

func (h WaveSLAStatusQueryHandler) Handle(ctx context.Context, query WaveSLAStatusQuery) (WaveSLAStatusResponse, error) {
	if err := query.Validate(); err != nil {
		return WaveSLAStatusResponse{}, err
	}

	sql := `
		SELECT id, wave_number, status, priority, sla_deadline
		FROM picking_waves
		WHERE status IN (?, ?, ?)
		ORDER BY sla_deadline, id
	`
	args := []any{int(wave.StatusGenerated), int(wave.StatusAssigned), int(wave.StatusPicking)}
	if query.waveID != nil {
		sql = `
			SELECT id, wave_number, status, priority, sla_deadline
			FROM picking_waves
			WHERE id = ?
		`
		args = []any{query.waveID.Bytes()}
	}

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return WaveSLAStatusResponse{}, err
	}
	defer rows.Close()

	now := h.clock.Now()
	resp := WaveSLAStatusResponse{Waves: make([]WaveSLAView, 0)}
	deadlines := make([]time.Time, 0)
	for rows.Next() {
		var (
			id               uuid.UUID
			status, priority int
			view             WaveSLAView
		)
		if err = rows.Scan(&id, &view.WaveNumber, &status, &priority, &view.SLADeadline); err != nil {
			return WaveSLAStatusResponse{}, err
		}
		if view.WaveID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return WaveSLAStatusResponse{}, err
		}
		view.SLADeadline = view.SLADeadline.UTC()
		view.Status = wave.Status(status).String()
		view.Priority = kernel.Priority(priority).String()

		assessment := h.tracker.AssessWave(view.SLADeadline, now)
		view.RemainingHours = decimal.NewFromFloat(assessment.RemainingHours).Round(2).InexactFloat64()
		view.SLAStatus = assessment.Bucket

		resp.Waves = append(resp.Waves, view)
		deadlines = append(deadlines, view.SLADeadline)
	}
	if err = rows.Err(); err != nil {
		return WaveSLAStatusResponse{}, err
	}

	if query.waveID != nil && len(resp.Waves) == 0 {
		return WaveSLAStatusResponse{}, errs.NewObjectNotFoundError("wave", query.waveID.String())
	}
	resp.Summary = h.tracker.SummarizeWaves(deadlines, now)
	return resp, nil
}
