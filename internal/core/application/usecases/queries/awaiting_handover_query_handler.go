package queries

import (
	"context"
	"database/sql"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/clock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AwaitingHandoverQueryHandler struct {
	db      *gorm.DB
	clock   clock.Clock
	tracker services.SLATracker
}

func NewAwaitingHandoverQueryHandler(db *gorm.DB, clk clock.Clock) AwaitingHandoverQueryHandler {
	return AwaitingHandoverQueryHandler{db: db, clock: clk, tracker: services.NewSLATracker()}
}

func (h AwaitingHandoverQueryHandler) Handle(ctx context.Context, query AwaitingHandoverQuery) ([]AwaitingHandoverJob, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			j.id,
			j.job_number,
			j.wave_id,
			j.priority,
			j.total_items,
			(SELECT COUNT(*) FROM photo_evidence p WHERE p.job_id = j.id),
			(SELECT COUNT(*) FROM package_seals s WHERE s.job_id = j.id),
			j.completed_at,
			j.sla_deadline
		FROM packing_jobs j
		WHERE j.status = ?
		ORDER BY j.priority DESC, j.sla_deadline, j.id
	`, int(packing.StatusAwaitingHandover)).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := h.clock.Now()
	jobs := make([]AwaitingHandoverJob, 0)
	for rows.Next() {
		var (
			id, waveID  uuid.UUID
			priority    int
			completedAt sql.NullTime
			job         AwaitingHandoverJob
		)
		if err = rows.Scan(
			&id,
			&job.JobNumber,
			&waveID,
			&priority,
			&job.TotalItems,
			&job.PhotoCount,
			&job.SealCount,
			&completedAt,
			&job.SLADeadline,
		); err != nil {
			return nil, err
		}
		if job.JobID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if job.WaveID, err = kernel.UUIDFromBytes(waveID[:]); err != nil {
			return nil, err
		}
		job.Priority = kernel.Priority(priority).String()
		if completedAt.Valid {
			t := completedAt.Time.UTC()
			job.CompletedAt = &t
		}
		job.SLADeadline = job.SLADeadline.UTC()
		job.SLA = h.tracker.Assess(job.SLADeadline, now)
		jobs = append(jobs, job)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return jobs, nil
}
