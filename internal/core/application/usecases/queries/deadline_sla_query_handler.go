package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/clock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PackingSLAQueryHandler struct {
	deadlines deadlineReader
}

func NewPackingSLAQueryHandler(db *gorm.DB, clk clock.Clock) PackingSLAQueryHandler {
	return PackingSLAQueryHandler{deadlines: newDeadlineReader(db, clk)}
}

func (h PackingSLAQueryHandler) Handle(ctx context.Context, query PackingSLAQuery) (DeadlineSLAResponse, error) {
	if err := query.Validate(); err != nil {
		return DeadlineSLAResponse{}, err
	}
	return h.deadlines.read(ctx, `
		SELECT id, job_number, status, packer_id, sla_deadline
		FROM packing_jobs
		WHERE status IN (?, ?, ?)
		ORDER BY sla_deadline, id
	`, func(status int) string { return packing.Status(status).String() },
		int(packing.StatusPending), int(packing.StatusPacking), int(packing.StatusVerifying))
}

type HandoverSLAQueryHandler struct {
	deadlines deadlineReader
}

func NewHandoverSLAQueryHandler(db *gorm.DB, clk clock.Clock) HandoverSLAQueryHandler {
	return HandoverSLAQueryHandler{deadlines: newDeadlineReader(db, clk)}
}

func (h HandoverSLAQueryHandler) Handle(ctx context.Context, query HandoverSLAQuery) (DeadlineSLAResponse, error) {
	if err := query.Validate(); err != nil {
		return DeadlineSLAResponse{}, err
	}
	return h.deadlines.read(ctx, `
		SELECT id, handover_number, status, rider_id, sla_deadline
		FROM handovers
		WHERE status IN (?, ?, ?)
		ORDER BY sla_deadline, id
	`, func(status int) string { return handover.Status(status).String() },
		int(handover.StatusAssigned), int(handover.StatusConfirmed), int(handover.StatusInTransit))
}

// deadlineReader runs a query returning (id, number, status, assignee,
// deadline) rows and assesses each deadline.
type deadlineReader struct {
	db      *gorm.DB
	clock   clock.Clock
	tracker services.SLATracker
}

func newDeadlineReader(db *gorm.DB, clk clock.Clock) deadlineReader {
	return deadlineReader{db: db, clock: clk, tracker: services.NewSLATracker()}
}

func (r deadlineReader) read(ctx context.Context, sql string, statusName func(int) string, args ...any) (DeadlineSLAResponse, error) {
	rows, err := r.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return DeadlineSLAResponse{}, err
	}
	defer rows.Close()

	now := r.clock.Now()
	resp := DeadlineSLAResponse{Items: make([]DeadlineView, 0)}
	deadlines := make([]time.Time, 0)
	for rows.Next() {
		var (
			id         uuid.UUID
			assigneeID *uuid.UUID
			status     int
			view       DeadlineView
		)
		if err = rows.Scan(&id, &view.Number, &status, &assigneeID, &view.SLADeadline); err != nil {
			return DeadlineSLAResponse{}, err
		}
		if view.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return DeadlineSLAResponse{}, err
		}
		if view.AssigneeID, err = optionalUUID(assigneeID); err != nil {
			return DeadlineSLAResponse{}, err
		}
		view.Status = statusName(status)
		view.SLADeadline = view.SLADeadline.UTC()

		assessment := r.tracker.Assess(view.SLADeadline, now)
		view.RemainingMinutes = assessment.RemainingMinutes
		view.SLAStatus = assessment.Bucket
		view.Critical = assessment.Critical

		resp.Items = append(resp.Items, view)
		deadlines = append(deadlines, view.SLADeadline)
	}
	if err = rows.Err(); err != nil {
		return DeadlineSLAResponse{}, err
	}

	resp.Summary = r.tracker.Summarize(deadlines, now)
	return resp, nil
}
