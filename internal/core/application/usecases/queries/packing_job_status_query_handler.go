package queries

import (
	"context"
	"database/sql"
	"errors"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PackingJobStatusQueryHandler struct {
	db      *gorm.DB
	clock   clock.Clock
	tracker services.SLATracker
}

func NewPackingJobStatusQueryHandler(db *gorm.DB, clk clock.Clock) PackingJobStatusQueryHandler {
	return PackingJobStatusQueryHandler{db: db, clock: clk, tracker: services.NewSLATracker()}
}

func (h PackingJobStatusQueryHandler) Handle(ctx context.Context, query PackingJobStatusQuery) (PackingJobStatusResponse, error) {
	if err := query.Validate(); err != nil {
		return PackingJobStatusResponse{}, err
	}

	db := h.db.WithContext(ctx)
	resp, err := h.header(db, query.jobID)
	if err != nil {
		return PackingJobStatusResponse{}, err
	}
	resp.SLA = h.tracker.Assess(resp.SLADeadline, h.clock.Now())

	if resp.Items, err = h.items(db, query.jobID); err != nil {
		return PackingJobStatusResponse{}, err
	}
	if resp.Events, err = h.events(db, query.jobID); err != nil {
		return PackingJobStatusResponse{}, err
	}
	return resp, nil
}

func (h PackingJobStatusQueryHandler) header(db *gorm.DB, jobID kernel.UUID) (PackingJobStatusResponse, error) {
	var (
		resp             PackingJobStatusResponse
		id, waveID       uuid.UUID
		packerID         *uuid.UUID
		status, priority int
		completedAt      sql.NullTime
	)
	row := db.Raw(`
		SELECT
			j.id,
			j.job_number,
			j.wave_id,
			j.packer_id,
			j.status,
			j.priority,
			j.workflow_type,
			j.total_items,
			j.packed_items,
			j.verified_items,
			j.estimated_duration,
			j.sla_deadline,
			j.completed_at,
			(SELECT COUNT(*) FROM photo_evidence p WHERE p.job_id = j.id),
			(SELECT COUNT(*) FROM package_seals s WHERE s.job_id = j.id)
		FROM packing_jobs j
		WHERE j.id = ?
	`, jobID.Bytes()).Row()
	err := row.Scan(
		&id,
		&resp.JobNumber,
		&waveID,
		&packerID,
		&status,
		&priority,
		&resp.WorkflowType,
		&resp.TotalItems,
		&resp.PackedItems,
		&resp.VerifiedItems,
		&resp.EstimatedDuration,
		&resp.SLADeadline,
		&completedAt,
		&resp.PhotoCount,
		&resp.SealCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PackingJobStatusResponse{}, errs.NewObjectNotFoundError("packingJob", jobID.String())
		}
		return PackingJobStatusResponse{}, err
	}

	if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return PackingJobStatusResponse{}, err
	}
	if resp.WaveID, err = kernel.UUIDFromBytes(waveID[:]); err != nil {
		return PackingJobStatusResponse{}, err
	}
	if resp.PackerID, err = optionalUUID(packerID); err != nil {
		return PackingJobStatusResponse{}, err
	}
	resp.Status = packing.Status(status).String()
	resp.Priority = kernel.Priority(priority).String()
	resp.SLADeadline = resp.SLADeadline.UTC()
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		resp.CompletedAt = &t
	}
	return resp, nil
}

func (h PackingJobStatusQueryHandler) items(db *gorm.DB, jobID kernel.UUID) ([]PackingJobItemView, error) {
	rows, err := db.Raw(`
		SELECT id, order_id, sku, product_name, quantity, picked_quantity, packed_quantity, verified_quantity, status
		FROM packing_items
		WHERE job_id = ?
		ORDER BY sku, id
	`, jobID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]PackingJobItemView, 0)
	for rows.Next() {
		var (
			id, orderID uuid.UUID
			status      int
			item        PackingJobItemView
		)
		if err = rows.Scan(
			&id,
			&orderID,
			&item.SKU,
			&item.ProductName,
			&item.Quantity,
			&item.PickedQuantity,
			&item.PackedQuantity,
			&item.VerifiedQuantity,
			&status,
		); err != nil {
			return nil, err
		}
		if item.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if item.OrderID, err = kernel.UUIDFromBytes(orderID[:]); err != nil {
			return nil, err
		}
		item.Status = packing.ItemStatus(status).String()
		items = append(items, item)
	}
	return items, rows.Err()
}

func (h PackingJobStatusQueryHandler) events(db *gorm.DB, jobID kernel.UUID) ([]PackingEventView, error) {
	rows, err := db.Raw(`
		SELECT event_type, data, user_id, occurred_at
		FROM audit_events
		WHERE stream_type = ? AND stream_id = ?
		ORDER BY occurred_at, id
	`, string(audit.StreamPackingJob), jobID.Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]PackingEventView, 0)
	for rows.Next() {
		var (
			event  PackingEventView
			data   []byte
			userID *uuid.UUID
		)
		if err = rows.Scan(&event.Type, &data, &userID, &event.OccurredAt); err != nil {
			return nil, err
		}
		if event.UserID, err = optionalUUID(userID); err != nil {
			return nil, err
		}
		event.Data = data
		event.OccurredAt = event.OccurredAt.UTC()
		events = append(events, event)
	}
	return events, rows.Err()
}
