package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/clock"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxUnsyncedListed = 50

// HealthChecker probes the logistics system.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type LMSSyncStatusQueryHandler struct {
	db     *gorm.DB
	health HealthChecker
	clock  clock.Clock
}

func NewLMSSyncStatusQueryHandler(db *gorm.DB, health HealthChecker, clk clock.Clock) LMSSyncStatusQueryHandler {
	return LMSSyncStatusQueryHandler{db: db, health: health, clock: clk}
}

func (h LMSSyncStatusQueryHandler) Handle(ctx context.Context, query LMSSyncStatusQuery) (LMSSyncStatusResponse, error) {
	if err := query.Validate(); err != nil {
		return LMSSyncStatusResponse{}, err
	}

	db := h.db.WithContext(ctx)
	resp := LMSSyncStatusResponse{
		Counts:    make(map[string]int),
		Unsynced:  make([]UnsyncedHandover, 0),
		CheckedAt: h.clock.Now(),
	}
	for _, status := range []handover.SyncStatus{handover.SyncPending, handover.SyncSynced, handover.SyncFailed, handover.SyncRetry} {
		resp.Counts[status.String()] = 0
	}

	counts, err := db.Raw(`SELECT sync_status, COUNT(*) FROM handovers GROUP BY sync_status`).Rows()
	if err != nil {
		return LMSSyncStatusResponse{}, err
	}
	defer counts.Close()
	for counts.Next() {
		var status, n int
		if err = counts.Scan(&status, &n); err != nil {
			return LMSSyncStatusResponse{}, err
		}
		resp.Counts[handover.SyncStatus(status).String()] = n
	}
	if err = counts.Err(); err != nil {
		return LMSSyncStatusResponse{}, err
	}

	if err = db.Raw(`SELECT COUNT(*) FROM lms_retry_queue`).Scan(&resp.QueuedRetries).Error; err != nil {
		return LMSSyncStatusResponse{}, err
	}

	rows, err := db.Raw(`
		SELECT id, handover_number, sync_status, sync_attempts, last_sync_error, assigned_at
		FROM handovers
		WHERE sync_status IN (?, ?)
		ORDER BY assigned_at DESC, id
		LIMIT ?
	`, int(handover.SyncFailed), int(handover.SyncRetry), maxUnsyncedListed).Rows()
	if err != nil {
		return LMSSyncStatusResponse{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id         uuid.UUID
			syncStatus int
			assignedAt time.Time
			item       UnsyncedHandover
		)
		if err = rows.Scan(&id, &item.HandoverNumber, &syncStatus, &item.SyncAttempts, &item.LastSyncError, &assignedAt); err != nil {
			return LMSSyncStatusResponse{}, err
		}
		if item.HandoverID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return LMSSyncStatusResponse{}, err
		}
		item.SyncStatus = handover.SyncStatus(syncStatus).String()
		item.AssignedAt = assignedAt.UTC()
		resp.Unsynced = append(resp.Unsynced, item)
	}
	if err = rows.Err(); err != nil {
		return LMSSyncStatusResponse{}, err
	}

	resp.LMS = LMSHealth{Healthy: true}
	if healthErr := h.health.Health(ctx); healthErr != nil {
		resp.LMS = LMSHealth{Healthy: false, Error: healthErr.Error()}
	}
	return resp, nil
}
