package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"
)

var ErrLMSSyncStatusQueryIsNotConstructed = errors.New(
	"LMSSyncStatusQuery must be created via NewLMSSyncStatusQuery constructor",
)

// LMSSyncStatusQuery summarises how handovers are synced with the logistics
// system and whether it is reachable.
type LMSSyncStatusQuery struct {
	guard guard.ConstructorGuard
}

func NewLMSSyncStatusQuery() LMSSyncStatusQuery {
	return LMSSyncStatusQuery{guard: guard.NewConstructorGuard()}
}

func (q LMSSyncStatusQuery) Validate() error {
	return q.guard.Validate(ErrLMSSyncStatusQueryIsNotConstructed)
}

type UnsyncedHandover struct {
	HandoverID     kernel.UUID `json:"handoverId"`
	HandoverNumber string      `json:"handoverNumber"`
	SyncStatus     string      `json:"syncStatus"`
	SyncAttempts   int         `json:"syncAttempts"`
	LastSyncError  string      `json:"lastSyncError,omitempty"`
	AssignedAt     time.Time   `json:"assignedAt"`
}

type LMSHealth struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type LMSSyncStatusResponse struct {
	Counts        map[string]int     `json:"counts"`
	QueuedRetries int                `json:"queuedRetries"`
	Unsynced      []UnsyncedHandover `json:"unsynced"`
	LMS           LMSHealth          `json:"lms"`
	CheckedAt     time.Time          `json:"checkedAt"`
}
