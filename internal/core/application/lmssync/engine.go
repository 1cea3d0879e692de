// Package lmssync keeps handovers in step with the external Logistics
// Management System. Calls to the LMS are made outside of any database
// transaction; their outcome is recorded afterwards. A failed call never
// fails the business operation that triggered it: it is stored on the
// handover and queued in the retry ledger, which a background sweep drains.
package lmssync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fulfillment/internal/core/domain/model/audit"
	"fulfillment/internal/core/domain/model/handover"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/packing"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/clock"
	"fulfillment/internal/pkg/errs"
)

const (
	DefaultRetryBaseDelay = 30 * time.Second
	DefaultMaxAttempts    = 10
	DefaultBatchSize      = 50

	maxLedgerDelay = time.Hour
)

type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	UoW interface {
		TxManager
		HandoverRepository() ports.HandoverRepository
		PackingJobRepository() ports.PackingJobRepository
		ShipmentRepository() ports.ShipmentRepository
		RetryLedger() ports.RetryLedger
		AuditRepository() ports.AuditRepository
	}

	UoWFactory interface {
		Create() UoW
	}
)

type Config struct {
	// RetryBaseDelay is the wait before the first replay of a queued
	// operation; it doubles with every failed attempt, up to an hour.
	RetryBaseDelay time.Duration
	// MaxAttempts stops the sweep from replaying an operation; the row is
	// kept for operators.
	MaxAttempts int
	BatchSize   int
}

// Outcome reports one sync call.
type Outcome struct {
	HandoverID     kernel.UUID `json:"handoverId"`
	Synced         bool        `json:"synced"`
	Skipped        bool        `json:"skipped,omitempty"`
	TrackingNumber string      `json:"trackingNumber,omitempty"`
	ManifestNumber string      `json:"manifestNumber,omitempty"`
	Attempts       int         `json:"attempts"`
	Error          string      `json:"error,omitempty"`
}

type RetryReport struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Dropped   int `json:"dropped"`
}

type Engine struct {
	uowFactory UoWFactory
	client     ports.LMSClient
	clock      clock.Clock
	logger     *slog.Logger
	cfg        Config
}

func NewEngine(uowFactory UoWFactory, client ports.LMSClient, clk clock.Clock, logger *slog.Logger, cfg Config) *Engine {
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	return &Engine{
		uowFactory: uowFactory,
		client:     client,
		clock:      clk,
		logger:     logger.With("component", "LMSSyncEngine"),
		cfg:        cfg,
	}
}

// CreateShipment opens a shipment for the handover. Tracking and manifest
// numbers are fresh on every call. The returned error is only set when the
// outcome could not be recorded; an LMS failure is reported in Outcome.
func (e *Engine) CreateShipment(ctx context.Context, handoverID kernel.UUID) (Outcome, error) {
	h, job, err := e.load(ctx, handoverID)
	if err != nil {
		return Outcome{}, err
	}

	now := e.clock.Now()
	millis := now.UnixMilli()
	req := ports.ShipmentRequest{
		HandoverID:          h.ID().String(),
		HandoverNumber:      h.Number(),
		JobNumber:           job.Number(),
		RiderID:             h.RiderID().String(),
		TrackingNumber:      fmt.Sprintf("TRK-%s-%d", h.ID(), millis),
		ManifestNumber:      fmt.Sprintf("MF-%s-%d", h.ID(), millis),
		TotalItems:          job.TotalItems(),
		SpecialInstructions: h.SpecialInstructions(),
		RequestedAt:         now,
	}

	receipt, callErr := e.client.CreateShipment(ctx, req)
	return e.recordCreate(ctx, handoverID, req, receipt, callErr)
}

func (e *Engine) recordCreate(
	ctx context.Context,
	handoverID kernel.UUID,
	req ports.ShipmentRequest,
	receipt ports.ShipmentReceipt,
	callErr error,
) (Outcome, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return Outcome{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	h, err := uow.HandoverRepository().Get(ctx, handoverID)
	if err != nil {
		return Outcome{}, err
	}
	now := e.clock.Now()
	ledger := uow.RetryLedger()

	var event audit.Event
	if callErr == nil {
		tracking := receipt.TrackingNumber
		if tracking == "" {
			tracking = req.TrackingNumber
		}
		retries := 0
		if queued, getErr := ledger.Get(ctx, handoverID, handover.OperationCreateShipment); getErr == nil {
			retries = queued.Attempts
		} else if !errors.Is(getErr, errs.ErrObjectNotFound) {
			return Outcome{}, getErr
		}

		h.MarkSynced(tracking, req.ManifestNumber, now)
		if err = uow.ShipmentRepository().Add(ctx, handover.Shipment{
			ID:              kernel.NewUUID(),
			HandoverID:      handoverID,
			LMSReference:    receipt.LMSReference,
			TrackingNumber:  tracking,
			Status:          receipt.Status,
			ResponsePayload: receipt.Payload,
			RetryCount:      retries,
			CreatedAt:       now,
		}); err != nil {
			return Outcome{}, err
		}
		if err = ledger.Delete(ctx, handoverID, handover.OperationCreateShipment); err != nil {
			return Outcome{}, err
		}
		event = audit.NewEvent(audit.StreamPackingJob, h.JobID(), audit.LMSSyncSucceeded, nil, map[string]any{
			"handoverId":     handoverID.String(),
			"trackingNumber": tracking,
			"manifestNumber": req.ManifestNumber,
			"lmsReference":   receipt.LMSReference,
		}, now)
	} else {
		h.MarkSyncFailed(callErr.Error())
		if err = e.enqueue(ctx, ledger, handoverID, handover.OperationCreateShipment, "", callErr, now); err != nil {
			return Outcome{}, err
		}
		event = audit.NewEvent(audit.StreamPackingJob, h.JobID(), audit.LMSSyncFailed, nil, map[string]any{
			"handoverId": handoverID.String(),
			"operation":  string(handover.OperationCreateShipment),
			"error":      callErr.Error(),
			"attempts":   h.SyncAttempts(),
		}, now)
	}

	if err = uow.HandoverRepository().Update(ctx, h); err != nil {
		return Outcome{}, err
	}
	if err = uow.AuditRepository().Append(ctx, event); err != nil {
		return Outcome{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		HandoverID:     handoverID,
		Synced:         callErr == nil,
		TrackingNumber: h.TrackingNumber(),
		ManifestNumber: h.ManifestNumber(),
		Attempts:       h.SyncAttempts(),
	}
	if callErr != nil {
		out.Error = callErr.Error()
		e.logger.WarnContext(ctx, "Shipment creation failed",
			"handoverId", handoverID.String(), "attempts", h.SyncAttempts(), "error", callErr)
	} else {
		e.logger.InfoContext(ctx, "Shipment created",
			"handoverId", handoverID.String(), "trackingNumber", out.TrackingNumber)
	}
	return out, nil
}

// UpdateShipmentStatus pushes a handover status to the LMS. Handovers
// without a tracking number have no shipment yet and are skipped.
func (e *Engine) UpdateShipmentStatus(ctx context.Context, handoverID kernel.UUID, status handover.Status, reason string) (Outcome, error) {
	h, _, err := e.load(ctx, handoverID)
	if err != nil {
		return Outcome{}, err
	}
	if h.TrackingNumber() == "" {
		return Outcome{HandoverID: handoverID, Skipped: true}, nil
	}

	callErr := e.client.UpdateShipmentStatus(ctx, h.TrackingNumber(), ports.ShipmentStatusUpdate{
		Status:    status.String(),
		Reason:    reason,
		UpdatedAt: e.clock.Now(),
	})

	uow := e.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return Outcome{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := e.clock.Now()
	ledger := uow.RetryLedger()
	if callErr == nil {
		err = ledger.Delete(ctx, handoverID, handover.OperationUpdateStatus)
	} else {
		err = e.enqueue(ctx, ledger, handoverID, handover.OperationUpdateStatus, status.String(), callErr, now)
		if err == nil {
			err = uow.AuditRepository().Append(ctx, audit.NewEvent(
				audit.StreamPackingJob, h.JobID(), audit.LMSSyncFailed, nil, map[string]any{
					"handoverId": handoverID.String(),
					"operation":  string(handover.OperationUpdateStatus),
					"status":     status.String(),
					"error":      callErr.Error(),
				}, now))
		}
	}
	if err != nil {
		return Outcome{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return Outcome{}, err
	}

	out := Outcome{
		HandoverID:     handoverID,
		Synced:         callErr == nil,
		TrackingNumber: h.TrackingNumber(),
		ManifestNumber: h.ManifestNumber(),
		Attempts:       h.SyncAttempts(),
	}
	if callErr != nil {
		out.Error = callErr.Error()
		e.logger.WarnContext(ctx, "Shipment status update failed",
			"handoverId", handoverID.String(), "status", status.String(), "error", callErr)
	}
	return out, nil
}

// RetryDue replays queued operations whose next attempt is due.
func (e *Engine) RetryDue(ctx context.Context) (RetryReport, error) {
	var report RetryReport

	entries, err := e.dueEntries(ctx)
	if err != nil {
		return report, err
	}

	for _, entry := range entries {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		outcome, replayErr := e.replay(ctx, entry)
		switch {
		case errors.Is(replayErr, errDropped):
			report.Dropped++
			continue
		case replayErr != nil:
			e.logger.ErrorContext(ctx, "Failed to replay LMS operation",
				"handoverId", entry.HandoverID.String(), "operation", string(entry.Operation), "error", replayErr)
			report.Attempted++
			report.Failed++
			continue
		}

		report.Attempted++
		if outcome.Synced {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	return report, nil
}

// Health probes the LMS.
func (e *Engine) Health(ctx context.Context) error {
	return e.client.Health(ctx)
}

var errDropped = errors.New("retry entry dropped")

func (e *Engine) replay(ctx context.Context, entry handover.RetryEntry) (Outcome, error) {
	switch entry.Operation {
	case handover.OperationCreateShipment:
		stale, err := e.prepareCreateRetry(ctx, entry)
		if err != nil {
			return Outcome{}, err
		}
		if stale {
			return Outcome{}, errDropped
		}
		return e.CreateShipment(ctx, entry.HandoverID)

	case handover.OperationUpdateStatus:
		status, err := handover.ParseStatus(entry.TargetStatus)
		if err != nil {
			if dropErr := e.drop(ctx, entry); dropErr != nil {
				return Outcome{}, dropErr
			}
			return Outcome{}, errDropped
		}
		return e.UpdateShipmentStatus(ctx, entry.HandoverID, status, "")
	}

	if err := e.drop(ctx, entry); err != nil {
		return Outcome{}, err
	}
	return Outcome{}, errDropped
}

// prepareCreateRetry drops entries that no longer need a shipment and flags
// the rest as RETRY.
func (e *Engine) prepareCreateRetry(ctx context.Context, entry handover.RetryEntry) (stale bool, err error) {
	uow := e.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	h, err := uow.HandoverRepository().Get(ctx, entry.HandoverID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		stale = true
	} else if err != nil {
		return false, err
	} else {
		stale = h.SyncStatus() == handover.SyncSynced || h.Status() == handover.StatusCancelled
	}

	if stale {
		if err = uow.RetryLedger().Delete(ctx, entry.HandoverID, entry.Operation); err != nil {
			return false, err
		}
	} else {
		h.MarkSyncRetrying()
		if err = uow.HandoverRepository().Update(ctx, h); err != nil {
			return false, err
		}
	}
	return stale, uow.Commit(ctx)
}

func (e *Engine) drop(ctx context.Context, entry handover.RetryEntry) error {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()
	if err := uow.RetryLedger().Delete(ctx, entry.HandoverID, entry.Operation); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func (e *Engine) dueEntries(ctx context.Context) ([]handover.RetryEntry, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()
	return uow.RetryLedger().Due(ctx, e.clock.Now(), e.cfg.MaxAttempts, e.cfg.BatchSize)
}

func (e *Engine) load(ctx context.Context, handoverID kernel.UUID) (*handover.Handover, *packing.Job, error) {
	uow := e.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	h, err := uow.HandoverRepository().Get(ctx, handoverID)
	if err != nil {
		return nil, nil, err
	}
	job, err := uow.PackingJobRepository().Get(ctx, h.JobID())
	if err != nil {
		return nil, nil, err
	}
	return h, job, nil
}

func (e *Engine) enqueue(
	ctx context.Context,
	ledger ports.RetryLedger,
	handoverID kernel.UUID,
	op handover.SyncOperation,
	targetStatus string,
	cause error,
	now time.Time,
) error {
	entry, err := ledger.Get(ctx, handoverID, op)
	if errors.Is(err, errs.ErrObjectNotFound) {
		entry = handover.RetryEntry{
			ID:         kernel.NewUUID(),
			HandoverID: handoverID,
			Operation:  op,
			CreatedAt:  now,
		}
	} else if err != nil {
		return err
	}

	entry.Attempts++
	entry.TargetStatus = targetStatus
	entry.LastError = cause.Error()
	entry.NextAttemptAt = now.Add(LedgerDelay(e.cfg.RetryBaseDelay, entry.Attempts))
	entry.UpdatedAt = now
	return ledger.Save(ctx, entry)
}

// LedgerDelay is base * 2^(attempts-1), capped at one hour.
func LedgerDelay(base time.Duration, attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	d := base
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= maxLedgerDelay {
			return maxLedgerDelay
		}
	}
	return min(d, maxLedgerDelay)
}
