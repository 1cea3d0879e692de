package jobs

import (
	"context"
	"log/slog"
	"time"

	"fulfillment/internal/core/application/lmssync"
	"fulfillment/internal/core/ports"

	"github.com/robfig/cron/v3"
)

const (
	DefaultLMSRetrySchedule = "*/30 * * * * *"

	lmsRetryLeaseKey = "lms-retry"
	sweepTimeout     = 2 * time.Minute
)

// RetryDrainer replays due LMS operations.
type RetryDrainer interface {
	RetryDue(ctx context.Context) (lmssync.RetryReport, error)
}

// LMSRetryJob periodically replays failed LMS calls from the retry ledger.
type LMSRetryJob struct {
	drainer  RetryDrainer
	lease    ports.Lease
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewLMSRetryJob(drainer RetryDrainer, lease ports.Lease, schedule string, logger *slog.Logger) *LMSRetryJob {
	if schedule == "" {
		schedule = DefaultLMSRetrySchedule
	}
	return &LMSRetryJob{
		drainer:  drainer,
		lease:    lease,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "lms_retry_job"),
	}
}

func (j *LMSRetryJob) Name() string {
	return "lms retry"
}

// Start schedules the sweep.
func (j *LMSRetryJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		j.Sweep(ctx)
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "LMS retry job started", "schedule", j.schedule)
	return nil
}

// Sweep runs one drain of the ledger if the lease is free. It reports
// whether the lease was obtained.
func (j *LMSRetryJob) Sweep(ctx context.Context) bool {
	acquired, err := j.lease.TryAcquire(ctx, lmsRetryLeaseKey)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to acquire LMS retry lease", "error", err)
		return false
	}
	if !acquired {
		j.logger.DebugContext(ctx, "LMS retry lease held elsewhere, skipping")
		return false
	}
	defer func() {
		// Release must outlive a sweep that ran into its deadline.
		if err := j.lease.Release(context.WithoutCancel(ctx), lmsRetryLeaseKey); err != nil {
			j.logger.WarnContext(ctx, "Failed to release LMS retry lease", "error", err)
		}
	}()

	report, err := j.drainer.RetryDue(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "LMS retry sweep failed", "error", err,
			"attempted", report.Attempted, "succeeded", report.Succeeded)
		return true
	}
	if report.Attempted > 0 || report.Dropped > 0 {
		j.logger.InfoContext(ctx, "LMS retry sweep finished",
			"attempted", report.Attempted,
			"succeeded", report.Succeeded,
			"failed", report.Failed,
			"dropped", report.Dropped)
	}
	return true
}

// Stop waits for a running sweep to finish.
func (j *LMSRetryJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "LMS retry job stopped")
}
