// Package jobs provides scheduled background tasks for the fulfillment service.
//
// Jobs run on github.com/robfig/cron/v3 with a seconds field.
//
// # Available Jobs
//
//  1. LMSRetryJob - drains the LMS retry ledger on LMS_RETRY_SCHEDULE
//     (every 30 seconds by default)
//
// # Usage
//
//	jobManager := jobs.NewJobManager(jobs.NewLMSRetryJob(engine, lease, schedule, logger))
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Coordination
//
// A sweep only runs while it holds the "lms-retry" lease. With Redis the
// lease spans replicas; without it the lease is process-local. Overlapping
// ticks on one instance are skipped.
package jobs
