// Package jobs provides scheduled background tasks for the marketplace.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the marketplace service.
//
// # Available Jobs
//
// 1. LedgerReconciliationJob - Runs every minute to verify the journal's trial balance folds to zero
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(trialBalanceHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Reconciliation failures are logged, never retried in a tight loop; the next scheduled run picks up
// - A nonzero trial balance is logged at error level as an operational alert
// - Failed job starts will stop any already running jobs
package jobs
