// Package jobs provides scheduled background tasks for the dispatch engine.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for order dispatch and settlement.
//
// # Available Jobs
//
// 1. DispatchJob - Runs every second to extend offer rounds for orders searching for an agent
// 2. DelayMonitorJob - Runs every minute to flag deliveries that overran their estimate
// 3. PayoutJob - Runs Mondays at midnight UTC to settle the previous week's earnings
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(dispatchHandler, sweepHandler, settleHandler, logger)
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
// - The dispatch job ignores the idle case (no orders searching for an agent)
// - The delay monitor logs the errors the sweep collected; bad rows never stop a sweep
// - The payout job logs settlement failures; a completed week can be retried safely
// - Failed job starts will stop any already running jobs
package jobs
