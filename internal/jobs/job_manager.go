package jobs

import (
	"fmt"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	dispatchJob     *DispatchJob
	delayMonitorJob *DelayMonitorJob
	payoutJob       *PayoutJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	dispatchHandler commands.DispatchOrdersCommandHandler,
	sweepHandler commands.SweepDelayedOrdersCommandHandler,
	settleHandler commands.SettlePayoutsCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		dispatchJob:     NewDispatchJob(dispatchHandler, logger),
		delayMonitorJob: NewDelayMonitorJob(sweepHandler, logger),
		payoutJob:       NewPayoutJob(settleHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.dispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start dispatch job: %w", err)
	}

	if err := jm.delayMonitorJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.dispatchJob.Stop()
		return fmt.Errorf("failed to start delay monitor job: %w", err)
	}

	if err := jm.payoutJob.Start(); err != nil {
		jm.dispatchJob.Stop()
		jm.delayMonitorJob.Stop()
		return fmt.Errorf("failed to start payout job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.payoutJob.Stop()
	jm.delayMonitorJob.Stop()
	jm.dispatchJob.Stop()
}
