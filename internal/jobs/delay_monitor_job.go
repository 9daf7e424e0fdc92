package jobs

import (
	"context"
	"log/slog"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DelayMonitorJob audits in-flight orders for overdue deliveries. Runs every
// minute; the sweep itself decides which orders are actually late.
type DelayMonitorJob struct {
	handler commands.SweepDelayedOrdersCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewDelayMonitorJob creates the delay sweep job.
func NewDelayMonitorJob(handler commands.SweepDelayedOrdersCommandHandler, logger *slog.Logger) *DelayMonitorJob {
	return &DelayMonitorJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "delay_monitor_job"),
	}
}

// Start begins the delay monitor, sweeping once a minute.
func (j *DelayMonitorJob) Start() error {
	_, err := j.cron.AddFunc("0 * * * * *", func() {
		ctx := context.Background()
		cmd := commands.NewSweepDelayedOrdersCommand()

		if err := j.handler.Handle(ctx, cmd); err != nil {
			// The sweep already skipped past the bad rows; this is the
			// collected leftover.
			j.logger.ErrorContext(ctx, "Delay sweep reported errors", "error", err)
		}
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Delay monitor job started (running every minute)")
	return nil
}

// Stop stops the delay monitor job.
func (j *DelayMonitorJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Delay monitor job stopped")
}
