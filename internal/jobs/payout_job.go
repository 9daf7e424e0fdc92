package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// PayoutJob settles agent earnings into weekly payout batches. Runs Monday
// at midnight UTC and settles the week that just ended; the period key makes
// a rerun of the same week a no-op.
type PayoutJob struct {
	handler commands.SettlePayoutsCommandHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewPayoutJob creates the weekly settlement job.
func NewPayoutJob(handler commands.SettlePayoutsCommandHandler, logger *slog.Logger) *PayoutJob {
	return &PayoutJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "payout_job"),
	}
}

// Start begins the payout job, firing Mondays at 00:00 UTC.
func (j *PayoutJob) Start() error {
	_, err := j.cron.AddFunc("0 0 0 * * MON", func() {
		ctx := context.Background()
		periodStart, periodEnd := settlementWindow(time.Now().UTC())

		cmd, cmdErr := commands.NewSettlePayoutsCommand(periodStart, periodEnd)
		if cmdErr != nil {
			j.logger.ErrorContext(ctx, "Invalid settlement window", "error", cmdErr)
			return
		}

		if err := j.handler.Handle(ctx, cmd); err != nil {
			j.logger.ErrorContext(ctx, "Payout settlement failed",
				"error", err, "periodStart", periodStart, "periodEnd", periodEnd)
			return
		}

		j.logger.InfoContext(ctx, "Payout settlement completed",
			"periodStart", periodStart, "periodEnd", periodEnd)
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Payout job started (running Mondays at midnight UTC)")
	return nil
}

// Stop stops the payout job.
func (j *PayoutJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Payout job stopped")
}

// settlementWindow returns the most recently completed Monday-to-Monday week
// containing none of today: [previous Monday 00:00, this Monday 00:00) UTC.
func settlementWindow(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	daysSinceMonday := (int(midnight.Weekday()) + 6) % 7
	end := midnight.AddDate(0, 0, -daysSinceMonday)
	return end.AddDate(0, 0, -7), end
}
