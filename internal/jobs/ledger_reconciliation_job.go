package jobs

import (
	"context"
	"log/slog"

	"marketplace/internal/core/application/usecases/queries"

	"github.com/robfig/cron/v3"
)

// reconciliationSchedule folds the trial balance once a minute. The fold is
// a single aggregate query, cheap enough to run continuously.
const reconciliationSchedule = "0 * * * * *"

// LedgerReconciliationJob periodically folds the trial balance over the
// whole journal. A nonzero total means an imbalanced entry reached the
// database despite the domain-level check, which is an operational alert,
// not something the job can repair.
type LedgerReconciliationJob struct {
	handler queries.GetTrialBalanceQueryHandler
	cron    *cron.Cron
	logger  *slog.Logger
}

// NewLedgerReconciliationJob creates a job that verifies journal consistency.
func NewLedgerReconciliationJob(handler queries.GetTrialBalanceQueryHandler, logger *slog.Logger) *LedgerReconciliationJob {
	return &LedgerReconciliationJob{
		handler: handler,
		cron:    cron.New(cron.WithSeconds()),
		logger:  logger.With("component", "ledger_reconciliation_job"),
	}
}

// Start begins the reconciliation job on its fixed schedule.
func (j *LedgerReconciliationJob) Start() error {
	_, err := j.cron.AddFunc(reconciliationSchedule, func() {
		ctx := context.Background()

		trial, err := j.handler.Handle(ctx, queries.NewGetTrialBalanceQuery())
		if err != nil {
			j.logger.ErrorContext(ctx, "Ledger reconciliation failed", "error", err)
			return
		}

		if !trial.Total.IsZero() {
			j.logger.ErrorContext(ctx, "Ledger trial balance is nonzero",
				"total", trial.Total.String(),
				"accounts", len(trial.Accounts),
			)
			return
		}

		j.logger.DebugContext(ctx, "Ledger trial balance verified", "accounts", len(trial.Accounts))
	})

	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Ledger reconciliation job started (running every minute)")
	return nil
}

// Stop stops the reconciliation job.
func (j *LedgerReconciliationJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Ledger reconciliation job stopped")
}
