package jobs

import (
	"context"
	"log/slog"
	"time"

	"marketplace/internal/core/application/usecases/commands"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/robfig/cron/v3"
)

// SettlePaymentsHandler is the command handler the job drives.
type SettlePaymentsHandler interface {
	Handle(ctx context.Context, command commands.SettlePaymentsCommand) (commands.SettlementReport, error)
}

// SettlementJob applies due payment settlements every second.
// A run that outlasts its tick makes the next tick a no-op.
type SettlementJob struct {
	handler   SettlePaymentsHandler
	batchSize int
	timeout   time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
	processed *prometheus.CounterVec
}

// NewSettlementJob creates a job that settles at most batchSize tasks per tick and gives
// each run 30 seconds.
//
// Example:
//
//	job := NewSettlementJob(root.CreateSettlePaymentsCommandHandler(), 50, prometheus.DefaultRegisterer, logger)
//	if err := job.Start(); err != nil {
//		return err
//	}
//	defer job.Stop()
func NewSettlementJob(
	handler SettlePaymentsHandler,
	batchSize int,
	reg prometheus.Registerer,
	logger *slog.Logger,
) *SettlementJob {
	return &SettlementJob{
		handler:   handler,
		batchSize: batchSize,
		timeout:   30 * time.Second,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With("component", "settlement_job"),
		processed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "marketplace_settlements_total",
				Help: "Settlement tasks processed, by outcome",
			},
			[]string{"result"},
		),
	}
}

// RunOnce settles up to one batch of due tasks.
func (j *SettlementJob) RunOnce(ctx context.Context) (commands.SettlementReport, error) {
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	cmd, err := commands.NewSettlePaymentsCommand(j.batchSize)
	if err != nil {
		return commands.SettlementReport{}, err
	}

	report, err := j.handler.Handle(ctx, cmd)
	j.processed.WithLabelValues("settled").Add(float64(report.Settled))
	j.processed.WithLabelValues("skipped").Add(float64(report.Skipped))
	j.processed.WithLabelValues("failed").Add(float64(report.Failed))
	if err != nil {
		return report, err
	}

	if report.Total() > 0 {
		j.logger.InfoContext(ctx, "settlement run finished",
			"settled", report.Settled,
			"skipped", report.Skipped,
			"failed", report.Failed,
		)
	}
	return report, nil
}

// Start schedules RunOnce every second. Errors of a run are logged, not returned.
func (j *SettlementJob) Start() error {
	_, err := j.cron.AddFunc("* * * * * *", func() {
		ctx := context.Background()
		if _, err := j.RunOnce(ctx); err != nil {
			j.logger.ErrorContext(ctx, "Settlement job failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Settlement job started (running every second)")
	return nil
}

// Stop waits for a running settlement to finish.
func (j *SettlementJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Settlement job stopped")
}
