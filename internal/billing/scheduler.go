// Package billing raises monthly hostel fees on a cron schedule.
package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SHADOW0715/Hostel-Management-System/internal/hostel"
	"github.com/SHADOW0715/Hostel-Management-System/internal/metrics"

	"github.com/robfig/cron/v3"
)

const runTimeout = 2 * time.Minute

// FeeGenerator is the part of the hostel store the scheduler drives.
type FeeGenerator interface {
	GenerateMonthlyFees(ctx context.Context, month string, amount float64) ([]hostel.MonthlyFee, error)
}

type Scheduler struct {
	fees     FeeGenerator
	schedule string
	amount   float64
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cron     *cron.Cron
}

func NewScheduler(fees FeeGenerator, schedule string, amount float64, logger *slog.Logger, m *metrics.Metrics) (*Scheduler, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("billing amount must be positive, got %v", amount)
	}

	s := &Scheduler{
		fees:     fees,
		schedule: schedule,
		amount:   amount,
		now:      time.Now,
		logger:   logger,
		metrics:  m,
	}

	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger)))
	if _, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			s.logger.Error("scheduled fee generation failed", "error", err)
		}
	}); err != nil {
		return nil, fmt.Errorf("invalid billing schedule %q: %w", schedule, err)
	}

	return s, nil
}

// RunOnce bills the current month. Students already billed for it are skipped.
func (s *Scheduler) RunOnce(ctx context.Context) ([]hostel.MonthlyFee, error) {
	month := hostel.MonthLabel(s.now().UTC())
	created, err := s.fees.GenerateMonthlyFees(ctx, month, s.amount)
	if err != nil {
		return nil, fmt.Errorf("failed to generate fees for %s: %w", month, err)
	}

	s.metrics.RecordFeesGenerated(ctx, len(created))
	s.logger.InfoContext(ctx, "monthly fees generated", "month", month, "created", len(created))
	return created, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("billing scheduler started", "schedule", s.schedule, "amount", s.amount)
	s.cron.Start()
}

// Stop waits for a running job to finish or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.logger.Warn("billing scheduler stop timed out")
	}
}
