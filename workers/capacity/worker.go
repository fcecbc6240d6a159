package capacity

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"logistics-admin-service/config"
	"logistics-admin-service/shipments/tracking"
)

const queryTimeout = 30 * time.Second

// Source lists the tracking numbers already issued under a year prefix.
type Source interface {
	TrackingNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

// Report is the outcome of one capacity check.
type Report struct {
	Year      int
	Highest   int
	Remaining int
	Warn      bool
	Exhausted bool
}

// Worker watches how much of the yearly tracking sequence has been used.
type Worker struct {
	logger    *zap.Logger
	source    Source
	schedule  string
	threshold int
	now       func() time.Time
	busy      atomic.Bool
}

func NewWorker(logger *zap.Logger, source Source, cfg *config.CapacityConfig, now func() time.Time) *Worker {
	if now == nil {
		now = time.Now
	}
	return &Worker{
		logger:    logger,
		source:    source,
		schedule:  cfg.Schedule,
		threshold: cfg.WarnThreshold,
		now:       now,
	}
}

func (w *Worker) Name() string {
	return "tracking-capacity"
}

func (w *Worker) Schedule() string {
	return w.schedule
}

func (w *Worker) Ready(time.Time) bool {
	return !w.busy.Load()
}

func (w *Worker) Execute() {
	if !w.busy.CompareAndSwap(false, true) {
		return
	}
	defer w.busy.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if _, err := w.Check(ctx); err != nil {
		w.logger.Error("Failed to check tracking number capacity", zap.Error(err))
	}
}

// Check reads the highest sequence issued this year and logs how close it is to the limit.
func (w *Worker) Check(ctx context.Context) (Report, error) {
	year := w.now().Year()
	prefix := tracking.YearPrefix(year)

	numbers, err := w.source.TrackingNumbersWithPrefix(ctx, prefix)
	if err != nil {
		return Report{}, err
	}

	highest := tracking.HighestSequence(prefix, numbers)
	report := Report{
		Year:      year,
		Highest:   highest,
		Remaining: tracking.MaxSequence - highest,
		Warn:      w.threshold > 0 && highest >= w.threshold,
		Exhausted: highest >= tracking.MaxSequence,
	}

	fields := []zap.Field{
		zap.Int("year", report.Year),
		zap.Int("highest_sequence", report.Highest),
		zap.Int("remaining", report.Remaining),
	}

	switch {
	case report.Exhausted:
		w.logger.Error("Tracking number sequence exhausted; new shipments use emergency numbers", fields...)
	case report.Warn:
		w.logger.Warn("Tracking number sequence nearly exhausted", fields...)
	default:
		w.logger.Info("Tracking number capacity checked", fields...)
	}

	return report, nil
}
