package tracking

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Tier names the strategy that produced an allocation.
type Tier string

const (
	TierSequence      Tier = "sequence"
	TierReconstructed Tier = "reconstructed"
	TierEmergency     Tier = "emergency"
)

var ErrSequenceExhausted = errors.New("tracking number sequence exhausted for the year")

// SequenceSource is the storage the allocator reads from.
type SequenceSource interface {
	// NextTrackingID calls the server-side sequence procedure. An empty result means it had nothing to offer.
	NextTrackingID(ctx context.Context) (string, error)
	TrackingNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
}

// Allocation is a tracking number offered to an operator. Warning is set when
// the number came from the emergency tier because the yearly sequence ran out.
type Allocation struct {
	TrackingNumber string `json:"trackingNumber"`
	Tier           Tier   `json:"tier"`
	Warning        string `json:"warning,omitempty"`
}

type Allocator struct {
	source   SequenceSource
	logger   *zap.Logger
	now      func() time.Time
	randIntN func(n int) int
}

type Option func(*Allocator)

func WithClock(now func() time.Time) Option {
	return func(a *Allocator) {
		a.now = now
	}
}

// WithRandom replaces the source of the emergency tier's random sequence.
func WithRandom(intN func(n int) int) Option {
	return func(a *Allocator) {
		a.randIntN = intN
	}
}

func NewAllocator(source SequenceSource, logger *zap.Logger, opts ...Option) *Allocator {
	a := &Allocator{
		source:   source,
		logger:   logger,
		now:      time.Now,
		randIntN: rand.Intn,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate never fails: each tier falls through to the next and the emergency tier always answers.
func (a *Allocator) Allocate(ctx context.Context) Allocation {
	year := a.now().Year()

	if number, ok := a.fromSequence(ctx); ok {
		return Allocation{TrackingNumber: number, Tier: TierSequence}
	}

	number, err := a.reconstruct(ctx, year)
	if err == nil {
		return Allocation{TrackingNumber: number, Tier: TierReconstructed}
	}

	allocation := Allocation{TrackingNumber: a.emergency(year), Tier: TierEmergency}
	if errors.Is(err, ErrSequenceExhausted) {
		allocation.Warning = fmt.Sprintf("All %d tracking numbers for %d are used; a random number was generated and may need regenerating", MaxSequence, year)
	}

	a.logger.Warn("Using emergency tracking number",
		zap.String("tracking_number", allocation.TrackingNumber),
		zap.Error(err),
	)
	return allocation
}

// Validate checks candidate against the allocator's clock.
func (a *Allocator) Validate(candidate string) error {
	return Validate(candidate, a.now())
}

func (a *Allocator) fromSequence(ctx context.Context) (string, bool) {
	number, err := a.source.NextTrackingID(ctx)
	if err != nil {
		a.logger.Warn("Tracking sequence procedure failed, reconstructing from existing shipments", zap.Error(err))
		return "", false
	}
	if number == "" {
		a.logger.Info("Tracking sequence procedure returned no value, reconstructing from existing shipments")
		return "", false
	}
	return number, true
}

func (a *Allocator) reconstruct(ctx context.Context, year int) (string, error) {
	prefix := YearPrefix(year)

	numbers, err := a.source.TrackingNumbersWithPrefix(ctx, prefix)
	if err != nil {
		a.logger.Warn("Failed to read existing tracking numbers",
			zap.String("prefix", prefix),
			zap.Error(err),
		)
		return "", fmt.Errorf("reading tracking numbers for %s: %w", prefix, err)
	}

	next := HighestSequence(prefix, numbers) + 1
	if next > MaxSequence {
		a.logger.Warn("Tracking number sequence exhausted",
			zap.Int("year", year),
			zap.Int("max_sequence", MaxSequence),
		)
		return "", fmt.Errorf("%w: %d", ErrSequenceExhausted, year)
	}

	return Format(year, next), nil
}

func (a *Allocator) emergency(year int) string {
	return Format(year, 100+a.randIntN(900))
}
