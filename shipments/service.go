package shipments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"logistics-admin-service/realtime"
	"logistics-admin-service/shipments/analytics"
	"logistics-admin-service/shipments/models"
	"logistics-admin-service/shipments/progress"
	"logistics-admin-service/shipments/repositories"
	"logistics-admin-service/shipments/tracking"
)

// MaxCreateAttempts bounds inserts per Create: the submitted number plus one regenerated number.
const MaxCreateAttempts = 2

const table = "shipments"

var (
	ErrShipmentNotFound        = errors.New("shipment not found")
	ErrInvalidInput            = errors.New("invalid shipment")
	ErrTrackingNumberConflict  = errors.New("tracking number is already in use; generate a new one and retry")
	ErrTrackingNumberImmutable = errors.New("tracking number cannot be changed once assigned")
)

type Store interface {
	Create(ctx context.Context, shipment *models.Shipment) error
	Save(ctx context.Context, shipment *models.Shipment) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error)
	List(ctx context.Context, filter repositories.ListFilter) ([]models.Shipment, int64, error)
}

type Allocator interface {
	Allocate(ctx context.Context) tracking.Allocation
	Validate(candidate string) error
}

type ViewCache interface {
	Get(ctx context.Context, trackingNumber string, dest any) bool
	Set(ctx context.Context, trackingNumber string, value any)
	Invalidate(ctx context.Context, trackingNumber string)
}

// CreateResult tells the operator which number was finally used and why it may differ from theirs.
type CreateResult struct {
	Shipment    *models.Shipment `json:"shipment"`
	Regenerated bool             `json:"regenerated"`
	Warning     string           `json:"warning,omitempty"`
}

// TrackingView is what the public tracking page shows; it carries no customer details.
type TrackingView struct {
	TrackingNumber    string            `json:"trackingNumber"`
	Status            string            `json:"status"`
	OriginState       string            `json:"originState"`
	DestinationState  string            `json:"destinationState"`
	ScheduledPickup   *time.Time        `json:"scheduledPickup"`
	ScheduledDelivery *time.Time        `json:"scheduledDelivery"`
	ActualDelivery    *time.Time        `json:"actualDelivery"`
	EstimatedDays     int               `json:"estimatedDays"`
	DelayReason       string            `json:"delayReason,omitempty"`
	Progress          progress.Progress `json:"progress"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

type Service struct {
	store     Store
	allocator Allocator
	cache     ViewCache
	notifier  realtime.Notifier
	logger    *zap.Logger
	now       func() time.Time
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store Store, allocator Allocator, cache ViewCache, notifier realtime.Notifier, logger *zap.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		allocator: allocator,
		cache:     cache,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NextTrackingNumber pre-allocates a number for the admin form.
func (s *Service) NextTrackingNumber(ctx context.Context) tracking.Allocation {
	return s.allocator.Allocate(ctx)
}

func (s *Service) ValidateTrackingNumber(candidate string) error {
	return s.allocator.Validate(strings.TrimSpace(candidate))
}

// Create inserts a shipment. A collision on the submitted tracking number is retried
// once with a freshly allocated number; a second collision is returned as ErrTrackingNumberConflict.
func (s *Service) Create(ctx context.Context, input ShipmentInput) (*CreateResult, error) {
	shipment := &models.Shipment{}
	if err := input.apply(shipment); err != nil {
		return nil, err
	}

	s.stampDelivery(shipment)

	result := &CreateResult{Shipment: shipment}

	number := strings.TrimSpace(input.TrackingNumber)
	if number == "" {
		allocation := s.allocator.Allocate(ctx)
		number, result.Warning = allocation.TrackingNumber, allocation.Warning
	}

	for attempt := 1; ; attempt++ {
		if err := s.allocator.Validate(number); err != nil {
			return nil, err
		}

		shipment.TrackingNumber = number
		err := s.store.Create(ctx, shipment)
		if err == nil {
			break
		}

		if !errors.Is(err, repositories.ErrDuplicateTrackingNumber) {
			return nil, fmt.Errorf("failed to create shipment: %w", err)
		}

		if attempt >= MaxCreateAttempts {
			s.logger.Error("Tracking number collided again after regeneration",
				zap.String("tracking_number", number),
				zap.Int("attempts", attempt),
			)
			return nil, fmt.Errorf("%w (%s)", ErrTrackingNumberConflict, number)
		}

		allocation := s.allocator.Allocate(ctx)
		s.logger.Warn("Tracking number already taken, regenerating",
			zap.String("tracking_number", number),
			zap.String("regenerated", allocation.TrackingNumber),
			zap.String("tier", string(allocation.Tier)),
		)
		number = allocation.TrackingNumber
		result.Regenerated = true
		if allocation.Warning != "" {
			result.Warning = allocation.Warning
		}
	}

	s.logger.Info("Shipment created",
		zap.String("tracking_number", shipment.TrackingNumber),
		zap.Bool("regenerated", result.Regenerated),
	)
	s.changed(ctx, realtime.ActionInsert, shipment)

	return result, nil
}

// Update edits the admin form fields of an existing shipment.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input ShipmentInput) (*models.Shipment, error) {
	shipment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if number := strings.TrimSpace(input.TrackingNumber); number != "" && number != shipment.TrackingNumber {
		return nil, ErrTrackingNumberImmutable
	}

	if err := input.apply(shipment); err != nil {
		return nil, err
	}
	s.stampDelivery(shipment)

	return shipment, s.save(ctx, shipment)
}

func (s *Service) MarkDelayed(ctx context.Context, id uuid.UUID, reason string) (*models.Shipment, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a delay reason is required", ErrInvalidInput)
	}

	shipment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	shipment.SetStatus(models.StatusDelayed)
	shipment.DelayReason = reason

	return shipment, s.save(ctx, shipment)
}

// MarkDelivered records delivery on date, or today when date is nil.
func (s *Service) MarkDelivered(ctx context.Context, id uuid.UUID, date *time.Time) (*models.Shipment, error) {
	shipment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if date == nil {
		today := s.today()
		date = &today
	}

	shipment.SetStatus(models.StatusDelivered)
	shipment.ActualDelivery = date

	return shipment, s.save(ctx, shipment)
}

func (s *Service) UpdateDeliveryDate(ctx context.Context, id uuid.UUID, date time.Time) (*models.Shipment, error) {
	shipment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	shipment.ScheduledDelivery = &date
	shipment.RecomputeEstimatedDays()

	return shipment, s.save(ctx, shipment)
}

// UpdateStatus moves a shipment along its lifecycle. Delayed requires a reason.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ShipmentStatus, reason string) (*models.Shipment, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if status == models.StatusDelayed {
		return s.MarkDelayed(ctx, id, reason)
	}
	if status == models.StatusDelivered {
		return s.MarkDelivered(ctx, id, nil)
	}

	shipment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	shipment.SetStatus(status)

	return shipment, s.save(ctx, shipment)
}

// Delete removes the shipment row; there is no soft delete.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	shipment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return storeError(err)
	}

	s.logger.Info("Shipment deleted", zap.String("tracking_number", shipment.TrackingNumber))
	s.changed(ctx, realtime.ActionDelete, shipment)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	shipment, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	s.checkStatus(shipment)
	return shipment, nil
}

func (s *Service) List(ctx context.Context, filter repositories.ListFilter) ([]models.Shipment, int64, error) {
	shipments, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shipments: %w", err)
	}
	for i := range shipments {
		s.checkStatus(&shipments[i])
	}
	return shipments, total, nil
}

// Track looks up the public view of a shipment. Malformed numbers are reported as not found.
func (s *Service) Track(ctx context.Context, trackingNumber string) (*TrackingView, error) {
	trackingNumber = strings.ToUpper(strings.TrimSpace(trackingNumber))
	if _, err := tracking.Parse(trackingNumber); err != nil {
		return nil, ErrShipmentNotFound
	}

	var view TrackingView
	if s.cache != nil && s.cache.Get(ctx, trackingNumber, &view) {
		return &view, nil
	}

	shipment, err := s.store.GetByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, storeError(err)
	}
	s.checkStatus(shipment)

	view = TrackingView{
		TrackingNumber:    shipment.TrackingNumber,
		Status:            string(shipment.Status),
		OriginState:       shipment.OriginState,
		DestinationState:  shipment.DestinationState,
		ScheduledPickup:   shipment.ScheduledPickup,
		ScheduledDelivery: shipment.ScheduledDelivery,
		ActualDelivery:    shipment.ActualDelivery,
		EstimatedDays:     shipment.EstimatedDays,
		DelayReason:       shipment.DelayReason,
		Progress:          progress.Map(string(shipment.Status)),
		UpdatedAt:         shipment.UpdatedAt,
	}
	if s.cache != nil {
		s.cache.Set(ctx, trackingNumber, view)
	}

	return &view, nil
}

// Analytics aggregates every shipment into chart buckets covering the last months.
func (s *Service) Analytics(ctx context.Context, months int) (*analytics.Report, error) {
	shipments, _, err := s.store.List(ctx, repositories.ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load shipments for analytics: %w", err)
	}

	report := analytics.Build(shipments, s.now(), months)
	return &report, nil
}

func (s *Service) save(ctx context.Context, shipment *models.Shipment) error {
	if err := s.store.Save(ctx, shipment); err != nil {
		return fmt.Errorf("failed to save shipment: %w", err)
	}

	s.logger.Info("Shipment updated",
		zap.String("tracking_number", shipment.TrackingNumber),
		zap.String("status", string(shipment.Status)),
	)
	s.changed(ctx, realtime.ActionUpdate, shipment)
	return nil
}

func (s *Service) changed(ctx context.Context, action realtime.Action, shipment *models.Shipment) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, shipment.TrackingNumber)
	}
	if s.notifier != nil {
		s.notifier.Notify(ctx, realtime.Change{
			Table:          table,
			Action:         action,
			ID:             shipment.ID.String(),
			TrackingNumber: shipment.TrackingNumber,
			OccurredAt:     s.now(),
		})
	}
}

// checkStatus flags rows written outside this service with a status the mapper will default.
func (s *Service) checkStatus(shipment *models.Shipment) {
	if !shipment.Status.Valid() {
		s.logger.Warn("Shipment has unknown status",
			zap.String("tracking_number", shipment.TrackingNumber),
			zap.String("status", string(shipment.Status)),
		)
	}
}

// stampDelivery gives a delivered shipment an actual delivery date, today unless one is set.
func (s *Service) stampDelivery(shipment *models.Shipment) {
	if shipment.Status == models.StatusDelivered && shipment.ActualDelivery == nil {
		today := s.today()
		shipment.ActualDelivery = &today
	}
}

func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func storeError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrShipmentNotFound
	}
	return err
}
