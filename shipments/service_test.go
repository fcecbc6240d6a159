package shipments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"logistics-admin-service/realtime"
	"logistics-admin-service/shipments/models"
	"logistics-admin-service/shipments/progress"
	"logistics-admin-service/shipments/repositories"
	"logistics-admin-service/shipments/tracking"
)

// MockStore is a mock implementation of Store
type MockStore struct {
	mock.Mock
}

var _ Store = (*MockStore)(nil)

func (m *MockStore) Create(ctx context.Context, shipment *models.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockStore) Save(ctx context.Context, shipment *models.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shipment), args.Error(1)
}

func (m *MockStore) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*models.Shipment, error) {
	args := m.Called(ctx, trackingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shipment), args.Error(1)
}

func (m *MockStore) List(ctx context.Context, filter repositories.ListFilter) ([]models.Shipment, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.Shipment), args.Get(1).(int64), args.Error(2)
}

// MockAllocator is a mock implementation of Allocator
type MockAllocator struct {
	mock.Mock
}

var _ Allocator = (*MockAllocator)(nil)

func (m *MockAllocator) Allocate(ctx context.Context) tracking.Allocation {
	args := m.Called(ctx)
	return args.Get(0).(tracking.Allocation)
}

func (m *MockAllocator) Validate(candidate string) error {
	return tracking.Validate(candidate, testNow())
}

type memoryCache struct {
	views       map[string]TrackingView
	invalidated []string
}

func (c *memoryCache) Get(_ context.Context, trackingNumber string, dest any) bool {
	view, ok := c.views[trackingNumber]
	if ok {
		*dest.(*TrackingView) = view
	}
	return ok
}

func (c *memoryCache) Set(_ context.Context, trackingNumber string, value any) {
	c.views[trackingNumber] = value.(TrackingView)
}

func (c *memoryCache) Invalidate(_ context.Context, trackingNumber string) {
	delete(c.views, trackingNumber)
	c.invalidated = append(c.invalidated, trackingNumber)
}

type recordingNotifier struct {
	changes []realtime.Change
}

func (r *recordingNotifier) Notify(_ context.Context, change realtime.Change) {
	r.changes = append(r.changes, change)
}

func testNow() time.Time {
	return time.Date(2026, time.October, 17, 15, 30, 0, 0, time.UTC)
}

type fixture struct {
	store     *MockStore
	allocator *MockAllocator
	cache     *memoryCache
	notifier  *recordingNotifier
	service   *Service
}

func newFixture() *fixture {
	f := &fixture{
		store:     new(MockStore),
		allocator: new(MockAllocator),
		cache:     &memoryCache{views: map[string]TrackingView{}},
		notifier:  &recordingNotifier{},
	}
	f.service = NewService(f.store, f.allocator, f.cache, f.notifier, zap.NewNop(), WithClock(testNow))
	return f
}

func validInput(trackingNumber string) ShipmentInput {
	return ShipmentInput{
		TrackingNumber:    trackingNumber,
		CustomerName:      "Ada Okafor",
		OriginState:       "Lagos",
		DestinationState:  "Abuja",
		ScheduledPickup:   "2026-10-17",
		ScheduledDelivery: "2026-10-21",
	}
}

var duplicate = errors.Join(repositories.ErrDuplicateTrackingNumber, errors.New("duplicate key value"))

func TestCreateInsertsWithSubmittedNumber(t *testing.T) {
	f := newFixture()
	f.store.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := f.service.Create(context.Background(), validInput("CF24202612"))
	require.NoError(t, err)

	assert.Equal(t, "CF24202612", result.Shipment.TrackingNumber)
	assert.False(t, result.Regenerated)
	assert.Equal(t, models.StatusPickupPending, result.Shipment.Status)
	assert.Equal(t, 4, result.Shipment.EstimatedDays)
	require.Len(t, f.notifier.changes, 1)
	assert.Equal(t, realtime.ActionInsert, f.notifier.changes[0].Action)
	f.allocator.AssertNotCalled(t, "Allocate", mock.Anything)
}

func TestCreateRejectsInvalidTrackingNumber(t *testing.T) {
	for _, number := range []string{"CF24202512", "CF24202601", "XX24202612"} {
		f := newFixture()

		_, err := f.service.Create(context.Background(), validInput(number))

		assert.ErrorIs(t, err, tracking.ErrInvalid, number)
		f.store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	}
}

func TestCreateRegeneratesOnceAfterCollision(t *testing.T) {
	f := newFixture()
	f.store.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Shipment) bool {
		return s.TrackingNumber == "CF24202612"
	})).Return(duplicate).Once()
	f.store.On("Create", mock.Anything, mock.MatchedBy(func(s *models.Shipment) bool {
		return s.TrackingNumber == "CF24202613"
	})).Return(nil).Once()
	f.allocator.On("Allocate", mock.Anything).
		Return(tracking.Allocation{TrackingNumber: "CF24202613", Tier: tracking.TierSequence}).Once()

	result, err := f.service.Create(context.Background(), validInput("CF24202612"))
	require.NoError(t, err)

	assert.True(t, result.Regenerated)
	assert.Equal(t, "CF24202613", result.Shipment.TrackingNumber)
	f.store.AssertNumberOfCalls(t, "Create", 2)
	f.allocator.AssertExpectations(t)
}

func TestCreateFailsAfterSecondCollision(t *testing.T) {
	f := newFixture()
	f.store.On("Create", mock.Anything, mock.Anything).Return(duplicate)
	f.allocator.On("Allocate", mock.Anything).
		Return(tracking.Allocation{TrackingNumber: "CF242026456", Tier: tracking.TierEmergency})

	_, err := f.service.Create(context.Background(), validInput("CF24202612"))

	assert.ErrorIs(t, err, ErrTrackingNumberConflict)
	f.store.AssertNumberOfCalls(t, "Create", MaxCreateAttempts)
	f.allocator.AssertNumberOfCalls(t, "Allocate", 1)
	assert.Empty(t, f.notifier.changes)
}

func TestCreateDoesNotRetryOtherStoreErrors(t *testing.T) {
	f := newFixture()
	f.store.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

	_, err := f.service.Create(context.Background(), validInput("CF24202612"))

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrTrackingNumberConflict)
	f.allocator.AssertNotCalled(t, "Allocate", mock.Anything)
}

func TestCreateAllocatesWhenNumberMissingAndCarriesWarning(t *testing.T) {
	f := newFixture()
	f.allocator.On("Allocate", mock.Anything).Return(tracking.Allocation{
		TrackingNumber: "CF242026321",
		Tier:           tracking.TierEmergency,
		Warning:        "sequence exhausted",
	}).Once()
	f.store.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := f.service.Create(context.Background(), validInput(""))
	require.NoError(t, err)

	assert.Equal(t, "CF242026321", result.Shipment.TrackingNumber)
	assert.Equal(t, "sequence exhausted", result.Warning)
	assert.False(t, result.Regenerated)
}

func TestCreateValidatesInput(t *testing.T) {
	tests := map[string]func(in *ShipmentInput){
		"missing customer": func(in *ShipmentInput) { in.CustomerName = " " },
		"unknown status":   func(in *ShipmentInput) { in.Status = "lost" },
		"bad date":         func(in *ShipmentInput) { in.ScheduledPickup = "17/10/2026" },
		"delayed no reason": func(in *ShipmentInput) {
			in.Status = models.StatusDelayed
		},
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			in := validInput("CF24202612")
			mutate(&in)

			_, err := f.service.Create(context.Background(), in)

			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func existing(f *fixture) *models.Shipment {
	pickup := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)
	delivery := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	s := &models.Shipment{
		ID:                uuid.New(),
		TrackingNumber:    "CF2420267",
		Status:            models.StatusInTransit,
		CustomerName:      "Ada Okafor",
		ScheduledPickup:   &pickup,
		ScheduledDelivery: &delivery,
		EstimatedDays:     3,
	}
	f.store.On("GetByID", mock.Anything, s.ID).Return(s, nil)
	f.store.On("Save", mock.Anything, mock.Anything).Return(nil)
	return s
}

func TestUpdateRejectsTrackingNumberChange(t *testing.T) {
	f := newFixture()
	s := existing(f)

	_, err := f.service.Update(context.Background(), s.ID, validInput("CF2420268"))

	assert.ErrorIs(t, err, ErrTrackingNumberImmutable)
	f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateRecomputesEstimatedDays(t *testing.T) {
	f := newFixture()
	s := existing(f)

	in := validInput(s.TrackingNumber)
	in.Status = models.StatusInTransit
	in.ScheduledDelivery = "2026-10-27"

	updated, err := f.service.Update(context.Background(), s.ID, in)
	require.NoError(t, err)

	assert.Equal(t, 10, updated.EstimatedDays)
	assert.Equal(t, []string{"CF2420267"}, f.cache.invalidated)
}

func TestUpdateWithoutStatusKeepsDeliveredShipment(t *testing.T) {
	f := newFixture()
	s := existing(f)
	delivered := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	s.Status = models.StatusDelivered
	s.ActualDelivery = &delivered

	in := validInput(s.TrackingNumber)
	in.ScheduledDelivery = "2026-10-20"
	in.Notes = "left with the front desk"

	updated, err := f.service.Update(context.Background(), s.ID, in)
	require.NoError(t, err)

	assert.Equal(t, models.StatusDelivered, updated.Status)
	assert.Equal(t, &delivered, updated.ActualDelivery)
	assert.Equal(t, "left with the front desk", updated.Notes)
	assert.Equal(t, 4, progress.Map(string(updated.Status)).Position)
}

func TestUpdateWithoutStatusKeepsDelayReason(t *testing.T) {
	f := newFixture()
	s := existing(f)
	s.Status = models.StatusDelayed
	s.DelayReason = "Flooding on the expressway"

	in := validInput(s.TrackingNumber)
	in.ScheduledDelivery = "2026-10-20"
	in.Notes = "customer informed"

	updated, err := f.service.Update(context.Background(), s.ID, in)
	require.NoError(t, err)

	assert.Equal(t, models.StatusDelayed, updated.Status)
	assert.Equal(t, "Flooding on the expressway", updated.DelayReason)
}

func TestUpdateToDeliveredRecordsDeliveryDate(t *testing.T) {
	f := newFixture()
	s := existing(f)

	in := validInput(s.TrackingNumber)
	in.Status = models.StatusDelivered
	in.ScheduledDelivery = "2026-10-20"

	updated, err := f.service.Update(context.Background(), s.ID, in)
	require.NoError(t, err)

	assert.Equal(t, models.StatusDelivered, updated.Status)
	require.NotNil(t, updated.ActualDelivery)
	assert.Equal(t, "2026-10-17", updated.ActualDelivery.Format(DateLayout))
}

func TestUpdateReopeningDeliveredClearsDeliveryDate(t *testing.T) {
	f := newFixture()
	s := existing(f)
	delivered := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	s.Status = models.StatusDelivered
	s.ActualDelivery = &delivered

	in := validInput(s.TrackingNumber)
	in.Status = models.StatusOutForDelivery
	in.ScheduledDelivery = "2026-10-20"

	updated, err := f.service.Update(context.Background(), s.ID, in)
	require.NoError(t, err)

	assert.Equal(t, models.StatusOutForDelivery, updated.Status)
	assert.Nil(t, updated.ActualDelivery)
}

func TestCreateDeliveredShipmentRecordsDeliveryDate(t *testing.T) {
	f := newFixture()
	f.store.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	in := validInput("CF24202612")
	in.Status = models.StatusDelivered

	result, err := f.service.Create(context.Background(), in)
	require.NoError(t, err)

	require.NotNil(t, result.Shipment.ActualDelivery)
	assert.Equal(t, "2026-10-17", result.Shipment.ActualDelivery.Format(DateLayout))
}

func TestMarkDelayedRequiresReason(t *testing.T) {
	f := newFixture()
	s := existing(f)

	_, err := f.service.MarkDelayed(context.Background(), s.ID, "  ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	updated, err := f.service.MarkDelayed(context.Background(), s.ID, "Road closure on the expressway")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelayed, updated.Status)
	assert.Equal(t, "Road closure on the expressway", updated.DelayReason)
}

func TestMarkDeliveredDefaultsToToday(t *testing.T) {
	f := newFixture()
	s := existing(f)
	s.Status = models.StatusDelayed
	s.DelayReason = "weather"

	updated, err := f.service.MarkDelivered(context.Background(), s.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, models.StatusDelivered, updated.Status)
	assert.Empty(t, updated.DelayReason)
	require.NotNil(t, updated.ActualDelivery)
	assert.Equal(t, "2026-10-17", updated.ActualDelivery.Format(DateLayout))
}

func TestUpdateDeliveryDateKeepsEstimatedDaysPositive(t *testing.T) {
	f := newFixture()
	s := existing(f)

	updated, err := f.service.UpdateDeliveryDate(context.Background(), s.ID, time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 1, updated.EstimatedDays)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	s := existing(f)

	_, err := f.service.UpdateStatus(context.Background(), s.ID, "lost", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.service.UpdateStatus(context.Background(), s.ID, models.StatusDelayed, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	updated, err := f.service.UpdateStatus(context.Background(), s.ID, models.StatusOutForDelivery, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOutForDelivery, updated.Status)
}

func TestGetMapsNotFound(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.store.On("GetByID", mock.Anything, id).Return(nil, repositories.ErrNotFound)

	_, err := f.service.Get(context.Background(), id)

	assert.ErrorIs(t, err, ErrShipmentNotFound)
}

func TestDeleteNotifies(t *testing.T) {
	f := newFixture()
	s := existing(f)
	f.store.On("Delete", mock.Anything, s.ID).Return(nil)

	require.NoError(t, f.service.Delete(context.Background(), s.ID))

	require.Len(t, f.notifier.changes, 1)
	assert.Equal(t, realtime.ActionDelete, f.notifier.changes[0].Action)
	assert.Equal(t, "CF2420267", f.notifier.changes[0].TrackingNumber)
}

func TestTrackBuildsAndCachesView(t *testing.T) {
	f := newFixture()
	s := existing(f)
	f.store.On("GetByTrackingNumber", mock.Anything, "CF2420267").Return(s, nil).Once()

	view, err := f.service.Track(context.Background(), " cf2420267 ")
	require.NoError(t, err)

	assert.Equal(t, "in_transit", view.Status)
	assert.Equal(t, 2, view.Progress.Position)
	assert.Equal(t, 62.5, view.Progress.Percentage)

	cached, err := f.service.Track(context.Background(), "CF2420267")
	require.NoError(t, err)
	assert.Equal(t, view, cached)
	f.store.AssertNumberOfCalls(t, "GetByTrackingNumber", 1)
}

func TestTrackMalformedNumberIsNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.service.Track(context.Background(), "DROP TABLE")

	assert.ErrorIs(t, err, ErrShipmentNotFound)
	f.store.AssertNotCalled(t, "GetByTrackingNumber", mock.Anything, mock.Anything)
}

func TestAnalyticsUsesEveryShipment(t *testing.T) {
	f := newFixture()
	f.store.On("List", mock.Anything, repositories.ListFilter{}).Return([]models.Shipment{
		{Status: models.StatusDelivered, CreatedAt: testNow()},
		{Status: models.StatusInTransit, CreatedAt: testNow()},
	}, int64(2), nil)

	report, err := f.service.Analytics(context.Background(), 6)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Total)
	assert.Len(t, report.ByMonth, 6)
	assert.Equal(t, 2, report.ByMonth[5].Count)
}
