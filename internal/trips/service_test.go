package trips_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/registration"
	"evenza/internal/trips"
)

// Mock implementations

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateTrip(ctx context.Context, trip models.Trip) error {
	args := m.Called(ctx, trip)
	return args.Error(0)
}

func (m *MockDBLayer) GetTripByID(ctx context.Context, id string) (*models.Trip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Trip), args.Error(1)
}

func (m *MockDBLayer) ListTrips(ctx context.Context) ([]models.Trip, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Trip), args.Error(1)
}

func (m *MockDBLayer) UpdateTrip(ctx context.Context, trip models.Trip) error {
	args := m.Called(ctx, trip)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteTrip(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDBLayer) Enroll(ctx context.Context, tripID, userID string) (*models.Trip, *models.TripEnrollment, error) {
	args := m.Called(ctx, tripID, userID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Trip), args.Get(1).(*models.TripEnrollment), args.Error(2)
}

func (m *MockDBLayer) Withdraw(ctx context.Context, tripID, userID string) (*models.TripEnrollment, error) {
	args := m.Called(ctx, tripID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TripEnrollment), args.Error(1)
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Acquire(ctx context.Context, kind, entityID, ownerID string) (bool, error) {
	args := m.Called(ctx, kind, entityID, ownerID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLocker) Release(ctx context.Context, kind, entityID, ownerID string) error {
	args := m.Called(ctx, kind, entityID, ownerID)
	return args.Error(0)
}

type MockPaymentCreator struct {
	mock.Mock
}

func (m *MockPaymentCreator) CreatePending(ctx context.Context, userID string, kind models.PaymentKind, entityID string, amount float64, description string) (*models.Payment, error) {
	args := m.Called(ctx, userID, kind, entityID, amount, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockPaymentCreator) RejectPendingForRegistration(ctx context.Context, kind models.PaymentKind, entityID, userID string) error {
	args := m.Called(ctx, kind, entityID, userID)
	return args.Error(0)
}

func newTestTrip(price float64) *models.Trip {
	return &models.Trip{
		ID:        "trip-1",
		Title:     "Coastal Weekend",
		DepartsAt: time.Now().Add(72 * time.Hour),
		Price:     price,
		Spots:     20,
		CreatedAt: time.Now(),
	}
}

func newTestEnrollment() *models.TripEnrollment {
	return &models.TripEnrollment{
		ID:        "enr-1",
		TripID:    "trip-1",
		UserID:    "user-1",
		CreatedAt: time.Now(),
	}
}

func newService(db *MockDBLayer, lock *MockLocker, payments *MockPaymentCreator) *trips.TripService {
	var l trips.Locker
	if lock != nil {
		l = lock
	}
	var p trips.PaymentCreator
	if payments != nil {
		p = payments
	}
	return trips.NewTripService(db, l, p, nil, nil, "test.topic", logger.NewLogger())
}

func TestEnrollFreeTripSkipsPayment(t *testing.T) {
	db := new(MockDBLayer)
	payments := new(MockPaymentCreator)
	svc := newService(db, nil, payments)

	db.On("Enroll", mock.Anything, "trip-1", "user-1").Return(newTestTrip(0), newTestEnrollment(), nil)

	result, err := svc.Enroll(context.Background(), "trip-1", "user-1")

	assert.NoError(t, err)
	assert.Nil(t, result.Payment)
	payments.AssertNotCalled(t, "CreatePending", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEnrollPricedTripCreatesExactlyOnePendingPayment(t *testing.T) {
	db := new(MockDBLayer)
	payments := new(MockPaymentCreator)
	svc := newService(db, nil, payments)

	db.On("Enroll", mock.Anything, "trip-1", "user-1").Return(newTestTrip(120), newTestEnrollment(), nil)

	pending := &models.Payment{
		ID:       "pay-1",
		UserID:   "user-1",
		Kind:     models.PaymentKindTrip,
		EntityID: "trip-1",
		Amount:   120,
		Status:   models.StatusPending,
	}
	payments.On("CreatePending", mock.Anything, "user-1", models.PaymentKindTrip, "trip-1", 120.0, "Coastal Weekend").
		Return(pending, nil).Once()

	result, err := svc.Enroll(context.Background(), "trip-1", "user-1")

	assert.NoError(t, err)
	assert.NotNil(t, result.Payment)
	assert.Equal(t, models.StatusPending, result.Payment.Status)
	payments.AssertNumberOfCalls(t, "CreatePending", 1)
}

func TestEnrollCapacityFull(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, nil, nil)

	db.On("Enroll", mock.Anything, "trip-1", "user-1").
		Return(nil, nil, registration.ErrCapacityFull)

	_, err := svc.Enroll(context.Background(), "trip-1", "user-1")

	assert.ErrorIs(t, err, registration.ErrCapacityFull)
}

func TestEnrollDuplicateRejected(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, nil, nil)

	db.On("Enroll", mock.Anything, "trip-1", "user-1").
		Return(nil, nil, registration.ErrAlreadyRegistered)

	_, err := svc.Enroll(context.Background(), "trip-1", "user-1")

	assert.ErrorIs(t, err, registration.ErrAlreadyRegistered)
}

func TestEnrollCompensatesWhenPaymentFails(t *testing.T) {
	db := new(MockDBLayer)
	payments := new(MockPaymentCreator)
	svc := newService(db, nil, payments)

	db.On("Enroll", mock.Anything, "trip-1", "user-1").Return(newTestTrip(120), newTestEnrollment(), nil)
	db.On("Withdraw", mock.Anything, "trip-1", "user-1").Return(newTestEnrollment(), nil)

	payments.On("CreatePending", mock.Anything, "user-1", models.PaymentKindTrip, "trip-1", 120.0, "Coastal Weekend").
		Return(nil, errors.New("payment store down"))

	_, err := svc.Enroll(context.Background(), "trip-1", "user-1")

	assert.Error(t, err)
	db.AssertCalled(t, "Withdraw", mock.Anything, "trip-1", "user-1")
}

func TestEnrollReturnsLockedWhenHeld(t *testing.T) {
	db := new(MockDBLayer)
	lock := new(MockLocker)
	svc := newService(db, lock, nil)

	lock.On("Acquire", mock.Anything, "trip", "trip-1", "user-1").Return(false, nil)

	_, err := svc.Enroll(context.Background(), "trip-1", "user-1")

	assert.ErrorIs(t, err, registration.ErrLocked)
	db.AssertNotCalled(t, "Enroll", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnrollProceedsWhenLockUnavailable(t *testing.T) {
	db := new(MockDBLayer)
	lock := new(MockLocker)
	svc := newService(db, lock, nil)

	lock.On("Acquire", mock.Anything, "trip", "trip-1", "user-1").
		Return(false, errors.New("redis down"))
	db.On("Enroll", mock.Anything, "trip-1", "user-1").
		Return(newTestTrip(0), newTestEnrollment(), nil)

	result, err := svc.Enroll(context.Background(), "trip-1", "user-1")

	assert.NoError(t, err)
	assert.NotNil(t, result.Enrollment)
}

func TestWithdrawClosesOpenPayment(t *testing.T) {
	db := new(MockDBLayer)
	payments := new(MockPaymentCreator)
	svc := newService(db, nil, payments)

	db.On("Withdraw", mock.Anything, "trip-1", "user-1").Return(newTestEnrollment(), nil)
	payments.On("RejectPendingForRegistration", mock.Anything, models.PaymentKindTrip, "trip-1", "user-1").
		Return(nil)

	err := svc.Withdraw(context.Background(), "trip-1", "user-1")

	assert.NoError(t, err)
	payments.AssertCalled(t, "RejectPendingForRegistration", mock.Anything, models.PaymentKindTrip, "trip-1", "user-1")
}

func TestWithdrawNotEnrolled(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, nil, nil)

	db.On("Withdraw", mock.Anything, "trip-1", "user-1").
		Return(nil, registration.ErrNotRegistered)

	err := svc.Withdraw(context.Background(), "trip-1", "user-1")

	assert.ErrorIs(t, err, registration.ErrNotRegistered)
}
