package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"evenza/internal/events"
	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/registration"
)

// Mock implementations

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateEvent(ctx context.Context, event models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDBLayer) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockDBLayer) ListEvents(ctx context.Context) ([]models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockDBLayer) UpdateEvent(ctx context.Context, event models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteEvent(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDBLayer) Register(ctx context.Context, eventID, userID string, tickets int) (*models.Event, *models.EventRegistration, error) {
	args := m.Called(ctx, eventID, userID, tickets)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Event), args.Get(1).(*models.EventRegistration), args.Error(2)
}

func (m *MockDBLayer) Unregister(ctx context.Context, eventID, userID string) (*models.EventRegistration, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventRegistration), args.Error(1)
}

func (m *MockDBLayer) GetRegistration(ctx context.Context, eventID, userID string) (*models.EventRegistration, error) {
	args := m.Called(ctx, eventID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EventRegistration), args.Error(1)
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

func newTestEvent(price float64) *models.Event {
	return &models.Event{
		ID:           "event-1",
		Title:        "Launch Night",
		StartsAt:     time.Now().Add(48 * time.Hour),
		Price:        price,
		MaxAttendees: 100,
		CreatedAt:    time.Now(),
	}
}

func newTestRegistration() *models.EventRegistration {
	return &models.EventRegistration{
		ID:        "reg-1",
		EventID:   "event-1",
		UserID:    "user-1",
		Tickets:   2,
		CreatedAt: time.Now(),
	}
}

func newService(db *MockDBLayer, lock *MockLocker, payments *MockPaymentCreator) *events.EventService {
	var l events.Locker
	if lock != nil {
		l = lock
	}
	var p events.PaymentCreator
	if payments != nil {
		p = payments
	}
	return events.NewEventService(db, l, p, nil, nil, nil, nil, "test.topic", logger.NewLogger())
}

func TestRegisterFreeEventSkipsPayment(t *testing.T) {
	db := new(MockDBLayer)
	payments := new(MockPaymentCreator)
	svc := newService(db, nil, payments)

	event := newTestEvent(0)
	reg := newTestRegistration()
	db.On("Register", mock.Anything, "event-1", "user-1", 2).Return(event, reg, nil)

	result, err := svc.Register(context.Background(), "event-1", "user-1", 2)

	assert.NoError(t, err)
	assert.Nil(t, result.Payment)
	payments.AssertNotCalled(t, "CreatePending", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterPricedEventCreatesExactlyOnePendingPayment(t *testing.T) {
	db := new(MockDBLayer)
	payments := new(MockPaymentCreator)
	svc := newService(db, nil, payments)

	event := newTestEvent(25)
	reg := newTestRegistration()
	db.On("Register", mock.Anything, "event-1", "user-1", 2).Return(event, reg, nil)

	pending := &models.Payment{
		ID:       "pay-1",
		UserID:   "user-1",
		Kind:     models.PaymentKindEvent,
		EntityID: "event-1",
		Amount:   50,
		Status:   models.StatusPending,
	}
	payments.On("CreatePending", mock.Anything, "user-1", models.PaymentKindEvent, "event-1", 50.0, "Launch Night").
		Return(pending, nil).Once()

	result, err := svc.Register(context.Background(), "event-1", "user-1", 2)

	assert.NoError(t, err)
	assert.NotNil(t, result.Payment)
	assert.Equal(t, models.StatusPending, result.Payment.Status)
	assert.Equal(t, 50.0, result.Payment.Amount)
	payments.AssertNumberOfCalls(t, "CreatePending", 1)
}

func TestRegisterCapacityFull(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, nil, nil)

	db.On("Register", mock.Anything, "event-1", "user-1", 1).
		Return(nil, nil, registration.ErrCapacityFull)

	_, err := svc.Register(context.Background(), "event-1", "user-1", 1)

	assert.ErrorIs(t, err, registration.ErrCapacityFull)
}

func TestRegisterDuplicateRejected(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, nil, nil)

	db.On("Register", mock.Anything, "event-1", "user-1", 1).
		Return(nil, nil, registration.ErrAlreadyRegistered)

	_, err := svc.Register(context.Background(), "event-1", "user-1", 1)

	assert.ErrorIs(t, err, registration.ErrAlreadyRegistered)
}

func TestRegisterCompensatesWhenPaymentFails(t *testing.T) {
	db := new(MockDBLayer)
	payments := new(MockPaymentCreator)
	svc := newService(db, nil, payments)

	event := newTestEvent(25)
	reg := newTestRegistration()
	db.On("Register", mock.Anything, "event-1", "user-1", 2).Return(event, reg, nil)
	db.On("Unregister", mock.Anything, "event-1", "user-1").Return(reg, nil)

	payments.On("CreatePending", mock.Anything, "user-1", models.PaymentKindEvent, "event-1", 50.0, "Launch Night").
		Return(nil, errors.New("payment store down"))

	_, err := svc.Register(context.Background(), "event-1", "user-1", 2)

	assert.Error(t, err)
	db.AssertCalled(t, "Unregister", mock.Anything, "event-1", "user-1")
}

func TestRegisterReturnsLockedWhenHeld(t *testing.T) {
	db := new(MockDBLayer)
	lock := new(MockLocker)
	svc := newService(db, lock, nil)

	lock.On("Acquire", mock.Anything, "event", "event-1", "user-1").Return(false, nil)

	_, err := svc.Register(context.Background(), "event-1", "user-1", 1)

	assert.ErrorIs(t, err, registration.ErrLocked)
	db.AssertNotCalled(t, "Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterProceedsWhenLockUnavailable(t *testing.T) {
	db := new(MockDBLayer)
	lock := new(MockLocker)
	svc := newService(db, lock, nil)

	lock.On("Acquire", mock.Anything, "event", "event-1", "user-1").
		Return(false, errors.New("redis down"))
	db.On("Register", mock.Anything, "event-1", "user-1", 1).
		Return(newTestEvent(0), newTestRegistration(), nil)

	result, err := svc.Register(context.Background(), "event-1", "user-1", 1)

	assert.NoError(t, err)
	assert.NotNil(t, result.Registration)
}

func TestUnregisterClosesOpenPayment(t *testing.T) {
	db := new(MockDBLayer)
	payments := new(MockPaymentCreator)
	svc := newService(db, nil, payments)

	reg := newTestRegistration()
	db.On("Unregister", mock.Anything, "event-1", "user-1").Return(reg, nil)
	payments.On("RejectPendingForRegistration", mock.Anything, models.PaymentKindEvent, "event-1", "user-1").
		Return(nil)

	err := svc.Unregister(context.Background(), "event-1", "user-1")

	assert.NoError(t, err)
	payments.AssertCalled(t, "RejectPendingForRegistration", mock.Anything, models.PaymentKindEvent, "event-1", "user-1")
}

func TestUnregisterNotRegistered(t *testing.T) {
	db := new(MockDBLayer)
	svc := newService(db, nil, nil)

	db.On("Unregister", mock.Anything, "event-1", "user-1").
		Return(nil, registration.ErrNotRegistered)

	err := svc.Unregister(context.Background(), "event-1", "user-1")

	assert.ErrorIs(t, err, registration.ErrNotRegistered)
}
