package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/registration"
)

type DBLayer interface {
	CreateEvent(ctx context.Context, event models.Event) error
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event models.Event) error
	DeleteEvent(ctx context.Context, id string) error
	Register(ctx context.Context, eventID, userID string, tickets int) (*models.Event, *models.EventRegistration, error)
	Unregister(ctx context.Context, eventID, userID string) (*models.EventRegistration, error)
	GetRegistration(ctx context.Context, eventID, userID string) (*models.EventRegistration, error)
}

type Locker interface {
	Acquire(ctx context.Context, kind, entityID, ownerID string) (bool, error)
	Release(ctx context.Context, kind, entityID, ownerID string) error
}

type PaymentCreator interface {
	CreatePending(ctx context.Context, userID string, kind models.PaymentKind, entityID string, amount float64, description string) (*models.Payment, error)
	RejectPendingForRegistration(ctx context.Context, kind models.PaymentKind, entityID, userID string) error
}

type Publisher interface {
	Publish(topic string, key string, value []byte) error
}

type Notifier interface {
	SendRegistrationConfirmation(recipient, targetTitle string) error
}

type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID, action, entity, entityID, detail string)
}

type RegistrationResult struct {
	Event        *models.Event             `json:"event"`
	Registration *models.EventRegistration `json:"registration"`
	Payment      *models.Payment           `json:"payment,omitempty"`
}

type EventService struct {
	DB       DBLayer
	Lock     Locker
	Payments PaymentCreator
	Kafka    Publisher
	Mailer   Notifier
	Users    UserStore
	Activity ActivityRecorder
	Topic    string
	Logger   *logger.Logger
}

func NewEventService(db DBLayer, lock Locker, payments PaymentCreator, kafka Publisher, mailer Notifier, users UserStore, activity ActivityRecorder, topic string, log *logger.Logger) *EventService {
	return &EventService{
		DB:       db,
		Lock:     lock,
		Payments: payments,
		Kafka:    kafka,
		Mailer:   mailer,
		Users:    users,
		Activity: activity,
		Topic:    topic,
		Logger:   log,
	}
}

// ---------------- CRUD ----------------

func (s *EventService) CreateEvent(ctx context.Context, req models.EventRequest) (*models.Event, error) {
	event := models.Event{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		StartsAt:     req.StartsAt,
		Location:     req.Location,
		Price:        req.Price,
		MaxAttendees: req.MaxAttendees,
		CreatedAt:    time.Now(),
	}
	if err := s.DB.CreateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.DB.GetEventByID(ctx, id)
}

func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return s.DB.ListEvents(ctx)
}

func (s *EventService) UpdateEvent(ctx context.Context, id string, req models.EventRequest) (*models.Event, error) {
	event, err := s.DB.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}

	event.Title = req.Title
	event.Description = req.Description
	event.StartsAt = req.StartsAt
	event.Location = req.Location
	event.Price = req.Price
	event.MaxAttendees = req.MaxAttendees
	event.UpdatedAt = time.Now()

	if err := s.DB.UpdateEvent(ctx, *event); err != nil {
		return nil, fmt.Errorf("failed to update event %s: %w", id, err)
	}
	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if _, err := s.DB.GetEventByID(ctx, id); err != nil {
		return err
	}
	return s.DB.DeleteEvent(ctx, id)
}

// ---------------- REGISTRATION ----------------

// Register is the core enrollment flow. The membership writes run in
// one transaction behind a per-event lock; the payment is created next
// with a compensating unregister if it fails; everything after that is
// best-effort.
func (s *EventService) Register(ctx context.Context, eventID, userID string, tickets int) (*RegistrationResult, error) {
	if s.Lock != nil {
		ok, err := s.Lock.Acquire(ctx, "event", eventID, userID)
		if err != nil {
			s.Logger.Warn("REGISTER", fmt.Sprintf("Lock unavailable for event %s, proceeding without: %v", eventID, err))
		} else if !ok {
			return nil, registration.ErrLocked
		} else {
			defer func() {
				if err := s.Lock.Release(ctx, "event", eventID, userID); err != nil {
					s.Logger.Warn("REGISTER", fmt.Sprintf("Failed to release lock for event %s: %v", eventID, err))
				}
			}()
		}
	}

	event, reg, err := s.DB.Register(ctx, eventID, userID, tickets)
	if err != nil {
		return nil, err
	}

	result := &RegistrationResult{Event: event, Registration: reg}

	if event.Price > 0 && s.Payments != nil {
		amount := event.Price * float64(tickets)
		payment, err := s.Payments.CreatePending(ctx, userID, models.PaymentKindEvent, eventID, amount, event.Title)
		if err != nil {
			// Compensate: a priced registration without its payment
			// record is worse than no registration at all.
			s.Logger.Error("REGISTER", fmt.Sprintf("Failed to create payment for event %s, rolling back registration: %v", eventID, err))
			if _, uerr := s.DB.Unregister(ctx, eventID, userID); uerr != nil {
				s.Logger.Error("REGISTER", fmt.Sprintf("Compensation failed for event %s user %s: %v", eventID, userID, uerr))
			}
			return nil, fmt.Errorf("failed to create payment: %w", err)
		}
		result.Payment = payment
	}

	s.afterRegister(ctx, event, reg)
	return result, nil
}

// afterRegister does the best-effort tail: kafka event, activity row,
// confirmation email. Failures are logged and swallowed.
func (s *EventService) afterRegister(ctx context.Context, event *models.Event, reg *models.EventRegistration) {
	if s.Kafka != nil {
		value, err := json.Marshal(reg)
		if err == nil {
			if err := s.Kafka.Publish(s.Topic, reg.ID, value); err != nil {
				s.Logger.Warn("REGISTER", fmt.Sprintf("Kafka publish error (registration created): %v", err))
			}
		}
	}

	if s.Activity != nil {
		s.Activity.Record(ctx, reg.UserID, "register", "event", event.ID, event.Title)
	}

	if s.Mailer != nil && s.Users != nil {
		user, err := s.Users.GetUserByID(ctx, reg.UserID)
		if err != nil {
			s.Logger.Warn("REGISTER", fmt.Sprintf("Failed to load user %s for confirmation mail: %v", reg.UserID, err))
			return
		}
		if err := s.Mailer.SendRegistrationConfirmation(user.Email, event.Title); err != nil {
			s.Logger.Warn("REGISTER", fmt.Sprintf("Failed to send confirmation mail: %v", err))
		}
	}
}

// Unregister cancels the caller's registration and closes its open payment.
func (s *EventService) Unregister(ctx context.Context, eventID, userID string) error {
	reg, err := s.DB.Unregister(ctx, eventID, userID)
	if err != nil {
		return err
	}

	if s.Payments != nil {
		if err := s.Payments.RejectPendingForRegistration(ctx, models.PaymentKindEvent, eventID, userID); err != nil {
			s.Logger.Warn("REGISTER", fmt.Sprintf("Failed to close payment for cancelled registration %s: %v", reg.ID, err))
		}
	}

	if s.Activity != nil {
		s.Activity.Record(ctx, userID, "unregister", "event", eventID, "")
	}
	return nil
}

// GetRegistration returns the caller's registration, for the QR pass.
func (s *EventService) GetRegistration(ctx context.Context, eventID, userID string) (*models.EventRegistration, error) {
	return s.DB.GetRegistration(ctx, eventID, userID)
}

// IsNotFound reports whether err maps to a 404.
func IsNotFound(err error) bool {
	return errors.Is(err, registration.ErrNotFound) || errors.Is(err, registration.ErrNotRegistered)
}
