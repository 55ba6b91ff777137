package trips

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/registration"
)

type DBLayer interface {
	CreateTrip(ctx context.Context, trip models.Trip) error
	GetTripByID(ctx context.Context, id string) (*models.Trip, error)
	ListTrips(ctx context.Context) ([]models.Trip, error)
	UpdateTrip(ctx context.Context, trip models.Trip) error
	DeleteTrip(ctx context.Context, id string) error
	Enroll(ctx context.Context, tripID, userID string) (*models.Trip, *models.TripEnrollment, error)
	Withdraw(ctx context.Context, tripID, userID string) (*models.TripEnrollment, error)
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

type ActivityRecorder interface {
	Record(ctx context.Context, userID, action, entity, entityID, detail string)
}

type EnrollmentResult struct {
	Trip       *models.Trip           `json:"trip"`
	Enrollment *models.TripEnrollment `json:"enrollment"`
	Payment    *models.Payment        `json:"payment,omitempty"`
}

type TripService struct {
	DB       DBLayer
	Lock     Locker
	Payments PaymentCreator
	Kafka    Publisher
	Activity ActivityRecorder
	Topic    string
	Logger   *logger.Logger
}

func NewTripService(db DBLayer, lock Locker, payments PaymentCreator, kafka Publisher, activity ActivityRecorder, topic string, log *logger.Logger) *TripService {
	return &TripService{
		DB:       db,
		Lock:     lock,
		Payments: payments,
		Kafka:    kafka,
		Activity: activity,
		Topic:    topic,
		Logger:   log,
	}
}

func (s *TripService) CreateTrip(ctx context.Context, req models.TripRequest) (*models.Trip, error) {
	trip := models.Trip{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		DepartsAt:   req.DepartsAt,
		Location:    req.Location,
		Price:       req.Price,
		Spots:       req.Spots,
		CreatedAt:   time.Now(),
	}
	if err := s.DB.CreateTrip(ctx, trip); err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	return &trip, nil
}

func (s *TripService) GetTrip(ctx context.Context, id string) (*models.Trip, error) {
	return s.DB.GetTripByID(ctx, id)
}

func (s *TripService) ListTrips(ctx context.Context) ([]models.Trip, error) {
	return s.DB.ListTrips(ctx)
}

func (s *TripService) UpdateTrip(ctx context.Context, id string, req models.TripRequest) (*models.Trip, error) {
	trip, err := s.DB.GetTripByID(ctx, id)
	if err != nil {
		return nil, err
	}

	trip.Title = req.Title
	trip.Description = req.Description
	trip.DepartsAt = req.DepartsAt
	trip.Location = req.Location
	trip.Price = req.Price
	trip.Spots = req.Spots
	trip.UpdatedAt = time.Now()

	if err := s.DB.UpdateTrip(ctx, *trip); err != nil {
		return nil, fmt.Errorf("failed to update trip %s: %w", id, err)
	}
	return trip, nil
}

func (s *TripService) DeleteTrip(ctx context.Context, id string) error {
	if _, err := s.DB.GetTripByID(ctx, id); err != nil {
		return err
	}
	return s.DB.DeleteTrip(ctx, id)
}

// Enroll follows the event registration flow: lock, transactional
// write, payment with compensation, best-effort tail.
func (s *TripService) Enroll(ctx context.Context, tripID, userID string) (*EnrollmentResult, error) {
	if s.Lock != nil {
		ok, err := s.Lock.Acquire(ctx, "trip", tripID, userID)
		if err != nil {
			s.Logger.Warn("ENROLL", fmt.Sprintf("Lock unavailable for trip %s, proceeding without: %v", tripID, err))
		} else if !ok {
			return nil, registration.ErrLocked
		} else {
			defer func() {
				if err := s.Lock.Release(ctx, "trip", tripID, userID); err != nil {
					s.Logger.Warn("ENROLL", fmt.Sprintf("Failed to release lock for trip %s: %v", tripID, err))
				}
			}()
		}
	}

	trip, enrollment, err := s.DB.Enroll(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}

	result := &EnrollmentResult{Trip: trip, Enrollment: enrollment}

	if trip.Price > 0 && s.Payments != nil {
		payment, err := s.Payments.CreatePending(ctx, userID, models.PaymentKindTrip, tripID, trip.Price, trip.Title)
		if err != nil {
			s.Logger.Error("ENROLL", fmt.Sprintf("Failed to create payment for trip %s, rolling back enrollment: %v", tripID, err))
			if _, werr := s.DB.Withdraw(ctx, tripID, userID); werr != nil {
				s.Logger.Error("ENROLL", fmt.Sprintf("Compensation failed for trip %s user %s: %v", tripID, userID, werr))
			}
			return nil, fmt.Errorf("failed to create payment: %w", err)
		}
		result.Payment = payment
	}

	if s.Kafka != nil {
		if value, err := json.Marshal(enrollment); err == nil {
			if err := s.Kafka.Publish(s.Topic, enrollment.ID, value); err != nil {
				s.Logger.Warn("ENROLL", fmt.Sprintf("Kafka publish error (enrollment created): %v", err))
			}
		}
	}
	if s.Activity != nil {
		s.Activity.Record(ctx, userID, "enroll", "trip", tripID, trip.Title)
	}

	return result, nil
}

func (s *TripService) Withdraw(ctx context.Context, tripID, userID string) error {
	enrollment, err := s.DB.Withdraw(ctx, tripID, userID)
	if err != nil {
		return err
	}

	if s.Payments != nil {
		if err := s.Payments.RejectPendingForRegistration(ctx, models.PaymentKindTrip, tripID, userID); err != nil {
			s.Logger.Warn("ENROLL", fmt.Sprintf("Failed to close payment for withdrawn enrollment %s: %v", enrollment.ID, err))
		}
	}

	if s.Activity != nil {
		s.Activity.Record(ctx, userID, "withdraw", "trip", tripID, "")
	}
	return nil
}
