package payments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/utils"
)

var (
	ErrNotFound          = errors.New("payment not found")
	ErrInvalidStatus     = errors.New("invalid payment status")
	ErrInvalidTransition = errors.New("invalid payment status transition")
	ErrNotOwner          = errors.New("payment belongs to another user")
	ErrNotOpen           = errors.New("payment is not open for proof submission")
)

type DBLayer interface {
	CreatePayment(ctx context.Context, payment models.Payment) error
	GetPaymentByID(ctx context.Context, id string) (*models.Payment, error)
	ListPayments(ctx context.Context, status models.PaymentStatus, limit, offset int) ([]models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error)
	UpdatePayment(ctx context.Context, payment models.Payment) error
	GetPendingForRegistration(ctx context.Context, kind models.PaymentKind, entityID, userID string) (*models.Payment, error)
}

type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type Publisher interface {
	Publish(topic string, key string, value []byte) error
}

type Notifier interface {
	SendPaymentStatus(recipient, status string, amount float64) error
}

type PaymentService struct {
	DB       DBLayer
	Users    UserStore
	Kafka    Publisher
	Mailer   Notifier
	Checkout CheckoutLinker
	Topic    string
	Logger   *logger.Logger
}

func NewPaymentService(db DBLayer, userStore UserStore, kafka Publisher, mailer Notifier, checkout CheckoutLinker, topic string, log *logger.Logger) *PaymentService {
	return &PaymentService{
		DB:       db,
		Users:    userStore,
		Kafka:    kafka,
		Mailer:   mailer,
		Checkout: checkout,
		Topic:    topic,
		Logger:   log,
	}
}

func (s *PaymentService) GetPayment(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.DB.GetPaymentByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, status models.PaymentStatus, limit, offset int) ([]models.Payment, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.DB.ListPayments(ctx, status, limit, offset)
}

func (s *PaymentService) ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	return s.DB.ListPaymentsByUser(ctx, userID)
}

// CreatePending records the payment a priced registration produced and
// attaches a Stripe checkout link when the gateway is configured. The
// link attach is best-effort.
func (s *PaymentService) CreatePending(ctx context.Context, userID string, kind models.PaymentKind, entityID string, amount float64, description string) (*models.Payment, error) {
	payment := models.Payment{
		ID:        utils.GeneratePaymentID(),
		UserID:    userID,
		Kind:      kind,
		EntityID:  entityID,
		Amount:    amount,
		Status:    models.StatusPending,
		CreatedAt: time.Now(),
	}

	if s.Checkout != nil {
		url, err := s.Checkout.CheckoutLink(payment, description)
		if err != nil {
			s.Logger.Warn("PAYMENT", fmt.Sprintf("Failed to create checkout link for %s: %v", payment.ID, err))
		} else {
			payment.CheckoutURL = url
		}
	}

	if err := s.DB.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	return &payment, nil
}

// UpdateStatus applies an admin decision through the transition table
// and stamps the verifier.
func (s *PaymentService) UpdateStatus(ctx context.Context, paymentID string, newStatus models.PaymentStatus, verifierID string) (*models.Payment, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}

	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	if !payment.Status.CanTransition(newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, payment.Status, newStatus)
	}

	payment.Status = newStatus
	payment.VerifiedBy = verifierID
	payment.VerifiedAt = time.Now()
	payment.UpdatedAt = time.Now()

	if err := s.DB.UpdatePayment(ctx, *payment); err != nil {
		return nil, fmt.Errorf("failed to update payment %s: %w", paymentID, err)
	}

	s.notify(ctx, payment)
	return payment, nil
}

// AttachProof lets the owner attach an uploaded proof URL. A rejected
// payment goes back to pending for re-review.
func (s *PaymentService) AttachProof(ctx context.Context, paymentID, userID, proofURL string) (*models.Payment, error) {
	payment, err := s.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, ErrNotOwner
	}
	if payment.Status != models.StatusPending && payment.Status != models.StatusRejected {
		return nil, ErrNotOpen
	}

	if payment.Status == models.StatusRejected {
		payment.Status = models.StatusPending
	}
	payment.ProofURL = proofURL
	payment.UpdatedAt = time.Now()

	if err := s.DB.UpdatePayment(ctx, *payment); err != nil {
		return nil, fmt.Errorf("failed to attach proof to payment %s: %w", paymentID, err)
	}
	return payment, nil
}

// RejectPendingForRegistration closes the open payment of a cancelled
// registration. Missing payment is fine: free registrations have none.
func (s *PaymentService) RejectPendingForRegistration(ctx context.Context, kind models.PaymentKind, entityID, userID string) error {
	payment, err := s.DB.GetPendingForRegistration(ctx, kind, entityID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return err
	}

	payment.Status = models.StatusRejected
	payment.UpdatedAt = time.Now()
	return s.DB.UpdatePayment(ctx, *payment)
}

func (s *PaymentService) notify(ctx context.Context, payment *models.Payment) {
	if s.Kafka != nil {
		event := models.PaymentEvent{
			Type:      "payment.status_changed",
			PaymentID: payment.ID,
			Status:    string(payment.Status),
			Timestamp: time.Now(),
		}
		value, err := json.Marshal(event)
		if err == nil {
			if err := s.Kafka.Publish(s.Topic, payment.ID, value); err != nil {
				s.Logger.Warn("PAYMENT", fmt.Sprintf("Kafka publish error (payment updated): %v", err))
			}
		}
	}

	if s.Mailer != nil && s.Users != nil {
		user, err := s.Users.GetUserByID(ctx, payment.UserID)
		if err != nil {
			s.Logger.Warn("PAYMENT", fmt.Sprintf("Failed to load user %s for notification: %v", payment.UserID, err))
			return
		}
		if err := s.Mailer.SendPaymentStatus(user.Email, string(payment.Status), payment.Amount); err != nil {
			s.Logger.Warn("PAYMENT", fmt.Sprintf("Failed to send payment mail: %v", err))
		}
	}
}
