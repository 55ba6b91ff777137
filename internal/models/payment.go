package models

import (
	"time"

	"github.com/uptrace/bun"
)

type PaymentStatus string

const (
	StatusPending   PaymentStatus = "pending"
	StatusCompleted PaymentStatus = "completed"
	StatusRejected  PaymentStatus = "rejected"
	StatusRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusRejected, StatusRefunded:
		return true
	}
	return false
}

// paymentTransitions replaces the old any-to-any admin update with an
// explicit table. A rejected payment may go back to pending when the
// user submits a new proof; refunded is terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	StatusPending:   {StatusCompleted, StatusRejected},
	StatusCompleted: {StatusRefunded},
	StatusRejected:  {StatusPending},
	StatusRefunded:  {},
}

func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type PaymentKind string

const (
	PaymentKindEvent     PaymentKind = "event"
	PaymentKindTrip      PaymentKind = "trip"
	PaymentKindInterview PaymentKind = "interview"
)

type Payment struct {
	bun.BaseModel `bun:"table:payments"`

	ID          string        `bun:"id,pk" json:"id"`
	UserID      string        `bun:"user_id,notnull" json:"user_id"`
	Kind        PaymentKind   `bun:"kind,notnull" json:"kind"`
	EntityID    string        `bun:"entity_id,notnull" json:"entity_id"`
	Amount      float64       `bun:"amount,notnull" json:"amount"`
	Status      PaymentStatus `bun:"status,notnull" json:"status"`
	ProofURL    string        `bun:"proof_url,nullzero" json:"proof_url,omitempty"`
	CheckoutURL string        `bun:"checkout_url,nullzero" json:"checkout_url,omitempty"`
	VerifiedBy  string        `bun:"verified_by,nullzero" json:"verified_by,omitempty"`
	VerifiedAt  time.Time     `bun:"verified_at,nullzero" json:"verified_at,omitempty"`
	CreatedAt   time.Time     `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time     `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type PaymentStatusRequest struct {
	Status PaymentStatus `json:"status" validate:"required"`
}

type PaymentProofRequest struct {
	ProofURL string `json:"proof_url" validate:"required,url"`
}

type PaymentEvent struct {
	Type      string    `json:"type"`
	PaymentID string    `json:"payment_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
