package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID            string    `bun:"id,pk" json:"id"`
	Title         string    `bun:"title,notnull" json:"title"`
	Description   string    `bun:"description" json:"description"`
	StartsAt      time.Time `bun:"starts_at,notnull" json:"starts_at"`
	Location      string    `bun:"location" json:"location"`
	Price         float64   `bun:"price,notnull" json:"price"`
	MaxAttendees  int       `bun:"max_attendees,notnull" json:"max_attendees"`
	AttendeeCount int       `bun:"attendee_count,notnull" json:"attendee_count"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type EventRegistration struct {
	bun.BaseModel `bun:"table:event_registrations"`

	ID            string        `bun:"id,pk" json:"id"`
	EventID       string        `bun:"event_id,notnull" json:"event_id"`
	UserID        string        `bun:"user_id,notnull" json:"user_id"`
	Tickets       int           `bun:"tickets,notnull" json:"tickets"`
	PaymentStatus PaymentStatus `bun:"payment_status,notnull" json:"payment_status"`
	CreatedAt     time.Time     `bun:"created_at,notnull" json:"created_at"`
}

type EventRequest struct {
	Title        string    `json:"title" validate:"required,max=200"`
	Description  string    `json:"description" validate:"max=5000"`
	StartsAt     time.Time `json:"starts_at" validate:"required"`
	Location     string    `json:"location" validate:"max=300"`
	Price        float64   `json:"price" validate:"gte=0"`
	MaxAttendees int       `json:"max_attendees" validate:"positive"`
}

type RegisterEventRequest struct {
	Tickets int `json:"tickets" validate:"positive,lte=10"`
}
