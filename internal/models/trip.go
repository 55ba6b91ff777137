package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Trip struct {
	bun.BaseModel `bun:"table:trips"`

	ID              string    `bun:"id,pk" json:"id"`
	Title           string    `bun:"title,notnull" json:"title"`
	Description     string    `bun:"description" json:"description"`
	DepartsAt       time.Time `bun:"departs_at,notnull" json:"departs_at"`
	Location        string    `bun:"location" json:"location"`
	Price           float64   `bun:"price,notnull" json:"price"`
	Spots           int       `bun:"spots,notnull" json:"spots"`
	EnrollmentCount int       `bun:"enrollment_count,notnull" json:"enrollment_count"`
	CreatedAt       time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type TripEnrollment struct {
	bun.BaseModel `bun:"table:trip_enrollments"`

	ID            string        `bun:"id,pk" json:"id"`
	TripID        string        `bun:"trip_id,notnull" json:"trip_id"`
	UserID        string        `bun:"user_id,notnull" json:"user_id"`
	PaymentStatus PaymentStatus `bun:"payment_status,notnull" json:"payment_status"`
	CreatedAt     time.Time     `bun:"created_at,notnull" json:"created_at"`
}

type TripRequest struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	DepartsAt   time.Time `json:"departs_at" validate:"required"`
	Location    string    `json:"location" validate:"max=300"`
	Price       float64   `json:"price" validate:"gte=0"`
	Spots       int       `json:"spots" validate:"positive"`
}
