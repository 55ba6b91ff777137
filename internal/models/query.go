package models

import (
	"time"

	"github.com/uptrace/bun"
)

type QueryStatus string

const (
	QueryNew      QueryStatus = "new"
	QueryOpen     QueryStatus = "open"
	QueryAnswered QueryStatus = "answered"
	QueryClosed   QueryStatus = "closed"
)

func (s QueryStatus) Valid() bool {
	switch s {
	case QueryNew, QueryOpen, QueryAnswered, QueryClosed:
		return true
	}
	return false
}

// Query is a user-submitted support ticket.
type Query struct {
	bun.BaseModel `bun:"table:queries"`

	ID        string      `bun:"id,pk" json:"id"`
	UserID    string      `bun:"user_id,notnull" json:"user_id"`
	Subject   string      `bun:"subject,notnull" json:"subject"`
	Message   string      `bun:"message,notnull" json:"message"`
	Status    QueryStatus `bun:"status,notnull" json:"status"`
	Response  string      `bun:"response,nullzero" json:"response,omitempty"`
	CreatedAt time.Time   `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time   `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type QueryRequest struct {
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type QueryResponseRequest struct {
	Response string `json:"response" validate:"required,max=5000"`
}
