package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Interview struct {
	bun.BaseModel `bun:"table:interviews"`

	ID                string    `bun:"id,pk" json:"id"`
	Title             string    `bun:"title,notnull" json:"title"`
	Company           string    `bun:"company,notnull" json:"company"`
	Positions         int       `bun:"positions,notnull" json:"positions"`
	RegistrationCount int       `bun:"registration_count,notnull" json:"registration_count"`
	CreatedAt         time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionApproved  SubmissionStatus = "approved"
	SubmissionRejected  SubmissionStatus = "rejected"
	SubmissionCompleted SubmissionStatus = "completed"
	SubmissionCancelled SubmissionStatus = "cancelled"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionPending, SubmissionApproved, SubmissionRejected,
		SubmissionCompleted, SubmissionCancelled:
		return true
	}
	return false
}

// submissionTransitions is the allowed transition table. The admin
// screens used to accept any-to-any moves; now anything outside this
// table is a validation error.
var submissionTransitions = map[SubmissionStatus][]SubmissionStatus{
	SubmissionPending:   {SubmissionApproved, SubmissionRejected, SubmissionCancelled},
	SubmissionApproved:  {SubmissionCompleted, SubmissionCancelled},
	SubmissionRejected:  {},
	SubmissionCompleted: {},
	SubmissionCancelled: {},
}

func (s SubmissionStatus) CanTransition(to SubmissionStatus) bool {
	for _, allowed := range submissionTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

type InterviewSubmission struct {
	bun.BaseModel `bun:"table:interview_submissions"`

	ID          string           `bun:"id,pk" json:"id"`
	InterviewID string           `bun:"interview_id,notnull" json:"interview_id"`
	UserID      string           `bun:"user_id,notnull" json:"user_id"`
	Status      SubmissionStatus `bun:"status,notnull" json:"status"`
	AdminNotes  string           `bun:"admin_notes" json:"admin_notes,omitempty"`
	CreatedAt   time.Time        `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt   time.Time        `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type InterviewRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	Company   string `json:"company" validate:"required,max=200"`
	Positions int    `json:"positions" validate:"positive"`
}

type SubmissionStatusRequest struct {
	Status     SubmissionStatus `json:"status" validate:"required"`
	AdminNotes string           `json:"admin_notes" validate:"max=2000"`
}
