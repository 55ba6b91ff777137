package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"evenza/internal/models"
	"evenza/internal/registration"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateInterview(ctx context.Context, interview models.Interview) error {
	_, err := d.Bun.NewInsert().Model(&interview).Exec(ctx)
	return err
}

func (d *DB) GetInterviewByID(ctx context.Context, id string) (*models.Interview, error) {
	var interview models.Interview
	err := d.Bun.NewSelect().
		Model(&interview).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrNotFound
		}
		return nil, err
	}
	return &interview, nil
}

func (d *DB) ListInterviews(ctx context.Context) ([]models.Interview, error) {
	var interviews []models.Interview
	err := d.Bun.NewSelect().
		Model(&interviews).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return interviews, nil
}

func (d *DB) UpdateInterview(ctx context.Context, interview models.Interview) error {
	_, err := d.Bun.NewUpdate().
		Model(&interview).
		Column("title", "company", "positions", "updated_at").
		Where("id = ?", interview.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteInterview(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Interview)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ---------------- SUBMISSIONS ----------------

// Apply creates the submission inside one transaction. The duplicate
// check backs up the unique (interview_id, user_id) index so a clean
// domain error comes back instead of a constraint violation.
func (d *DB) Apply(ctx context.Context, interviewID, userID string) (*models.Interview, *models.InterviewSubmission, error) {
	var interview models.Interview
	var submission models.InterviewSubmission

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&interview).
			Where("id = ?", interviewID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return registration.ErrNotFound
			}
			return err
		}

		exists, err := tx.NewSelect().
			Model((*models.InterviewSubmission)(nil)).
			Where("interview_id = ?", interviewID).
			Where("user_id = ?", userID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return registration.ErrAlreadyRegistered
		}

		if interview.RegistrationCount >= interview.Positions {
			return registration.ErrCapacityFull
		}

		submission = models.InterviewSubmission{
			ID:          uuid.NewString(),
			InterviewID: interviewID,
			UserID:      userID,
			Status:      models.SubmissionPending,
			CreatedAt:   time.Now(),
		}
		if _, err := tx.NewInsert().Model(&submission).Exec(ctx); err != nil {
			return err
		}

		interview.RegistrationCount++
		_, err = tx.NewUpdate().
			Model((*models.Interview)(nil)).
			Set("registration_count = registration_count + 1").
			Set("updated_at = ?", time.Now()).
			Where("id = ?", interviewID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &interview, &submission, nil
}

func (d *DB) WithdrawApplication(ctx context.Context, interviewID, userID string) (*models.InterviewSubmission, error) {
	var submission models.InterviewSubmission

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&submission).
			Where("interview_id = ?", interviewID).
			Where("user_id = ?", userID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return registration.ErrNotRegistered
			}
			return err
		}

		if _, err := tx.NewDelete().
			Model((*models.InterviewSubmission)(nil)).
			Where("id = ?", submission.ID).
			Exec(ctx); err != nil {
			return err
		}

		_, err = tx.NewUpdate().
			Model((*models.Interview)(nil)).
			Set("registration_count = registration_count - 1").
			Set("updated_at = ?", time.Now()).
			Where("id = ?", interviewID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (d *DB) GetSubmissionByID(ctx context.Context, id string) (*models.InterviewSubmission, error) {
	var submission models.InterviewSubmission
	err := d.Bun.NewSelect().
		Model(&submission).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrNotFound
		}
		return nil, err
	}
	return &submission, nil
}

func (d *DB) ListSubmissions(ctx context.Context, interviewID string) ([]models.InterviewSubmission, error) {
	var submissions []models.InterviewSubmission
	q := d.Bun.NewSelect().
		Model(&submissions).
		Order("created_at DESC")
	if interviewID != "" {
		q = q.Where("interview_id = ?", interviewID)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return submissions, nil
}

func (d *DB) UpdateSubmission(ctx context.Context, submission models.InterviewSubmission) error {
	_, err := d.Bun.NewUpdate().
		Model(&submission).
		Column("status", "admin_notes", "updated_at").
		Where("id = ?", submission.ID).
		Exec(ctx)
	return err
}
