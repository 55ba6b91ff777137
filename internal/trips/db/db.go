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

func (d *DB) CreateTrip(ctx context.Context, trip models.Trip) error {
	_, err := d.Bun.NewInsert().Model(&trip).Exec(ctx)
	return err
}

func (d *DB) GetTripByID(ctx context.Context, id string) (*models.Trip, error) {
	var trip models.Trip
	err := d.Bun.NewSelect().
		Model(&trip).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrNotFound
		}
		return nil, err
	}
	return &trip, nil
}

func (d *DB) ListTrips(ctx context.Context) ([]models.Trip, error) {
	var trips []models.Trip
	err := d.Bun.NewSelect().
		Model(&trips).
		Order("departs_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return trips, nil
}

func (d *DB) UpdateTrip(ctx context.Context, trip models.Trip) error {
	_, err := d.Bun.NewUpdate().
		Model(&trip).
		Column("title", "description", "departs_at", "location", "price", "spots", "updated_at").
		Where("id = ?", trip.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteTrip(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Trip)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// Enroll mirrors the event registration write: one transaction for the
// spot check, duplicate check, enrollment insert and counter bump.
func (d *DB) Enroll(ctx context.Context, tripID, userID string) (*models.Trip, *models.TripEnrollment, error) {
	var trip models.Trip
	var enrollment models.TripEnrollment

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&trip).
			Where("id = ?", tripID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return registration.ErrNotFound
			}
			return err
		}

		exists, err := tx.NewSelect().
			Model((*models.TripEnrollment)(nil)).
			Where("trip_id = ?", tripID).
			Where("user_id = ?", userID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return registration.ErrAlreadyRegistered
		}

		if trip.EnrollmentCount >= trip.Spots {
			return registration.ErrCapacityFull
		}

		status := models.StatusCompleted
		if trip.Price > 0 {
			status = models.StatusPending
		}

		enrollment = models.TripEnrollment{
			ID:            uuid.NewString(),
			TripID:        tripID,
			UserID:        userID,
			PaymentStatus: status,
			CreatedAt:     time.Now(),
		}
		if _, err := tx.NewInsert().Model(&enrollment).Exec(ctx); err != nil {
			return err
		}

		trip.EnrollmentCount++
		_, err = tx.NewUpdate().
			Model((*models.Trip)(nil)).
			Set("enrollment_count = enrollment_count + 1").
			Set("updated_at = ?", time.Now()).
			Where("id = ?", tripID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &trip, &enrollment, nil
}

func (d *DB) Withdraw(ctx context.Context, tripID, userID string) (*models.TripEnrollment, error) {
	var enrollment models.TripEnrollment

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&enrollment).
			Where("trip_id = ?", tripID).
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
			Model((*models.TripEnrollment)(nil)).
			Where("id = ?", enrollment.ID).
			Exec(ctx); err != nil {
			return err
		}

		_, err = tx.NewUpdate().
			Model((*models.Trip)(nil)).
			Set("enrollment_count = enrollment_count - 1").
			Set("updated_at = ?", time.Now()).
			Where("id = ?", tripID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}
