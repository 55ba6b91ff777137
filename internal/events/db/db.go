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

// ---------------- EVENTS ----------------

func (d *DB) CreateEvent(ctx context.Context, event models.Event) error {
	_, err := d.Bun.NewInsert().Model(&event).Exec(ctx)
	return err
}

func (d *DB) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := d.Bun.NewSelect().
		Model(&event).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (d *DB) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	err := d.Bun.NewSelect().
		Model(&events).
		Order("starts_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (d *DB) UpdateEvent(ctx context.Context, event models.Event) error {
	_, err := d.Bun.NewUpdate().
		Model(&event).
		Column("title", "description", "starts_at", "location", "price", "max_attendees", "updated_at").
		Where("id = ?", event.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteEvent(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ---------------- REGISTRATIONS ----------------

// Register runs the membership write as one transaction: capacity
// check, duplicate check, registration insert, counter increment.
func (d *DB) Register(ctx context.Context, eventID, userID string, tickets int) (*models.Event, *models.EventRegistration, error) {
	var event models.Event
	var reg models.EventRegistration

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&event).
			Where("id = ?", eventID).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return registration.ErrNotFound
			}
			return err
		}

		exists, err := tx.NewSelect().
			Model((*models.EventRegistration)(nil)).
			Where("event_id = ?", eventID).
			Where("user_id = ?", userID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			return registration.ErrAlreadyRegistered
		}

		if event.AttendeeCount+tickets > event.MaxAttendees {
			return registration.ErrCapacityFull
		}

		status := models.StatusCompleted
		if event.Price > 0 {
			status = models.StatusPending
		}

		reg = models.EventRegistration{
			ID:            uuid.NewString(),
			EventID:       eventID,
			UserID:        userID,
			Tickets:       tickets,
			PaymentStatus: status,
			CreatedAt:     time.Now(),
		}
		if _, err := tx.NewInsert().Model(&reg).Exec(ctx); err != nil {
			return err
		}

		event.AttendeeCount += tickets
		_, err = tx.NewUpdate().
			Model((*models.Event)(nil)).
			Set("attendee_count = attendee_count + ?", tickets).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", eventID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return &event, &reg, nil
}

// Unregister removes the membership row and gives the tickets back.
func (d *DB) Unregister(ctx context.Context, eventID, userID string) (*models.EventRegistration, error) {
	var reg models.EventRegistration

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&reg).
			Where("event_id = ?", eventID).
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
			Model((*models.EventRegistration)(nil)).
			Where("id = ?", reg.ID).
			Exec(ctx); err != nil {
			return err
		}

		_, err = tx.NewUpdate().
			Model((*models.Event)(nil)).
			Set("attendee_count = attendee_count - ?", reg.Tickets).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", eventID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (d *DB) GetRegistration(ctx context.Context, eventID, userID string) (*models.EventRegistration, error) {
	var reg models.EventRegistration
	err := d.Bun.NewSelect().
		Model(&reg).
		Where("event_id = ?", eventID).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrNotRegistered
		}
		return nil, err
	}
	return &reg, nil
}
