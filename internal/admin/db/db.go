package db

import (
	"context"

	"github.com/uptrace/bun"

	"evenza/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// Counts runs one count per table for the dashboard header.
func (d *DB) Counts(ctx context.Context) (map[string]int, error) {
	counts := map[string]int{}

	tables := map[string]interface{}{
		"users":         (*models.User)(nil),
		"events":        (*models.Event)(nil),
		"trips":         (*models.Trip)(nil),
		"interviews":    (*models.Interview)(nil),
		"payments":      (*models.Payment)(nil),
		"queries":       (*models.Query)(nil),
		"contents":      (*models.Content)(nil),
		"submissions":   (*models.InterviewSubmission)(nil),
		"enrollments":   (*models.TripEnrollment)(nil),
		"registrations": (*models.EventRegistration)(nil),
	}

	for name, model := range tables {
		count, err := d.Bun.NewSelect().Model(model).Count(ctx)
		if err != nil {
			return nil, err
		}
		counts[name] = count
	}
	return counts, nil
}

func (d *DB) CountPaymentsByStatus(ctx context.Context, status models.PaymentStatus) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Payment)(nil)).
		Where("status = ?", status).
		Count(ctx)
}

func (d *DB) CountQueriesByStatus(ctx context.Context, status models.QueryStatus) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.Query)(nil)).
		Where("status = ?", status).
		Count(ctx)
}

func (d *DB) ListActivity(ctx context.Context, limit, offset int) ([]models.ActivityLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var logs []models.ActivityLog
	err := d.Bun.NewSelect().
		Model(&logs).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return logs, nil
}
