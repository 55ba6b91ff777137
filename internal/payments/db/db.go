package db

import (
	"context"

	"github.com/uptrace/bun"

	"evenza/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreatePayment(ctx context.Context, payment models.Payment) error {
	_, err := d.Bun.NewInsert().Model(&payment).Exec(ctx)
	return err
}

func (d *DB) GetPaymentByID(ctx context.Context, id string) (*models.Payment, error) {
	var payment models.Payment
	err := d.Bun.NewSelect().
		Model(&payment).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (d *DB) ListPayments(ctx context.Context, status models.PaymentStatus, limit, offset int) ([]models.Payment, error) {
	var payments []models.Payment
	q := d.Bun.NewSelect().
		Model(&payments).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return payments, nil
}

func (d *DB) ListPaymentsByUser(ctx context.Context, userID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := d.Bun.NewSelect().
		Model(&payments).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (d *DB) UpdatePayment(ctx context.Context, payment models.Payment) error {
	_, err := d.Bun.NewUpdate().
		Model(&payment).
		Column("status", "proof_url", "checkout_url", "verified_by", "verified_at", "updated_at").
		Where("id = ?", payment.ID).
		Exec(ctx)
	return err
}

// GetPendingForRegistration finds the open payment created by a
// registration, used when the registration is cancelled.
func (d *DB) GetPendingForRegistration(ctx context.Context, kind models.PaymentKind, entityID, userID string) (*models.Payment, error) {
	var payment models.Payment
	err := d.Bun.NewSelect().
		Model(&payment).
		Where("kind = ?", kind).
		Where("entity_id = ?", entityID).
		Where("user_id = ?", userID).
		Where("status = ?", models.StatusPending).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
