package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"evenza/internal/models"
	"evenza/internal/registration"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateQuery(ctx context.Context, query models.Query) error {
	_, err := d.Bun.NewInsert().Model(&query).Exec(ctx)
	return err
}

func (d *DB) GetQueryByID(ctx context.Context, id string) (*models.Query, error) {
	var query models.Query
	err := d.Bun.NewSelect().
		Model(&query).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrNotFound
		}
		return nil, err
	}
	return &query, nil
}

func (d *DB) ListQueries(ctx context.Context, status models.QueryStatus) ([]models.Query, error) {
	var queries []models.Query
	q := d.Bun.NewSelect().
		Model(&queries).
		Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return queries, nil
}

func (d *DB) ListQueriesByUser(ctx context.Context, userID string) ([]models.Query, error) {
	var queries []models.Query
	err := d.Bun.NewSelect().
		Model(&queries).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return queries, nil
}

func (d *DB) UpdateQuery(ctx context.Context, query models.Query) error {
	_, err := d.Bun.NewUpdate().
		Model(&query).
		Column("status", "response", "updated_at").
		Where("id = ?", query.ID).
		Exec(ctx)
	return err
}
