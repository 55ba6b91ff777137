package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"evenza/internal/models"
	"evenza/internal/registration"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateContent(ctx context.Context, content models.Content) error {
	_, err := d.Bun.NewInsert().Model(&content).Exec(ctx)
	return err
}

func (d *DB) GetContentByID(ctx context.Context, id string) (*models.Content, error) {
	var content models.Content
	err := d.Bun.NewSelect().
		Model(&content).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrNotFound
		}
		return nil, err
	}
	return &content, nil
}

func (d *DB) GetContentBySlug(ctx context.Context, slug string) (*models.Content, error) {
	var content models.Content
	err := d.Bun.NewSelect().
		Model(&content).
		Where("slug = ?", slug).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrNotFound
		}
		return nil, err
	}
	return &content, nil
}

func (d *DB) ListContents(ctx context.Context, publishedOnly bool) ([]models.Content, error) {
	var contents []models.Content
	q := d.Bun.NewSelect().
		Model(&contents).
		Order("created_at DESC")
	if publishedOnly {
		q = q.Where("published = ?", true)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return contents, nil
}

func (d *DB) UpdateContent(ctx context.Context, content models.Content) error {
	_, err := d.Bun.NewUpdate().
		Model(&content).
		Column("slug", "title", "body", "published", "updated_at").
		Where("id = ?", content.ID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteContent(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Content)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ---------------- SETTINGS ----------------

// UpsertSetting writes the value for a key, inserting or replacing.
func (d *DB) UpsertSetting(ctx context.Context, setting models.Setting) error {
	setting.UpdatedAt = time.Now()
	_, err := d.Bun.NewInsert().
		Model(&setting).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (d *DB) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	err := d.Bun.NewSelect().
		Model(&setting).
		Where("key = ?", key).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, registration.ErrNotFound
		}
		return nil, err
	}
	return &setting, nil
}

func (d *DB) ListSettings(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	err := d.Bun.NewSelect().
		Model(&settings).
		Order("key ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return settings, nil
}
