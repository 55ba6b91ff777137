package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Content struct {
	bun.BaseModel `bun:"table:contents"`

	ID        string    `bun:"id,pk" json:"id"`
	Slug      string    `bun:"slug,unique,notnull" json:"slug"`
	Title     string    `bun:"title,notnull" json:"title"`
	Body      string    `bun:"body" json:"body"`
	Published bool      `bun:"published,notnull" json:"published"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type ContentRequest struct {
	Slug      string `json:"slug" validate:"required,max=120"`
	Title     string `json:"title" validate:"required,max=200"`
	Body      string `json:"body" validate:"max=100000"`
	Published bool   `json:"published"`
}

type Setting struct {
	bun.BaseModel `bun:"table:settings"`

	Key       string    `bun:"key,pk" json:"key"`
	Value     string    `bun:"value,notnull" json:"value"`
	UpdatedAt time.Time `bun:"updated_at,notnull" json:"updated_at"`
}

type SettingRequest struct {
	Key   string `json:"key" validate:"required,max=120"`
	Value string `json:"value" validate:"required,max=10000"`
}
