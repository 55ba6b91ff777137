package models

import (
	"time"

	"github.com/uptrace/bun"
)

type ActivityLog struct {
	bun.BaseModel `bun:"table:activity_logs"`

	ID        string    `bun:"id,pk" json:"id"`
	UserID    string    `bun:"user_id" json:"user_id"`
	Action    string    `bun:"action,notnull" json:"action"`
	Entity    string    `bun:"entity" json:"entity"`
	EntityID  string    `bun:"entity_id" json:"entity_id"`
	Detail    string    `bun:"detail" json:"detail"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
}
