package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"evenza/internal/logger"
	"evenza/internal/models"
)

type Publisher interface {
	Publish(topic string, key string, value []byte) error
}

// Recorder writes the activity trail. Both sinks are best-effort:
// a failed log write or publish never surfaces to the caller.
type Recorder struct {
	Bun      *bun.DB
	Producer Publisher
	Topic    string
	Logger   *logger.Logger
}

func NewRecorder(bunDB *bun.DB, producer Publisher, topic string, log *logger.Logger) *Recorder {
	return &Recorder{
		Bun:      bunDB,
		Producer: producer,
		Topic:    topic,
		Logger:   log,
	}
}

// Record persists an activity row and mirrors it to kafka.
func (r *Recorder) Record(ctx context.Context, userID, action, entity, entityID, detail string) {
	entry := models.ActivityLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Detail:    detail,
		CreatedAt: time.Now(),
	}

	if r.Bun != nil {
		if _, err := r.Bun.NewInsert().Model(&entry).Exec(ctx); err != nil {
			r.Logger.Warn("ACTIVITY", fmt.Sprintf("Failed to write activity log %s/%s: %v", action, entityID, err))
		}
	}

	if r.Producer != nil {
		value, err := json.Marshal(entry)
		if err != nil {
			r.Logger.Warn("ACTIVITY", fmt.Sprintf("Failed to marshal activity entry: %v", err))
			return
		}
		if err := r.Producer.Publish(r.Topic, entry.EntityID, value); err != nil {
			r.Logger.Warn("ACTIVITY", fmt.Sprintf("Kafka publish error (activity): %v", err))
		}
	}
}
