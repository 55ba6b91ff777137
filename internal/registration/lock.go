package registration

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Lock serializes registrations per target entity so two concurrent
// requests cannot both pass the capacity check. The key is held only
// for the duration of the write and expires on its own if the holder
// dies mid-flight.
type Lock struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewLock(client *redis.Client) *Lock {
	return &Lock{
		Client: client,
		Logger: log.Default(),
	}
}

func (l *Lock) lockDuration() time.Duration {
	defaultDuration := 10 * time.Second

	ttlStr := os.Getenv("REG_LOCK_TTL_SECONDS")
	if ttlStr == "" {
		return defaultDuration
	}

	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil {
		l.Logger.Println("REDIS: Invalid REG_LOCK_TTL_SECONDS value '" + ttlStr + "', using default 10 seconds")
		return defaultDuration
	}
	return time.Duration(ttlSec) * time.Second
}

func key(kind, entityID string) string {
	return fmt.Sprintf("reg_lock:%s:%s", kind, entityID)
}

// Acquire takes the per-entity lock. Returns false when another
// registration currently holds it.
func (l *Lock) Acquire(ctx context.Context, kind, entityID, ownerID string) (bool, error) {
	return l.Client.SetNX(ctx, key(kind, entityID), ownerID, l.lockDuration()).Result()
}

// Release deletes the lock only if ownerID still holds it.
func (l *Lock) Release(ctx context.Context, kind, entityID, ownerID string) error {
	k := key(kind, entityID)
	val, err := l.Client.Get(ctx, k).Result()
	if err == redis.Nil {
		return nil // already expired
	}
	if err != nil {
		return err
	}
	if val == ownerID {
		_, err := l.Client.Del(ctx, k).Result()
		return err
	}
	return nil
}
