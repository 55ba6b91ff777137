package db_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"evenza/internal/events/db"
	"evenza/internal/models"
	"evenza/internal/registration"
)

func setupTestDB(t *testing.T) *db.DB {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	err = bunDB.ResetModel(context.Background(),
		(*models.Event)(nil),
		(*models.EventRegistration)(nil),
	)
	require.NoError(t, err)

	t.Cleanup(func() { bunDB.Close() })
	return &db.DB{Bun: bunDB}
}

func seedEvent(t *testing.T, d *db.DB, id string, price float64, maxAttendees int) {
	event := models.Event{
		ID:           id,
		Title:        "Test Event",
		StartsAt:     time.Now().Add(24 * time.Hour),
		Price:        price,
		MaxAttendees: maxAttendees,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, d.CreateEvent(context.Background(), event))
}

func TestRegisterFreeEventCompletesImmediately(t *testing.T) {
	d := setupTestDB(t)
	seedEvent(t, d, "ev-1", 0, 10)

	event, reg, err := d.Register(context.Background(), "ev-1", "user-1", 2)

	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, reg.PaymentStatus)
	assert.Equal(t, 2, reg.Tickets)
	assert.Equal(t, 2, event.AttendeeCount)
}

func TestRegisterPricedEventStartsPending(t *testing.T) {
	d := setupTestDB(t)
	seedEvent(t, d, "ev-1", 15, 10)

	_, reg, err := d.Register(context.Background(), "ev-1", "user-1", 1)

	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, reg.PaymentStatus)
}

func TestRegisterRejectsWhenCapacityExhausted(t *testing.T) {
	d := setupTestDB(t)
	seedEvent(t, d, "ev-1", 0, 3)

	_, _, err := d.Register(context.Background(), "ev-1", "user-1", 3)
	require.NoError(t, err)

	_, _, err = d.Register(context.Background(), "ev-1", "user-2", 1)
	assert.ErrorIs(t, err, registration.ErrCapacityFull)
}

func TestRegisterRejectsDuplicate(t *testing.T) {
	d := setupTestDB(t)
	seedEvent(t, d, "ev-1", 0, 10)

	_, _, err := d.Register(context.Background(), "ev-1", "user-1", 1)
	require.NoError(t, err)

	_, _, err = d.Register(context.Background(), "ev-1", "user-1", 1)
	assert.ErrorIs(t, err, registration.ErrAlreadyRegistered)
}

func TestRegisterUnknownEvent(t *testing.T) {
	d := setupTestDB(t)

	_, _, err := d.Register(context.Background(), "missing", "user-1", 1)
	assert.ErrorIs(t, err, registration.ErrNotFound)
}

func TestUnregisterFreesCapacity(t *testing.T) {
	d := setupTestDB(t)
	seedEvent(t, d, "ev-1", 0, 2)

	_, _, err := d.Register(context.Background(), "ev-1", "user-1", 2)
	require.NoError(t, err)

	_, err = d.Unregister(context.Background(), "ev-1", "user-1")
	require.NoError(t, err)

	event, _, err := d.Register(context.Background(), "ev-1", "user-2", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, event.AttendeeCount)
}

func TestUnregisterWithoutRegistration(t *testing.T) {
	d := setupTestDB(t)
	seedEvent(t, d, "ev-1", 0, 10)

	_, err := d.Unregister(context.Background(), "ev-1", "user-1")
	assert.ErrorIs(t, err, registration.ErrNotRegistered)
}
