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

	"evenza/internal/interviews/db"
	"evenza/internal/models"
	"evenza/internal/registration"
)

func setupTestDB(t *testing.T) *db.DB {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	err = bunDB.ResetModel(context.Background(),
		(*models.Interview)(nil),
		(*models.InterviewSubmission)(nil),
	)
	require.NoError(t, err)

	t.Cleanup(func() { bunDB.Close() })
	return &db.DB{Bun: bunDB}
}

func seedInterview(t *testing.T, d *db.DB, id string, positions int) {
	interview := models.Interview{
		ID:        id,
		Title:     "Backend Engineer",
		Company:   "Acme",
		Positions: positions,
		CreatedAt: time.Now(),
	}
	require.NoError(t, d.CreateInterview(context.Background(), interview))
}

func TestApplyCreatesPendingSubmission(t *testing.T) {
	d := setupTestDB(t)
	seedInterview(t, d, "iv-1", 3)

	interview, submission, err := d.Apply(context.Background(), "iv-1", "user-1")

	require.NoError(t, err)
	assert.Equal(t, models.SubmissionPending, submission.Status)
	assert.Equal(t, 1, interview.RegistrationCount)
}

func TestApplyIdenticalApplicationFailsSecondTime(t *testing.T) {
	d := setupTestDB(t)
	seedInterview(t, d, "iv-1", 3)

	_, _, err := d.Apply(context.Background(), "iv-1", "user-1")
	require.NoError(t, err)

	_, _, err = d.Apply(context.Background(), "iv-1", "user-1")
	assert.ErrorIs(t, err, registration.ErrAlreadyRegistered)
}

func TestApplyRejectsWhenPositionsFilled(t *testing.T) {
	d := setupTestDB(t)
	seedInterview(t, d, "iv-1", 1)

	_, _, err := d.Apply(context.Background(), "iv-1", "user-1")
	require.NoError(t, err)

	_, _, err = d.Apply(context.Background(), "iv-1", "user-2")
	assert.ErrorIs(t, err, registration.ErrCapacityFull)
}

func TestApplyUnknownInterview(t *testing.T) {
	d := setupTestDB(t)

	_, _, err := d.Apply(context.Background(), "missing", "user-1")
	assert.ErrorIs(t, err, registration.ErrNotFound)
}

func TestWithdrawReopensPosition(t *testing.T) {
	d := setupTestDB(t)
	seedInterview(t, d, "iv-1", 1)

	_, _, err := d.Apply(context.Background(), "iv-1", "user-1")
	require.NoError(t, err)

	_, err = d.WithdrawApplication(context.Background(), "iv-1", "user-1")
	require.NoError(t, err)

	_, _, err = d.Apply(context.Background(), "iv-1", "user-2")
	assert.NoError(t, err)
}

func TestWithdrawWithoutApplication(t *testing.T) {
	d := setupTestDB(t)
	seedInterview(t, d, "iv-1", 1)

	_, err := d.WithdrawApplication(context.Background(), "iv-1", "user-1")
	assert.ErrorIs(t, err, registration.ErrNotRegistered)
}

func TestSubmissionStatusTransitions(t *testing.T) {
	assert.True(t, models.SubmissionPending.CanTransition(models.SubmissionApproved))
	assert.True(t, models.SubmissionApproved.CanTransition(models.SubmissionCompleted))
	assert.False(t, models.SubmissionRejected.CanTransition(models.SubmissionApproved))
	assert.False(t, models.SubmissionCompleted.CanTransition(models.SubmissionPending))
}
