package users_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"evenza/internal/models"
	"evenza/internal/users"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) CreateUser(ctx context.Context, user models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockDBLayer) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDBLayer) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockDBLayer) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockDBLayer) UpdateUserRole(ctx context.Context, id string, role models.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockDBLayer) DeleteUser(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDBLayer) GetEventRegistrationsByUser(ctx context.Context, userID string) ([]models.EventRegistration, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EventRegistration), args.Error(1)
}

func (m *MockDBLayer) GetTripEnrollmentsByUser(ctx context.Context, userID string) ([]models.TripEnrollment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TripEnrollment), args.Error(1)
}

func (m *MockDBLayer) GetSubmissionsByUser(ctx context.Context, userID string) ([]models.InterviewSubmission, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InterviewSubmission), args.Error(1)
}

func TestRegisterHashesPasswordAndDefaultsRole(t *testing.T) {
	db := new(MockDBLayer)
	svc := users.NewUserService(db)

	db.On("GetUserByEmail", mock.Anything, "new@example.com").Return(nil, sql.ErrNoRows)

	var created models.User
	db.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		created = u
		return u.Email == "new@example.com" && u.Role == models.RoleUser
	})).Return(nil)

	user, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "New User",
		Email:    "new@example.com",
		Password: "supersecret1",
	})

	require.NoError(t, err)
	assert.NotEqual(t, "supersecret1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("supersecret1")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := new(MockDBLayer)
	svc := users.NewUserService(db)

	db.On("GetUserByEmail", mock.Anything, "taken@example.com").
		Return(&models.User{ID: "existing"}, nil)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Someone",
		Email:    "taken@example.com",
		Password: "supersecret1",
	})

	assert.ErrorIs(t, err, users.ErrEmailTaken)
	db.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestLoginWrongPassword(t *testing.T) {
	db := new(MockDBLayer)
	svc := users.NewUserService(db)

	hash, err := bcrypt.GenerateFromPassword([]byte("rightpassword"), bcrypt.DefaultCost)
	require.NoError(t, err)

	db.On("GetUserByEmail", mock.Anything, "user@example.com").Return(&models.User{
		ID:           "user-1",
		Email:        "user@example.com",
		PasswordHash: string(hash),
	}, nil)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "user@example.com",
		Password: "wrongpassword",
	})

	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	db := new(MockDBLayer)
	svc := users.NewUserService(db)

	db.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, sql.ErrNoRows)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever123",
	})

	assert.ErrorIs(t, err, users.ErrInvalidCredentials)
}

func TestChangeRoleRejectsUnknownRole(t *testing.T) {
	db := new(MockDBLayer)
	svc := users.NewUserService(db)

	err := svc.ChangeRole(context.Background(), "user-1", "emperor")

	assert.Error(t, err)
	db.AssertNotCalled(t, "UpdateUserRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileReturnsEmptySlicesForNewUser(t *testing.T) {
	db := new(MockDBLayer)
	svc := users.NewUserService(db)

	db.On("GetUserByID", mock.Anything, "user-1").Return(&models.User{ID: "user-1"}, nil)
	db.On("GetEventRegistrationsByUser", mock.Anything, "user-1").Return(nil, nil)
	db.On("GetTripEnrollmentsByUser", mock.Anything, "user-1").Return(nil, nil)
	db.On("GetSubmissionsByUser", mock.Anything, "user-1").Return(nil, nil)

	profile, err := svc.Profile(context.Background(), "user-1")

	require.NoError(t, err)
	assert.NotNil(t, profile.Events)
	assert.NotNil(t, profile.Trips)
	assert.NotNil(t, profile.Interviews)
	assert.Len(t, profile.Events, 0)
}
