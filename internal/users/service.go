package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"evenza/internal/models"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotFound           = errors.New("user not found")
)

type DBLayer interface {
	CreateUser(ctx context.Context, user models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserRole(ctx context.Context, id string, role models.Role) error
	DeleteUser(ctx context.Context, id string) error
	GetEventRegistrationsByUser(ctx context.Context, userID string) ([]models.EventRegistration, error)
	GetTripEnrollmentsByUser(ctx context.Context, userID string) ([]models.TripEnrollment, error)
	GetSubmissionsByUser(ctx context.Context, userID string) ([]models.InterviewSubmission, error)
}

type UserService struct {
	DB DBLayer
}

func NewUserService(db DBLayer) *UserService {
	return &UserService{DB: db}
}

// Register hashes the password and creates the account with role "user".
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	existing, err := s.DB.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		CreatedAt:    time.Now(),
	}

	if err := s.DB.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Login verifies credentials and returns the user.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	user, err := s.DB.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.DB.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Profile returns the user plus the mirror of their registrations.
func (s *UserService) Profile(ctx context.Context, id string) (*models.Profile, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	events, err := s.DB.GetEventRegistrationsByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load event registrations: %w", err)
	}
	trips, err := s.DB.GetTripEnrollmentsByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load trip enrollments: %w", err)
	}
	interviews, err := s.DB.GetSubmissionsByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load interview submissions: %w", err)
	}

	if events == nil {
		events = []models.EventRegistration{}
	}
	if trips == nil {
		trips = []models.TripEnrollment{}
	}
	if interviews == nil {
		interviews = []models.InterviewSubmission{}
	}

	return &models.Profile{
		User:       user,
		Events:     events,
		Trips:      trips,
		Interviews: interviews,
	}, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.DB.ListUsers(ctx)
}

// ChangeRole is super_admin only; the handler enforces the caller's
// role, the service validates the target value.
func (s *UserService) ChangeRole(ctx context.Context, id string, role models.Role) error {
	if !role.Valid() {
		return fmt.Errorf("invalid role %q", role)
	}
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.DB.UpdateUserRole(ctx, id, role)
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	return s.DB.DeleteUser(ctx, id)
}
