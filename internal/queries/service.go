package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"evenza/internal/logger"
	"evenza/internal/models"
)

var ErrInvalidStatus = errors.New("invalid query status")
var ErrNotOwner = errors.New("query belongs to another user")

type DBLayer interface {
	CreateQuery(ctx context.Context, query models.Query) error
	GetQueryByID(ctx context.Context, id string) (*models.Query, error)
	ListQueries(ctx context.Context, status models.QueryStatus) ([]models.Query, error)
	ListQueriesByUser(ctx context.Context, userID string) ([]models.Query, error)
	UpdateQuery(ctx context.Context, query models.Query) error
}

type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

type Notifier interface {
	SendQueryResponse(recipient, subject, response string) error
}

type QueryService struct {
	DB     DBLayer
	Users  UserStore
	Mailer Notifier
	Logger *logger.Logger
}

func NewQueryService(db DBLayer, users UserStore, mail Notifier, log *logger.Logger) *QueryService {
	return &QueryService{
		DB:     db,
		Users:  users,
		Mailer: mail,
		Logger: log,
	}
}

func (s *QueryService) Submit(ctx context.Context, userID string, req models.QueryRequest) (*models.Query, error) {
	query := models.Query{
		ID:        uuid.NewString(),
		UserID:    userID,
		Subject:   req.Subject,
		Message:   req.Message,
		Status:    models.QueryNew,
		CreatedAt: time.Now(),
	}
	if err := s.DB.CreateQuery(ctx, query); err != nil {
		return nil, fmt.Errorf("failed to create query: %w", err)
	}
	return &query, nil
}

func (s *QueryService) GetForUser(ctx context.Context, queryID, userID string) (*models.Query, error) {
	query, err := s.DB.GetQueryByID(ctx, queryID)
	if err != nil {
		return nil, err
	}
	if query.UserID != userID {
		return nil, ErrNotOwner
	}
	return query, nil
}

func (s *QueryService) ListForUser(ctx context.Context, userID string) ([]models.Query, error) {
	return s.DB.ListQueriesByUser(ctx, userID)
}

func (s *QueryService) List(ctx context.Context, status models.QueryStatus) ([]models.Query, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.DB.ListQueries(ctx, status)
}

// Respond records an admin answer and marks the query answered. The
// notification mail is best-effort.
func (s *QueryService) Respond(ctx context.Context, queryID string, req models.QueryResponseRequest) (*models.Query, error) {
	query, err := s.DB.GetQueryByID(ctx, queryID)
	if err != nil {
		return nil, err
	}

	query.Response = req.Response
	query.Status = models.QueryAnswered
	query.UpdatedAt = time.Now()

	if err := s.DB.UpdateQuery(ctx, *query); err != nil {
		return nil, fmt.Errorf("failed to update query %s: %w", queryID, err)
	}

	if s.Mailer != nil && s.Users != nil {
		if user, uerr := s.Users.GetUserByID(ctx, query.UserID); uerr == nil {
			if merr := s.Mailer.SendQueryResponse(user.Email, query.Subject, req.Response); merr != nil {
				s.Logger.Warn("QUERY", fmt.Sprintf("Failed to mail query response for %s: %v", queryID, merr))
			}
		}
	}
	return query, nil
}

// Close marks a query closed without a response, for spam or duplicates.
func (s *QueryService) Close(ctx context.Context, queryID string) (*models.Query, error) {
	query, err := s.DB.GetQueryByID(ctx, queryID)
	if err != nil {
		return nil, err
	}

	query.Status = models.QueryClosed
	query.UpdatedAt = time.Now()

	if err := s.DB.UpdateQuery(ctx, *query); err != nil {
		return nil, fmt.Errorf("failed to close query %s: %w", queryID, err)
	}
	return query, nil
}
