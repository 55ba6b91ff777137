package admin

import (
	"context"
	"fmt"

	"evenza/internal/logger"
	"evenza/internal/models"
)

type DBLayer interface {
	Counts(ctx context.Context) (map[string]int, error)
	CountPaymentsByStatus(ctx context.Context, status models.PaymentStatus) (int, error)
	CountQueriesByStatus(ctx context.Context, status models.QueryStatus) (int, error)
	ListActivity(ctx context.Context, limit, offset int) ([]models.ActivityLog, error)
}

// Dashboard is the admin landing page payload: entity counts plus the
// two queues that need attention.
type Dashboard struct {
	Counts          map[string]int `json:"counts"`
	PendingPayments int            `json:"pending_payments"`
	OpenQueries     int            `json:"open_queries"`
}

type AdminService struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewAdminService(db DBLayer, log *logger.Logger) *AdminService {
	return &AdminService{DB: db, Logger: log}
}

func (s *AdminService) Dashboard(ctx context.Context) (*Dashboard, error) {
	counts, err := s.DB.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard counts: %w", err)
	}

	pending, err := s.DB.CountPaymentsByStatus(ctx, models.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("failed to count pending payments: %w", err)
	}
	open, err := s.DB.CountQueriesByStatus(ctx, models.QueryNew)
	if err != nil {
		return nil, fmt.Errorf("failed to count open queries: %w", err)
	}

	return &Dashboard{
		Counts:          counts,
		PendingPayments: pending,
		OpenQueries:     open,
	}, nil
}

func (s *AdminService) Activity(ctx context.Context, limit, offset int) ([]models.ActivityLog, error) {
	return s.DB.ListActivity(ctx, limit, offset)
}
