package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/registration"
)

var ErrSlugTaken = errors.New("slug already in use")

type DBLayer interface {
	CreateContent(ctx context.Context, content models.Content) error
	GetContentByID(ctx context.Context, id string) (*models.Content, error)
	GetContentBySlug(ctx context.Context, slug string) (*models.Content, error)
	ListContents(ctx context.Context, publishedOnly bool) ([]models.Content, error)
	UpdateContent(ctx context.Context, content models.Content) error
	DeleteContent(ctx context.Context, id string) error
	UpsertSetting(ctx context.Context, setting models.Setting) error
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	ListSettings(ctx context.Context) ([]models.Setting, error)
}

// ContentService serves CMS pages and the platform settings key-value store.
type ContentService struct {
	DB     DBLayer
	Logger *logger.Logger
}

func NewContentService(db DBLayer, log *logger.Logger) *ContentService {
	return &ContentService{DB: db, Logger: log}
}

func (s *ContentService) CreateContent(ctx context.Context, req models.ContentRequest) (*models.Content, error) {
	if existing, err := s.DB.GetContentBySlug(ctx, req.Slug); err == nil && existing != nil {
		return nil, ErrSlugTaken
	} else if err != nil && !errors.Is(err, registration.ErrNotFound) {
		return nil, err
	}

	content := models.Content{
		ID:        uuid.NewString(),
		Slug:      req.Slug,
		Title:     req.Title,
		Body:      req.Body,
		Published: req.Published,
		CreatedAt: time.Now(),
	}
	if err := s.DB.CreateContent(ctx, content); err != nil {
		return nil, fmt.Errorf("failed to create content: %w", err)
	}
	return &content, nil
}

// GetPublished serves a page to the public site. Unpublished pages look
// identical to missing ones from outside.
func (s *ContentService) GetPublished(ctx context.Context, slug string) (*models.Content, error) {
	content, err := s.DB.GetContentBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !content.Published {
		return nil, registration.ErrNotFound
	}
	return content, nil
}

func (s *ContentService) ListContents(ctx context.Context, publishedOnly bool) ([]models.Content, error) {
	return s.DB.ListContents(ctx, publishedOnly)
}

func (s *ContentService) UpdateContent(ctx context.Context, id string, req models.ContentRequest) (*models.Content, error) {
	content, err := s.DB.GetContentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Slug != content.Slug {
		if existing, serr := s.DB.GetContentBySlug(ctx, req.Slug); serr == nil && existing != nil {
			return nil, ErrSlugTaken
		} else if serr != nil && !errors.Is(serr, registration.ErrNotFound) {
			return nil, serr
		}
	}

	content.Slug = req.Slug
	content.Title = req.Title
	content.Body = req.Body
	content.Published = req.Published
	content.UpdatedAt = time.Now()

	if err := s.DB.UpdateContent(ctx, *content); err != nil {
		return nil, fmt.Errorf("failed to update content %s: %w", id, err)
	}
	return content, nil
}

func (s *ContentService) DeleteContent(ctx context.Context, id string) error {
	if _, err := s.DB.GetContentByID(ctx, id); err != nil {
		return err
	}
	return s.DB.DeleteContent(ctx, id)
}

// ---------------- SETTINGS ----------------

func (s *ContentService) PutSetting(ctx context.Context, req models.SettingRequest) (*models.Setting, error) {
	setting := models.Setting{
		Key:       req.Key,
		Value:     req.Value,
		UpdatedAt: time.Now(),
	}
	if err := s.DB.UpsertSetting(ctx, setting); err != nil {
		return nil, fmt.Errorf("failed to store setting %s: %w", req.Key, err)
	}
	return &setting, nil
}

func (s *ContentService) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	return s.DB.GetSetting(ctx, key)
}

func (s *ContentService) ListSettings(ctx context.Context) ([]models.Setting, error) {
	return s.DB.ListSettings(ctx)
}
