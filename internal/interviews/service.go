package interviews

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/registration"
)

var ErrInvalidStatus = errors.New("invalid submission status")
var ErrInvalidTransition = errors.New("invalid submission status transition")

type DBLayer interface {
	CreateInterview(ctx context.Context, interview models.Interview) error
	GetInterviewByID(ctx context.Context, id string) (*models.Interview, error)
	ListInterviews(ctx context.Context) ([]models.Interview, error)
	UpdateInterview(ctx context.Context, interview models.Interview) error
	DeleteInterview(ctx context.Context, id string) error
	Apply(ctx context.Context, interviewID, userID string) (*models.Interview, *models.InterviewSubmission, error)
	WithdrawApplication(ctx context.Context, interviewID, userID string) (*models.InterviewSubmission, error)
	GetSubmissionByID(ctx context.Context, id string) (*models.InterviewSubmission, error)
	ListSubmissions(ctx context.Context, interviewID string) ([]models.InterviewSubmission, error)
	UpdateSubmission(ctx context.Context, submission models.InterviewSubmission) error
}

type Locker interface {
	Acquire(ctx context.Context, kind, entityID, ownerID string) (bool, error)
	Release(ctx context.Context, kind, entityID, ownerID string) error
}

type Publisher interface {
	Publish(topic string, key string, value []byte) error
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID, action, entity, entityID, detail string)
}

type ApplicationResult struct {
	Interview  *models.Interview           `json:"interview"`
	Submission *models.InterviewSubmission `json:"submission"`
}

// InterviewService handles interview slots and their applications.
// Applications are free, so there is no payment leg here; the admin
// moves submissions through the status table instead.
type InterviewService struct {
	DB       DBLayer
	Lock     Locker
	Kafka    Publisher
	Activity ActivityRecorder
	Topic    string
	Logger   *logger.Logger
}

func NewInterviewService(db DBLayer, lock Locker, kafka Publisher, activity ActivityRecorder, topic string, log *logger.Logger) *InterviewService {
	return &InterviewService{
		DB:       db,
		Lock:     lock,
		Kafka:    kafka,
		Activity: activity,
		Topic:    topic,
		Logger:   log,
	}
}

func (s *InterviewService) CreateInterview(ctx context.Context, req models.InterviewRequest) (*models.Interview, error) {
	interview := models.Interview{
		ID:        uuid.NewString(),
		Title:     req.Title,
		Company:   req.Company,
		Positions: req.Positions,
		CreatedAt: time.Now(),
	}
	if err := s.DB.CreateInterview(ctx, interview); err != nil {
		return nil, fmt.Errorf("failed to create interview: %w", err)
	}
	return &interview, nil
}

func (s *InterviewService) GetInterview(ctx context.Context, id string) (*models.Interview, error) {
	return s.DB.GetInterviewByID(ctx, id)
}

func (s *InterviewService) ListInterviews(ctx context.Context) ([]models.Interview, error) {
	return s.DB.ListInterviews(ctx)
}

func (s *InterviewService) UpdateInterview(ctx context.Context, id string, req models.InterviewRequest) (*models.Interview, error) {
	interview, err := s.DB.GetInterviewByID(ctx, id)
	if err != nil {
		return nil, err
	}

	interview.Title = req.Title
	interview.Company = req.Company
	interview.Positions = req.Positions
	interview.UpdatedAt = time.Now()

	if err := s.DB.UpdateInterview(ctx, *interview); err != nil {
		return nil, fmt.Errorf("failed to update interview %s: %w", id, err)
	}
	return interview, nil
}

func (s *InterviewService) DeleteInterview(ctx context.Context, id string) error {
	if _, err := s.DB.GetInterviewByID(ctx, id); err != nil {
		return err
	}
	return s.DB.DeleteInterview(ctx, id)
}

// Apply files one application per user per interview. A second attempt
// by the same user comes back as ErrAlreadyRegistered.
func (s *InterviewService) Apply(ctx context.Context, interviewID, userID string) (*ApplicationResult, error) {
	if s.Lock != nil {
		ok, err := s.Lock.Acquire(ctx, "interview", interviewID, userID)
		if err != nil {
			s.Logger.Warn("APPLY", fmt.Sprintf("Lock unavailable for interview %s, proceeding without: %v", interviewID, err))
		} else if !ok {
			return nil, registration.ErrLocked
		} else {
			defer func() {
				if err := s.Lock.Release(ctx, "interview", interviewID, userID); err != nil {
					s.Logger.Warn("APPLY", fmt.Sprintf("Failed to release lock for interview %s: %v", interviewID, err))
				}
			}()
		}
	}

	interview, submission, err := s.DB.Apply(ctx, interviewID, userID)
	if err != nil {
		return nil, err
	}

	if s.Kafka != nil {
		if value, err := json.Marshal(submission); err == nil {
			if err := s.Kafka.Publish(s.Topic, submission.ID, value); err != nil {
				s.Logger.Warn("APPLY", fmt.Sprintf("Kafka publish error (submission created): %v", err))
			}
		}
	}
	if s.Activity != nil {
		s.Activity.Record(ctx, userID, "apply", "interview", interviewID, interview.Title)
	}

	return &ApplicationResult{Interview: interview, Submission: submission}, nil
}

func (s *InterviewService) Withdraw(ctx context.Context, interviewID, userID string) error {
	if _, err := s.DB.WithdrawApplication(ctx, interviewID, userID); err != nil {
		return err
	}
	if s.Activity != nil {
		s.Activity.Record(ctx, userID, "withdraw", "interview", interviewID, "")
	}
	return nil
}

func (s *InterviewService) ListSubmissions(ctx context.Context, interviewID string) ([]models.InterviewSubmission, error) {
	return s.DB.ListSubmissions(ctx, interviewID)
}

// UpdateSubmissionStatus moves a submission through the status table.
// A status outside the enum is ErrInvalidStatus, a move the table does
// not allow is ErrInvalidTransition; the record stays untouched either way.
func (s *InterviewService) UpdateSubmissionStatus(ctx context.Context, submissionID string, req models.SubmissionStatusRequest, adminID string) (*models.InterviewSubmission, error) {
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	submission, err := s.DB.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if !submission.Status.CanTransition(req.Status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, submission.Status, req.Status)
	}

	submission.Status = req.Status
	submission.AdminNotes = req.AdminNotes
	submission.UpdatedAt = time.Now()

	if err := s.DB.UpdateSubmission(ctx, *submission); err != nil {
		return nil, fmt.Errorf("failed to update submission %s: %w", submissionID, err)
	}

	if s.Activity != nil {
		s.Activity.Record(ctx, adminID, "review", "submission", submissionID, string(req.Status))
	}
	return submission, nil
}
