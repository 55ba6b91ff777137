package interview_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"evenza/internal/auth"
	"evenza/internal/interviews"
	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/registration"
	"evenza/internal/utils"
	"evenza/pkg/validator"
)

type Handler struct {
	InterviewService *interviews.InterviewService
	Logger           *logger.Logger
}

func NewHandler(interviewService *interviews.InterviewService, log *logger.Logger) *Handler {
	return &Handler{
		InterviewService: interviewService,
		Logger:           log,
	}
}

// ---------------- PUBLIC ----------------

func (h *Handler) ListInterviews(w http.ResponseWriter, r *http.Request) {
	list, err := h.InterviewService.ListInterviews(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListInterviews: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list interviews", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Interviews", list))
}

func (h *Handler) GetInterview(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "interviewId")
	interview, err := h.InterviewService.GetInterview(r.Context(), interviewID)
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Interview not found", "interview not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetInterview: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load interview", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Interview", interview))
}

// ---------------- APPLICATIONS ----------------

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "interviewId")
	id := auth.FromContext(r.Context())

	result, err := h.InterviewService.Apply(r.Context(), interviewID, id.UserID)
	if err != nil {
		h.writeApplicationError(w, "Application failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Application submitted", result))
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "interviewId")
	id := auth.FromContext(r.Context())

	if err := h.InterviewService.Withdraw(r.Context(), interviewID, id.UserID); err != nil {
		h.writeApplicationError(w, "Withdrawal failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Application withdrawn", nil))
}

// ---------------- ADMIN ----------------

// CancelApplication withdraws another user's application on their behalf.
func (h *Handler) CancelApplication(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "interviewId")
	userID := chi.URLParam(r, "userId")

	if err := h.InterviewService.Withdraw(r.Context(), interviewID, userID); err != nil {
		h.writeApplicationError(w, "Cancellation failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Application cancelled", nil))
}

func (h *Handler) CreateInterview(w http.ResponseWriter, r *http.Request) {
	var req models.InterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	interview, err := h.InterviewService.CreateInterview(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateInterview: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to create interview", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Interview created", interview))
}

func (h *Handler) UpdateInterview(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "interviewId")

	var req models.InterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	interview, err := h.InterviewService.UpdateInterview(r.Context(), interviewID, req)
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Interview not found", "interview not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("UpdateInterview: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to update interview", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Interview updated", interview))
}

func (h *Handler) DeleteInterview(w http.ResponseWriter, r *http.Request) {
	interviewID := chi.URLParam(r, "interviewId")

	if err := h.InterviewService.DeleteInterview(r.Context(), interviewID); err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Interview not found", "interview not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("DeleteInterview: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to delete interview", "internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	interviewID := r.URL.Query().Get("interview_id")

	list, err := h.InterviewService.ListSubmissions(r.Context(), interviewID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListSubmissions: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list submissions", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Submissions", list))
}

func (h *Handler) UpdateSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	submissionID := chi.URLParam(r, "submissionId")
	id := auth.FromContext(r.Context())

	var req models.SubmissionStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	submission, err := h.InterviewService.UpdateSubmissionStatus(r.Context(), submissionID, req, id.UserID)
	if err != nil {
		switch {
		case errors.Is(err, registration.ErrNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Submission not found", "submission not found"))
		case errors.Is(err, interviews.ErrInvalidStatus), errors.Is(err, interviews.ErrInvalidTransition):
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid status update", err.Error()))
		default:
			h.Logger.Error("API", fmt.Sprintf("UpdateSubmissionStatus: %v", err))
			utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to update submission", "internal error"))
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Submission updated", submission))
}

func (h *Handler) writeApplicationError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, registration.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, "interview not found"))
	case errors.Is(err, registration.ErrNotRegistered):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, "no application on file"))
	case errors.Is(err, registration.ErrCapacityFull):
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse(message, "no positions left"))
	case errors.Is(err, registration.ErrAlreadyRegistered):
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse(message, "application already submitted"))
	case errors.Is(err, registration.ErrLocked):
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse(message, "application in progress, try again"))
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", message, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(message, "internal error"))
	}
}
