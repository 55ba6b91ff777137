package trip_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"evenza/internal/auth"
	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/registration"
	"evenza/internal/trips"
	"evenza/internal/utils"
	"evenza/pkg/validator"
)

type Handler struct {
	TripService *trips.TripService
	Logger      *logger.Logger
}

func NewHandler(tripService *trips.TripService, log *logger.Logger) *Handler {
	return &Handler{
		TripService: tripService,
		Logger:      log,
	}
}

func (h *Handler) ListTrips(w http.ResponseWriter, r *http.Request) {
	list, err := h.TripService.ListTrips(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTrips: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list trips", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Trips", list))
}

func (h *Handler) GetTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")
	trip, err := h.TripService.GetTrip(r.Context(), tripID)
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Trip not found", "trip not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetTrip: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load trip", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Trip", trip))
}

func (h *Handler) Enroll(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")
	id := auth.FromContext(r.Context())

	result, err := h.TripService.Enroll(r.Context(), tripID, id.UserID)
	if err != nil {
		h.writeEnrollmentError(w, "Enrollment failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Enrolled", result))
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")
	id := auth.FromContext(r.Context())

	if err := h.TripService.Withdraw(r.Context(), tripID, id.UserID); err != nil {
		h.writeEnrollmentError(w, "Withdrawal failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Enrollment withdrawn", nil))
}

// CancelEnrollment removes another user's enrollment on their behalf.
func (h *Handler) CancelEnrollment(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")
	userID := chi.URLParam(r, "userId")

	if err := h.TripService.Withdraw(r.Context(), tripID, userID); err != nil {
		h.writeEnrollmentError(w, "Cancellation failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Enrollment cancelled", nil))
}

func (h *Handler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req models.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	trip, err := h.TripService.CreateTrip(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateTrip: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to create trip", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Trip created", trip))
}

func (h *Handler) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	var req models.TripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	trip, err := h.TripService.UpdateTrip(r.Context(), tripID, req)
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Trip not found", "trip not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("UpdateTrip: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to update trip", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Trip updated", trip))
}

func (h *Handler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "tripId")

	if err := h.TripService.DeleteTrip(r.Context(), tripID); err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Trip not found", "trip not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("DeleteTrip: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to delete trip", "internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeEnrollmentError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, registration.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, "trip not found"))
	case errors.Is(err, registration.ErrNotRegistered):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, "not enrolled"))
	case errors.Is(err, registration.ErrCapacityFull):
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse(message, "no spots left"))
	case errors.Is(err, registration.ErrAlreadyRegistered):
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse(message, "already enrolled"))
	case errors.Is(err, registration.ErrLocked):
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse(message, "enrollment in progress, try again"))
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", message, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(message, "internal error"))
	}
}
