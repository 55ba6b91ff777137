package event_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"evenza/internal/auth"
	"evenza/internal/events"
	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/pass"
	"evenza/internal/registration"
	"evenza/internal/utils"
	"evenza/pkg/validator"
)

type Handler struct {
	EventService *events.EventService
	Pass         *pass.Generator
	Logger       *logger.Logger
}

func NewHandler(eventService *events.EventService, passGen *pass.Generator, log *logger.Logger) *Handler {
	return &Handler{
		EventService: eventService,
		Pass:         passGen,
		Logger:       log,
	}
}

// ---------------- PUBLIC ----------------

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.EventService.ListEvents(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListEvents: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list events", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Events", list))
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	event, err := h.EventService.GetEvent(r.Context(), eventID)
	if err != nil {
		if events.IsNotFound(err) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", "event not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetEvent: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load event", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event", event))
}

// ---------------- REGISTRATION ----------------

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	id := auth.FromContext(r.Context())

	// ContentLength is -1 for chunked uploads, so decode whatever body
	// is there and treat EOF as "no body".
	req := models.RegisterEventRequest{Tickets: 1}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
			return
		}
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	result, err := h.EventService.Register(r.Context(), eventID, id.UserID, req.Tickets)
	if err != nil {
		h.writeRegistrationError(w, "Registration failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Registered", result))
}

func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	id := auth.FromContext(r.Context())

	if err := h.EventService.Unregister(r.Context(), eventID, id.UserID); err != nil {
		h.writeRegistrationError(w, "Cancellation failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Registration cancelled", nil))
}

// GetPass streams the caller's QR entry pass for a paid-up registration.
func (h *Handler) GetPass(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	id := auth.FromContext(r.Context())

	reg, err := h.EventService.GetRegistration(r.Context(), eventID, id.UserID)
	if err != nil {
		h.writeRegistrationError(w, "Pass unavailable", err)
		return
	}
	if reg.PaymentStatus != models.StatusCompleted {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Pass unavailable", "payment not completed"))
		return
	}

	png, err := h.Pass.GenerateEventPass(*reg)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetPass: failed to generate QR: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Pass unavailable", "internal error"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// ---------------- ADMIN ----------------

// CancelRegistration removes another user's registration on their behalf.
func (h *Handler) CancelRegistration(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	userID := chi.URLParam(r, "userId")

	if err := h.EventService.Unregister(r.Context(), eventID, userID); err != nil {
		h.writeRegistrationError(w, "Cancellation failed", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Registration cancelled", nil))
}

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	event, err := h.EventService.CreateEvent(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CreateEvent: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to create event", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Event created", event))
}

func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	var req models.EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	event, err := h.EventService.UpdateEvent(r.Context(), eventID, req)
	if err != nil {
		if events.IsNotFound(err) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", "event not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("UpdateEvent: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to update event", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Event updated", event))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")

	if err := h.EventService.DeleteEvent(r.Context(), eventID); err != nil {
		if events.IsNotFound(err) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Event not found", "event not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("DeleteEvent: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to delete event", "internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeRegistrationError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, registration.ErrNotFound):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, "event not found"))
	case errors.Is(err, registration.ErrNotRegistered):
		utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse(message, "not registered"))
	case errors.Is(err, registration.ErrCapacityFull):
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse(message, "capacity exhausted"))
	case errors.Is(err, registration.ErrAlreadyRegistered):
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse(message, "already registered"))
	case errors.Is(err, registration.ErrLocked):
		utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse(message, "registration in progress, try again"))
	default:
		h.Logger.Error("API", fmt.Sprintf("%s: %v", message, err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(message, "internal error"))
	}
}
