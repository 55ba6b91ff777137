package query_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"evenza/internal/auth"
	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/queries"
	"evenza/internal/registration"
	"evenza/internal/utils"
	"evenza/pkg/validator"
)

type Handler struct {
	QueryService *queries.QueryService
	Logger       *logger.Logger
}

func NewHandler(queryService *queries.QueryService, log *logger.Logger) *Handler {
	return &Handler{
		QueryService: queryService,
		Logger:       log,
	}
}

// ---------------- USER ----------------

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())

	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	query, err := h.QueryService.Submit(r.Context(), id.UserID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Submit query: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to submit query", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Query submitted", query))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())

	list, err := h.QueryService.ListForUser(r.Context(), id.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListMine: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list queries", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Queries", list))
}

func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "queryId")
	id := auth.FromContext(r.Context())

	query, err := h.QueryService.GetForUser(r.Context(), queryID, id.UserID)
	if err != nil {
		switch {
		case errors.Is(err, registration.ErrNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Query not found", "query not found"))
		case errors.Is(err, queries.ErrNotOwner):
			utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("Query not accessible", "query belongs to another user"))
		default:
			h.Logger.Error("API", fmt.Sprintf("GetMine: %v", err))
			utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load query", "internal error"))
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Query", query))
}

// ---------------- ADMIN ----------------

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	status := models.QueryStatus(r.URL.Query().Get("status"))

	list, err := h.QueryService.List(r.Context(), status)
	if err != nil {
		if errors.Is(err, queries.ErrInvalidStatus) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid status filter", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("List queries: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list queries", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Queries", list))
}

func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "queryId")

	var req models.QueryResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	query, err := h.QueryService.Respond(r.Context(), queryID, req)
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Query not found", "query not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Respond: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to respond to query", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Response recorded", query))
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	queryID := chi.URLParam(r, "queryId")

	query, err := h.QueryService.Close(r.Context(), queryID)
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Query not found", "query not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Close: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to close query", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Query closed", query))
}
