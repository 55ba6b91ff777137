package content_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"evenza/internal/content"
	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/registration"
	"evenza/internal/utils"
	"evenza/pkg/validator"
)

type Handler struct {
	ContentService *content.ContentService
	Logger         *logger.Logger
}

func NewHandler(contentService *content.ContentService, log *logger.Logger) *Handler {
	return &Handler{
		ContentService: contentService,
		Logger:         log,
	}
}

// ---------------- PUBLIC ----------------

func (h *Handler) GetPublished(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.ContentService.GetPublished(r.Context(), slug)
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Page not found", "page not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetPublished: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load page", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Page", page))
}

// ---------------- ADMIN ----------------

func (h *Handler) ListContents(w http.ResponseWriter, r *http.Request) {
	list, err := h.ContentService.ListContents(r.Context(), false)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListContents: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list pages", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Pages", list))
}

func (h *Handler) CreateContent(w http.ResponseWriter, r *http.Request) {
	var req models.ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	page, err := h.ContentService.CreateContent(r.Context(), req)
	if err != nil {
		if errors.Is(err, content.ErrSlugTaken) {
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("Failed to create page", "slug already in use"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("CreateContent: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to create page", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Page created", page))
}

func (h *Handler) UpdateContent(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentId")

	var req models.ContentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	page, err := h.ContentService.UpdateContent(r.Context(), contentID, req)
	if err != nil {
		switch {
		case errors.Is(err, registration.ErrNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Page not found", "page not found"))
		case errors.Is(err, content.ErrSlugTaken):
			utils.WriteJSON(w, http.StatusConflict, utils.ErrorResponse("Failed to update page", "slug already in use"))
		default:
			h.Logger.Error("API", fmt.Sprintf("UpdateContent: %v", err))
			utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to update page", "internal error"))
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Page updated", page))
}

func (h *Handler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	contentID := chi.URLParam(r, "contentId")

	if err := h.ContentService.DeleteContent(r.Context(), contentID); err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Page not found", "page not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("DeleteContent: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to delete page", "internal error"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------- SETTINGS ----------------

func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	list, err := h.ContentService.ListSettings(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListSettings: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list settings", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Settings", list))
}

func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	setting, err := h.ContentService.GetSetting(r.Context(), key)
	if err != nil {
		if errors.Is(err, registration.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Setting not found", "setting not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetSetting: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load setting", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Setting", setting))
}

func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	var req models.SettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	setting, err := h.ContentService.PutSetting(r.Context(), req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("PutSetting: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to store setting", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Setting stored", setting))
}
