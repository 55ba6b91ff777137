package admin_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"evenza/internal/admin"
	"evenza/internal/auth"
	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/users"
	"evenza/internal/utils"
)

type Handler struct {
	AdminService *admin.AdminService
	UserService  *users.UserService
	Logger       *logger.Logger
}

func NewHandler(adminService *admin.AdminService, userService *users.UserService, log *logger.Logger) *Handler {
	return &Handler{
		AdminService: adminService,
		UserService:  userService,
		Logger:       log,
	}
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.AdminService.Dashboard(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Dashboard: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load dashboard", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Dashboard", dashboard))
}

func (h *Handler) ListActivity(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	logs, err := h.AdminService.Activity(r.Context(), limit, offset)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListActivity: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load activity", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Activity", logs))
}

// ---------------- USERS ----------------

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.UserService.ListUsers(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListUsers: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list users", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Users", list))
}

func (h *Handler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	profile, err := h.UserService.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("User not found", "user not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("GetUserProfile: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load user", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("User", profile))
}

type changeRoleRequest struct {
	Role models.Role `json:"role"`
}

// ChangeRole is reachable only through the super_admin route group.
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	id := auth.FromContext(r.Context())

	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	if err := h.UserService.ChangeRole(r.Context(), userID, req.Role); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("User not found", "user not found"))
			return
		}
		if !req.Role.Valid() {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid role", fmt.Sprintf("unknown role %q", req.Role)))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ChangeRole: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to change role", "internal error"))
		return
	}

	h.Logger.LogSecurity("ROLE_CHANGED", fmt.Sprintf("user=%s role=%s by=%s", userID, req.Role, id.UserID))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Role updated", nil))
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")
	id := auth.FromContext(r.Context())

	if userID == id.UserID {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Failed to delete user", "cannot delete own account"))
		return
	}

	if err := h.UserService.DeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("User not found", "user not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("DeleteUser: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to delete user", "internal error"))
		return
	}

	h.Logger.LogSecurity("USER_DELETED", fmt.Sprintf("user=%s by=%s", userID, id.UserID))
	w.WriteHeader(http.StatusNoContent)
}
