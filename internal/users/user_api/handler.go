package user_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"evenza/internal/auth"
	"evenza/internal/config"
	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/users"
	"evenza/internal/utils"
	"evenza/pkg/validator"
)

type Handler struct {
	UserService *users.UserService
	AuthConfig  config.AuthConfig
	Logger      *logger.Logger
}

func NewHandler(userService *users.UserService, authCfg config.AuthConfig, log *logger.Logger) *Handler {
	return &Handler{
		UserService: userService,
		AuthConfig:  authCfg,
		Logger:      log,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	user, err := h.UserService.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Registration failed", "email already registered"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Register: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Registration failed", "internal error"))
		return
	}

	token, err := auth.IssueToken(h.AuthConfig, user)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Register: failed to issue token: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Registration failed", "internal error"))
		return
	}

	h.setAuthCookie(w, token)
	utils.WriteJSON(w, http.StatusCreated, utils.SuccessResponse("Account created", models.AuthResponse{
		Token: token,
		User:  user,
	}))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	user, err := h.UserService.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			h.Logger.LogSecurity("LOGIN_FAILED", fmt.Sprintf("email=%s", req.Email))
			utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse("Login failed", "invalid email or password"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Login: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Login failed", "internal error"))
		return
	}

	token, err := auth.IssueToken(h.AuthConfig, user)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Login: failed to issue token: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Login failed", "internal error"))
		return
	}

	h.setAuthCookie(w, token)
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Logged in", models.AuthResponse{
		Token: token,
		User:  user,
	}))
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	profile, err := h.UserService.Profile(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("User not found", "user not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Me: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load profile", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Profile", profile))
}

// Registrations returns just the caller's membership lists.
func (h *Handler) Registrations(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	profile, err := h.UserService.Profile(r.Context(), id.UserID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("User not found", "user not found"))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("Registrations: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to load registrations", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Registrations", map[string]interface{}{
		"events":     profile.Events,
		"trips":      profile.Trips,
		"interviews": profile.Interviews,
	}))
}

func (h *Handler) setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.AuthConfig.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.AuthConfig.TokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
