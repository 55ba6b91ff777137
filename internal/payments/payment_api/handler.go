package payment_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"evenza/internal/auth"
	"evenza/internal/logger"
	"evenza/internal/models"
	"evenza/internal/payments"
	"evenza/internal/utils"
	"evenza/pkg/validator"
)

type Handler struct {
	PaymentService *payments.PaymentService
	Logger         *logger.Logger
}

func NewHandler(paymentService *payments.PaymentService, log *logger.Logger) *Handler {
	return &Handler{
		PaymentService: paymentService,
		Logger:         log,
	}
}

// ListPayments is the admin view, filterable by status.
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	status := models.PaymentStatus(r.URL.Query().Get("status"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	list, err := h.PaymentService.ListPayments(r.Context(), status, limit, offset)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidStatus) {
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid status filter", err.Error()))
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ListPayments: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list payments", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payments", list))
}

// ListMyPayments returns the caller's own payments.
func (h *Handler) ListMyPayments(w http.ResponseWriter, r *http.Request) {
	id := auth.FromContext(r.Context())
	list, err := h.PaymentService.ListPaymentsByUser(r.Context(), id.UserID)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListMyPayments: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to list payments", "internal error"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payments", list))
}

// UpdateStatus applies an admin decision, stamping the verifier.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentId")
	verifier := auth.FromContext(r.Context())

	var req models.PaymentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	payment, err := h.PaymentService.UpdateStatus(r.Context(), paymentID, req.Status, verifier.UserID)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Payment not found", "payment not found"))
		case errors.Is(err, payments.ErrInvalidStatus), errors.Is(err, payments.ErrInvalidTransition):
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid status update", err.Error()))
		default:
			h.Logger.Error("API", fmt.Sprintf("UpdateStatus: %v", err))
			utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to update payment", "internal error"))
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Payment updated", payment))
}

// AttachProof lets the owner attach an uploaded proof URL.
func (h *Handler) AttachProof(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentId")
	id := auth.FromContext(r.Context())

	var req models.PaymentProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}
	if err := validator.Validate(r.Context(), req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Validation failed", err.Error()))
		return
	}

	payment, err := h.PaymentService.AttachProof(r.Context(), paymentID, id.UserID, req.ProofURL)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrNotFound):
			utils.WriteJSON(w, http.StatusNotFound, utils.ErrorResponse("Payment not found", "payment not found"))
		case errors.Is(err, payments.ErrNotOwner):
			utils.WriteJSON(w, http.StatusForbidden, utils.ErrorResponse("Forbidden", "payment belongs to another user"))
		case errors.Is(err, payments.ErrNotOpen):
			utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse("Payment not open", err.Error()))
		default:
			h.Logger.Error("API", fmt.Sprintf("AttachProof: %v", err))
			utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Failed to attach proof", "internal error"))
		}
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Proof attached", payment))
}
