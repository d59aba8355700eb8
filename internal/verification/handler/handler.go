// Package handler exposes the email verification endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tradegate/internal/platform/middleware"
	"tradegate/internal/transport/http/shared"
	"tradegate/internal/verification/service"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
)

// Service defines the verification operations the handler needs.
type Service interface {
	Confirm(ctx context.Context, value string) (*service.ConfirmResult, error)
	Resend(ctx context.Context, userID id.UserID) error
}

// Handler handles verification endpoints.
type Handler struct {
	verification Service
	logger       *slog.Logger
}

// New creates a verification Handler.
func New(verification Service, logger *slog.Logger) *Handler {
	return &Handler{verification: verification, logger: logger}
}

// RegisterPublic mounts the confirmation link endpoint. It is public: the
// token itself is the credential.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/verify-email/{token}", h.handleConfirm)
}

// RegisterProtected mounts the resend endpoint behind RequireAuth.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/verify-email/resend", h.handleResend)
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.verification.Confirm(ctx, chi.URLParam(r, "token"))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "email confirmation failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err,
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, struct {
		EmailVerified      bool   `json:"email_verified"`
		VerificationStatus string `json:"verification_status"`
	}{
		EmailVerified:      true,
		VerificationStatus: string(result.Status),
	})
}

func (h *Handler) handleResend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	if err := h.verification.Resend(ctx, userID); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
