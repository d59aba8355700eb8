// Package handler exposes the account endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"tradegate/internal/account/models"
	"tradegate/internal/platform/middleware"
	"tradegate/internal/transport/http/shared"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
)

// Service defines the account operations the handler needs.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error)
	Get(ctx context.Context, userID id.UserID) (*models.User, error)
	UpdateProfile(ctx context.Context, userID id.UserID, req models.UpdateProfileRequest) (*models.User, error)
}

// Handler handles account endpoints.
type Handler struct {
	accounts Service
	logger   *slog.Logger
}

// New creates an account Handler.
func New(accounts Service, logger *slog.Logger) *Handler {
	return &Handler{accounts: accounts, logger: logger}
}

// RegisterPublic mounts the unauthenticated routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
}

// RegisterProtected mounts the routes behind RequireAuth.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/me", h.handleGetProfile)
	r.Patch("/me", h.handleUpdateProfile)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.RegisterRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.accounts.Register(ctx, req)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) {
			h.logger.ErrorContext(ctx, "registration failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err,
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, models.ToResponse(user))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.LoginRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	token, _, err := h.accounts.Login(ctx, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, models.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
	})
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	user, err := h.accounts.Get(ctx, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, models.ToResponse(user))
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req models.UpdateProfileRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.accounts.UpdateProfile(ctx, userID, req)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, models.ToResponse(user))
}
