// Package handler exposes the document submission endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	account "tradegate/internal/account/models"
	"tradegate/internal/document/models"
	"tradegate/internal/document/service"
	"tradegate/internal/platform/middleware"
	"tradegate/internal/transport/http/shared"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
)

// Service defines the document operations the handler needs.
type Service interface {
	Submit(ctx context.Context, userID id.UserID, slots models.SlotSet, objectKeys map[models.Slot]string) (*service.SubmitResult, error)
	List(ctx context.Context, userID id.UserID) ([]*models.Submission, error)
	Progress(ctx context.Context, userID id.UserID) (models.SlotSet, bool, error)
}

// AccountReader loads the caller's account for the status endpoint.
type AccountReader interface {
	Get(ctx context.Context, userID id.UserID) (*account.User, error)
}

// Handler handles document endpoints.
type Handler struct {
	documents Service
	accounts  AccountReader
	logger    *slog.Logger
}

// New creates a document Handler.
func New(documents Service, accounts AccountReader, logger *slog.Logger) *Handler {
	return &Handler{documents: documents, accounts: accounts, logger: logger}
}

// RegisterProtected mounts the routes behind RequireAuth.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Post("/documents", h.handleSubmit)
	r.Get("/documents", h.handleList)
	r.Get("/documents/status", h.handleStatus)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req models.SubmitRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	slots, objectKeys, err := req.Parse()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.documents.Submit(ctx, userID, slots, objectKeys)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInternal) || dErrors.HasCode(err, dErrors.CodeUnknownRole) {
			h.logger.ErrorContext(ctx, "document submission failed",
				"request_id", middleware.GetRequestID(ctx),
				"error", err,
			)
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, struct {
		Submission         models.SubmissionResponse `json:"submission"`
		DocumentsComplete  bool                      `json:"documents_complete"`
		VerificationStatus string                    `json:"verification_status"`
	}{
		Submission:         models.ToSubmissionResponse(result.Submission),
		DocumentsComplete:  result.DocsComplete,
		VerificationStatus: string(result.Status),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := id.ParseUserID(middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	submissions, err := h.documents.List(ctx, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]models.SubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		out = append(out, models.ToSubmissionResponse(submission))
	}
	shared.WriteJSON(w, http.StatusOK, struct {
		Submissions []models.SubmissionResponse `json:"submissions"`
	}{Submissions: out})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
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
	cumulative, complete, err := h.documents.Progress(ctx, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	slots := make([]string, 0, len(cumulative))
	for _, slot := range cumulative.Slots() {
		slots = append(slots, string(slot))
	}
	shared.WriteJSON(w, http.StatusOK, models.StatusResponse{
		Role:               string(user.Role),
		VerificationStatus: string(user.Status),
		EmailVerified:      user.EmailVerified,
		SubmittedSlots:     slots,
		DocumentsComplete:  complete,
	})
}
