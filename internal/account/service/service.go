// Package service implements registration, login, and profile management.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"tradegate/internal/account/models"
	"tradegate/internal/account/store"
	"tradegate/internal/platform/metrics"
	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/email"
	"tradegate/pkg/platform/audit"
	"tradegate/pkg/platform/sentinel"
)

const minPasswordLength = 8

// VerificationIssuer sends the email confirmation for a new account. Wired to
// the verification service; the indirection keeps the account package from
// importing it.
type VerificationIssuer interface {
	Issue(ctx context.Context, user *models.User) error
}

// TokenIssuer signs session tokens at login.
type TokenIssuer interface {
	Generate(userID id.UserID, role string) (string, error)
}

// Service implements account operations.
type Service struct {
	store        store.Store
	verification VerificationIssuer
	tokens       TokenIssuer
	aud          audit.Sink
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// New wires the account service.
func New(
	st store.Store,
	verification VerificationIssuer,
	tokens TokenIssuer,
	aud audit.Sink,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		store:        st,
		verification: verification,
		tokens:       tokens,
		aud:          aud,
		metrics:      m,
		logger:       logger,
	}
}

// Register creates an account in the unverified state and triggers the
// verification email. The same email may register once per role; the opaque
// username is generated here and returned to the caller.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	normalized := email.Normalize(req.Email)
	if normalized == "" || !strings.Contains(normalized, "@") {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "a valid email address is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "password must be at least 8 characters")
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	user := &models.User{
		ID:           id.NewUserID(),
		Username:     models.NewUsername(),
		Email:        normalized,
		Role:         role,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		CompanyName:  strings.TrimSpace(req.CompanyName),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		TaxID:        strings.TrimSpace(req.TaxID),
		Status:       models.StatusUnverified,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "an account with this email and role already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	s.metrics.UsersRegistered.Inc()
	s.aud.Record(ctx, audit.Event{
		Action: audit.ActionUserRegistered,
		UserID: user.ID.String(),
		Role:   string(role),
		Email:  user.Email,
	})

	// Mail trouble must not lose the registration; the account can resend.
	if err := s.verification.Issue(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to issue verification token",
			"user_id", user.ID.String(),
			"error", err,
		)
	}
	return user, nil
}

// Login authenticates by username and password and returns a signed session
// token. Unknown username and wrong password are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (string, *models.User, error) {
	failed := func() (string, *models.User, error) {
		s.aud.Record(ctx, audit.Event{
			Action: audit.ActionLoginFailed,
			Reason: "bad_credentials",
		})
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
	}

	user, err := s.store.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, sentinel.ErrNotFound) {
		return failed()
	}
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return failed()
	}

	token, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign session token")
	}
	s.aud.Record(ctx, audit.Event{
		Action: audit.ActionLoginSucceeded,
		UserID: user.ID.String(),
		Role:   string(user.Role),
	})
	return token, user, nil
}

// Get loads an account by ID.
func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.User, error) {
	user, err := s.store.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return user, nil
}

// UpdateProfile applies the caller-editable fields. Role, email, and the
// verification state cannot be changed here.
func (s *Service) UpdateProfile(ctx context.Context, userID id.UserID, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&user.FirstName, req.FirstName)
	apply(&user.LastName, req.LastName)
	apply(&user.CompanyName, req.CompanyName)
	apply(&user.PhoneNumber, req.PhoneNumber)
	apply(&user.TaxID, req.TaxID)

	if err := s.store.UpdateProfile(ctx, user); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update profile")
	}
	return user, nil
}
