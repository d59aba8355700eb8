package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tradegate/internal/verification/models"
	id "tradegate/pkg/domain"
	"tradegate/pkg/platform/sentinel"
)

const pgUniqueViolation = "23505"

// Postgres persists tokens in the verification_tokens table. Used when the
// deployment has no Redis; consume atomicity comes from row locking.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a Postgres-backed token store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Create(ctx context.Context, token *models.Token) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO verification_tokens (value, user_id, issued_at) VALUES ($1, $2, $3)`,
		token.Value, token.UserID.String(), token.IssuedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

func (s *Postgres) Consume(ctx context.Context, value string, now time.Time) (*models.Token, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		rawUserID string
		issuedAt  time.Time
	)
	err = tx.QueryRow(ctx,
		`SELECT user_id, issued_at FROM verification_tokens WHERE value = $1 FOR UPDATE`,
		value,
	).Scan(&rawUserID, &issuedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select token: %w", err)
	}

	userID, err := id.ParseUserID(rawUserID)
	if err != nil {
		return nil, fmt.Errorf("stored token user id: %w", err)
	}
	token := &models.Token{Value: value, UserID: userID, IssuedAt: issuedAt}
	if token.Expired(now) {
		// Rolled back untouched so a retry still reads as expired.
		return nil, sentinel.ErrExpired
	}

	if _, err := tx.Exec(ctx, `DELETE FROM verification_tokens WHERE value = $1`, value); err != nil {
		return nil, fmt.Errorf("delete token: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return token, nil
}

func (s *Postgres) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM verification_tokens WHERE issued_at < $1`,
		now.Add(-models.TokenTTL),
	)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
