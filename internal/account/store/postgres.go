package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"tradegate/internal/account/models"
	id "tradegate/pkg/domain"
	"tradegate/pkg/email"
	"tradegate/pkg/platform/sentinel"
	"tradegate/pkg/platform/tx"
)

// Postgres persists accounts in PostgreSQL. All methods resolve the handle
// through pkg/platform/tx so they join a caller-owned transaction when one is
// in context.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed account store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const uniqueViolation = "23505"

func (s *Postgres) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (
			id, username, email, email_folded, role, password_hash,
			first_name, last_name, company_name, phone_number, tax_id,
			email_verified, verification_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query,
		user.ID.String(), user.Username, user.Email, email.Fold(user.Email),
		string(user.Role), user.PasswordHash,
		user.FirstName, user.LastName, user.CompanyName, user.PhoneNumber, user.TaxID,
		user.EmailVerified, string(user.Status), user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("account exists: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	row := tx.Resolve(ctx, s.db).QueryRowContext(ctx, selectUser+` WHERE id = $1`, userID.String())
	return scanUser(row)
}

func (s *Postgres) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	row := tx.Resolve(ctx, s.db).QueryRowContext(ctx, selectUser+` WHERE username = $1`, username)
	return scanUser(row)
}

func (s *Postgres) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			first_name = $2, last_name = $3, company_name = $4,
			phone_number = $5, tax_id = $6
		WHERE id = $1
	`
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query,
		user.ID.String(), user.FirstName, user.LastName,
		user.CompanyName, user.PhoneNumber, user.TaxID,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return requireRow(res, user.ID)
}

func (s *Postgres) SetVerification(ctx context.Context, userID id.UserID, emailVerified bool, status models.VerificationStatus) error {
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx,
		`UPDATE users SET email_verified = $2, verification_status = $3 WHERE id = $1`,
		userID.String(), emailVerified, string(status),
	)
	if err != nil {
		return fmt.Errorf("set verification: %w", err)
	}
	return requireRow(res, userID)
}

const selectUser = `
	SELECT id, username, email, role, password_hash,
		first_name, last_name, company_name, phone_number, tax_id,
		email_verified, verification_status, created_at
	FROM users
`

func scanUser(row *sql.Row) (*models.User, error) {
	var (
		u       models.User
		rawID   string
		rawRole string
		rawStat string
	)
	err := row.Scan(&rawID, &u.Username, &u.Email, &rawRole, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.CompanyName, &u.PhoneNumber, &u.TaxID,
		&u.EmailVerified, &rawStat, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user: %w", sentinel.ErrNotFound)
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	userID, err := id.ParseUserID(rawID)
	if err != nil {
		return nil, fmt.Errorf("stored user id invalid: %w", err)
	}
	u.ID = userID
	u.Role = models.Role(rawRole)
	u.Status = models.VerificationStatus(rawStat)
	return &u, nil
}

func requireRow(res sql.Result, userID id.UserID) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("user %s: %w", userID, sentinel.ErrNotFound)
	}
	return nil
}
