package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	account "tradegate/internal/account/models"
	"tradegate/internal/document/models"
	id "tradegate/pkg/domain"
	"tradegate/pkg/platform/tx"
)

// Postgres persists submissions in PostgreSQL. Slots are stored as a text
// array, object keys as JSON. All methods join a caller transaction carried
// in context.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed submission store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Append(ctx context.Context, submission *models.Submission) error {
	slots := make([]string, 0, len(submission.Slots))
	for _, slot := range submission.Slots.Slots() {
		slots = append(slots, string(slot))
	}
	objectKeys, err := json.Marshal(submission.ObjectKeys)
	if err != nil {
		return fmt.Errorf("marshal object keys: %w", err)
	}

	query := `
		INSERT INTO document_submissions (id, user_id, role, slots, object_keys, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = tx.Resolve(ctx, s.db).ExecContext(ctx, query,
		submission.ID.String(), submission.UserID.String(), string(submission.Role),
		pq.Array(slots), objectKeys, submission.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

func (s *Postgres) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Submission, error) {
	query := `
		SELECT id, user_id, role, slots, object_keys, created_at
		FROM document_submissions
		WHERE user_id = $1
		ORDER BY created_at ASC
	`
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []*models.Submission
	for rows.Next() {
		var (
			rawID      string
			rawUserID  string
			rawRole    string
			rawSlots   []string
			rawKeys    []byte
			submission models.Submission
		)
		if err := rows.Scan(&rawID, &rawUserID, &rawRole, pq.Array(&rawSlots), &rawKeys, &submission.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		subID, err := id.ParseSubmissionID(rawID)
		if err != nil {
			return nil, fmt.Errorf("stored submission id invalid: %w", err)
		}
		ownerID, err := id.ParseUserID(rawUserID)
		if err != nil {
			return nil, fmt.Errorf("stored submission user id invalid: %w", err)
		}
		submission.ID = subID
		submission.UserID = ownerID
		submission.Role = account.Role(rawRole)
		submission.Slots = models.NewSlotSet()
		for _, raw := range rawSlots {
			submission.Slots[models.Slot(raw)] = struct{}{}
		}
		if len(rawKeys) > 0 {
			if err := json.Unmarshal(rawKeys, &submission.ObjectKeys); err != nil {
				return nil, fmt.Errorf("unmarshal object keys: %w", err)
			}
		}
		out = append(out, &submission)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}
