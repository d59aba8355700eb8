package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"tradegate/pkg/platform/audit"
)

// Store persists audit events in PostgreSQL, append-only. The full event is
// kept as JSON next to the indexed columns so the schema does not chase the
// event shape.
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_events (occurred_at, action, user_id, payload)
		VALUES ($1, $2, $3, $4)
	`, event.Timestamp, string(event.Action), nullable(event.UserID), payload)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM audit_events
		WHERE user_id = $1
		ORDER BY occurred_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		var event audit.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, fmt.Errorf("unmarshal audit event: %w", err)
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return out, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
