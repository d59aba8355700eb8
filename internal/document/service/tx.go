package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	id "tradegate/pkg/domain"
	dErrors "tradegate/pkg/domain-errors"
	"tradegate/pkg/platform/tx"
)

// UserTx serializes submission acceptance and cumulative recomputation per
// user, so two racing near-complete submissions cannot both observe the
// pre-completion state and double-fire the status transition.
type UserTx interface {
	RunInUserTx(ctx context.Context, userID id.UserID, fn func(ctx context.Context) error) error
}

// numShards spreads per-user locks across mutexes so unrelated users do not
// contend on a single lock.
const numShards = 128

// defaultTxTimeout bounds a user transaction.
const defaultTxTimeout = 5 * time.Second

// ShardedTx is the in-memory UserTx: a mutex per shard, selected by an
// FNV-1a hash of the user ID.
type ShardedTx struct {
	shards  [numShards]sync.Mutex
	timeout time.Duration
}

// NewShardedTx constructs the in-memory transaction boundary.
func NewShardedTx() *ShardedTx {
	return &ShardedTx{timeout: defaultTxTimeout}
}

func (t *ShardedTx) RunInUserTx(ctx context.Context, userID id.UserID, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	shard := hashString(userID.String()) % numShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring the lock.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx)
}

// hashString is FNV-1a.
func hashString(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

// PostgresTx is the database-backed UserTx: one SQL transaction holding a
// transaction-scoped advisory lock on the user ID, carried to the stores via
// pkg/platform/tx.
type PostgresTx struct {
	db *sql.DB
}

// NewPostgresTx constructs the PostgreSQL transaction boundary.
func NewPostgresTx(db *sql.DB) *PostgresTx {
	return &PostgresTx{db: db}
}

func (t *PostgresTx) RunInUserTx(ctx context.Context, userID id.UserID, fn func(ctx context.Context) error) error {
	sqlTx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin user tx: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	// Released automatically at commit/rollback.
	if _, err := sqlTx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID.String()); err != nil {
		return fmt.Errorf("acquire user lock: %w", err)
	}

	if err := fn(tx.WithTx(ctx, sqlTx)); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit user tx: %w", err)
	}
	return nil
}
