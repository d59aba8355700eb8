package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tradegate/internal/verification/models"
	id "tradegate/pkg/domain"
	"tradegate/pkg/platform/sentinel"
)

const (
	tokenKeyPrefix = "verify:token:"

	// Keys outlive the validity window by a grace period so a late click
	// reads as expired instead of unknown. DeleteExpired and this TTL both
	// clean up; whichever fires first wins.
	redisGrace = 24 * time.Hour

	consumeRetries = 3
)

type redisToken struct {
	UserID   string    `json:"user_id"`
	IssuedAt time.Time `json:"issued_at"`
}

// Redis is the production token store for distributed deployments.
type Redis struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed token store.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (s *Redis) Create(ctx context.Context, token *models.Token) error {
	payload, err := json.Marshal(redisToken{
		UserID:   token.UserID.String(),
		IssuedAt: token.IssuedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	ok, err := s.client.SetNX(ctx, tokenKeyPrefix+token.Value, payload, models.TokenTTL+redisGrace).Result()
	if err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

// Consume runs GET + DEL under WATCH so two concurrent clicks on the same
// link race cleanly: one wins, the other sees the key gone.
func (s *Redis) Consume(ctx context.Context, value string, now time.Time) (*models.Token, error) {
	key := tokenKeyPrefix + value
	var token *models.Token

	consume := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load token: %w", err)
		}

		var stored redisToken
		if err := json.Unmarshal(payload, &stored); err != nil {
			return fmt.Errorf("unmarshal token: %w", err)
		}
		userID, err := id.ParseUserID(stored.UserID)
		if err != nil {
			return fmt.Errorf("stored token user id: %w", err)
		}
		candidate := &models.Token{Value: value, UserID: userID, IssuedAt: stored.IssuedAt}
		if candidate.Expired(now) {
			return sentinel.ErrExpired
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		if err != nil {
			return err
		}
		token = candidate
		return nil
	}

	for attempt := 0; attempt < consumeRetries; attempt++ {
		err := s.client.Watch(ctx, consume, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return token, nil
	}
	// The key changed under us on every attempt; a concurrent consume won.
	return nil, sentinel.ErrNotFound
}

func (s *Redis) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	deleted := 0
	iter := s.client.Scan(ctx, 0, tokenKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		payload, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return deleted, fmt.Errorf("load token: %w", err)
		}
		var stored redisToken
		if err := json.Unmarshal(payload, &stored); err != nil {
			// Unreadable entries get swept with the expired ones.
			stored.IssuedAt = time.Time{}
		}
		if now.After(stored.IssuedAt.Add(models.TokenTTL)) {
			if err := s.client.Del(ctx, key).Err(); err != nil {
				return deleted, fmt.Errorf("delete token: %w", err)
			}
			deleted++
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("scan tokens: %w", err)
	}
	return deleted, nil
}
