// Package idempotency remembers the outcome of purchase requests by client
// supplied key so a retried request is answered without recording a second
// sale.
package idempotency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "idempotency:purchase:"
	DefaultTTL = 24 * time.Hour

	statusProcessing = "processing"
	statusSuccess    = "success"
)

// ErrInProgress is returned when another request holds the key.
var ErrInProgress = errors.New("idempotency key is already being processed")

// Result is what a completed request produced.
type Result struct {
	PurchaseID int64 `json:"purchaseId"`
}

type state struct {
	Status string  `json:"status"`
	Result *Result `json:"result,omitempty"`
}

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(k string) string {
	return keyPrefix + k
}

// Reserve claims key for the caller. It returns the stored result when the key
// already completed, ErrInProgress when it is held, and (nil, nil) once the
// caller owns it.
func (s *RedisStore) Reserve(ctx context.Context, key string) (*Result, error) {
	k := s.key(key)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, err := json.Marshal(state{Status: statusProcessing})
		if err != nil {
			return nil, err
		}
		_, err = s.client.SetArgs(ctx, k, raw, redis.SetArgs{Mode: "NX", TTL: s.ttl}).Result()
		if err == nil {
			return nil, nil
		}
		if !errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("redis set: %w", err)
		}

		data, err := s.client.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			// expired between SET and GET
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}

		var st state
		if err := json.Unmarshal(data, &st); err != nil {
			return nil, fmt.Errorf("redis unmarshal: %w", err)
		}
		switch st.Status {
		case statusSuccess:
			return st.Result, nil
		case statusProcessing:
			return nil, ErrInProgress
		default:
			if err := s.client.Del(ctx, k).Err(); err != nil {
				return nil, fmt.Errorf("redis del: %w", err)
			}
		}
	}
}

// Complete stores the result for key so later retries replay it.
func (s *RedisStore) Complete(ctx context.Context, key string, result Result) error {
	raw, err := json.Marshal(state{Status: statusSuccess, Result: &result})
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(key), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Release frees key after a failed request so the client may retry it.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
