// Package idempotency replays checkout responses for a repeated
// Idempotency-Key instead of creating a second set of orders.
package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const Header = "Idempotency-Key"

var (
	ErrInFlight  = errors.New("idempotency: request with this key is in progress")
	ErrKeyReused = errors.New("idempotency: key was used with a different request")
)

func Key(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(Header))
}

// Fingerprint hashes the decoded request so a replay can be matched to the
// request that produced it.
func Fingerprint(req any) (string, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("idempotency: fingerprint: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Record is a finished response kept for replay.
type Record struct {
	Fingerprint string          `json:"fingerprint"`
	StatusCode  int             `json:"status_code"`
	Body        json.RawMessage `json:"body"`
}

type Store struct {
	client  *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl, lockTTL: time.Minute}
}

// Begin returns the stored record for the key when one exists and was made
// for the same fingerprint; a different fingerprint fails with ErrKeyReused.
// Otherwise it claims the key; a concurrent claim fails with ErrInFlight.
func (s *Store) Begin(ctx context.Context, buyerID uuid.UUID, key, fingerprint string) (*Record, error) {
	data, err := s.client.Get(ctx, resultKey(buyerID, key)).Bytes()
	switch {
	case err == nil:
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			return nil, fmt.Errorf("idempotency: decode record: %w", err)
		}
		if rec.Fingerprint != fingerprint {
			return nil, ErrKeyReused
		}
		return &rec, nil
	case !errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("idempotency: get: %w", err)
	}

	ok, err := s.client.SetNX(ctx, lockKey(buyerID, key), "1", s.lockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("idempotency: lock: %w", err)
	}
	if !ok {
		return nil, ErrInFlight
	}
	return nil, nil
}

// Save stores the response and releases the claim.
func (s *Store) Save(ctx context.Context, buyerID uuid.UUID, key string, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("idempotency: encode record: %w", err)
	}
	if err := s.client.Set(ctx, resultKey(buyerID, key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: set: %w", err)
	}
	return s.Release(ctx, buyerID, key)
}

// Release drops the claim without a record so the client may retry.
func (s *Store) Release(ctx context.Context, buyerID uuid.UUID, key string) error {
	if err := s.client.Del(ctx, lockKey(buyerID, key)).Err(); err != nil {
		return fmt.Errorf("idempotency: release: %w", err)
	}
	return nil
}

func resultKey(buyerID uuid.UUID, key string) string {
	return fmt.Sprintf("checkout:idem:%s:%s", buyerID, key)
}

func lockKey(buyerID uuid.UUID, key string) string {
	return fmt.Sprintf("checkout:idem:%s:%s:lock", buyerID, key)
}
