package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"authgate/internal/auth/models"
	"authgate/pkg/platform/sentinel"
)

var redisOpDurationMs = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "authgate_account_store_redis_duration_ms",
	Help:    "Latency of Redis account store operations in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50},
}, []string{"op"})

// accountKeyPrefix namespaces account records by email.
const accountKeyPrefix = "authgate:account:"

// redisRecord is the JSON shape stored under each account key.
type redisRecord struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RedisStore keeps accounts as JSON values in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed account store. The client lifecycle is
// managed by the caller.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func accountKey(email string) string {
	return accountKeyPrefix + email
}

func observe(op string, start time.Time) {
	redisOpDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000.0)
}

// CreateIfEmailAvailable writes the record with SETNX so that only the first
// writer for an email wins.
func (s *RedisStore) CreateIfEmailAvailable(ctx context.Context, account *models.Account) error {
	defer observe("create", time.Now())

	payload, err := json.Marshal(redisRecord{
		ID:           account.ID,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	created, err := s.client.SetNX(ctx, accountKey(account.Email), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("store account: %w", err)
	}
	if !created {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	defer observe("find", time.Now())

	raw, err := s.client.Get(ctx, accountKey(email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	var rec redisRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return &models.Account{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Join(sentinel.ErrUnavailable, err)
	}
	return nil
}
