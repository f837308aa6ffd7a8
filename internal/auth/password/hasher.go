package password

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"
)

// maxPasswordBytes is bcrypt's input limit; longer inputs are rejected rather
// than silently truncated.
const maxPasswordBytes = 72

// Observer receives the wall time of each bcrypt computation.
type Observer interface {
	ObserveHashDuration(op string, d time.Duration)
}

// Hasher hashes and verifies passwords on a bounded worker pool.
type Hasher struct {
	cost     int
	slots    *semaphore.Weighted
	observer Observer
	// dummy is a real digest of random bytes at the configured cost. Verifying
	// against it costs the same as verifying a stored digest.
	dummy []byte
}

type Option func(*Hasher)

// WithObserver reports hash latency, typically to Prometheus.
func WithObserver(o Observer) Option {
	return func(h *Hasher) {
		h.observer = o
	}
}

// New builds a Hasher. It computes one digest up front for VerifyDummy.
func New(cfg Config, opts ...Option) (*Hasher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	workers := cfg.Concurrency
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	h := &Hasher{
		cost:  cfg.Cost,
		slots: semaphore.NewWeighted(int64(workers)),
	}
	for _, opt := range opts {
		opt(h)
	}

	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("password: dummy seed: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword(seed, cfg.Cost)
	if err != nil {
		return nil, fmt.Errorf("password: dummy digest: %w", err)
	}
	h.dummy = dummy
	return h, nil
}

// Cost returns the configured work factor.
func (h *Hasher) Cost() int { return h.cost }

// Hash returns a salted bcrypt digest. Two calls with the same plaintext
// yield different digests.
func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) > maxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer h.slots.Release(1)

	start := time.Now()
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	h.observe("hash", start)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. Any malformed digest is
// a plain mismatch. The error is non-nil only when ctx ends while waiting
// for a worker slot.
func (h *Hasher) Verify(ctx context.Context, plaintext, digest string) (bool, error) {
	return h.compare(ctx, []byte(digest), plaintext)
}

// VerifyDummy burns the same CPU as Verify against a real digest and always
// reports a mismatch. Login uses it when the account does not exist.
func (h *Hasher) VerifyDummy(ctx context.Context, plaintext string) error {
	_, err := h.compare(ctx, h.dummy, plaintext)
	return err
}

func (h *Hasher) compare(ctx context.Context, digest []byte, plaintext string) (bool, error) {
	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer h.slots.Release(1)

	// bcrypt ignores bytes past the limit, so an over-long input would match
	// any digest of its prefix. It still pays for one compare.
	tooLong := len(plaintext) > maxPasswordBytes
	if tooLong {
		digest, plaintext = h.dummy, plaintext[:maxPasswordBytes]
	}

	start := time.Now()
	err := bcrypt.CompareHashAndPassword(digest, []byte(plaintext))
	h.observe("verify", start)
	return err == nil && !tooLong, nil
}

func (h *Hasher) observe(op string, start time.Time) {
	if h.observer != nil {
		h.observer.ObserveHashDuration(op, time.Since(start))
	}
}
