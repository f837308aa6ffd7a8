package account

import (
	"context"
	"sync"

	"authgate/internal/auth/models"
	"authgate/pkg/platform/sentinel"
)

// InMemoryAccountStore keeps accounts keyed by email. It backs development
// runs and unit tests; records are lost on restart.
type InMemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*models.Account
}

func New() *InMemoryAccountStore {
	return &InMemoryAccountStore{accounts: make(map[string]*models.Account)}
}

// CreateIfEmailAvailable inserts account unless the email is taken.
// The check and the insert happen under one lock.
func (s *InMemoryAccountStore) CreateIfEmailAvailable(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[account.Email]; exists {
		return sentinel.ErrConflict
	}
	stored := *account
	s.accounts[account.Email] = &stored
	return nil
}

func (s *InMemoryAccountStore) FindByEmail(_ context.Context, email string) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if account, ok := s.accounts[email]; ok {
		found := *account
		return &found, nil
	}
	return nil, sentinel.ErrNotFound
}

// Ping always succeeds.
func (s *InMemoryAccountStore) Ping(context.Context) error { return nil }

// Count reports how many accounts are stored.
func (s *InMemoryAccountStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.accounts)
}
