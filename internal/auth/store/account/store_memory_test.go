package account

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"authgate/internal/auth/models"
	"authgate/pkg/platform/sentinel"
)

type InMemoryAccountStoreSuite struct {
	suite.Suite
	store *InMemoryAccountStore
}

func (s *InMemoryAccountStoreSuite) SetupTest() {
	s.store = New()
}

func TestInMemoryAccountStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryAccountStoreSuite))
}

func (s *InMemoryAccountStoreSuite) TestLookupBehavior() {
	ctx := context.Background()

	s.Run("returns account by email when exists", func() {
		account := models.NewAccount("jane.doe@example.com", "$2a$10$digest", time.Now())
		s.Require().NoError(s.store.CreateIfEmailAvailable(ctx, account))

		found, err := s.store.FindByEmail(ctx, account.Email)
		s.Require().NoError(err)
		s.Equal(account, found)
	})

	s.Run("returns ErrNotFound when email does not exist", func() {
		_, err := s.store.FindByEmail(ctx, "missing@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("email lookup is case-sensitive", func() {
		account := models.NewAccount("Case@example.com", "$2a$10$digest", time.Now())
		s.Require().NoError(s.store.CreateIfEmailAvailable(ctx, account))

		_, err := s.store.FindByEmail(ctx, "case@example.com")
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("returned account is a copy", func() {
		account := models.NewAccount("copy@example.com", "$2a$10$digest", time.Now())
		s.Require().NoError(s.store.CreateIfEmailAvailable(ctx, account))

		found, err := s.store.FindByEmail(ctx, account.Email)
		s.Require().NoError(err)
		found.PasswordHash = "tampered"

		again, err := s.store.FindByEmail(ctx, account.Email)
		s.Require().NoError(err)
		s.Equal("$2a$10$digest", again.PasswordHash)
	})
}

func (s *InMemoryAccountStoreSuite) TestCreateIfEmailAvailable() {
	ctx := context.Background()

	s.Run("second account with same email conflicts", func() {
		first := models.NewAccount("dup@example.com", "first", time.Now())
		second := models.NewAccount("dup@example.com", "second", time.Now())

		s.Require().NoError(s.store.CreateIfEmailAvailable(ctx, first))
		s.Require().ErrorIs(s.store.CreateIfEmailAvailable(ctx, second), sentinel.ErrConflict)

		found, err := s.store.FindByEmail(ctx, "dup@example.com")
		s.Require().NoError(err)
		s.Equal(first.ID, found.ID)
		s.Equal("first", found.PasswordHash)
	})

	s.Run("concurrent creation yields exactly one account", func() {
		const goroutines = 50
		var wg sync.WaitGroup
		var successCount, conflictCount atomic.Int32

		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := s.store.CreateIfEmailAvailable(ctx, models.NewAccount("race@example.com", "h", time.Now()))
				switch {
				case err == nil:
					successCount.Add(1)
				case err == sentinel.ErrConflict:
					conflictCount.Add(1)
				}
			}()
		}
		wg.Wait()

		s.Equal(int32(1), successCount.Load())
		s.Equal(int32(goroutines-1), conflictCount.Load())
	})
}

func (s *InMemoryAccountStoreSuite) TestPing() {
	s.NoError(s.store.Ping(context.Background()))
	s.Equal(0, s.store.Count())
}
