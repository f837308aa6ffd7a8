package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authgate/internal/audit"
	"authgate/internal/auth/password"
	"authgate/internal/auth/store/account"
	jwttoken "authgate/internal/jwt_token"
	dErrors "authgate/pkg/domain-errors"
)

// newRealService wires the in-memory store, a MinCost hasher and a real
// token service.
func newRealService(t *testing.T) (*Service, *account.InMemoryAccountStore, *audit.MemorySink, *jwttoken.JWTService) {
	t.Helper()
	store := account.New()
	hasher, err := password.New(password.Config{Cost: bcrypt.MinCost, Concurrency: 4})
	require.NoError(t, err)
	tokens, err := jwttoken.NewJWTService("test-secret", "authgate-test")
	require.NoError(t, err)
	sink := audit.NewMemorySink()

	svc, err := New(store, hasher, tokens, WithAuditPublisher(audit.NewPublisher(sink)))
	require.NoError(t, err)
	return svc, store, sink, tokens
}

func TestRegisterThenLogin(t *testing.T) {
	svc, store, sink, tokens := newRealService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, "a@x.com", "pw123")
	require.NoError(t, err)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("pw123")))

	_, err = svc.Register(ctx, "a@x.com", "other")
	require.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	assert.Equal(t, 1, store.Count())

	_, err = svc.Login(ctx, "a@x.com", "wrong")
	require.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCredentials))

	result, err := svc.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	id, err := tokens.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", id.Email)
	assert.Equal(t, created.ID.String(), id.AccountID)

	events := sink.ListByEmail("a@x.com")
	require.Len(t, events, 3)
	assert.Equal(t, audit.ActionAccountRegistered, events[0].Action)
	assert.Equal(t, audit.ActionLoginFailed, events[1].Action)
	assert.Equal(t, audit.ActionLoginSucceeded, events[2].Action)
}

func TestConcurrentRegistrationCreatesOneAccount(t *testing.T) {
	svc, store, _, _ := newRealService(t)
	ctx := context.Background()

	const goroutines = 20
	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Register(ctx, "race@x.com", "pw123")
			switch {
			case err == nil:
				successCount.Add(1)
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount.Load())
	assert.Equal(t, int32(goroutines-1), conflictCount.Load())
	assert.Equal(t, 1, store.Count())
}

func TestLoginFailureModesAreIndistinguishable(t *testing.T) {
	svc, _, _, _ := newRealService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	_, unknown := svc.Login(ctx, "nobody@x.com", "pw123")
	_, wrong := svc.Login(ctx, "a@x.com", "nope")

	var unknownErr, wrongErr *dErrors.Error
	require.True(t, errors.As(unknown, &unknownErr))
	require.True(t, errors.As(wrong, &wrongErr))
	assert.Equal(t, unknownErr.Code, wrongErr.Code)
	assert.Equal(t, unknownErr.Message, wrongErr.Message)
}

func TestLoginHonoursCancelledContext(t *testing.T) {
	svc, _, _, _ := newRealService(t)
	_, err := svc.Register(context.Background(), "a@x.com", "pw123")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err = svc.Login(ctx, "a@x.com", "pw123")
	require.Error(t, err)
}

func TestLoginRejectsSuffixBeyondBcryptLimit(t *testing.T) {
	svc, _, _, _ := newRealService(t)
	ctx := context.Background()
	pw := strings.Repeat("p", 72)

	_, err := svc.Register(ctx, "long@x.com", pw)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "long@x.com", pw+"anything")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidCredentials))

	_, err = svc.Login(ctx, "long@x.com", pw)
	assert.NoError(t, err)
}
