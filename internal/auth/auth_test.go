package auth

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banking-ledger/internal/errors"
	"banking-ledger/internal/repository"
)

const testSecret = "test-secret"

func newTestService() *Service {
	store := repository.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(store, store.Users(), testSecret, time.Hour, 4, logger)
}

func TestRegisterCreatesUserAndAccount(t *testing.T) {
	svc := newTestService()

	user, account, err := svc.Register("Alice@Example.com ", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, user.ID, account.OwnerID)
	assert.False(t, account.Balance.IsPositive())
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.Register("not-an-email", "hunter2hunter2")
	assert.True(t, errors.IsCode(err, errors.InvalidInput))

	_, _, err = svc.Register("alice@example.com", "short")
	assert.True(t, errors.IsCode(err, errors.InvalidInput))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.Register("alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, _, err = svc.Register("alice@example.com", "otherpassword")
	assert.True(t, errors.IsCode(err, errors.DuplicateUser))
}

func TestLoginAndResolveToken(t *testing.T) {
	svc := newTestService()

	user, _, err := svc.Register("alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	token, loggedIn, err := svc.Login("alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	require.NotEmpty(t, token)

	ownerID, err := svc.ResolveToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, ownerID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService()

	_, _, err := svc.Register("alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, _, err = svc.Login("alice@example.com", "wrongpassword")
	assert.True(t, errors.IsCode(err, errors.InvalidCredentials))

	_, _, err = svc.Login("nobody@example.com", "hunter2hunter2")
	assert.True(t, errors.IsCode(err, errors.InvalidCredentials))
}

func TestResolveTokenRejectsTampering(t *testing.T) {
	svc := newTestService()

	userID := uuid.New()
	token, err := GenerateToken("some-other-secret", userID, time.Hour)
	require.NoError(t, err)

	_, err = svc.ResolveToken(token)
	assert.True(t, errors.IsCode(err, errors.Unauthorized))

	_, err = svc.ResolveToken("not-a-token")
	assert.True(t, errors.IsCode(err, errors.Unauthorized))
}

func TestTokenExpiry(t *testing.T) {
	// GenerateToken refuses non-positive TTLs, so build the expired token by hand.
	claims := &Claims{
		UserID: uuid.New(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.True(t, errors.IsCode(err, errors.Unauthorized))
}
