package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
)

func TestMemoryAccountCreate(t *testing.T) {
	store := NewMemoryStore()
	ownerID := uuid.New()

	account, err := store.Create(ownerID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(domain.ZeroMoney))
	assert.Equal(t, ownerID, account.OwnerID)

	// One account per owner.
	_, err = store.Create(ownerID)
	assert.True(t, errors.IsCode(err, errors.DuplicateOwner))

	byOwner, err := store.GetByOwner(ownerID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, byOwner.ID)

	byID, err := store.GetByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, byID.OwnerID)

	_, err = store.GetByOwner(uuid.New())
	assert.True(t, errors.IsCode(err, errors.AccountNotFound))
}

func TestMemoryCompareAndSetBalance(t *testing.T) {
	store := NewMemoryStore()
	account, err := store.Create(uuid.New())
	require.NoError(t, err)

	updated, err := store.CompareAndSetBalance(account.ID, domain.ZeroMoney, domain.MustMoney("25.00"))
	require.NoError(t, err)
	assert.Equal(t, "25.00", updated.Balance.String())

	// Stale expected balance loses.
	_, err = store.CompareAndSetBalance(account.ID, domain.ZeroMoney, domain.MustMoney("50.00"))
	assert.True(t, errors.IsCode(err, errors.BalanceConflict))

	current, err := store.GetByID(account.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", current.Balance.String())

	_, err = store.CompareAndSetBalance(account.ID+1, domain.ZeroMoney, domain.MustMoney("1.00"))
	assert.True(t, errors.IsCode(err, errors.AccountNotFound))
}

func TestMemoryAppendAssignsIdentityAndOrder(t *testing.T) {
	store := NewMemoryStore()
	account, err := store.Create(uuid.New())
	require.NoError(t, err)

	first, err := store.Append(&domain.Transaction{
		AccountID:    account.ID,
		Type:         domain.TypeDeposit,
		Amount:       domain.MustMoney("10.00"),
		BalanceAfter: domain.MustMoney("10.00"),
	})
	require.NoError(t, err)
	second, err := store.Append(&domain.Transaction{
		AccountID:    account.ID,
		Type:         domain.TypeWithdrawal,
		Amount:       domain.MustMoney("4.00"),
		BalanceAfter: domain.MustMoney("6.00"),
	})
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
	assert.False(t, second.Timestamp.Before(first.Timestamp))

	listed, err := store.ListByAccount(account.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)

	// Unknown account appends are rejected, listing one is just empty.
	_, err = store.Append(&domain.Transaction{AccountID: account.ID + 5, Type: domain.TypeDeposit, Amount: domain.MustMoney("1.00")})
	assert.True(t, errors.IsCode(err, errors.AccountNotFound))

	empty, err := store.ListByAccount(account.ID + 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryListIsASnapshot(t *testing.T) {
	store := NewMemoryStore()
	account, err := store.Create(uuid.New())
	require.NoError(t, err)

	_, err = store.Append(&domain.Transaction{
		AccountID:    account.ID,
		Type:         domain.TypeDeposit,
		Amount:       domain.MustMoney("1.00"),
		BalanceAfter: domain.MustMoney("1.00"),
	})
	require.NoError(t, err)

	snapshot, err := store.ListByAccount(account.ID)
	require.NoError(t, err)

	_, err = store.Append(&domain.Transaction{
		AccountID:    account.ID,
		Type:         domain.TypeDeposit,
		Amount:       domain.MustMoney("2.00"),
		BalanceAfter: domain.MustMoney("3.00"),
	})
	require.NoError(t, err)

	assert.Len(t, snapshot, 1)
}

func TestMemoryUsers(t *testing.T) {
	store := NewMemoryStore()
	users := store.Users()

	user := &domain.User{ID: uuid.New(), Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(user))
	assert.False(t, user.CreatedAt.IsZero())

	err := users.Create(&domain.User{ID: uuid.New(), Email: "alice@example.com", PasswordHash: "other"})
	assert.True(t, errors.IsCode(err, errors.DuplicateUser))

	byEmail, err := users.GetByEmail("alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := users.GetByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", byID.Email)

	_, err = users.GetByEmail("bob@example.com")
	assert.True(t, errors.IsCode(err, errors.InvalidCredentials))
}
