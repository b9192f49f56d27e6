package repository

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
)

// MemoryStore keeps the whole ledger in process memory behind one RWMutex,
// with the same observable semantics as the postgres repositories. It backs
// the unit tests and the "memory" storage mode.
type MemoryStore struct {
	mu sync.RWMutex

	accounts  map[int64]domain.Account
	byOwner   map[uuid.UUID]int64
	records   map[int64][]domain.Transaction
	users     map[uuid.UUID]domain.User
	byEmail   map[string]uuid.UUID
	nextAccID int64
	nextTxID  int64
	lastTxAt  time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		accounts: make(map[int64]domain.Account),
		byOwner:  make(map[uuid.UUID]int64),
		records:  make(map[int64][]domain.Transaction),
		users:    make(map[uuid.UUID]domain.User),
		byEmail:  make(map[string]uuid.UUID),
	}
}

var (
	_ domain.AccountStore   = (*MemoryStore)(nil)
	_ domain.TransactionLog = (*MemoryStore)(nil)
	_ domain.UserStore      = (*memoryUsers)(nil)
	_ domain.UnitOfWork     = (*MemoryStore)(nil)
)

func (m *MemoryStore) Create(ownerID uuid.UUID) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byOwner[ownerID]; exists {
		return nil, errors.ErrDuplicateOwner
	}

	m.nextAccID++
	now := time.Now()
	account := domain.Account{
		ID:        m.nextAccID,
		OwnerID:   ownerID,
		Balance:   domain.ZeroMoney,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.accounts[account.ID] = account
	m.byOwner[ownerID] = account.ID

	copied := account
	return &copied, nil
}

func (m *MemoryStore) GetByID(id int64) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	copied := account
	return &copied, nil
}

func (m *MemoryStore) GetByOwner(ownerID uuid.UUID) (*domain.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byOwner[ownerID]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	account := m.accounts[id]
	copied := account
	return &copied, nil
}

func (m *MemoryStore) CompareAndSetBalance(id int64, expected, next domain.Money) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	account, ok := m.accounts[id]
	if !ok {
		return nil, errors.ErrAccountNotFound
	}
	if !account.Balance.Equal(expected) {
		return nil, errors.ErrBalanceConflict
	}

	account.Balance = next
	account.UpdatedAt = time.Now()
	m.accounts[id] = account

	copied := account
	return &copied, nil
}

func (m *MemoryStore) Append(tx *domain.Transaction) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.accounts[tx.AccountID]; !ok {
		return nil, errors.ErrAccountNotFound
	}

	m.nextTxID++
	now := time.Now()
	// Timestamps never go backwards, even if the wall clock does.
	if now.Before(m.lastTxAt) {
		now = m.lastTxAt
	}
	m.lastTxAt = now

	record := *tx
	record.ID = m.nextTxID
	record.Timestamp = now
	if tx.CounterpartyID != nil {
		counterparty := *tx.CounterpartyID
		record.CounterpartyID = &counterparty
	}
	m.records[record.AccountID] = append(m.records[record.AccountID], record)

	copied := record
	return &copied, nil
}

func (m *MemoryStore) ListByAccount(accountID int64) ([]domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.records[accountID]
	// Appended in (timestamp, id) order, so newest-first is a reverse copy.
	out := make([]domain.Transaction, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	return out, nil
}

// memoryUsers is the UserStore view of a MemoryStore. Account methods and
// user methods share names (Create, GetByID), so users get their own view
// type instead of living on MemoryStore directly.
type memoryUsers struct {
	m *MemoryStore
}

// Users returns the UserStore view.
func (m *MemoryStore) Users() domain.UserStore {
	return memoryUsers{m: m}
}

func (u memoryUsers) Create(user *domain.User) error {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()

	if _, exists := u.m.byEmail[user.Email]; exists {
		return errors.ErrDuplicateUser
	}

	user.CreatedAt = time.Now()
	u.m.users[user.ID] = *user
	u.m.byEmail[user.Email] = user.ID
	return nil
}

func (u memoryUsers) GetByEmail(email string) (*domain.User, error) {
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()

	id, ok := u.m.byEmail[email]
	if !ok {
		return nil, errors.ErrInvalidCredentials
	}
	user := u.m.users[id]
	copied := user
	return &copied, nil
}

func (u memoryUsers) GetByID(id uuid.UUID) (*domain.User, error) {
	u.m.mu.RLock()
	defer u.m.mu.RUnlock()

	user, ok := u.m.users[id]
	if !ok {
		return nil, errors.ErrInvalidCredentials
	}
	copied := user
	return &copied, nil
}

// WithinTransaction runs fn directly; a fresh user id cannot collide with an
// existing account owner, so registration needs no rollback here.
func (m *MemoryStore) WithinTransaction(fn func(users domain.UserStore, accounts domain.AccountStore) error) error {
	return fn(m.Users(), m)
}
