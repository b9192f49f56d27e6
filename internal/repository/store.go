package repository

import (
	"database/sql"
	"log/slog"

	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
)

// Store provides a unified entry point to all repositories with transaction support
type Store struct {
	executor SQLExecutor
	logger   *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(db *sql.DB, logger *slog.Logger) *Store {
	return &Store{
		executor: db,
		logger:   logger,
	}
}

// Accounts returns an AccountStore using the current executor
func (s *Store) Accounts() domain.AccountStore {
	return NewAccountRepository(s.executor, s.logger)
}

// Transactions returns a TransactionLog using the current executor
func (s *Store) Transactions() domain.TransactionLog {
	return NewTransactionRepository(s.executor, s.logger)
}

// Users returns a UserStore using the current executor
func (s *Store) Users() domain.UserStore {
	return NewUserRepository(s.executor, s.logger)
}

// WithTransaction executes a function within a database transaction
func (s *Store) WithTransaction(fn func(*Store) error) error {
	// Only sql.DB can begin transactions
	db, ok := s.executor.(*sql.DB)
	if !ok {
		return errors.ErrCannotBeginTransaction
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	txStore := &Store{
		executor: tx,
		logger:   s.logger,
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(txStore); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// WithinTransaction implements domain.UnitOfWork for registration, where the
// user row and its account row must commit together.
func (s *Store) WithinTransaction(fn func(users domain.UserStore, accounts domain.AccountStore) error) error {
	return s.WithTransaction(func(txStore *Store) error {
		return fn(txStore.Users(), txStore.Accounts())
	})
}

var _ domain.UnitOfWork = (*Store)(nil)
