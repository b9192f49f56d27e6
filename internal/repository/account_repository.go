package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
)

type accountRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewAccountRepository(db SQLExecutor, logger *slog.Logger) domain.AccountStore {
	return &accountRepository{
		db:     db,
		logger: logger,
	}
}

func (r *accountRepository) Create(ownerID uuid.UUID) (*domain.Account, error) {
	query := `
		INSERT INTO accounts (owner_id, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		RETURNING id
	`

	now := time.Now()
	var id int64
	err := r.db.QueryRow(query, ownerID, domain.ZeroMoney.String(), now).Scan(&id)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			r.logger.Warn("owner already has an account", "owner_id", ownerID)
			return nil, errors.ErrDuplicateOwner
		}
		r.logger.Error("failed to create account", "owner_id", ownerID, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to create account").WithDetails(err.Error())
	}

	r.logger.Info("account created", "account_id", id, "owner_id", ownerID)
	return &domain.Account{
		ID:        id,
		OwnerID:   ownerID,
		Balance:   domain.ZeroMoney,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (r *accountRepository) GetByID(id int64) (*domain.Account, error) {
	query := `
		SELECT id, owner_id, balance, created_at, updated_at
		FROM accounts WHERE id = $1
	`

	return r.scanAccount(query, id)
}

func (r *accountRepository) GetByOwner(ownerID uuid.UUID) (*domain.Account, error) {
	query := `
		SELECT id, owner_id, balance, created_at, updated_at
		FROM accounts WHERE owner_id = $1
	`

	return r.scanAccount(query, ownerID)
}

func (r *accountRepository) scanAccount(query string, arg interface{}) (*domain.Account, error) {
	var account domain.Account
	var balanceStr string

	err := r.db.QueryRow(query, arg).Scan(
		&account.ID,
		&account.OwnerID,
		&balanceStr,
		&account.CreatedAt,
		&account.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrAccountNotFound
		}
		r.logger.Error("failed to get account", "arg", arg, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get account").WithDetails(err.Error())
	}

	balance, err := parseBalance(balanceStr)
	if err != nil {
		r.logger.Error("failed to parse balance", "account_id", account.ID, "balance_str", balanceStr, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to parse balance").WithDetails(err.Error())
	}

	account.Balance = balance
	return &account, nil
}

// CompareAndSetBalance commits next only if the stored balance still equals
// expected. Conditional update on a single row gives linearizable semantics:
// two racing read-then-write pairs on the same account cannot both match.
func (r *accountRepository) CompareAndSetBalance(id int64, expected, next domain.Money) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = $2
		WHERE id = $3 AND balance = $4
		RETURNING owner_id, created_at
	`

	now := time.Now()
	account := domain.Account{ID: id, Balance: next, UpdatedAt: now}

	err := r.db.QueryRow(query, next.String(), now, id, expected.String()).Scan(
		&account.OwnerID,
		&account.CreatedAt,
	)

	if err == nil {
		return &account, nil
	}
	if err != sql.ErrNoRows {
		r.logger.Error("failed to update balance", "account_id", id, "error", err)
		// A statement timeout here is indistinguishable from a lost race:
		// report it as a conflict so the caller retries from a fresh read.
		return nil, errors.ErrBalanceConflict.WithDetails(err.Error())
	}

	// No row matched: either the account is gone or the balance moved.
	if _, getErr := r.GetByID(id); getErr != nil {
		return nil, getErr
	}
	r.logger.Warn("balance changed concurrently", "account_id", id, "expected", expected)
	return nil, errors.ErrBalanceConflict
}

func parseBalance(s string) (domain.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return domain.Money{}, err
	}
	return domain.NewMoney(d)
}
