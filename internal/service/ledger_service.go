package service

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
)

// maxCommitAttempts bounds the optimistic-concurrency retry loop around a
// single balance commit.
const maxCommitAttempts = 5

// LedgerService orchestrates deposits, withdrawals and transfers against the
// account store and the transaction log. It is the only component that calls
// both in sequence for one logical operation, and it is safe for concurrent
// use, including concurrent operations on the same account.
type LedgerService struct {
	accounts domain.AccountStore
	log      domain.TransactionLog
	logger   *slog.Logger
}

func NewLedgerService(accounts domain.AccountStore, log domain.TransactionLog, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		accounts: accounts,
		log:      log,
		logger:   logger,
	}
}

// TransactionResult is the caller-facing form of a ledger record.
type TransactionResult struct {
	ID             int64                  `json:"id"`
	Type           domain.TransactionType `json:"type"`
	Amount         domain.Money           `json:"amount"`
	CounterpartyID *int64                 `json:"counterparty_account_id,omitempty"`
	Description    string                 `json:"description,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
	BalanceAfter   domain.Money           `json:"balance_after"`
}

// BalanceResult pairs an account with its current balance.
type BalanceResult struct {
	AccountID int64        `json:"account_id"`
	Balance   domain.Money `json:"balance"`
}

func toResult(tx *domain.Transaction, balanceAfter domain.Money) *TransactionResult {
	return &TransactionResult{
		ID:             tx.ID,
		Type:           tx.Type,
		Amount:         tx.Amount,
		CounterpartyID: tx.CounterpartyID,
		Description:    tx.Description,
		Timestamp:      tx.Timestamp,
		BalanceAfter:   balanceAfter,
	}
}

// Deposit credits the owner's account and appends a DEPOSIT record.
func (s *LedgerService) Deposit(ownerID uuid.UUID, amount domain.Money, description string) (*TransactionResult, error) {
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	account, err := s.accounts.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	updated, err := s.commitBalance(account.ID, func(current domain.Money) (domain.Money, error) {
		return current.Add(amount), nil
	})
	if err != nil {
		return nil, err
	}

	record, err := s.log.Append(&domain.Transaction{
		AccountID:    account.ID,
		Type:         domain.TypeDeposit,
		Amount:       amount,
		Description:  description,
		BalanceAfter: updated.Balance,
	})
	if err != nil {
		if compErr := s.reverse(account.ID, amount, domain.TypeDeposit); compErr != nil {
			return nil, compErr
		}
		return nil, err
	}

	s.logger.Info("deposit completed",
		"account_id", account.ID,
		"transaction_id", record.ID,
		"amount", amount)
	return toResult(record, updated.Balance), nil
}

// Withdraw debits the owner's account if funds suffice and appends a
// WITHDRAWAL record. The funds check runs inside the commit loop so a retry
// always re-validates against a fresh balance.
func (s *LedgerService) Withdraw(ownerID uuid.UUID, amount domain.Money, description string) (*TransactionResult, error) {
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	account, err := s.accounts.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	updated, err := s.commitBalance(account.ID, func(current domain.Money) (domain.Money, error) {
		if current.LessThan(amount) {
			return domain.Money{}, errors.ErrInsufficientFunds
		}
		return current.Sub(amount), nil
	})
	if err != nil {
		return nil, err
	}

	record, err := s.log.Append(&domain.Transaction{
		AccountID:    account.ID,
		Type:         domain.TypeWithdrawal,
		Amount:       amount,
		Description:  description,
		BalanceAfter: updated.Balance,
	})
	if err != nil {
		if compErr := s.reverse(account.ID, amount, domain.TypeWithdrawal); compErr != nil {
			return nil, compErr
		}
		return nil, err
	}

	s.logger.Info("withdrawal completed",
		"account_id", account.ID,
		"transaction_id", record.ID,
		"amount", amount)
	return toResult(record, updated.Balance), nil
}

// Transfer moves amount from the owner's account to the target account as a
// saga: debit the source, credit the target, then append both legs. Any
// failure after the debit committed triggers automatic compensation; only a
// failed compensation surfaces as ErrTransferPartiallyFailed.
func (s *LedgerService) Transfer(ownerID uuid.UUID, targetAccountID int64, amount domain.Money, description string) (*TransactionResult, error) {
	if !amount.IsPositive() {
		return nil, errors.ErrInvalidAmount
	}

	source, err := s.accounts.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	target, err := s.accounts.GetByID(targetAccountID)
	if err != nil {
		return nil, err
	}
	if source.ID == target.ID {
		return nil, errors.ErrInvalidTransfer
	}

	updatedSource, err := s.commitBalance(source.ID, func(current domain.Money) (domain.Money, error) {
		if current.LessThan(amount) {
			return domain.Money{}, errors.ErrInsufficientFunds
		}
		return current.Sub(amount), nil
	})
	if err != nil {
		return nil, err
	}

	updatedTarget, err := s.commitBalance(target.ID, func(current domain.Money) (domain.Money, error) {
		return current.Add(amount), nil
	})
	if err != nil {
		if compErr := s.reverse(source.ID, amount, domain.TypeTransferOut); compErr != nil {
			return nil, compErr
		}
		return nil, err
	}

	sourceID, targetID := source.ID, target.ID
	outRecord, err := s.log.Append(&domain.Transaction{
		AccountID:      sourceID,
		Type:           domain.TypeTransferOut,
		Amount:         amount,
		CounterpartyID: &targetID,
		Description:    description,
		BalanceAfter:   updatedSource.Balance,
	})
	if err != nil {
		return nil, s.unwindTransfer(sourceID, targetID, amount, err)
	}

	_, err = s.log.Append(&domain.Transaction{
		AccountID:      targetID,
		Type:           domain.TypeTransferIn,
		Amount:         amount,
		CounterpartyID: &sourceID,
		Description:    description,
		BalanceAfter:   updatedTarget.Balance,
	})
	if err != nil {
		// The outgoing leg is already durable and cannot be removed, so the
		// ledger is inconsistent no matter what; unwind the balances to give
		// the money back and report the fatal condition.
		s.logger.Error("LEDGER INCONSISTENCY: incoming leg not recorded",
			"source_account_id", sourceID,
			"target_account_id", targetID,
			"out_transaction_id", outRecord.ID,
			"error", err)
		_ = s.unwindTransfer(sourceID, targetID, amount, err)
		return nil, errors.ErrTransferPartiallyFailed
	}

	s.logger.Info("transfer completed",
		"source_account_id", sourceID,
		"target_account_id", targetID,
		"transaction_id", outRecord.ID,
		"amount", amount)
	return toResult(outRecord, updatedSource.Balance), nil
}

// GetBalance reads the owner's account. It never mutates state.
func (s *LedgerService) GetBalance(ownerID uuid.UUID) (*BalanceResult, error) {
	account, err := s.accounts.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	return &BalanceResult{AccountID: account.ID, Balance: account.Balance}, nil
}

// GetHistory lists the owner's transactions newest first. The newest entry is
// annotated with the account's current balance; older entries keep the
// balance computed when they were written.
func (s *LedgerService) GetHistory(ownerID uuid.UUID) ([]TransactionResult, error) {
	account, err := s.accounts.GetByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.log.ListByAccount(account.ID)
	if err != nil {
		return nil, err
	}
	return AnnotateHistory(transactions, account.Balance), nil
}

// commitBalance runs one Read -> Compute -> CommitAttempt cycle per attempt,
// retrying on conflict up to maxCommitAttempts. apply sees the freshly read
// balance and may reject the operation (for example on insufficient funds).
func (s *LedgerService) commitBalance(accountID int64, apply func(current domain.Money) (domain.Money, error)) (*domain.Account, error) {
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		account, err := s.accounts.GetByID(accountID)
		if err != nil {
			return nil, err
		}

		next, err := apply(account.Balance)
		if err != nil {
			return nil, err
		}

		updated, err := s.accounts.CompareAndSetBalance(accountID, account.Balance, next)
		if err == nil {
			return updated, nil
		}
		if !errors.IsCode(err, errors.BalanceConflict) {
			return nil, err
		}

		s.logger.Warn("balance commit conflict, retrying",
			"account_id", accountID,
			"attempt", attempt)
	}

	return nil, errors.ErrConcurrentUpdateExceeded
}

// reverse is the compensating action: it undoes one committed leg so the
// balance matches the visible record history again. A failure here leaves the
// ledger inconsistent and is logged as fatal before being surfaced.
func (s *LedgerService) reverse(accountID int64, amount domain.Money, leg domain.TransactionType) *errors.AppError {
	undo := func(current domain.Money) (domain.Money, error) {
		switch leg.Sign() {
		case 1:
			return current.Sub(amount), nil
		default:
			return current.Add(amount), nil
		}
	}

	if _, err := s.commitBalance(accountID, undo); err != nil {
		s.logger.Error("LEDGER INCONSISTENCY: compensation failed",
			"account_id", accountID,
			"amount", amount,
			"leg", leg,
			"error", err)
		return errors.ErrTransferPartiallyFailed
	}

	s.logger.Warn("compensated committed leg",
		"account_id", accountID,
		"amount", amount,
		"leg", leg)
	return nil
}

// unwindTransfer reverses both committed balance legs after a log append
// failed mid-transfer, then reports the original failure.
func (s *LedgerService) unwindTransfer(sourceID, targetID int64, amount domain.Money, cause error) error {
	if err := s.reverse(targetID, amount, domain.TypeTransferIn); err != nil {
		return err
	}
	if err := s.reverse(sourceID, amount, domain.TypeTransferOut); err != nil {
		return err
	}
	return cause
}
