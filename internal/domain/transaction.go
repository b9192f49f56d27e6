package domain

import (
	"time"
)

// TransactionType tags a ledger record. Every switch over it must handle all
// four variants; Sign and Valid are the two interpretation points.
type TransactionType string

const (
	TypeDeposit     TransactionType = "DEPOSIT"
	TypeWithdrawal  TransactionType = "WITHDRAWAL"
	TypeTransferOut TransactionType = "TRANSFER_OUT"
	TypeTransferIn  TransactionType = "TRANSFER_IN"
)

// Sign is the direction the amount moves the owning account's balance.
func (t TransactionType) Sign() int {
	switch t {
	case TypeDeposit, TypeTransferIn:
		return 1
	case TypeWithdrawal, TypeTransferOut:
		return -1
	default:
		return 0
	}
}

// IsTransfer reports whether the record is one leg of a transfer and must
// carry a counterparty account id.
func (t TransactionType) IsTransfer() bool {
	switch t {
	case TypeTransferOut, TypeTransferIn:
		return true
	case TypeDeposit, TypeWithdrawal:
		return false
	default:
		return false
	}
}

func (t TransactionType) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeTransferOut, TypeTransferIn:
		return true
	default:
		return false
	}
}

// Transaction is an immutable ledger record. CounterpartyID is set only on
// transfer legs and references the other account by id, never by object.
// BalanceAfter is the owning account's balance as computed at write time.
type Transaction struct {
	ID             int64           `json:"id"`
	AccountID      int64           `json:"account_id"`
	Type           TransactionType `json:"type"`
	Amount         Money           `json:"amount"`
	CounterpartyID *int64          `json:"counterparty_account_id,omitempty"`
	Description    string          `json:"description,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
	BalanceAfter   Money           `json:"balance_after"`
}

// TransactionLog is append-only. Append assigns the identifier and a
// monotonically non-decreasing timestamp and returns the persisted record;
// nothing is ever updated or deleted. ListByAccount returns a snapshot,
// newest first (timestamp desc, then id desc).
type TransactionLog interface {
	Append(tx *Transaction) (*Transaction, error)
	ListByAccount(accountID int64) ([]Transaction, error)
}
