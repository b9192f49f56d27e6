package service

import (
	"banking-ledger/internal/domain"
)

// AnnotateHistory builds the caller-facing view of an account's history from
// a newest-first record list and the account's current balance. The stored
// balance_after of the newest record may predate commits that raced with the
// read, so the current balance is overlaid on the newest entry only; older
// entries keep the value computed at their own write time. Pure function, no
// side effects.
func AnnotateHistory(transactions []domain.Transaction, currentBalance domain.Money) []TransactionResult {
	results := make([]TransactionResult, 0, len(transactions))
	for i := range transactions {
		tx := &transactions[i]
		balanceAfter := tx.BalanceAfter
		if i == 0 {
			balanceAfter = currentBalance
		}
		results = append(results, *toResult(tx, balanceAfter))
	}
	return results
}
