package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
)

type transactionRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewTransactionRepository(db SQLExecutor, logger *slog.Logger) domain.TransactionLog {
	return &transactionRepository{
		db:     db,
		logger: logger,
	}
}

func (r *transactionRepository) Append(tx *domain.Transaction) (*domain.Transaction, error) {
	// created_at is clamped against the account's latest record so timestamps
	// never go backwards, even if the wall clock does.
	query := `
		INSERT INTO transactions
		(account_id, type, amount, counterparty_id, description, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6,
			GREATEST($7::timestamptz,
				(SELECT COALESCE(MAX(created_at), $7::timestamptz)
				 FROM transactions WHERE account_id = $1)))
		RETURNING id, created_at
	`

	var counterparty sql.NullInt64
	if tx.CounterpartyID != nil {
		counterparty = sql.NullInt64{Int64: *tx.CounterpartyID, Valid: true}
	}

	var description sql.NullString
	if tx.Description != "" {
		description = sql.NullString{String: tx.Description, Valid: true}
	}

	record := *tx
	err := r.db.QueryRow(
		query,
		tx.AccountID,
		string(tx.Type),
		tx.Amount.String(),
		counterparty,
		description,
		tx.BalanceAfter.String(),
		time.Now(),
	).Scan(&record.ID, &record.Timestamp)

	if err != nil {
		r.logger.Error("failed to append transaction",
			"account_id", tx.AccountID,
			"type", tx.Type,
			"amount", tx.Amount,
			"error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to append transaction").WithDetails(err.Error())
	}

	r.logger.Info("transaction appended",
		"transaction_id", record.ID,
		"account_id", record.AccountID,
		"type", record.Type,
		"amount", record.Amount)
	return &record, nil
}

func (r *transactionRepository) ListByAccount(accountID int64) ([]domain.Transaction, error) {
	query := `
		SELECT id, account_id, type, amount, counterparty_id, description, balance_after, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.Query(query, accountID)
	if err != nil {
		r.logger.Error("failed to list transactions", "account_id", accountID, "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to list transactions").WithDetails(err.Error())
	}
	defer rows.Close()

	var transactions []domain.Transaction
	for rows.Next() {
		var (
			tx              domain.Transaction
			typeStr         string
			amountStr       string
			counterparty    sql.NullInt64
			description     sql.NullString
			balanceAfterStr string
		)

		err := rows.Scan(
			&tx.ID,
			&tx.AccountID,
			&typeStr,
			&amountStr,
			&counterparty,
			&description,
			&balanceAfterStr,
			&tx.Timestamp,
		)
		if err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to scan transaction").WithDetails(err.Error())
		}

		tx.Type = domain.TransactionType(typeStr)
		if !tx.Type.Valid() {
			return nil, errors.NewAppErrorf(errors.InternalError, "unknown transaction type %q", typeStr)
		}

		if tx.Amount, err = parseBalance(amountStr); err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to parse amount").WithDetails(err.Error())
		}
		if tx.BalanceAfter, err = parseBalance(balanceAfterStr); err != nil {
			return nil, errors.NewAppError(errors.InternalError, "failed to parse balance_after").WithDetails(err.Error())
		}

		if counterparty.Valid {
			id := counterparty.Int64
			tx.CounterpartyID = &id
		}
		if description.Valid {
			tx.Description = description.String
		}

		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewAppError(errors.InternalError, "failed to read transactions").WithDetails(err.Error())
	}

	return transactions, nil
}
