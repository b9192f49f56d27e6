package handler

import (
	"net/http"

	"banking-ledger/internal/auth"
	"banking-ledger/internal/errors"
	"banking-ledger/internal/service"
)

type AccountHandler struct {
	ledgerService *service.LedgerService
}

func NewAccountHandler(ledgerService *service.LedgerService) *AccountHandler {
	return &AccountHandler{
		ledgerService: ledgerService,
	}
}

type BalanceResponse struct {
	AccountID int64  `json:"account_id"`
	Balance   string `json:"balance"`
}

func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, errors.ErrUnauthorized)
		return
	}

	balance, err := h.ledgerService.GetBalance(ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{
		AccountID: balance.AccountID,
		Balance:   balance.Balance.String(),
	})
}
