package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"banking-ledger/internal/auth"
	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
	"banking-ledger/internal/service"
)

type TransactionHandler struct {
	ledgerService *service.LedgerService
}

func NewTransactionHandler(ledgerService *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{
		ledgerService: ledgerService,
	}
}

type MovementRequest struct {
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

type TransferRequest struct {
	TargetAccountID int64  `json:"target_account_id"`
	Amount          string `json:"amount"`
	Description     string `json:"description,omitempty"`
}

func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.ledgerService.Deposit)
}

func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.ledgerService.Withdraw)
}

func (h *TransactionHandler) movement(
	w http.ResponseWriter,
	r *http.Request,
	op func(ownerID uuid.UUID, amount domain.Money, description string) (*service.TransactionResult, error),
) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, errors.ErrUnauthorized)
		return
	}

	var req MovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, err := domain.ParseMoney(req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := op(ownerID, amount, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, errors.ErrUnauthorized)
		return
	}

	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.NewAppError(errors.InvalidInput, "invalid request body").WithDetails(err.Error()))
		return
	}

	amount, err := domain.ParseMoney(req.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	result, err := h.ledgerService.Transfer(ownerID, req.TargetAccountID, amount, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (h *TransactionHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.OwnerFromContext(r.Context())
	if !ok {
		writeError(w, errors.ErrUnauthorized)
		return
	}

	history, err := h.ledgerService.GetHistory(ownerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}
