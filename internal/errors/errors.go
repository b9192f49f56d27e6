package errors

import (
	goerrors "errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InvalidInput             ErrorCode = "invalid_input"
	InvalidAmount            ErrorCode = "invalid_amount"
	InvalidTransfer          ErrorCode = "invalid_transfer"
	AccountNotFound          ErrorCode = "account_not_found"
	InsufficientFunds        ErrorCode = "insufficient_funds"
	DuplicateOwner           ErrorCode = "duplicate_owner"
	DuplicateUser            ErrorCode = "duplicate_user"
	InvalidCredentials       ErrorCode = "invalid_credentials"
	Unauthorized             ErrorCode = "unauthorized"
	BalanceConflict          ErrorCode = "balance_conflict"
	ConcurrentUpdateExceeded ErrorCode = "concurrent_update_exceeded"
	TransferPartiallyFailed  ErrorCode = "transfer_partially_failed"
	InternalError            ErrorCode = "internal_error"
)

type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewAppError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

func NewAppErrorf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WithDetails returns a copy so the predefined errors stay immutable.
func (e *AppError) WithDetails(details string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
	}
}

// HTTPStatus maps the error code to a transport-level status for the API layer.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case InvalidInput, InvalidAmount, InvalidTransfer:
		return http.StatusBadRequest
	case Unauthorized, InvalidCredentials:
		return http.StatusUnauthorized
	case AccountNotFound:
		return http.StatusNotFound
	case DuplicateOwner, DuplicateUser, BalanceConflict, ConcurrentUpdateExceeded:
		return http.StatusConflict
	case InsufficientFunds:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if goerrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// Predefined errors for common cases
var (
	ErrInvalidAmount            = NewAppError(InvalidAmount, "amount must be a positive value with at most two decimal places")
	ErrInvalidTransfer          = NewAppError(InvalidTransfer, "cannot transfer to the same account")
	ErrAccountNotFound          = NewAppError(AccountNotFound, "account not found")
	ErrInsufficientFunds        = NewAppError(InsufficientFunds, "insufficient balance")
	ErrDuplicateOwner           = NewAppError(DuplicateOwner, "owner already has an account")
	ErrDuplicateUser            = NewAppError(DuplicateUser, "user already registered")
	ErrInvalidCredentials       = NewAppError(InvalidCredentials, "invalid email or password")
	ErrUnauthorized             = NewAppError(Unauthorized, "missing or invalid credentials")
	ErrBalanceConflict          = NewAppError(BalanceConflict, "balance changed concurrently")
	ErrConcurrentUpdateExceeded = NewAppError(ConcurrentUpdateExceeded, "too many concurrent updates, try again")
	ErrTransferPartiallyFailed  = NewAppError(TransferPartiallyFailed, "transfer could not be completed or reversed")
	ErrCannotBeginTransaction   = NewAppError(InternalError, "cannot begin transaction on this executor")
)
