package domain

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID        int64     `json:"account_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Balance   Money     `json:"balance"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AccountStore owns balance state. CompareAndSetBalance is the only mutation
// path after creation: it commits next only if the stored balance still equals
// expected, returning ErrBalanceConflict otherwise so the caller can retry
// from a fresh read.
type AccountStore interface {
	Create(ownerID uuid.UUID) (*Account, error)
	GetByID(id int64) (*Account, error)
	GetByOwner(ownerID uuid.UUID) (*Account, error)
	CompareAndSetBalance(id int64, expected, next Money) (*Account, error)
}
