package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the account owner as known to the identity layer. The rest of the
// system only ever sees the ID.
type User struct {
	ID           uuid.UUID `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type UserStore interface {
	Create(user *User) error
	GetByEmail(email string) (*User, error)
	GetByID(id uuid.UUID) (*User, error)
}

// UnitOfWork runs fn against stores that commit as one atomic unit. Used at
// registration so a user row never exists without its account row.
type UnitOfWork interface {
	WithinTransaction(fn func(users UserStore, accounts AccountStore) error) error
}
