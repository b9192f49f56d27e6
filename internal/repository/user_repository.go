package repository

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
)

type userRepository struct {
	db     SQLExecutor
	logger *slog.Logger
}

func NewUserRepository(db SQLExecutor, logger *slog.Logger) domain.UserStore {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

func (r *userRepository) Create(user *domain.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	now := time.Now()
	_, err := r.db.Exec(query, user.ID, user.Email, user.PasswordHash, now)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" { // unique_violation
			r.logger.Warn("duplicate registration attempt", "email", user.Email)
			return errors.ErrDuplicateUser
		}
		r.logger.Error("failed to create user", "email", user.Email, "error", err)
		return errors.NewAppError(errors.InternalError, "failed to create user").WithDetails(err.Error())
	}

	user.CreatedAt = now
	r.logger.Info("user created", "user_id", user.ID)
	return nil
}

func (r *userRepository) GetByEmail(email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users WHERE email = $1
	`

	return r.scanUser(query, email)
}

func (r *userRepository) GetByID(id uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM users WHERE id = $1
	`

	return r.scanUser(query, id)
}

func (r *userRepository) scanUser(query string, arg interface{}) (*domain.User, error) {
	var user domain.User

	err := r.db.QueryRow(query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.ErrInvalidCredentials
		}
		r.logger.Error("failed to get user", "error", err)
		return nil, errors.NewAppError(errors.InternalError, "failed to get user").WithDetails(err.Error())
	}

	return &user, nil
}
