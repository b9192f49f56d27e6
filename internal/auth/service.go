package auth

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"banking-ledger/internal/domain"
	"banking-ledger/internal/errors"
)

const minPasswordLength = 8

// Service is the identity layer: it registers users, verifies credentials
// and issues tokens. The ledger core never sees credentials, only the owner
// identifier this service resolves.
type Service struct {
	uow        domain.UnitOfWork
	users      domain.UserStore
	secret     string
	tokenTTL   time.Duration
	bcryptCost int
	logger     *slog.Logger
}

func NewService(uow domain.UnitOfWork, users domain.UserStore, secret string, tokenTTL time.Duration, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		uow:        uow,
		users:      users,
		secret:     secret,
		tokenTTL:   tokenTTL,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates the user and their zero-balance account in one atomic
// unit, so a user never exists without an account.
func (s *Service) Register(email, password string) (*domain.User, *domain.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateCredentials(email, password); err != nil {
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, nil, errors.NewAppError(errors.InternalError, "failed to hash password").WithDetails(err.Error())
	}

	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	}

	var account *domain.Account
	err = s.uow.WithinTransaction(func(users domain.UserStore, accounts domain.AccountStore) error {
		if err := users.Create(user); err != nil {
			return err
		}
		created, err := accounts.Create(user.ID)
		if err != nil {
			return err
		}
		account = created
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "account_id", account.ID)
	return user, account, nil
}

// Login verifies the credentials and returns a signed token.
func (s *Service) Login(email, password string) (string, *domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(email)
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn("failed login attempt", "email", email)
		return "", nil, errors.ErrInvalidCredentials
	}

	token, err := GenerateToken(s.secret, user.ID, s.tokenTTL)
	if err != nil {
		return "", nil, errors.NewAppError(errors.InternalError, "failed to issue token").WithDetails(err.Error())
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return token, user, nil
}

// ResolveToken returns the verified owner identifier carried by the token.
func (s *Service) ResolveToken(tokenStr string) (uuid.UUID, error) {
	claims, err := ParseToken(s.secret, tokenStr)
	if err != nil {
		return uuid.Nil, err
	}
	return claims.UserID, nil
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return errors.NewAppError(errors.InvalidInput, "a valid email is required")
	}
	if len(password) < minPasswordLength {
		return errors.NewAppErrorf(errors.InvalidInput, "password must be at least %d characters", minPasswordLength)
	}
	return nil
}
