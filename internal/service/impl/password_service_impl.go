package impl

import (
	"errors"
	"fmt"

	"wedding-guests/internal/domain"
	"wedding-guests/internal/service"

	"golang.org/x/crypto/bcrypt"
)

var _ service.PasswordService = (*PasswordServiceImpl)(nil)

type PasswordServiceImpl struct {
	cost int
}

// NewPasswordServiceBcrypt returns a bcrypt-backed password service. A cost
// outside bcrypt's accepted range falls back to bcrypt.DefaultCost.
func NewPasswordServiceBcrypt(cost int) *PasswordServiceImpl {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordServiceImpl{cost: cost}
}

func (p *PasswordServiceImpl) Cost() int { return p.cost }

func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrEmptyPassword)
	}
	// bcrypt salts every call
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("%w: %w", domain.ErrInvalidInput, ErrPasswordLength)
		}
		return "", err
	}
	return string(hash), nil
}

func (p *PasswordServiceImpl) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", domain.ErrCorruptCredential, err)
	}
}
