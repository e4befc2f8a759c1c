package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned by CheckPassword when the password does not
// match the stored hash.
var ErrPasswordMismatch = errors.New("password mismatch")

type AuthService interface {
	HashPassword(password string) (string, error)
	CheckPassword(hash, password string) error
}

type authService struct {
	cost int
}

func NewAuthService() AuthService {
	return &authService{cost: bcrypt.DefaultCost}
}

// NewAuthServiceWithCost is used by tests to keep hashing fast.
func NewAuthServiceWithCost(cost int) AuthService {
	return &authService{cost: cost}
}

func (s *authService) HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *authService) CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("check password: %w", err)
	}
}
