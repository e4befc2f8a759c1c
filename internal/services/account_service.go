package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"loginpage/internal/models"
	"loginpage/internal/repositories"
	"loginpage/internal/utils"
)

// VerificationTTL is how long a freshly issued verification token stays valid.
const VerificationTTL = 24 * time.Hour

var (
	ErrInvalidLogin     = errors.New("invalid login attempt")
	ErrEmailNotVerified = errors.New("email not verified")
	ErrInvalidToken     = errors.New("invalid or expired verification token")
)

type AccountService interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
}

type AccountOption func(*accountService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) AccountOption {
	return func(s *accountService) { s.now = now }
}

type accountService struct {
	users  repositories.UserRepository
	auth   AuthService
	emails EmailService
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewAccountService(users repositories.UserRepository, auth AuthService, emails EmailService, log *zap.SugaredLogger, opts ...AccountOption) AccountService {
	s := &accountService{
		users:  users,
		auth:   auth,
		emails: emails,
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register stores a new unverified user and mails the verification link.
// The user is kept when the email cannot be sent.
func (s *accountService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)

	token, err := utils.NewVerificationToken(32)
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}
	expiry := s.now().UTC().Add(VerificationTTL)

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:                      uuid.NewString(),
		Username:                email,
		Email:                   email,
		PasswordHash:            hash,
		Type:                    models.UserType,
		EmailVerified:           false,
		VerificationToken:       &token,
		VerificationTokenExpiry: &expiry,
	}

	s.log.Debugw("[account][register] saving user", "email", email, "id", user.ID)
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("an account with email %s already exists", email)
		}
		return nil, fmt.Errorf("save user: %w", err)
	}

	s.log.Debugw("[account][register] sending verification email", "email", email)
	if err := s.emails.SendVerificationEmail(ctx, user.Email, token); err != nil {
		return user, err
	}
	return user, nil
}

// VerifyEmail consumes a verification token. A token that is unknown, empty or
// past its expiry yields ErrInvalidToken and leaves the record untouched.
func (s *accountService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	user, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("find user by token: %w", err)
	}
	if !user.TokenValid(s.now()) {
		s.log.Infow("[account][verify] expired token", "id", user.ID)
		return nil, ErrInvalidToken
	}

	user.MarkVerified()
	if err := s.users.Replace(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Login checks credentials. Unknown email and wrong password both return
// ErrInvalidLogin; an unverified account returns ErrEmailNotVerified before
// the password is looked at.
func (s *accountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidLogin
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if !user.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	if err := s.auth.CheckPassword(user.PasswordHash, password); err != nil {
		if !errors.Is(err, ErrPasswordMismatch) {
			s.log.Errorw("[account][login] stored hash unusable", "id", user.ID, "err", err)
		}
		return nil, ErrInvalidLogin
	}
	return user, nil
}
