package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"loginpage/internal/models"
	"loginpage/internal/repositories"
)

type sentEmail struct {
	to    string
	token string
}

type fakeEmailService struct {
	sent []sentEmail
	err  error
}

func (f *fakeEmailService) SendVerificationEmail(_ context.Context, email, token string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to: email, token: token})
	return nil
}

// countingRepo counts Replace calls on top of the in-memory store.
type countingRepo struct {
	*repositories.MemoryUserRepository
	replaces int
	findErr  error
}

func (r *countingRepo) Replace(ctx context.Context, u *models.User) error {
	r.replaces++
	return r.MemoryUserRepository.Replace(ctx, u)
}

func (r *countingRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.MemoryUserRepository.GetByEmail(ctx, email)
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

type fixture struct {
	svc    AccountService
	repo   *countingRepo
	emails *fakeEmailService
	clock  *clock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:   &countingRepo{MemoryUserRepository: repositories.NewMemoryUserRepository()},
		emails: &fakeEmailService{},
		clock:  &clock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	f.svc = NewAccountService(f.repo, NewAuthServiceWithCost(bcrypt.MinCost), f.emails, zap.NewNop().Sugar(), WithClock(f.clock.now))
	return f
}

func TestRegister_CreatesUnverifiedUserAndSendsOneEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.svc.Register(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, 1, f.repo.Len())

	stored, err := f.repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, "a@b.com", stored.Username)
	assert.Equal(t, models.UserType, stored.Type)
	assert.False(t, stored.EmailVerified)
	assert.NotEqual(t, "abcdef", stored.PasswordHash)
	require.NotNil(t, stored.VerificationToken)
	require.NotNil(t, stored.VerificationTokenExpiry)
	assert.WithinDuration(t, f.clock.t.Add(24*time.Hour), *stored.VerificationTokenExpiry, time.Second)

	require.Len(t, f.emails.sent, 1)
	assert.Equal(t, "a@b.com", f.emails.sent[0].to)
	assert.Equal(t, *stored.VerificationToken, f.emails.sent[0].token)
}

func TestRegister_EmailFailureKeepsUser(t *testing.T) {
	f := newFixture(t)
	f.emails.err = errors.New("dial tcp: connection refused")

	_, err := f.svc.Register(context.Background(), "a@b.com", "abcdef")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 1, f.repo.Len())
}

func TestRegister_Duplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, "a@b.com", "abcdef")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Len(t, f.emails.sent, 1)
}

func TestVerifyEmail_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)
	token := f.emails.sent[0].token

	u, err := f.svc.VerifyEmail(ctx, token)
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)
	assert.Equal(t, 1, f.repo.replaces)

	stored, err := f.repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
	assert.Nil(t, stored.VerificationToken)
	assert.Nil(t, stored.VerificationTokenExpiry)

	_, err = f.svc.VerifyEmail(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, 1, f.repo.replaces)
}

func TestVerifyEmail_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)

	f.clock.t = f.clock.t.Add(24*time.Hour + time.Minute)
	_, err = f.svc.VerifyEmail(ctx, f.emails.sent[0].token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Zero(t, f.repo.replaces)

	stored, err := f.repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.False(t, stored.EmailVerified)
}

func TestVerifyEmail_UnknownOrEmpty(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.VerifyEmail(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = f.svc.VerifyEmail(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogin_Matrix(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)

	// unverified wins over password correctness
	_, err = f.svc.Login(ctx, "a@b.com", "abcdef")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
	_, err = f.svc.Login(ctx, "a@b.com", "wrong!")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	_, err = f.svc.VerifyEmail(ctx, f.emails.sent[0].token)
	require.NoError(t, err)

	u, err := f.svc.Login(ctx, "a@b.com", "abcdef")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)

	_, errWrong := f.svc.Login(ctx, "a@b.com", "wrong!")
	_, errMissing := f.svc.Login(ctx, "x@y.com", "abcdef")
	assert.ErrorIs(t, errWrong, ErrInvalidLogin)
	assert.ErrorIs(t, errMissing, ErrInvalidLogin)
	assert.Equal(t, errWrong.Error(), errMissing.Error())
}

func TestLogin_RepositoryError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("socket closed")
	f.repo.findErr = boom

	_, err := f.svc.Login(context.Background(), "a@b.com", "abcdef")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrInvalidLogin)
}
