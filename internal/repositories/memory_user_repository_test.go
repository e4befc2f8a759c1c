package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loginpage/internal/models"
)

func newUnverified(id, email, token string) *models.User {
	exp := time.Now().Add(24 * time.Hour)
	return &models.User{
		ID:                      id,
		Username:                email,
		Email:                   email,
		PasswordHash:            "hash",
		Type:                    models.UserType,
		VerificationToken:       &token,
		VerificationTokenExpiry: &exp,
	}
}

func TestMemoryUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepository()

	require.NoError(t, r.Create(ctx, newUnverified("u1", "a@b.com", "tok1")))
	assert.Equal(t, 1, r.Len())

	u, err := r.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	u, err = r.GetByVerificationToken(ctx, "tok1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", u.Email)

	_, err = r.GetByEmail(ctx, "missing@b.com")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = r.GetByVerificationToken(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUserRepository_Duplicates(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepository()
	require.NoError(t, r.Create(ctx, newUnverified("u1", "a@b.com", "t1")))

	assert.ErrorIs(t, r.Create(ctx, newUnverified("u1", "c@d.com", "t2")), ErrDuplicate)
	assert.ErrorIs(t, r.Create(ctx, newUnverified("u2", "A@B.com", "t3")), ErrDuplicate)
}

func TestMemoryUserRepository_ReplaceIsolation(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryUserRepository()
	require.NoError(t, r.Create(ctx, newUnverified("u1", "a@b.com", "t1")))

	u, err := r.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	*u.VerificationToken = "mutated"

	// callers' copies must not leak into the store
	_, err = r.GetByVerificationToken(ctx, "t1")
	require.NoError(t, err)

	u.MarkVerified()
	require.NoError(t, r.Replace(ctx, u))

	_, err = r.GetByVerificationToken(ctx, "t1")
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := r.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)

	assert.ErrorIs(t, r.Replace(ctx, &models.User{ID: "ghost", Type: models.UserType}), ErrNotFound)
	assert.ErrorIs(t, r.Replace(ctx, &models.User{ID: "u1", Type: "Admin"}), ErrNotFound)
	assert.NoError(t, r.Ping(ctx))
}
