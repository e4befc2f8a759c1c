package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_TokenValid(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tok := "abc"
	future := now.Add(time.Hour)
	past := now.Add(-time.Second)
	empty := ""

	assert.True(t, (&User{VerificationToken: &tok, VerificationTokenExpiry: &future}).TokenValid(now))
	assert.True(t, (&User{VerificationToken: &tok, VerificationTokenExpiry: &now}).TokenValid(now))
	assert.False(t, (&User{VerificationToken: &tok, VerificationTokenExpiry: &past}).TokenValid(now))
	assert.False(t, (&User{VerificationToken: &tok}).TokenValid(now))
	assert.False(t, (&User{VerificationToken: &empty, VerificationTokenExpiry: &future}).TokenValid(now))
	assert.False(t, (&User{VerificationTokenExpiry: &future}).TokenValid(now))
}

func TestUser_MarkVerified(t *testing.T) {
	tok := "abc"
	exp := time.Now()
	u := &User{VerificationToken: &tok, VerificationTokenExpiry: &exp}
	u.MarkVerified()
	assert.True(t, u.EmailVerified)
	assert.Nil(t, u.VerificationToken)
	assert.Nil(t, u.VerificationTokenExpiry)
}

func TestUser_JSONShape(t *testing.T) {
	u := User{ID: "1", Username: "a@b.com", Email: "a@b.com", Type: UserType, PasswordHash: "h"}
	b, err := json.Marshal(u)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, k := range []string{"id", "username", "passwordHash", "email", "type", "emailVerified", "verificationToken", "verificationTokenExpiry"} {
		assert.Contains(t, m, k)
	}
	assert.Nil(t, m["verificationToken"])
}
