package models

import "time"

// UserType is the partition key value for every account document.
const UserType = "User"

// User is the stored account document. A user is either unverified (token and
// expiry set, EmailVerified false) or verified (both nil, EmailVerified true).
type User struct {
	ID                      string     `json:"id" bson:"_id"`
	Username                string     `json:"username" bson:"username"`
	PasswordHash            string     `json:"passwordHash" bson:"passwordHash"`
	Email                   string     `json:"email" bson:"email"`
	Type                    string     `json:"type" bson:"type"`
	EmailVerified           bool       `json:"emailVerified" bson:"emailVerified"`
	VerificationToken       *string    `json:"verificationToken" bson:"verificationToken"`
	VerificationTokenExpiry *time.Time `json:"verificationTokenExpiry" bson:"verificationTokenExpiry"`
}

// TokenValid reports whether the stored verification token is still usable at now.
func (u *User) TokenValid(now time.Time) bool {
	if u.VerificationToken == nil || *u.VerificationToken == "" {
		return false
	}
	return u.VerificationTokenExpiry != nil && !u.VerificationTokenExpiry.Before(now)
}

// MarkVerified flips the account into the verified state.
func (u *User) MarkVerified() {
	u.EmailVerified = true
	u.VerificationToken = nil
	u.VerificationTokenExpiry = nil
}

type LoginRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"rememberMe"`
}

type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

// MessageResponse is the body of every account endpoint reply.
type MessageResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}
