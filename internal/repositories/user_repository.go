package repositories

import (
	"context"
	"errors"

	"loginpage/internal/models"
)

var (
	// ErrNotFound is returned when no user document matches the query.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when a unique field (id, email) already exists.
	ErrDuplicate = errors.New("user already exists")
)

// UserRepository is the document store of user accounts. Documents are
// partitioned by models.User.Type.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*models.User, error)
	// Replace overwrites the stored document with the same id and type.
	Replace(ctx context.Context, user *models.User) error
	Ping(ctx context.Context) error
}
