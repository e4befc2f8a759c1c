package repositories

import (
	"context"
	"strings"
	"sync"

	"loginpage/internal/models"
)

// MemoryUserRepository keeps users in process memory. Used with the
// "memory" database driver for local runs and as the store in tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return ErrDuplicate
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return ErrDuplicate
		}
	}
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *MemoryUserRepository) GetByVerificationToken(_ context.Context, token string) (*models.User, error) {
	return r.find(func(u models.User) bool {
		return u.VerificationToken != nil && *u.VerificationToken == token
	})
}

func (r *MemoryUserRepository) Replace(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.users[user.ID]
	if !ok || cur.Type != user.Type {
		return ErrNotFound
	}
	r.users[user.ID] = cloneUser(*user)
	return nil
}

func (r *MemoryUserRepository) Ping(context.Context) error { return nil }

// Len returns the number of stored users.
func (r *MemoryUserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users)
}

func (r *MemoryUserRepository) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			c := cloneUser(u)
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

// cloneUser detaches the pointer fields so callers cannot mutate stored state.
func cloneUser(u models.User) models.User {
	if u.VerificationToken != nil {
		t := *u.VerificationToken
		u.VerificationToken = &t
	}
	if u.VerificationTokenExpiry != nil {
		e := *u.VerificationTokenExpiry
		u.VerificationTokenExpiry = &e
	}
	return u
}
