package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"loginpage/internal/models"
)

// PostgresUserRepository stores each user as a JSONB document in the
// user_documents table (see internal/db/migrations).
type PostgresUserRepository struct {
	DB *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("users encode: %w", err)
	}
	const q = `
		INSERT INTO user_documents (id, type, doc)
		VALUES ($1, $2, $3)
	`
	if _, err := r.DB.ExecContext(ctx, q, user.ID, user.Type, doc); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicate
		}
		return fmt.Errorf("users insert: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT doc
		FROM user_documents
		WHERE type = $1 AND doc->>'email' = $2
		LIMIT 1
	`
	return r.queryOne(ctx, q, models.UserType, email)
}

func (r *PostgresUserRepository) GetByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	const q = `
		SELECT doc
		FROM user_documents
		WHERE type = $1 AND doc->>'verificationToken' = $2
		LIMIT 1
	`
	return r.queryOne(ctx, q, models.UserType, token)
}

func (r *PostgresUserRepository) Replace(ctx context.Context, user *models.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("users encode: %w", err)
	}
	const q = `
		UPDATE user_documents
		SET doc = $3, updated_at = NOW()
		WHERE id = $1 AND type = $2
	`
	res, err := r.DB.ExecContext(ctx, q, user.ID, user.Type, doc)
	if err != nil {
		return fmt.Errorf("users replace: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("users replace: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) Ping(ctx context.Context) error {
	return r.DB.PingContext(ctx)
}

func (r *PostgresUserRepository) queryOne(ctx context.Context, q string, args ...any) (*models.User, error) {
	var raw []byte
	if err := r.DB.QueryRowContext(ctx, q, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users query: %w", err)
	}
	var u models.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("users decode: %w", err)
	}
	return &u, nil
}
