package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"eventlisting/internal/domain"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{
		DB: db,
	}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, salt, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query, u.Email, u.Name, u.PasswordHash, u.Salt, u.CreatedAt, u.UpdatedAt).
		Scan(&u.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, name, password_hash, salt, created_at, updated_at
		FROM users
		WHERE email = $1
	`
	u := &domain.User{}
	err := r.DB.QueryRowContext(ctx, query, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Salt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, name, password_hash, salt, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	u := &domain.User{}
	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Salt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}
