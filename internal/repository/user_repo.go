package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go-forum/internal/model"
)

type UserRepository struct {
	q Querier
}

func NewUserRepository(q Querier) *UserRepository {
	return &UserRepository{q: q}
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.q.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, created_at, updated_at
		 FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

// Create assigns u.ID. Duplicate usernames or emails yield model.ErrUserAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		u.Username, u.Email, string(u.PasswordHash), u.CreatedAt, u.UpdatedAt).Scan(&u.ID)
	if isUniqueViolation(err) {
		return model.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, username string, passwordHash []byte, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = $1, updated_at = $2 WHERE username = $3`,
		string(passwordHash), at, username)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return requireAffected(res, model.ErrUserNotFound)
}

func (r *UserRepository) UpdateEmail(ctx context.Context, username string, email string, at time.Time) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE users SET email = $1, updated_at = $2 WHERE username = $3`,
		email, at, username)
	if isUniqueViolation(err) {
		return model.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("update email: %w", err)
	}
	return requireAffected(res, model.ErrUserNotFound)
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
