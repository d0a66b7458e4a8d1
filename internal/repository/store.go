package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math"
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Repositories struct {
	Users  *UserRepository
	Topics *TopicRepository
	Posts  *PostRepository
	Audit  *AuditRepository
}

func bind(q Querier) *Repositories {
	return &Repositories{
		Users:  NewUserRepository(q),
		Topics: NewTopicRepository(q),
		Posts:  NewPostRepository(q),
		Audit:  NewAuditRepository(q),
	}
}

// Store exposes repositories bound to the connection pool and opens scoped
// transactions binding the same repositories to a *sql.Tx.
type Store struct {
	*Repositories
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{Repositories: bind(db), db: db}
}

// WithTx commits when fn returns nil and rolls back on an error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(r *Repositories) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			_ = tx.Rollback()
			panic(recovered)
		}
	}()

	if err := fn(bind(tx)); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			slog.Warn("transaction rollback failed", "error", rollbackErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// maxOffset keeps (page-1)*limit inside a Postgres INTEGER OFFSET.
const maxOffset = math.MaxInt32

func normalizePage(page int, limit int, fallback int, max int) (int, int) {
	if limit <= 0 {
		limit = fallback
	}
	if limit > max {
		limit = max
	}
	if page < 1 {
		page = 1
	}
	if lastPage := maxOffset/limit + 1; page > lastPage {
		page = lastPage
	}

	return page, limit
}
