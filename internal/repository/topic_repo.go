package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-forum/internal/model"
)

type TopicRepository struct {
	q Querier
}

func NewTopicRepository(q Querier) *TopicRepository {
	return &TopicRepository{q: q}
}

func (r *TopicRepository) Create(ctx context.Context, t *model.Topic) error {
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO topics (title, content, owner_username, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		t.Title, t.Content, t.OwnerUsername, t.CreatedAt, t.UpdatedAt).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("create topic: %w", err)
	}
	return nil
}

func (r *TopicRepository) FindByID(ctx context.Context, id int64) (model.Topic, error) {
	var t model.Topic
	err := r.q.QueryRowContext(ctx,
		`SELECT id, title, content, owner_username, created_at, updated_at
		 FROM topics WHERE id = $1`, id).
		Scan(&t.ID, &t.Title, &t.Content, &t.OwnerUsername, &t.CreatedAt, &t.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return model.Topic{}, model.ErrTopicNotFound
	}
	if err != nil {
		return model.Topic{}, fmt.Errorf("find topic: %w", err)
	}
	return t, nil
}

// List returns topics newest first, optionally restricted to one owner.
func (r *TopicRepository) List(ctx context.Context, query model.TopicQuery) ([]model.Topic, model.Meta, error) {
	page, limit := normalizePage(query.Page, query.Limit, 20, 100)

	where := ""
	args := make([]any, 0, 3)
	if query.Owner != "" {
		where = "WHERE owner_username = $1"
		args = append(args, query.Owner)
	}

	var total int
	if err := r.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM topics "+where, args...).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count topics: %w", err)
	}

	next := len(args) + 1
	rows, err := r.q.QueryContext(ctx, fmt.Sprintf(
		`SELECT id, title, content, owner_username, created_at, updated_at
		 FROM topics %s
		 ORDER BY created_at DESC, id DESC
		 LIMIT $%d OFFSET $%d`, where, next, next+1),
		append(args, limit, (page-1)*limit)...)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	topics := make([]model.Topic, 0)
	for rows.Next() {
		var t model.Topic
		if err := rows.Scan(&t.ID, &t.Title, &t.Content, &t.OwnerUsername, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Meta{}, fmt.Errorf("iterate topics: %w", err)
	}

	return topics, model.NewMeta(page, limit, total), nil
}

// Update writes title, content and updated_at. The owner guard makes a
// concurrent delete or ownership mismatch surface as model.ErrTopicNotFound.
func (r *TopicRepository) Update(ctx context.Context, t model.Topic) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE topics SET title = $1, content = $2, updated_at = $3
		 WHERE id = $4 AND owner_username = $5`,
		t.Title, t.Content, t.UpdatedAt, t.ID, t.OwnerUsername)
	if err != nil {
		return fmt.Errorf("update topic: %w", err)
	}
	return requireAffected(res, model.ErrTopicNotFound)
}

func (r *TopicRepository) Delete(ctx context.Context, id int64, owner string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM topics WHERE id = $1 AND owner_username = $2`, id, owner)
	if err != nil {
		return fmt.Errorf("delete topic: %w", err)
	}
	return requireAffected(res, model.ErrTopicNotFound)
}
