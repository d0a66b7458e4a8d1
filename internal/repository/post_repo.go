package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go-forum/internal/model"
)

type PostRepository struct {
	q Querier
}

func NewPostRepository(q Querier) *PostRepository {
	return &PostRepository{q: q}
}

func (r *PostRepository) Create(ctx context.Context, p *model.Post) error {
	err := r.q.QueryRowContext(ctx,
		`INSERT INTO posts (topic_id, author_username, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`,
		p.TopicID, p.AuthorUsername, p.Content, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *PostRepository) FindByID(ctx context.Context, topicID int64, postID int64) (model.Post, error) {
	var p model.Post
	err := r.q.QueryRowContext(ctx,
		`SELECT id, topic_id, author_username, content, created_at, updated_at
		 FROM posts WHERE id = $1 AND topic_id = $2`, postID, topicID).
		Scan(&p.ID, &p.TopicID, &p.AuthorUsername, &p.Content, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return model.Post{}, model.ErrPostNotFound
	}
	if err != nil {
		return model.Post{}, fmt.Errorf("find post: %w", err)
	}
	return p, nil
}

// ListByTopic returns replies oldest first.
func (r *PostRepository) ListByTopic(ctx context.Context, topicID int64) ([]model.Post, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, topic_id, author_username, content, created_at, updated_at
		 FROM posts WHERE topic_id = $1
		 ORDER BY created_at ASC, id ASC`, topicID)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.Post, 0)
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.TopicID, &p.AuthorUsername, &p.Content, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) Delete(ctx context.Context, postID int64, author string) error {
	res, err := r.q.ExecContext(ctx,
		`DELETE FROM posts WHERE id = $1 AND author_username = $2`, postID, author)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return requireAffected(res, model.ErrPostNotFound)
}

func (r *PostRepository) DeleteByTopic(ctx context.Context, topicID int64) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM posts WHERE topic_id = $1`, topicID)
	if err != nil {
		return 0, fmt.Errorf("delete topic posts: %w", err)
	}
	return res.RowsAffected()
}
