package repository

import (
	"context"
	"fmt"
	"time"

	"go-forum/internal/model"
)

type AuditRepository struct {
	q Querier
}

func NewAuditRepository(q Querier) *AuditRepository {
	return &AuditRepository{q: q}
}

func (r *AuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO audit_entries (action, actor_username, resource, status, client_ip, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.Action, entry.ActorUsername, entry.Resource, entry.Status, entry.ClientIP, entry.OccurredAt)
	if err != nil {
		return fmt.Errorf("log audit entry: %w", err)
	}
	return nil
}

func (r *AuditRepository) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	page, limit := normalizePage(query.Page, query.Limit, 50, 200)

	var total int
	if err := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_entries WHERE actor_username = $1`, query.ActorUsername).Scan(&total); err != nil {
		return nil, model.Meta{}, fmt.Errorf("count audit entries: %w", err)
	}

	rows, err := r.q.QueryContext(ctx,
		`SELECT id, action, actor_username, resource, status, client_ip, occurred_at
		 FROM audit_entries
		 WHERE actor_username = $1
		 ORDER BY occurred_at DESC, id DESC
		 LIMIT $2 OFFSET $3`, query.ActorUsername, limit, (page-1)*limit)
	if err != nil {
		return nil, model.Meta{}, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.ActorUsername, &e.Resource, &e.Status, &e.ClientIP, &e.OccurredAt); err != nil {
			return nil, model.Meta{}, fmt.Errorf("scan audit entry: %w", err)
		}
		e.OccurredAt = e.OccurredAt.UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, model.Meta{}, fmt.Errorf("iterate audit entries: %w", err)
	}

	return entries, model.NewMeta(page, limit, total), nil
}

func (r *AuditRepository) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM audit_entries WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune audit entries: %w", err)
	}
	return res.RowsAffected()
}
