package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"go-forum/internal/metrics"
	"go-forum/internal/model"
	"go-forum/internal/repository"
)

type AuditService struct {
	repo      *repository.AuditRepository
	retention time.Duration
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewAuditService keeps entries forever when retention is zero.
func NewAuditService(repo *repository.AuditRepository, retention time.Duration, m *metrics.Metrics) *AuditService {
	return &AuditService{repo: repo, retention: retention, metrics: m, now: time.Now}
}

// Log is best effort: a failed write is logged and never fails the request.
func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string) {
	if s == nil {
		return
	}

	entry := model.AuditEntry{
		Action:        action,
		ActorUsername: actor.Username,
		Resource:      resource,
		Status:        status,
		ClientIP:      actor.IP,
		OccurredAt:    s.now().UTC(),
	}

	if err := s.repo.Log(context.WithoutCancel(ctx), entry); err != nil {
		slog.Warn("audit write failed", "action", action, "status", status, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	return s.repo.Query(ctx, query)
}

func (s *AuditService) Prune(ctx context.Context) (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}

	cutoff := s.now().UTC().Add(-s.retention)
	removed, err := s.repo.PruneBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	s.metrics.Pruned(removed)
	return removed, nil
}

// StartPruning runs Prune on a cron schedule. The caller stops the returned
// scheduler on shutdown.
func (s *AuditService) StartPruning(schedule string) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		removed, err := s.Prune(ctx)
		if err != nil {
			slog.Error("audit prune failed", "error", err)
			return
		}
		slog.Info("audit prune completed", "removed", removed)
	})
	if err != nil {
		return nil, fmt.Errorf("schedule audit prune %q: %w", schedule, err)
	}

	c.Start()
	return c, nil
}
