package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go-forum/internal/auth"
	"go-forum/internal/metrics"
	"go-forum/internal/model"
	"go-forum/internal/repository"
	"go-forum/internal/util"
	"go-forum/pkg/apierror"
)

type TopicService struct {
	store   *repository.Store
	audit   *AuditService
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewTopicService(store *repository.Store, audit *AuditService, m *metrics.Metrics) *TopicService {
	return &TopicService{store: store, audit: audit, metrics: m, now: time.Now}
}

// Create answers anonymous callers with 403, unlike the other mutations.
func (s *TopicService) Create(ctx context.Context, actor model.AuditActor, req model.CreateTopicRequest) (model.Topic, error) {
	if actor.Username == "" {
		return model.Topic{}, apierror.Forbidden("authentication required")
	}

	title := util.SanitizeLine(req.Title)
	content := util.SanitizeText(req.Content)

	fields := fieldErrors{}
	validateTitle(fields, title)
	validateContent(fields, content)
	if !fields.empty() {
		return model.Topic{}, apierror.Validation("validation failed", fields)
	}

	now := s.now().UTC()
	topic := model.Topic{
		Title:         title,
		Content:       content,
		OwnerUsername: actor.Username,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.store.WithTx(ctx, func(r *repository.Repositories) error {
		return r.Topics.Create(ctx, &topic)
	})
	if err != nil {
		return model.Topic{}, err
	}

	s.metrics.ContentAction(model.ActionTopicCreate, model.AuditStatusSuccess)
	s.audit.Log(ctx, model.ActionTopicCreate, actor, model.AuditStatusSuccess, topicResource(topic.ID))
	return topic, nil
}

func (s *TopicService) List(ctx context.Context, query model.TopicQuery) ([]model.Topic, model.Meta, error) {
	return s.store.Topics.List(ctx, query)
}

func (s *TopicService) Get(ctx context.Context, id int64) (model.Topic, error) {
	topic, err := s.store.Topics.FindByID(ctx, id)
	if err != nil {
		return model.Topic{}, mapNotFound(err, id)
	}
	return topic, nil
}

// Authorize runs the mutation precondition checks without changing anything:
// the caller is authenticated, the topic exists, the caller owns it.
func (s *TopicService) Authorize(ctx context.Context, actor model.AuditActor, id int64) (model.Topic, error) {
	if actor.Username == "" {
		return model.Topic{}, apierror.Unauthenticated("authentication required")
	}

	topic, err := s.store.Topics.FindByID(ctx, id)
	if err != nil {
		return model.Topic{}, mapNotFound(err, id)
	}

	if !auth.CanMutate(topic, actor.Username) {
		s.recordFailure(ctx, model.ActionTopicUpdate, actor, topicResource(id), errNotTopicOwner)
		return model.Topic{}, errNotTopicOwner
	}

	return topic, nil
}

// Update applies a partial edit. Checks run in a fixed order: the caller is
// authenticated, the topic exists, the caller owns it, then the payload is
// validated.
func (s *TopicService) Update(ctx context.Context, actor model.AuditActor, id int64, req model.UpdateTopicRequest) (model.Topic, error) {
	if actor.Username == "" {
		return model.Topic{}, apierror.Unauthenticated("authentication required")
	}

	var updated model.Topic
	err := s.store.WithTx(ctx, func(r *repository.Repositories) error {
		topic, err := r.Topics.FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err, id)
		}

		if !auth.CanMutate(topic, actor.Username) {
			return errNotTopicOwner
		}

		fields := fieldErrors{}
		if req.Title == nil && req.Content == nil {
			fields["title"] = "title or content is required"
		}
		if req.Title != nil {
			topic.Title = util.SanitizeLine(*req.Title)
			validateTitle(fields, topic.Title)
		}
		if req.Content != nil {
			topic.Content = util.SanitizeText(*req.Content)
			validateContent(fields, topic.Content)
		}
		if !fields.empty() {
			return apierror.Validation("validation failed", fields)
		}

		topic.UpdatedAt = s.now().UTC()
		if err := r.Topics.Update(ctx, topic); err != nil {
			return mapNotFound(err, id)
		}

		updated = topic
		return nil
	})
	if err != nil {
		s.recordFailure(ctx, model.ActionTopicUpdate, actor, topicResource(id), err)
		return model.Topic{}, err
	}

	s.metrics.ContentAction(model.ActionTopicUpdate, model.AuditStatusSuccess)
	s.audit.Log(ctx, model.ActionTopicUpdate, actor, model.AuditStatusSuccess, topicResource(id))
	return updated, nil
}

// Delete removes a topic and its replies in one transaction.
func (s *TopicService) Delete(ctx context.Context, actor model.AuditActor, id int64) error {
	if actor.Username == "" {
		return apierror.Unauthenticated("authentication required")
	}

	err := s.store.WithTx(ctx, func(r *repository.Repositories) error {
		topic, err := r.Topics.FindByID(ctx, id)
		if err != nil {
			return mapNotFound(err, id)
		}

		if !auth.CanMutate(topic, actor.Username) {
			return errNotTopicOwner
		}

		if _, err := r.Posts.DeleteByTopic(ctx, id); err != nil {
			return err
		}

		return mapNotFound(r.Topics.Delete(ctx, id, actor.Username), id)
	})
	if err != nil {
		s.recordFailure(ctx, model.ActionTopicDelete, actor, topicResource(id), err)
		return err
	}

	s.metrics.ContentAction(model.ActionTopicDelete, model.AuditStatusSuccess)
	s.audit.Log(ctx, model.ActionTopicDelete, actor, model.AuditStatusSuccess, topicResource(id))
	return nil
}

// recordFailure audits authorization denials. Other failures are only counted.
func (s *TopicService) recordFailure(ctx context.Context, action string, actor model.AuditActor, resource string, err error) {
	if apierror.HasCode(err, apierror.CodeForbidden) {
		s.metrics.ContentAction(action, model.AuditStatusDenied)
		s.audit.Log(ctx, action, actor, model.AuditStatusDenied, resource)
		return
	}
	s.metrics.ContentAction(action, model.AuditStatusFailed)
}

var (
	errNotTopicOwner = apierror.Forbidden("only the topic owner can modify this topic")
	errNotPostAuthor = apierror.Forbidden("only the post author can delete this post")
)

func mapNotFound(err error, id int64) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrTopicNotFound):
		return apierror.NotFound("topic not found", strconv.FormatInt(id, 10))
	case errors.Is(err, model.ErrPostNotFound):
		return apierror.NotFound("post not found", strconv.FormatInt(id, 10))
	default:
		return err
	}
}

func topicResource(id int64) string {
	return "topic:" + strconv.FormatInt(id, 10)
}
