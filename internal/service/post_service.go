package service

import (
	"context"
	"strconv"
	"time"

	"go-forum/internal/auth"
	"go-forum/internal/metrics"
	"go-forum/internal/model"
	"go-forum/internal/repository"
	"go-forum/internal/util"
	"go-forum/pkg/apierror"
)

type PostService struct {
	store   *repository.Store
	audit   *AuditService
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewPostService(store *repository.Store, audit *AuditService, m *metrics.Metrics) *PostService {
	return &PostService{store: store, audit: audit, metrics: m, now: time.Now}
}

func (s *PostService) List(ctx context.Context, topicID int64) ([]model.Post, error) {
	if _, err := s.store.Topics.FindByID(ctx, topicID); err != nil {
		return nil, mapNotFound(err, topicID)
	}

	return s.store.Posts.ListByTopic(ctx, topicID)
}

func (s *PostService) Create(ctx context.Context, actor model.AuditActor, topicID int64, req model.CreatePostRequest) (model.Post, error) {
	if actor.Username == "" {
		return model.Post{}, apierror.Unauthenticated("authentication required")
	}

	var post model.Post
	err := s.store.WithTx(ctx, func(r *repository.Repositories) error {
		if _, err := r.Topics.FindByID(ctx, topicID); err != nil {
			return mapNotFound(err, topicID)
		}

		content := util.SanitizeText(req.Content)
		fields := fieldErrors{}
		validateContent(fields, content)
		if !fields.empty() {
			return apierror.Validation("validation failed", fields)
		}

		now := s.now().UTC()
		post = model.Post{
			TopicID:        topicID,
			AuthorUsername: actor.Username,
			Content:        content,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return r.Posts.Create(ctx, &post)
	})
	if err != nil {
		s.metrics.ContentAction(model.ActionPostCreate, model.AuditStatusFailed)
		return model.Post{}, err
	}

	s.metrics.ContentAction(model.ActionPostCreate, model.AuditStatusSuccess)
	s.audit.Log(ctx, model.ActionPostCreate, actor, model.AuditStatusSuccess, postResource(topicID, post.ID))
	return post, nil
}

// Delete follows the same order as topic mutations: authenticated, topic and
// post exist, caller wrote the post.
func (s *PostService) Delete(ctx context.Context, actor model.AuditActor, topicID int64, postID int64) error {
	if actor.Username == "" {
		return apierror.Unauthenticated("authentication required")
	}

	err := s.store.WithTx(ctx, func(r *repository.Repositories) error {
		if _, err := r.Topics.FindByID(ctx, topicID); err != nil {
			return mapNotFound(err, topicID)
		}

		post, err := r.Posts.FindByID(ctx, topicID, postID)
		if err != nil {
			return mapNotFound(err, postID)
		}

		if !auth.CanDeletePost(post, actor.Username) {
			return errNotPostAuthor
		}

		return mapNotFound(r.Posts.Delete(ctx, postID, actor.Username), postID)
	})
	if err != nil {
		if apierror.HasCode(err, apierror.CodeForbidden) {
			s.metrics.ContentAction(model.ActionPostDelete, model.AuditStatusDenied)
			s.audit.Log(ctx, model.ActionPostDelete, actor, model.AuditStatusDenied, postResource(topicID, postID))
		}
		return err
	}

	s.metrics.ContentAction(model.ActionPostDelete, model.AuditStatusSuccess)
	s.audit.Log(ctx, model.ActionPostDelete, actor, model.AuditStatusSuccess, postResource(topicID, postID))
	return nil
}

func postResource(topicID int64, postID int64) string {
	return topicResource(topicID) + "/post:" + strconv.FormatInt(postID, 10)
}
