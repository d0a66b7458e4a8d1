package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-forum/internal/auth"
	"go-forum/internal/database"
	"go-forum/internal/model"
	"go-forum/internal/repository"
	"go-forum/pkg/apierror"
)

type fixture struct {
	store   *repository.Store
	tokens  *auth.TokenService
	revoker *auth.MemoryRevoker
	audit   *AuditService
	auth    *AuthService
	topics  *TopicService
	posts   *PostService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctx := context.Background()
	db, err := database.New(ctx, database.DriverSQLite, ":memory:", 1, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	store := repository.NewStore(db.SQL)
	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	revoker := auth.NewMemoryRevoker(100, 0)
	audit := NewAuditService(store.Audit, 0, nil)

	authService, err := NewAuthService(store, auth.NewPasswordHasher(4), tokens, revoker, audit, nil)
	require.NoError(t, err)

	return &fixture{
		store:   store,
		tokens:  tokens,
		revoker: revoker,
		audit:   audit,
		auth:    authService,
		topics:  NewTopicService(store, audit, nil),
		posts:   NewPostService(store, audit, nil),
	}
}

func (f *fixture) register(t *testing.T, username string) model.AuditActor {
	t.Helper()

	_, err := f.auth.Register(context.Background(), model.AuditActor{IP: "127.0.0.1"}, model.RegisterRequest{
		Username:        username,
		Email:           username + "@example.com",
		Password:        "secret-" + username,
		ConfirmPassword: "secret-" + username,
	})
	require.NoError(t, err)

	return model.AuditActor{Username: username, IP: "127.0.0.1"}
}

func (f *fixture) topic(t *testing.T, owner model.AuditActor, title string) model.Topic {
	t.Helper()

	topic, err := f.topics.Create(context.Background(), owner, model.CreateTopicRequest{Title: title, Content: "content of " + title})
	require.NoError(t, err)
	return topic
}

func requireAPIError(t *testing.T, err error, code string, status int) *apierror.APIError {
	t.Helper()

	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr), "expected *apierror.APIError, got %v", err)
	require.Equal(t, code, apiErr.Code)
	require.Equal(t, status, apiErr.HTTPStatus)
	return apiErr
}
