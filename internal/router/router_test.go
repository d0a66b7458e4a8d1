package router

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"

	"go-forum/internal/auth"
	"go-forum/internal/config"
	"go-forum/internal/database"
	"go-forum/internal/handler"
	"go-forum/internal/metrics"
	"go-forum/internal/middleware"
	"go-forum/internal/model"
	"go-forum/internal/repository"
	"go-forum/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	ctx := context.Background()
	db, err := database.New(ctx, database.DriverSQLite, ":memory:", 1, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.EnsureSchema(ctx))

	store := repository.NewStore(db.SQL)
	m := metrics.New(db.SQL)
	tokens, err := auth.NewTokenService("router-test-secret", time.Hour)
	require.NoError(t, err)

	auditService := service.NewAuditService(store.Audit, 0, m)
	authService, err := service.NewAuthService(store, auth.NewPasswordHasher(4), tokens, auth.NewMemoryRevoker(100, time.Hour), auditService, m)
	require.NoError(t, err)
	topicService := service.NewTopicService(store, auditService, m)

	cfg := &config.Config{
		RequestTimeout:   5 * time.Second,
		RateLimitRPM:     0,
		AuthRateLimitRPM: 1000,
	}

	return New(cfg, middleware.NewAuthMiddleware(authService), m, Handlers{
		Auth:   handler.NewAuthHandler(authService),
		User:   handler.NewUserHandler(authService, topicService, auditService),
		Topic:  handler.NewTopicHandler(topicService),
		Post:   handler.NewPostHandler(service.NewPostService(store, auditService, m)),
		Health: handler.NewHealthHandler(db),
	})
}

func registerAndLogin(t *testing.T, h http.Handler, username string) string {
	t.Helper()

	apitest.New().
		Handler(h).
		Post("/register").
		JSON(fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"hunter22","confirmPassword":"hunter22"}`, username, username)).
		Expect(t).
		Status(http.StatusCreated).
		End()

	var body model.MessageResponse
	apitest.New().
		Handler(h).
		Post("/login").
		JSON(fmt.Sprintf(`{"username":%q,"password":"hunter22"}`, username)).
		Expect(t).
		Status(http.StatusOK).
		End().
		JSON(&body)

	require.NotEmpty(t, body.Token)
	return body.Token
}

func createTopic(t *testing.T, h http.Handler, token string, title string) int64 {
	t.Helper()

	var body struct {
		Data model.Topic `json:"data"`
	}
	apitest.New().
		Handler(h).
		Post("/topics").
		Header("Authorization", "Bearer "+token).
		JSON(fmt.Sprintf(`{"title":%q,"content":"first post"}`, title)).
		Expect(t).
		Status(http.StatusCreated).
		End().
		JSON(&body)

	require.NotZero(t, body.Data.ID)
	return body.Data.ID
}

func TestRegisterAndLogin(t *testing.T) {
	h := newTestRouter(t)

	apitest.New().
		Handler(h).
		Post("/register").
		JSON(`{"username":"alice","email":"alice@example.com","password":"hunter22","confirmPassword":"hunter22"}`).
		Expect(t).
		Status(http.StatusCreated).
		Assert(jsonpath.Equal(`$.success`, true)).
		Assert(jsonpath.Present(`$.message`)).
		End()

	apitest.New().
		Handler(h).
		Post("/register").
		JSON(`{"username":"alice","email":"other@example.com","password":"hunter22","confirmPassword":"hunter22"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal(`$.success`, false)).
		Assert(jsonpath.Equal(`$.error.code`, "CONFLICT")).
		End()

	apitest.New().
		Handler(h).
		Post("/register").
		JSON(`{"username":"bob","email":"bob@example.com","password":"hunter22","confirmPassword":"hunter23"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal(`$.error.code`, "PASSWORD_MISMATCH")).
		End()

	apitest.New().
		Handler(h).
		Post("/register").
		JSON(`{"username":"b","email":"not-an-email","password":"hunter22","confirmPassword":"hunter22"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal(`$.error.code`, "VALIDATION_FAILED")).
		Assert(jsonpath.Present(`$.error.fields.username`)).
		Assert(jsonpath.Present(`$.error.fields.email`)).
		End()

	apitest.New().
		Handler(h).
		Post("/login").
		JSON(`{"username":"alice","password":"hunter22"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.success`, true)).
		Assert(jsonpath.Present(`$.token`)).
		End()

	apitest.New().
		Handler(h).
		Post("/login").
		JSON(`{"username":"alice","password":"wrong-password"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal(`$.error.code`, "INVALID_CREDENTIALS")).
		Assert(jsonpath.NotPresent(`$.token`)).
		End()

	apitest.New().
		Handler(h).
		Post("/login").
		JSON(`{"username":"nobody","password":"hunter22"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal(`$.error.code`, "INVALID_CREDENTIALS")).
		End()

	apitest.New().
		Handler(h).
		Post("/login").
		JSON(`{"username":"alice"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestAuthenticatedUsersAreRedirected(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "alice")

	for _, path := range []string{"/login", "/register"} {
		apitest.New().
			Handler(h).
			Post(path).
			Header("Authorization", "Bearer "+token).
			JSON(`{}`).
			Expect(t).
			Status(http.StatusFound).
			Header("Location", "/").
			Header("Access-Control-Allow-Origin", "*").
			End()
	}

	apitest.New().
		Handler(h).
		Post("/login").
		Header("Authorization", "Bearer not-a-jwt").
		JSON(`{"username":"alice","password":"hunter22"}`).
		Expect(t).
		Status(http.StatusOK).
		End()
}

func TestPreflightShortCircuits(t *testing.T) {
	h := newTestRouter(t)

	for _, path := range []string{"/topics/5", "/login", "/does-not-exist"} {
		apitest.New().
			Handler(h).
			Method(http.MethodOptions).
			URL(path).
			Header("Origin", "https://forum.example").
			Header("Access-Control-Request-Method", "PUT").
			Expect(t).
			Status(http.StatusOK).
			Header("Access-Control-Allow-Origin", "*").
			Header("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS").
			Header("Access-Control-Allow-Headers", "Content-Type,Authorization").
			Body("").
			End()
	}
}

func TestAnonymousMutationIsUnauthorizedBeforeExistence(t *testing.T) {
	h := newTestRouter(t)

	apitest.New().
		Handler(h).
		Put("/topics/5").
		JSON(`{"title":"x"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Header("Access-Control-Allow-Origin", "*").
		Assert(jsonpath.Equal(`$.error.code`, "UNAUTHORIZED")).
		End()

	apitest.New().
		Handler(h).
		Delete("/topics/5").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

}

func TestAnonymousTopicCreationIsForbidden(t *testing.T) {
	h := newTestRouter(t)

	apitest.New().
		Handler(h).
		Post("/topics").
		JSON(`{"title":"t","content":"c"}`).
		Expect(t).
		Status(http.StatusForbidden).
		Header("Access-Control-Allow-Origin", "*").
		Assert(jsonpath.Equal(`$.success`, false)).
		Assert(jsonpath.Equal(`$.error.code`, "FORBIDDEN")).
		End()

	apitest.New().
		Handler(h).
		Get("/topics").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len(`$.data.topics`, 0)).
		End()
}

func TestTopicOwnership(t *testing.T) {
	h := newTestRouter(t)
	alice := registerAndLogin(t, h, "alice")
	bob := registerAndLogin(t, h, "bob")
	id := createTopic(t, h, alice, "Hello")
	topicURL := fmt.Sprintf("/topics/%d", id)

	apitest.New().
		Handler(h).
		Delete(topicURL).
		Header("Authorization", "Bearer "+bob).
		Expect(t).
		Status(http.StatusForbidden).
		Assert(jsonpath.Equal(`$.error.code`, "FORBIDDEN")).
		End()

	apitest.New().
		Handler(h).
		Put(topicURL).
		Header("Authorization", "Bearer "+bob).
		Body(`{not json`).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	apitest.New().
		Handler(h).
		Get(topicURL).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.data.owner_username`, "alice")).
		Assert(jsonpath.Equal(`$.data.title`, "Hello")).
		End()

	apitest.New().
		Handler(h).
		Put(topicURL).
		Header("Authorization", "Bearer "+alice).
		JSON(`{"title":""}`).
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal(`$.error.code`, "VALIDATION_FAILED")).
		End()

	apitest.New().
		Handler(h).
		Put(topicURL).
		Header("Authorization", "Bearer "+alice).
		JSON(`{"title":"Hello again"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.data.title`, "Hello again")).
		Assert(jsonpath.Equal(`$.data.content`, "first post")).
		Assert(jsonpath.Equal(`$.data.owner_username`, "alice")).
		End()

	apitest.New().
		Handler(h).
		Delete(topicURL).
		Header("Authorization", "Bearer "+alice).
		Expect(t).
		Status(http.StatusNoContent).
		End()

	apitest.New().
		Handler(h).
		Delete(topicURL).
		Header("Authorization", "Bearer "+alice).
		Expect(t).
		Status(http.StatusNotFound).
		Assert(jsonpath.Equal(`$.error.code`, "NOT_FOUND")).
		End()
}

func TestTopicPathValidation(t *testing.T) {
	h := newTestRouter(t)

	apitest.New().
		Handler(h).
		Get("/topics/abc").
		Expect(t).
		Status(http.StatusBadRequest).
		Assert(jsonpath.Equal(`$.error.code`, "BAD_REQUEST")).
		End()

	apitest.New().
		Handler(h).
		Get("/topics/999").
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestTopicListAndPosts(t *testing.T) {
	h := newTestRouter(t)
	alice := registerAndLogin(t, h, "alice")
	bob := registerAndLogin(t, h, "bob")

	first := createTopic(t, h, alice, "First")
	createTopic(t, h, alice, "Second")
	createTopic(t, h, bob, "Third")

	apitest.New().
		Handler(h).
		Get("/topics").
		Query("limit", "2").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len(`$.data.topics`, 2)).
		Assert(jsonpath.Equal(`$.data.topics[0].title`, "Third")).
		Assert(jsonpath.Equal(`$.meta.total`, float64(3))).
		Assert(jsonpath.Equal(`$.meta.total_pages`, float64(2))).
		End()

	apitest.New().
		Handler(h).
		Get("/me/topics").
		Header("Authorization", "Bearer "+alice).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len(`$.data.topics`, 2)).
		End()

	postsURL := fmt.Sprintf("/topics/%d/posts", first)
	var created struct {
		Data model.Post `json:"data"`
	}
	apitest.New().
		Handler(h).
		Post(postsURL).
		Header("Authorization", "Bearer "+bob).
		JSON(`{"content":"nice topic"}`).
		Expect(t).
		Status(http.StatusCreated).
		End().
		JSON(&created)
	require.Equal(t, "bob", created.Data.AuthorUsername)

	apitest.New().
		Handler(h).
		Get(postsURL).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len(`$.data.posts`, 1)).
		Assert(jsonpath.Equal(`$.data.posts[0].author_username`, "bob")).
		End()

	postURL := fmt.Sprintf("%s/%d", postsURL, created.Data.ID)
	apitest.New().
		Handler(h).
		Delete(postURL).
		Header("Authorization", "Bearer "+alice).
		Expect(t).
		Status(http.StatusForbidden).
		End()

	apitest.New().
		Handler(h).
		Delete(postURL).
		Header("Authorization", "Bearer "+bob).
		Expect(t).
		Status(http.StatusNoContent).
		End()

	apitest.New().
		Handler(h).
		Get("/topics/999/posts").
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestMeAndLogout(t *testing.T) {
	h := newTestRouter(t)
	token := registerAndLogin(t, h, "alice")

	apitest.New().
		Handler(h).
		Get("/me").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.data.username`, "alice")).
		Assert(jsonpath.NotPresent(`$.data.password_hash`)).
		End()

	apitest.New().
		Handler(h).
		Put("/me").
		Header("Authorization", "Bearer "+token).
		JSON(`{"email":"alice@forum.example"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.data.email`, "alice@forum.example")).
		End()

	apitest.New().
		Handler(h).
		Get("/me/activity").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.GreaterThan(`$.data.items`, 0)).
		End()

	apitest.New().
		Handler(h).
		Post("/logout").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusOK).
		End()

	apitest.New().
		Handler(h).
		Get("/me").
		Header("Authorization", "Bearer "+token).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	apitest.New().
		Handler(h).
		Post("/logout").
		Expect(t).
		Status(http.StatusUnauthorized).
		End()
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	apitest.New().
		Handler(h).
		Get("/health").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.status`, "ok")).
		End()

	apitest.New().
		Handler(h).
		Get("/").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.success`, true)).
		End()

	result := apitest.New().
		Handler(h).
		Get("/metrics").
		Expect(t).
		Status(http.StatusOK).
		End()

	raw, err := io.ReadAll(result.Response.Body)
	require.NoError(t, err)
	require.Contains(t, string(raw), `forum_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
