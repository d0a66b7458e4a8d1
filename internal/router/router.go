package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-forum/internal/config"
	"go-forum/internal/handler"
	"go-forum/internal/metrics"
	"go-forum/internal/middleware"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Topic  *handler.TopicHandler
	Post   *handler.PostHandler
	Health *handler.HealthHandler
}

// New mounts every route behind client IP resolution, Recovery, Logging,
// CORS, metrics, rate limiting and bearer authentication, in that order.
func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, m *metrics.Metrics, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.RealIP(cfg.TrustedProxies))
	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS())
	r.Use(m.Middleware)
	r.Use(rateLimitMiddleware.Handler)
	r.Use(authMiddleware.Authenticate)

	r.Get("/health", h.Health.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Get("/", handler.Home)

		api.With(middleware.RedirectAuthenticated).Post("/register", h.Auth.Register)
		api.With(middleware.RedirectAuthenticated).Post("/login", h.Auth.Login)
		api.With(middleware.RequireAuth).Post("/logout", h.Auth.Logout)

		api.Route("/me", func(me chi.Router) {
			me.Use(middleware.RequireAuth)
			me.Get("/", h.User.Me)
			me.Put("/", h.User.UpdateProfile)
			me.Put("/password", h.User.ChangePassword)
			me.Get("/topics", h.User.Topics)
			me.Get("/activity", h.User.Activity)
		})

		api.Route("/topics", func(topics chi.Router) {
			topics.Get("/", h.Topic.List)
			topics.With(middleware.RequireAuthStatus(http.StatusForbidden)).Post("/", h.Topic.Create)

			topics.Route("/{id}", func(topic chi.Router) {
				topic.Get("/", h.Topic.Get)
				topic.With(middleware.RequireAuth).Put("/", h.Topic.Update)
				topic.With(middleware.RequireAuth).Delete("/", h.Topic.Delete)

				topic.Get("/posts", h.Post.List)
				topic.With(middleware.RequireAuth).Post("/posts", h.Post.Create)
				topic.With(middleware.RequireAuth).Delete("/posts/{postID}", h.Post.Delete)
			})
		})
	})

	return r
}
