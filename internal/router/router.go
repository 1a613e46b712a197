package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-media-cms/internal/config"
	"go-media-cms/internal/handler"
	"go-media-cms/internal/metrics"
	"go-media-cms/internal/middleware"
	"go-media-cms/internal/model"
)

type Handlers struct {
	Health  *handler.HealthHandler
	Auth    *handler.AuthHandler
	User    *handler.UserHandler
	Article *handler.ArticleHandler
	Video   *handler.VideoHandler
	Podcast *handler.PodcastHandler
	Comment *handler.CommentHandler
	Audit   *handler.AuditHandler
}

func New(cfg *config.Config, resolver *middleware.PrincipalResolver, m *metrics.Metrics, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Health.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	admin := resolver.RequireRole(model.RoleAdmin)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(resolver.Authenticate)

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.With(resolver.RequireAuth).Post("/logout", h.Auth.Logout)
			auth.With(resolver.RequireAuth).Post("/logout-all", h.Auth.LogoutAll)
			auth.With(resolver.RequireAuth).Get("/me", h.Auth.Me)
		})

		api.With(admin).Get("/users/{id}/sessions", h.User.Sessions)
		api.With(admin).Delete("/users/{id}/sessions", h.User.RevokeSessions)

		api.Route("/articles", func(ar chi.Router) {
			ar.Get("/", h.Article.List)
			ar.Get("/{id}", h.Article.Get)
			ar.With(admin).Post("/", h.Article.Create)
			ar.With(admin).Put("/{id}", h.Article.Update)
			ar.With(admin).Delete("/{id}", h.Article.Delete)
		})

		api.Route("/videos", func(vr chi.Router) {
			vr.Get("/", h.Video.List)
			vr.Get("/{id}", h.Video.Get)
			vr.With(admin).Post("/", h.Video.Create)
			vr.With(admin).Put("/{id}", h.Video.Update)
			vr.With(admin).Delete("/{id}", h.Video.Delete)
		})

		api.Route("/podcasts", func(pr chi.Router) {
			pr.Get("/", h.Podcast.List)
			pr.Get("/{id}", h.Podcast.Get)
			pr.With(admin).Post("/", h.Podcast.Create)
			pr.With(admin).Put("/{id}", h.Podcast.Update)
			pr.With(admin).Delete("/{id}", h.Podcast.Delete)
		})

		// Editing and deleting is also open to the comment's author, which
		// the service decides per comment.
		api.Route("/comments", func(cr chi.Router) {
			cr.Get("/", h.Comment.List)
			cr.Get("/{id}", h.Comment.Get)
			cr.With(resolver.RequireAuth).Post("/", h.Comment.Create)
			cr.With(resolver.RequireAuth).Put("/{id}", h.Comment.Update)
			cr.With(resolver.RequireAuth).Delete("/{id}", h.Comment.Delete)
		})

		api.With(admin).Get("/audit", h.Audit.List)
	})

	return r
}
