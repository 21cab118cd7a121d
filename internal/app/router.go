package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/videostream/videostream/internal/auth"
	"github.com/videostream/videostream/internal/comments"
	"github.com/videostream/videostream/internal/likes"
	"github.com/videostream/videostream/internal/observability"
	"github.com/videostream/videostream/internal/subscriptions"
	"github.com/videostream/videostream/internal/tweets"
	"github.com/videostream/videostream/internal/users"
	"github.com/videostream/videostream/internal/videos"
	"github.com/videostream/videostream/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger               *slog.Logger
	Config               *Config
	Gate                 auth.Gate
	AuthHandler          *auth.Handler
	UsersHandler         *users.Handler
	VideosHandler        *videos.Handler
	TweetsHandler        *tweets.Handler
	CommentsHandler      *comments.Handler
	LikesHandler         *likes.Handler
	SubscriptionsHandler *subscriptions.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router with VideoStream defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r)
			if params.UsersHandler != nil {
				params.UsersHandler.MountRoutes(r)
			}
		})
		if params.VideosHandler != nil {
			r.Route("/videos", params.VideosHandler.MountRoutes)
		}
		if params.TweetsHandler != nil {
			r.Route("/tweets", params.TweetsHandler.MountRoutes)
		}
		if params.CommentsHandler != nil {
			r.Route("/comments", params.CommentsHandler.MountRoutes)
		}
		if params.LikesHandler != nil {
			r.Route("/likes", params.LikesHandler.MountRoutes)
		}
		if params.SubscriptionsHandler != nil {
			r.Route("/subscriptions", params.SubscriptionsHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/", http.FileServer(http.FS(staticFS)))
		r.Handle("/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps the SPA file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
