package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/videostream/videostream/internal/app"
	"github.com/videostream/videostream/internal/auth"
	"github.com/videostream/videostream/internal/comments"
	"github.com/videostream/videostream/internal/likes"
	"github.com/videostream/videostream/internal/media"
	"github.com/videostream/videostream/internal/observability"
	"github.com/videostream/videostream/internal/platform/cache"
	"github.com/videostream/videostream/internal/platform/db"
	"github.com/videostream/videostream/internal/subscriptions"
	"github.com/videostream/videostream/internal/tweets"
	"github.com/videostream/videostream/internal/users"
	"github.com/videostream/videostream/internal/videos"
	"github.com/videostream/videostream/jobs"
	"github.com/videostream/videostream/migrations"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	if err := db.Migrate(ctx, cfg.PGDSN, migrations.FS); err != nil {
		logger.Error("run migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	mediaStore, err := media.NewStore(ctx, media.Config{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		Bucket:    cfg.S3Bucket,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		logger.Error("init media store", slog.Any("error", err))
		os.Exit(1)
	}

	tokens, err := auth.NewTokenManager(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	if err != nil {
		logger.Error("init token manager", slog.Any("error", err))
		os.Exit(1)
	}

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo, tokens)
	gate := auth.Gate{Service: authService, Logger: logger}
	authHandler := auth.NewHandler(logger, authService, gate, mediaStore, cfg.IsProduction())

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, gate, mediaStore)

	videosRepo := videos.NewRepository(pool)
	videosService := videos.NewService(logger, videosRepo, mediaStore, jobClient, redisClient)
	videosHandler := videos.NewHandler(logger, videosService, gate)

	tweetsService := tweets.NewService(tweets.NewRepository(pool))
	tweetsHandler := tweets.NewHandler(logger, tweetsService, gate)

	commentsService := comments.NewService(comments.NewRepository(pool), videosRepo)
	commentsHandler := comments.NewHandler(logger, commentsService, gate)

	likesService := likes.NewService(likes.NewRepository(pool))
	likesHandler := likes.NewHandler(logger, likesService, gate)

	subscriptionsService := subscriptions.NewService(subscriptions.NewRepository(pool))
	subscriptionsHandler := subscriptions.NewHandler(logger, subscriptionsService, gate)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		Gate:                 gate,
		AuthHandler:          authHandler,
		UsersHandler:         usersHandler,
		VideosHandler:        videosHandler,
		TweetsHandler:        tweetsHandler,
		CommentsHandler:      commentsHandler,
		LikesHandler:         likesHandler,
		SubscriptionsHandler: subscriptionsHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
