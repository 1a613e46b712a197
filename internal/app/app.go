package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"go-media-cms/internal/config"
	"go-media-cms/internal/database"
	"go-media-cms/internal/handler"
	"go-media-cms/internal/metrics"
	"go-media-cms/internal/middleware"
	"go-media-cms/internal/repository"
	"go-media-cms/internal/router"
	"go-media-cms/internal/security"
	"go-media-cms/internal/service"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	server       *http.Server
	sweeper      *service.TokenSweeper
	cleanupFuncs []func()
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx := context.Background()

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanup := []func(){db.Close}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	articleRepo := repository.NewArticleRepository(pool)
	videoRepo := repository.NewVideoRepository(pool)
	podcastRepo := repository.NewPodcastRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	slog.Info("database ready")

	checks := map[string]handler.HealthCheck{"database": db.Health}

	var tokens service.TokenStore
	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		client, err := database.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		cleanup = append(cleanup, func() { _ = client.Close() })
		redisTokens := repository.NewRedisTokenRepository(client, cfg.RedisKeyPrefix)
		checks["redis"] = redisTokens.Ping
		tokens = redisTokens
		slog.Info("token store ready", "backend", "redis", "addr", cfg.RedisAddr)
	default:
		tokens = repository.NewTokenRepository(pool)
		slog.Info("token store ready", "backend", "postgres")
	}

	signer, err := security.NewSigner(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		runAll(cleanup)
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}

	m := metrics.New()
	sessions := service.NewSessionService(tokens, signer, service.WithSessionMetrics(m))
	sweeper := service.NewTokenSweeper(tokens, cfg.TokenSweepInterval, logger, m)

	auditService := service.NewAuditService(auditRepo)
	authService := service.NewAuthService(userRepo, sessions, auditService, cfg.BcryptCost)
	contentService := service.NewContentService(articleRepo, videoRepo, podcastRepo, auditService)
	commentService := service.NewCommentService(commentRepo, auditService)

	if err := authService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		runAll(cleanup)
		return nil, fmt.Errorf("failed to bootstrap admin account: %w", err)
	}

	resolver := middleware.NewPrincipalResolver(sessions, userRepo)

	appRouter := router.New(cfg, resolver, m, router.Handlers{
		Health:  handler.NewHealthHandler(checks),
		Auth:    handler.NewAuthHandler(authService),
		User:    handler.NewUserHandler(authService),
		Article: handler.NewArticleHandler(contentService),
		Video:   handler.NewVideoHandler(contentService),
		Podcast: handler.NewPodcastHandler(contentService),
		Comment: handler.NewCommentHandler(commentService),
		Audit:   handler.NewAuditHandler(auditService),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		sweeper:      sweeper,
		cleanupFuncs: cleanup,
	}, nil
}

// Run serves HTTP and sweeps expired tokens until SIGINT or SIGTERM, then
// shuts both down.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.sweeper.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	runAll(a.cleanupFuncs)
	if err != nil {
		return err
	}

	slog.Info("server stopped")
	return nil
}

func runAll(funcs []func()) {
	for i := len(funcs) - 1; i >= 0; i-- {
		funcs[i]()
	}
}
