package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ReWear/internal/cache"
	"ReWear/internal/config"
	"ReWear/internal/handlers"
	"ReWear/internal/middleware"
	"ReWear/internal/notify"
	"ReWear/internal/repo"
	"ReWear/internal/service"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём предустановленный регистратор zap
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	// делаем регистратор SugaredLogger
	sugar := logger.Sugar()
	middleware.SetLogger(sugar) // передаём логгер в middleware
	//сброс буфера логгера
	defer func() {
		if err := logger.Sync(); err != nil {
			sugar.Errorw("Failed to sync logger", "error", err)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	gormDB, err := repo.InitDB(cfg.DatabaseDSN)
	if err != nil {
		sugar.Fatalw("failed to initialize database", "error", err)
	}
	repos := repo.NewRepositories(gormDB)

	catalogCache := newCatalogCache(ctx, cfg, sugar)
	notifier := notify.New(notify.Config{
		APIURL:            cfg.EmailAPIURL,
		ServiceID:         cfg.EmailServiceID,
		WelcomeTemplateID: cfg.EmailTemplateID,
		SwapTemplateID:    cfg.EmailSwapTemplateID,
		PublicKey:         cfg.EmailPublicKey,
	}, sugar)

	svc := handlers.Services{
		Users:      service.NewUserService(repos.Users, notifier, sugar, cfg.WelcomeBonus),
		Items:      service.NewItemService(repos.Items, repos.Users, catalogCache, sugar, cfg.ModerationRequired),
		Exchange:   service.NewExchangeService(repos, catalogCache, notifier, sugar),
		Moderation: service.NewModerationService(repos.Users, repos.Items, repos.Swaps, catalogCache, sugar),
		Images:     service.NewImageService(repos.Images, repos.Users, cfg.ImageMaxBytes(), sugar),
	}

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		admin, err := svc.Users.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			sugar.Fatalw("failed to bootstrap admin", "email", cfg.AdminEmail, "error", err)
		}
		sugar.Infow("Admin ready", "user_id", admin.ID, "email", admin.Email)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go every(ctx, time.Minute, limiter.Cleanup)

	if cfg.ReconcileInterval > 0 {
		reconciler := service.NewReconciler(repos, sugar)
		go every(ctx, cfg.ReconcileInterval, func() {
			rep, err := reconciler.Reconcile(ctx)
			switch {
			case errors.Is(err, service.ErrInconsistentState):
				sugar.Errorw("Reconcile found inconsistencies", "findings", len(rep.Findings))
			case err != nil:
				sugar.Errorw("Reconcile failed", "error", err)
			default:
				sugar.Debugw("Reconcile ok", "users", rep.UsersChecked, "items", rep.ItemsChecked)
			}
		})
	}

	h := handlers.NewHandler(svc, limiter, sugar, cfg)

	addr := cfg.BaseURL
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sugar.Infow(
		"Starting server",
		"addr", addr,
	)

	sugar.Infow("Config",
		"BaseURL", cfg.BaseURL,
		"EnableHTTPS", cfg.EnableHTTPS,
		"DatabaseDSN", cfg.DatabaseDSN,
		"ModerationRequired", cfg.ModerationRequired,
		"WelcomeBonus", cfg.WelcomeBonus,
		"RedisURL", cfg.RedisURL,
	)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sugar.Errorw("Shutdown failed", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		sugar.Fatalw("Server failed", "error", err)
	}
	sugar.Infow("Server stopped")
}

// newCatalogCache — Redis при наличии REDIS_URL; без него или при ошибке работаем без кэша.
func newCatalogCache(ctx context.Context, cfg *config.Config, sugar *zap.SugaredLogger) cache.CatalogCache {
	if cfg.RedisURL == "" {
		return cache.Nop{}
	}
	client, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		sugar.Warnw("Redis unavailable, catalog cache disabled", "addr", cfg.RedisURL, "error", err)
		return cache.Nop{}
	}
	sugar.Infow("Catalog cache enabled", "addr", cfg.RedisURL, "ttl", cfg.CatalogTTL)
	return cache.NewRedisCatalog(client, cfg.CatalogTTL)
}

func every(ctx context.Context, d time.Duration, f func()) {
	t := time.NewTicker(d)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			f()
		}
	}
}
