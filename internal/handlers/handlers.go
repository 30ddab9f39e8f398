package handlers

import (
	"net/http"

	"ReWear/internal/config"
	"ReWear/internal/metrics"
	"ReWear/internal/middleware"
	"ReWear/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// Services — набор сервисов, которые обслуживает HTTP слой.
type Services struct {
	Users      *service.UserService
	Items      *service.ItemService
	Exchange   *service.ExchangeService
	Moderation *service.ModerationService
	Images     *service.ImageService
}

// NewHandler разводящий для хендлеров.
// limiter может быть nil: тогда изменяющие запросы не ограничиваются.
func NewHandler(
	svc Services,
	limiter *middleware.RateLimiter,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)
	r.Use(middleware.WithAuth(config.AuthSecret))

	limit := func(next http.Handler) http.Handler { return next }
	if limiter != nil {
		limit = limiter.Handler
	}

	// Handlers
	userHandler := NewUserHandler(svc.Users, svc.Exchange, logger, config)
	itemHandler := NewItemHandler(svc.Items, svc.Exchange, logger)
	swapHandler := NewSwapHandler(svc.Exchange, logger)
	imageHandler := NewImageHandler(svc.Images, logger)
	adminHandler := NewAdminHandler(svc.Moderation, svc.Users, logger)

	r.Handle("/metrics", metrics.Handler())

	// User routes
	r.With(limit).Post("/api/user/register", userHandler.Register)
	r.With(limit).Post("/api/user/login", userHandler.Login)
	r.Post("/api/user/logout", userHandler.Logout)

	// Публичная витрина
	r.Get("/api/items", itemHandler.List)
	r.Get("/api/items/{id}", itemHandler.Get)
	r.Get("/api/images/{id}", imageHandler.Get)

	// Только с сессией
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/api/user/me", userHandler.Me)
		r.Get("/api/user/dashboard", userHandler.Dashboard)
		r.Get("/api/items/changes", itemHandler.Changes)
		r.Get("/api/admin/items", adminHandler.Queue)
		r.Get("/api/admin/stats", adminHandler.Stats)

		r.Group(func(r chi.Router) {
			r.Use(limit)

			r.Post("/api/items", itemHandler.Create)
			r.Post("/api/items/{id}/redeem", itemHandler.Redeem)
			r.Post("/api/items/{id}/swap", itemHandler.RequestSwap)

			r.Post("/api/swaps/{id}/accept", swapHandler.Accept)
			r.Post("/api/swaps/{id}/decline", swapHandler.Decline)
			r.Post("/api/swaps/{id}/cancel", swapHandler.Cancel)
			r.Post("/api/swaps/{id}/complete", swapHandler.Complete)

			r.Post("/api/images", imageHandler.Upload)
			r.Delete("/api/images/{id}", imageHandler.Delete)

			r.Post("/api/admin/items/{id}/approve", adminHandler.Approve)
			r.Post("/api/admin/items/{id}/reject", adminHandler.Reject)
			r.Post("/api/admin/items/{id}/flag", adminHandler.Flag)
			r.Delete("/api/admin/items/{id}", adminHandler.Delete)
			r.Post("/api/admin/users/{id}/promote", adminHandler.Promote)
			r.Post("/api/admin/users/{id}/points", adminHandler.AdjustPoints)
		})
	})

	return &Handler{Router: r}
}
