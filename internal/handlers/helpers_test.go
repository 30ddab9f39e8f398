package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ReWear/internal/cache"
	"ReWear/internal/config"
	"ReWear/internal/handlers"
	"ReWear/internal/middleware"
	"ReWear/internal/model"
	"ReWear/internal/notify"
	"ReWear/internal/repo"
	"ReWear/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// testServer — роутер поверх настоящих сервисов и in-memory SQLite.
type testServer struct {
	router http.Handler
	cfg    *config.Config
	repos  *repo.Repositories
	svc    handlers.Services
}

func newTestServer(t *testing.T, limiter *middleware.RateLimiter) *testServer {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg := &config.Config{AuthSecret: testSecret, ImageMaxMB: 1, WelcomeBonus: 100, ModerationRequired: true}
	logger := zap.NewNop().Sugar()
	repos := repo.NewRepositories(db)
	n := notify.NewLogNotifier(logger)

	svc := handlers.Services{
		Users:      service.NewUserService(repos.Users, n, logger, cfg.WelcomeBonus),
		Items:      service.NewItemService(repos.Items, repos.Users, cache.Nop{}, logger, cfg.ModerationRequired),
		Exchange:   service.NewExchangeService(repos, cache.Nop{}, n, logger),
		Moderation: service.NewModerationService(repos.Users, repos.Items, repos.Swaps, cache.Nop{}, logger),
		Images:     service.NewImageService(repos.Images, repos.Users, cfg.ImageMaxBytes(), logger),
	}
	h := handlers.NewHandler(svc, limiter, logger, cfg)
	return &testServer{router: h.Router, cfg: cfg, repos: repos, svc: svc}
}

func addAuth(t *testing.T, req *http.Request, userID, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, middleware.SetLoginCookie(rr, userID, secret))
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

// do выполняет запрос; userID == "" — анонимно.
func (s *testServer) do(t *testing.T, method, path string, body any, userID string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			rd = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			rd = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		addAuth(t, req, userID, s.cfg.AuthSecret)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testServer) user(t *testing.T, name string, points int64) *model.User {
	t.Helper()
	u, err := s.repos.Users.CreateUser(context.Background(), &model.User{
		Email: name + "@example.com", Name: name, PasswordHash: "x", Points: points, Role: model.RoleUser,
	})
	require.NoError(t, err)
	return u
}

func (s *testServer) admin(t *testing.T) *model.User {
	t.Helper()
	u, err := s.svc.Users.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "secret1")
	require.NoError(t, err)
	return u
}

func newItemBody(points int64) service.NewItem {
	return service.NewItem{
		Title:       "Wool Sweater",
		Description: "Warm and soft",
		Category:    "Sweaters & Knitwear",
		Size:        "L",
		Condition:   "Good",
		Tags:        []string{"wool", "winter"},
		Images:      []string{"/api/images/1"},
		Points:      points,
	}
}

// listing создаёт и одобряет вещь владельца.
func (s *testServer) listing(t *testing.T, owner, admin *model.User, points int64) *model.Item {
	t.Helper()
	ctx := context.Background()
	it, err := s.svc.Items.Create(ctx, owner.ID, newItemBody(points))
	require.NoError(t, err)
	it, err = s.svc.Moderation.Approve(ctx, admin.ID, it.ID, "")
	require.NoError(t, err)
	return it
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(bytes.NewReader(rr.Body.Bytes())).Decode(&v))
	return v
}

func hasAuthCookie(rr *httptest.ResponseRecorder) bool {
	for _, c := range rr.Result().Cookies() {
		if c.Name == middleware.CookieName && c.Value != "" {
			return true
		}
	}
	return false
}
