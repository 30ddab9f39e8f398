package service

import (
	"context"
	"testing"

	"ReWear/internal/cache"
	"ReWear/internal/model"
	"ReWear/internal/repo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// testEnv — сервисы поверх отдельной in-memory SQLite.
type testEnv struct {
	db         *gorm.DB
	repos      *repo.Repositories
	notifier   *recordingNotifier
	users      *UserService
	items      *ItemService
	exchange   *ExchangeService
	moderation *ModerationService
	images     *ImageService
	reconciler *Reconciler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := repo.InitDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	logger := zap.NewNop().Sugar()
	repos := repo.NewRepositories(db)
	n := &recordingNotifier{result: true}

	env := &testEnv{
		db:         db,
		repos:      repos,
		notifier:   n,
		users:      NewUserService(repos.Users, n, logger, 100),
		items:      NewItemService(repos.Items, repos.Users, cache.Nop{}, logger, true),
		exchange:   NewExchangeService(repos, cache.Nop{}, n, logger),
		moderation: NewModerationService(repos.Users, repos.Items, repos.Swaps, cache.Nop{}, logger),
		images:     NewImageService(repos.Images, repos.Users, 1<<20, logger),
		reconciler: NewReconciler(repos, logger),
	}
	env.users.dispatch = syncDispatch
	env.exchange.dispatch = syncDispatch
	return env
}

func (e *testEnv) user(t *testing.T, name string, points int64) *model.User {
	t.Helper()
	u, err := e.repos.Users.CreateUser(context.Background(), &model.User{
		Email: name + "@example.com", Name: name, PasswordHash: "x", Points: points, Role: model.RoleUser,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) admin(t *testing.T) *model.User {
	t.Helper()
	u, err := e.users.EnsureAdmin(context.Background(), "Admin", "admin@example.com", "secret1")
	require.NoError(t, err)
	return u
}

func validNewItem(points int64) NewItem {
	return NewItem{
		Title:       "Vintage Denim Jacket",
		Description: "Classic blue denim",
		Category:    "Jackets & Coats",
		Size:        "M",
		Condition:   "Excellent",
		Tags:        []string{"Denim", " vintage ", "denim"},
		Images:      []string{"/api/images/1"},
		Points:      points,
	}
}

// listing создаёт вещь и одобряет её.
func (e *testEnv) listing(t *testing.T, owner *model.User, admin *model.User, points int64) *model.Item {
	t.Helper()
	ctx := context.Background()
	it, err := e.items.Create(ctx, owner.ID, validNewItem(points))
	require.NoError(t, err)
	it, err = e.moderation.Approve(ctx, admin.ID, it.ID, "")
	require.NoError(t, err)
	return it
}
