package service

import (
	"context"
	"sync"
	"time"

	"ReWear/internal/model"
	"ReWear/internal/notify"
	"ReWear/internal/repo"

	"github.com/stretchr/testify/mock"
)

// мок для repo.UserRepository
type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) SetRole(ctx context.Context, id string, role model.Role) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *mockUserRepo) AdjustPoints(ctx context.Context, id string, delta int64, reason, note string) (int64, error) {
	args := m.Called(ctx, id, delta, reason, note)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if u, ok := args.Get(0).([]model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.UserRepository = (*mockUserRepo)(nil)

// мок для repo.ItemRepository
type mockItemRepo struct{ mock.Mock }

func (m *mockItemRepo) Create(ctx context.Context, it *model.Item) error {
	return m.Called(ctx, it).Error(0)
}

func (m *mockItemRepo) GetByID(ctx context.Context, id string) (*model.Item, error) {
	args := m.Called(ctx, id)
	if it, ok := args.Get(0).(*model.Item); ok {
		return it, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemRepo) items(args mock.Arguments) ([]model.Item, error) {
	if it, ok := args.Get(0).([]model.Item); ok {
		return it, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockItemRepo) ListAcquirable(ctx context.Context) ([]model.Item, error) {
	return m.items(m.Called(ctx))
}

func (m *mockItemRepo) ListByUploader(ctx context.Context, uploaderID string) ([]model.Item, error) {
	return m.items(m.Called(ctx, uploaderID))
}

func (m *mockItemRepo) ListByModeration(ctx context.Context, statuses ...model.ModerationStatus) ([]model.Item, error) {
	return m.items(m.Called(ctx, statuses))
}

func (m *mockItemRepo) ListByAvailability(ctx context.Context, a model.Availability) ([]model.Item, error) {
	return m.items(m.Called(ctx, a))
}

func (m *mockItemRepo) GetItemsUpdatedSince(ctx context.Context, since time.Time) ([]model.Item, error) {
	return m.items(m.Called(ctx, since))
}

func (m *mockItemRepo) UpdateWithVersion(ctx context.Context, id string, expectedVersion int64, updates map[string]any) (int64, error) {
	args := m.Called(ctx, id, expectedVersion, updates)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockItemRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockItemRepo) CountByModeration(ctx context.Context) (map[model.ModerationStatus]int64, error) {
	args := m.Called(ctx)
	if c, ok := args.Get(0).(map[model.ModerationStatus]int64); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

var _ repo.ItemRepository = (*mockItemRepo)(nil)

// recordingNotifier запоминает отправленные письма.
type recordingNotifier struct {
	mu      sync.Mutex
	welcome []notify.WelcomeMail
	swaps   []notify.SwapRequestMail
	result  bool
}

func (n *recordingNotifier) SendWelcome(_ context.Context, m notify.WelcomeMail) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.welcome = append(n.welcome, m)
	return n.result
}

func (n *recordingNotifier) SendSwapRequest(_ context.Context, m notify.SwapRequestMail) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.swaps = append(n.swaps, m)
	return n.result
}

func syncDispatch(f func()) { f() }

// reset очищает и ожидания, и историю вызовов мока между подтестами.
func reset(m *mock.Mock) {
	m.ExpectedCalls = nil
	m.Calls = nil
}
