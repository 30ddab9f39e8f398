package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	fsrepo "ReWear/internal/cli/repo/fs"
	"ReWear/internal/config"
	"ReWear/internal/model"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// setupUserEnv изолирует конфиг‑каталог и базу клиента в temp.
func setupUserEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	db := filepath.Join(dir, "db")
	_ = os.MkdirAll(db, 0o700)
	t.Setenv("CLIENT_DB_PATH", db)
}

// loggedIn сохраняет токен и логин, как после успешного login.
func loggedIn(t *testing.T, login string) {
	t.Helper()
	st := fsrepo.AuthFSStore{}
	require.NoError(t, st.Save("tok-"+login))
	require.NoError(t, st.SaveLogin(login))
}

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewClient(&config.Config{ServerURL: ts.URL + "/"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func approved(id string) model.Item {
	return model.Item{
		ID: id, Title: "Denim Jacket " + id, Category: "Jackets & Coats", Size: "M", Condition: "Good",
		Points: 40, Moderation: model.ModerationApproved, Availability: model.AvailabilityAvailable,
	}
}

// --- Мок репозитория каталога ---
type catalogMockRepo struct{ mock.Mock }

func (m *catalogMockRepo) UpsertItems(items []model.Item) error {
	return m.Called(items).Error(0)
}

func (m *catalogMockRepo) DeleteItems(ids []string) error {
	return m.Called(ids).Error(0)
}

func (m *catalogMockRepo) ListItems() ([]model.Item, error) {
	args := m.Called()
	if v, ok := args.Get(0).([]model.Item); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *catalogMockRepo) GetItem(id string) (*model.Item, error) {
	args := m.Called(id)
	if v, ok := args.Get(0).(*model.Item); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *catalogMockRepo) Reset() error {
	return m.Called().Error(0)
}
