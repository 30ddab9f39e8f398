package service

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ReWear/internal/catalog"
	"ReWear/internal/cli/api"
	"ReWear/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_BrowseEncodesQuery(t *testing.T) {
	setupUserEnv(t)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/items", r.URL.Path)
		assert.Equal(t, "denim", q.Get("q"))
		assert.Equal(t, "Jackets & Coats", q.Get("category"))
		assert.Equal(t, "points-low", q.Get("sort"))
		assert.False(t, q.Has("size"))
		assert.Empty(t, r.Header.Get("Cookie"))
		writeJSON(w, http.StatusOK, []model.Item{approved("a")})
	}))

	items, err := c.Browse(catalog.Query{Search: "denim", Category: "Jackets & Coats", Sort: catalog.SortPointsLow})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)
}

func TestClient_RequiresLogin(t *testing.T) {
	setupUserEnv(t)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("request must not be sent: %s", r.URL.Path)
	}))

	_, err := c.Dashboard()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	_, err = c.Redeem("x")
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.ErrorIs(t, c.DeleteListing("x", true), ErrNotLoggedIn)
}

func TestClient_RedeemShortfall(t *testing.T) {
	setupUserEnv(t)
	loggedIn(t, "bob@example.com")
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/items/it1/redeem", r.URL.Path)
		assert.Contains(t, r.Header.Get("Cookie"), "auth_token=tok-bob@example.com")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": "insufficient points", "shortfall": 25})
	}))

	_, err := c.Redeem("it1")
	var se *api.ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, int64(25), se.Shortfall)
	assert.Contains(t, err.Error(), "need 25 more points")
}

func TestClient_RedeemOK(t *testing.T) {
	setupUserEnv(t)
	loggedIn(t, "bob@example.com")
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, RedeemResult{
			Swap:    &model.SwapRecord{ID: "s1", Type: model.SwapTypeRedeem, Status: model.SwapCompleted},
			Item:    &model.Item{ID: "it1", Availability: model.AvailabilityRedeemed},
			Balance: 60,
		})
	}))

	res, err := c.Redeem("it1")
	require.NoError(t, err)
	assert.Equal(t, int64(60), res.Balance)
	assert.Equal(t, model.AvailabilityRedeemed, res.Item.Availability)
}

func TestClient_RequestSwapAndRespond(t *testing.T) {
	setupUserEnv(t)
	loggedIn(t, "bob@example.com")
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/items/it1/swap":
			var req map[string]string
			_ = json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, "hi", req["message"])
			assert.Equal(t, "mine", req["offered_item_id"])
			writeJSON(w, http.StatusCreated, model.SwapRecord{ID: "s1", Status: model.SwapPending})
		case "/api/swaps/s1/accept":
			writeJSON(w, http.StatusOK, model.SwapRecord{ID: "s1", Status: model.SwapAccepted})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	rec, err := c.RequestSwap("it1", "hi", "mine")
	require.NoError(t, err)
	assert.Equal(t, model.SwapPending, rec.Status)

	rec, err = c.RespondSwap("s1", "accept")
	require.NoError(t, err)
	assert.Equal(t, model.SwapAccepted, rec.Status)

	_, err = c.RespondSwap("s1", "ignore")
	assert.Error(t, err)
}

func TestClient_CreateAndUpload(t *testing.T) {
	setupUserEnv(t)
	loggedIn(t, "ann@example.com")
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/images":
			f, hdr, err := r.FormFile("file")
			if err != nil {
				t.Errorf("form file: %v", err)
				return
			}
			defer f.Close()
			b, _ := io.ReadAll(f)
			assert.Equal(t, png, b)
			assert.Equal(t, "photo.png", hdr.Filename)
			assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
			writeJSON(w, http.StatusCreated, UploadResult{ID: "img1", URL: "/api/images/img1", Size: int64(len(b))})
		case "/api/items":
			var in NewListing
			_ = json.NewDecoder(r.Body).Decode(&in)
			assert.Equal(t, []string{"/api/images/img1"}, in.Images)
			writeJSON(w, http.StatusCreated, model.Item{ID: "it1", Title: in.Title, Moderation: model.ModerationPending})
		}
	}))

	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, png, 0o600))
	up, err := c.Upload(path)
	require.NoError(t, err)
	assert.Equal(t, "/api/images/img1", up.URL)

	it, err := c.Create(NewListing{Title: "Coat", Images: []string{up.URL}})
	require.NoError(t, err)
	assert.Equal(t, model.ModerationPending, it.Moderation)

	_, err = c.Upload(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestClient_AdminCalls(t *testing.T) {
	setupUserEnv(t)
	loggedIn(t, "admin@example.com")
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/admin/items" && r.Method == http.MethodGet:
			assert.Equal(t, "all", r.URL.Query().Get("status"))
			writeJSON(w, http.StatusOK, []model.Item{approved("a")})
		case r.URL.Path == "/api/admin/items/it1/reject":
			var req map[string]string
			_ = json.NewDecoder(r.Body).Decode(&req)
			assert.Equal(t, "blurry", req["notes"])
			writeJSON(w, http.StatusOK, model.Item{ID: "it1", Moderation: model.ModerationRejected})
		case r.URL.Path == "/api/admin/items/it1" && r.Method == http.MethodDelete:
			if r.URL.Query().Get("confirm") != "true" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "confirmation required"})
				return
			}
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/admin/stats":
			writeJSON(w, http.StatusOK, AdminStats{TotalItems: 3, PendingItems: 1, TotalUsers: 2})
		case r.URL.Path == "/api/admin/users/u2/points":
			writeJSON(w, http.StatusOK, map[string]any{"user_id": "u2", "balance": 150})
		case r.URL.Path == "/api/admin/users/u2/promote":
			writeJSON(w, http.StatusOK, model.User{ID: "u2", Role: model.RoleAdmin})
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
	}))

	items, err := c.Queue("all")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	it, err := c.Moderate("it1", "reject", "blurry")
	require.NoError(t, err)
	assert.Equal(t, model.ModerationRejected, it.Moderation)
	_, err = c.Moderate("it1", "archive", "")
	assert.Error(t, err)

	err = c.DeleteListing("it1", false)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "confirmation required"))
	assert.NoError(t, c.DeleteListing("it1", true))

	st, err := c.AdminStats()
	require.NoError(t, err)
	assert.Equal(t, int64(1), st.PendingItems)

	bal, err := c.AdjustPoints("u2", 50, "bonus")
	require.NoError(t, err)
	assert.Equal(t, int64(150), bal)

	u, err := c.Promote("u2")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, u.Role)
}

func TestClient_BadJSON(t *testing.T) {
	setupUserEnv(t)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{"))
	}))
	_, err := c.Item("x")
	assert.Error(t, err)
}
