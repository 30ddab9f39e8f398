package service

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"ReWear/internal/cli/api"
	fsrepo "ReWear/internal/cli/repo/fs"
	"ReWear/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteAuth_RegisterStoresTokenAndLogin(t *testing.T) {
	setupUserEnv(t)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user/register", r.URL.Path)
		var req map[string]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		assert.Equal(t, "Ann", req["name"])
		http.SetCookie(w, &http.Cookie{Name: "auth_token", Value: "tok-ann"})
		writeJSON(w, http.StatusOK, model.User{ID: "u1", Email: "Ann@Example.com", Name: "Ann", Points: 100})
	}))
	auth := NewAuthService(c)

	u, err := auth.Register("Ann", "Ann@Example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), u.Points)

	tok, err := fsrepo.AuthFSStore{}.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-ann", tok)

	login, err := auth.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", login)
}

func TestRemoteAuth_LoginErrors(t *testing.T) {
	setupUserEnv(t)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid email or password"})
	}))
	auth := NewAuthService(c)

	_, err := auth.Login("ann@example.com", "bad")
	var se *api.ServerError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Equal(t, "invalid email or password", se.Message)

	_, err = auth.CurrentUser()
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestRemoteAuth_LoginWithoutCookie(t *testing.T) {
	setupUserEnv(t)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, model.User{ID: "u1", Email: "a@example.com"})
	}))
	_, err := NewAuthService(c).Login("a@example.com", "secret1")
	assert.Error(t, err)
}

func TestRemoteAuth_Logout(t *testing.T) {
	setupUserEnv(t)
	loggedIn(t, "ann@example.com")
	called := false
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = r.URL.Path == "/api/user/logout"
		w.WriteHeader(http.StatusNoContent)
	}))
	auth := NewAuthService(c)

	require.NoError(t, auth.Logout())
	assert.True(t, called)
	_, err := fsrepo.AuthFSStore{}.Load()
	assert.Error(t, err)
	_, err = auth.CurrentUser()
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	// повторный logout без токена — не ошибка
	assert.NoError(t, auth.Logout())
}
