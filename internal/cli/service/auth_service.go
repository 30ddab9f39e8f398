package service

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"ReWear/internal/cli/api"
	"ReWear/internal/model"
)

// AuthService описывает юзкейс-уровень аутентификации для CLI.
type AuthService interface {
	// Register создаёт аккаунт и сразу выполняет вход.
	Register(name, email, password string) (*model.User, error)

	// Login логирование пользователя.
	Login(email, password string) (*model.User, error)

	// Logout очищает локальный контекст аутентификации.
	Logout() error

	// CurrentUser возвращает email текущего пользователя, если он установлен.
	CurrentUser() (string, error)
}

// RemoteAuth — AuthService поверх серверного API; токен и логин хранятся в файлах.
type RemoteAuth struct {
	c *Client
}

var _ AuthService = (*RemoteAuth)(nil)

func NewAuthService(c *Client) *RemoteAuth {
	return &RemoteAuth{c: c}
}

func (a *RemoteAuth) Register(name, email, password string) (*model.User, error) {
	payload := map[string]string{"name": name, "email": email, "password": password}
	return a.authenticate("/api/user/register", payload)
}

func (a *RemoteAuth) Login(email, password string) (*model.User, error) {
	payload := map[string]string{"email": email, "password": password}
	return a.authenticate("/api/user/login", payload)
}

func (a *RemoteAuth) authenticate(path string, payload any) (*model.User, error) {
	resp, body, err := api.PostJSON(a.c.endpoint(path), payload, "")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, api.NewServerError(resp.StatusCode, body)
	}
	var u model.User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if err := api.PersistAuthFromResponse(resp, a.c.store); err != nil {
		return nil, fmt.Errorf("saving auth: %w", err)
	}
	if err := a.c.store.SaveLogin(strings.ToLower(u.Email)); err != nil {
		return nil, fmt.Errorf("saving login: %w", err)
	}
	return &u, nil
}

// Logout сообщает серверу о выходе (ошибка сети не мешает) и удаляет локальные токен и логин.
func (a *RemoteAuth) Logout() error {
	if tok, err := a.c.token(); err == nil {
		_, _, _ = api.PostJSON(a.c.endpoint("/api/user/logout"), nil, tok)
	}
	return a.c.store.Clear()
}

func (a *RemoteAuth) CurrentUser() (string, error) {
	login, err := a.c.store.LoadLogin()
	if err != nil {
		return "", ErrNotLoggedIn
	}
	return login, nil
}
