package fs

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"ReWear/internal/cli/repo"
)

// AuthFSStore — файловое хранилище токена и контекста пользователя для CLI.
// TokenFile переопределяет путь к токену; пустой — каталог конфигурации пользователя.
type AuthFSStore struct {
	TokenFile string
}

var (
	_ repo.TokenStore       = AuthFSStore{}
	_ repo.UserContextStore = AuthFSStore{}
)

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(dir, "ReWear")
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", err
	}
	return p, nil
}

func (s AuthFSStore) tokenPath() (string, error) {
	if s.TokenFile != "" {
		if err := os.MkdirAll(filepath.Dir(s.TokenFile), 0o700); err != nil {
			return "", err
		}
		return s.TokenFile, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "auth_token"), nil
}

func lastLoginPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "last_login"), nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// SafeName превращает email в имя файла/каталога.
func SafeName(login string) string {
	return unsafeChars.ReplaceAllString(strings.ToLower(login), "_")
}

func lastSyncAtPath(login string) (string, error) {
	if login == "" {
		return "", errors.New("empty login for last_sync_at")
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	// Храним per-user, чтобы поддерживать несколько аккаунтов
	return filepath.Join(dir, "last_sync_at_"+SafeName(login)), nil
}

func readTrimmed(p string) (string, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n\t "), nil
}

// Save сохраняет auth‑токен в файл.
func (s AuthFSStore) Save(token string) error {
	p, err := s.tokenPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(token), 0o600)
}

// Load читает auth‑токен из файла.
func (s AuthFSStore) Load() (string, error) {
	p, err := s.tokenPath()
	if err != nil {
		return "", err
	}
	tok, err := readTrimmed(p)
	if err != nil {
		return "", err
	}
	if tok == "" {
		return "", errors.New("empty token file")
	}
	return tok, nil
}

// Clear удаляет токен и сохранённый логин (выход).
func (s AuthFSStore) Clear() error {
	p, err := s.tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	lp, err := lastLoginPath()
	if err != nil {
		return err
	}
	if err := os.Remove(lp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// SaveLogin сохраняет email пользователя в файл.
func (AuthFSStore) SaveLogin(login string) error {
	if login == "" {
		return errors.New("empty login")
	}
	p, err := lastLoginPath()
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(login), 0o600)
}

// LoadLogin читает email пользователя из файла.
func (AuthFSStore) LoadLogin() (string, error) {
	p, err := lastLoginPath()
	if err != nil {
		return "", err
	}
	login, err := readTrimmed(p)
	if err != nil {
		return "", err
	}
	if login == "" {
		return "", errors.New("no stored login")
	}
	return login, nil
}

// SaveLastSyncAt сохраняет значение last_sync_at (RFC3339) для указанного пользователя
func SaveLastSyncAt(login, ts string) error {
	p, err := lastSyncAtPath(login)
	if err != nil {
		return err
	}
	return os.WriteFile(p, []byte(ts), 0o600)
}

// LoadLastSyncAt читает last_sync_at для указанного пользователя
func LoadLastSyncAt(login string) (string, error) {
	p, err := lastSyncAtPath(login)
	if err != nil {
		return "", err
	}
	ts, err := readTrimmed(p)
	if err != nil {
		return "", err
	}
	if ts == "" {
		return "", errors.New("empty last_sync_at file")
	}
	return ts, nil
}

// ClearLastSyncAt сбрасывает метку (полная пересинхронизация).
func ClearLastSyncAt(login string) error {
	p, err := lastSyncAtPath(login)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
