package bootstrap

import (
	"fmt"

	"ReWear/internal/cli/repo"
	fsrepo "ReWear/internal/cli/repo/fs"
	reposqlite "ReWear/internal/cli/repo/sqlite"
)

// OpenCatalogRepo открывает локальный каталог текущего пользователя,
// выполняет миграции и возвращает (repo, login, cleanup, error).
// cleanup необходимо вызвать после окончания работы с репозиторием, чтобы закрыть соединение с БД.
func OpenCatalogRepo(base string) (repo.CatalogRepository, string, func() error, error) {
	login, err := (fsrepo.AuthFSStore{}).LoadLogin()
	if err != nil {
		return nil, "", nil, fmt.Errorf("нет активного пользователя: выполните login/register: %w", err)
	}
	r, _, err := reposqlite.OpenForUser(base, login)
	if err != nil {
		return nil, "", nil, fmt.Errorf("open user db: %w", err)
	}
	if err := r.Migrate(); err != nil {
		_ = r.Close()
		return nil, "", nil, fmt.Errorf("migrate user db: %w", err)
	}
	cleanup := func() error { return r.Close() }
	return r, login, cleanup, nil
}
