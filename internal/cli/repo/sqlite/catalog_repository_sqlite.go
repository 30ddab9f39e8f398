package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ReWear/internal/cli/repo"
	fsrepo "ReWear/internal/cli/repo/fs"
	"ReWear/internal/model"

	_ "modernc.org/sqlite"
)

// CatalogRepositorySQLite — локальная копия каталога в SQLite.
// Колонки для фильтров дублируют поля, полная вещь лежит в data (JSON).
type CatalogRepositorySQLite struct {
	db    *sql.DB
	login string
}

var _ repo.CatalogRepository = (*CatalogRepositorySQLite)(nil)

// OpenForUser открывает (и создаёт при необходимости) файл БД для указанного логина
// и возвращает репозиторий. Вторым значением возвращается путь к БД.
// Пустой base — CLIENT_DB_PATH, затем каталог конфигурации пользователя.
func OpenForUser(base, login string) (*CatalogRepositorySQLite, string, error) {
	if login == "" {
		return nil, "", errors.New("empty login for user store")
	}
	if base == "" {
		base = os.Getenv("CLIENT_DB_PATH")
	}
	if base == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return nil, "", err
		}
		base = filepath.Join(cfgDir, "ReWear", "users")
	}
	dir := filepath.Join(base, fsrepo.SafeName(login))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, "", err
	}
	dbPath := filepath.Join(dir, "catalog.sqlite")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, "", err
	}
	// один writer: SQLite не любит параллельные транзакции
	db.SetMaxOpenConns(1)
	return &CatalogRepositorySQLite{db: db, login: login}, dbPath, nil
}

// Close закрывает соединение с БД.
func (r *CatalogRepositorySQLite) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// Migrate гарантирует наличие необходимых таблиц/индексов.
func (r *CatalogRepositorySQLite) Migrate() error {
	_, err := r.db.Exec(initialDDL())
	return err
}

func (r *CatalogRepositorySQLite) UpsertItems(items []model.Item) error {
	if len(items) == 0 {
		return nil
	}
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT INTO items(id, title, category, size, item_condition, points, updated_at, data)
        VALUES(?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            title = excluded.title,
            category = excluded.category,
            size = excluded.size,
            item_condition = excluded.item_condition,
            points = excluded.points,
            updated_at = excluded.updated_at,
            data = excluded.data`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		if it.ID == "" {
			return errors.New("item without id")
		}
		data, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("encode item %s: %w", it.ID, err)
		}
		if _, err := stmt.Exec(it.ID, it.Title, it.Category, it.Size, it.Condition, it.Points,
			it.UpdatedAt.UnixNano(), string(data)); err != nil {
			return fmt.Errorf("upsert item %s: %w", it.ID, err)
		}
	}
	return tx.Commit()
}

func (r *CatalogRepositorySQLite) DeleteItems(ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, id := range ids {
		if _, err := tx.Exec(`DELETE FROM items WHERE id = ?`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ListItems возвращает все записи, отсортированные по updated_at DESC.
func (r *CatalogRepositorySQLite) ListItems() ([]model.Item, error) {
	rows, err := r.db.Query(`SELECT data FROM items ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []model.Item
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var it model.Item
		if err := json.Unmarshal([]byte(data), &it); err != nil {
			return nil, err
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

func (r *CatalogRepositorySQLite) GetItem(id string) (*model.Item, error) {
	var data string
	err := r.db.QueryRow(`SELECT data FROM items WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", repo.ErrNotFound, id)
		}
		return nil, err
	}
	var it model.Item
	if err := json.Unmarshal([]byte(data), &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *CatalogRepositorySQLite) Reset() error {
	_, err := r.db.Exec(`DELETE FROM items`)
	return err
}
