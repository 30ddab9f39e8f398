package repo

import (
	"errors"

	"ReWear/internal/model"
)

// ErrNotFound — вещи нет в локальной копии каталога.
var ErrNotFound = errors.New("item not found in local catalog")

// CatalogRepository — локальная копия витрины для офлайн-поиска.
type CatalogRepository interface {
	// UpsertItems сохраняет вещи, перезаписывая уже известные по id.
	UpsertItems(items []model.Item) error
	// DeleteItems убирает вещи, которые больше нельзя получить.
	DeleteItems(ids []string) error
	// ListItems возвращает все вещи, свежие первыми.
	ListItems() ([]model.Item, error)
	GetItem(id string) (*model.Item, error)
	// Reset очищает копию перед полной синхронизацией.
	Reset() error
}
