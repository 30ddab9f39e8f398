package service

import (
	"ReWear/internal/catalog"
	"ReWear/internal/cli/repo"
	"ReWear/internal/model"
)

// Search ищет по локальной копии каталога теми же правилами, что и сервер.
func Search(r repo.CatalogRepository, q catalog.Query) ([]model.Item, error) {
	items, err := r.ListItems()
	if err != nil {
		return nil, err
	}
	return catalog.Apply(items, q), nil
}
