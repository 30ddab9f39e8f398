package service

import (
	"fmt"

	"ReWear/internal/cli/repo"
	fsrepo "ReWear/internal/cli/repo/fs"
	"ReWear/internal/model"
)

// SyncResult — итог синхронизации локального каталога.
type SyncResult struct {
	Upserted   int
	Removed    int
	Full       bool
	ServerTime string
}

// Sync подтягивает изменения витрины с сервера в локальный каталог.
// Доступные вещи сохраняются, снятые с витрины (обменяны, выкуплены, отклонены) удаляются.
// Удалённые администратором вещи в изменения не попадают: их убирает только full.
func Sync(c *Client, r repo.CatalogRepository, login string, full bool) (*SyncResult, error) {
	var since string
	if !full {
		since, _ = fsrepo.LoadLastSyncAt(login)
	}
	// без метки — первая синхронизация, она же полная
	res := &SyncResult{Full: since == ""}

	items, serverTime, err := c.Changes(since)
	if err != nil {
		return nil, err
	}

	if res.Full {
		if err := r.Reset(); err != nil {
			return nil, fmt.Errorf("reset local catalog: %w", err)
		}
	}

	var keep []model.Item
	var drop []string
	for _, it := range items {
		if it.Acquirable() {
			keep = append(keep, it)
		} else {
			drop = append(drop, it.ID)
		}
	}
	if err := r.UpsertItems(keep); err != nil {
		return nil, fmt.Errorf("store items: %w", err)
	}
	if err := r.DeleteItems(drop); err != nil {
		return nil, fmt.Errorf("remove items: %w", err)
	}
	res.Upserted, res.Removed = len(keep), len(drop)

	if serverTime != "" {
		if err := fsrepo.SaveLastSyncAt(login, serverTime); err != nil {
			return nil, fmt.Errorf("save last_sync_at: %w", err)
		}
		res.ServerTime = serverTime
	}
	return res, nil
}
