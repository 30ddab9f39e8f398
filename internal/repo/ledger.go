package repo

import (
	"context"

	"ReWear/internal/model"

	"gorm.io/gorm"
)

// LedgerRepository — чтение журнала очков. Записи создаются только внутри транзакций
// других репозиториев вместе с изменением баланса.
type LedgerRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.LedgerEntry, error)

	// SumByUser — сумма изменений по каждому пользователю.
	SumByUser(ctx context.Context) (map[string]int64, error)
}

type ledgerRepo struct {
	db *gorm.DB
}

// NewLedgerRepository создаёт репозиторий журнала.
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) ListByUser(ctx context.Context, userID string) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&entries).Error
	return entries, err
}

func (r *ledgerRepo) SumByUser(ctx context.Context) (map[string]int64, error) {
	type row struct {
		UserID string
		Total  int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.LedgerEntry{}).
		Select("user_id, SUM(change) as total").
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.UserID] = rw.Total
	}
	return out, nil
}
