package repo

import (
	"context"
	"time"

	"ReWear/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ItemRepository определяет контракт доступа к объявлениям для слоя сервиса.
type ItemRepository interface {
	Create(ctx context.Context, it *model.Item) error
	GetByID(ctx context.Context, id string) (*model.Item, error)

	// ListAcquirable — одобренные и доступные вещи, новые первыми.
	ListAcquirable(ctx context.Context) ([]model.Item, error)
	ListByUploader(ctx context.Context, uploaderID string) ([]model.Item, error)

	// ListByModeration возвращает вещи в указанных статусах модерации; без статусов — все.
	ListByModeration(ctx context.Context, statuses ...model.ModerationStatus) ([]model.Item, error)
	ListByAvailability(ctx context.Context, a model.Availability) ([]model.Item, error)

	// GetItemsUpdatedSince возвращает вещи, изменённые строго после since.
	GetItemsUpdatedSince(ctx context.Context, since time.Time) ([]model.Item, error)

	// UpdateWithVersion применяет updates, если версия совпала, и увеличивает её.
	// При расхождении версии возвращает ErrVersionConflict, при отсутствии — gorm.ErrRecordNotFound.
	UpdateWithVersion(ctx context.Context, id string, expectedVersion int64, updates map[string]any) (int64, error)

	Delete(ctx context.Context, id string) error
	CountByModeration(ctx context.Context) (map[model.ModerationStatus]int64, error)
}

type itemRepo struct {
	db *gorm.DB
}

// NewItemRepository создаёт реализацию репозитория для Item.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) Create(ctx context.Context, it *model.Item) error {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.Version == 0 {
		it.Version = 1
	}
	return r.db.WithContext(ctx).Create(it).Error
}

func (r *itemRepo) GetByID(ctx context.Context, id string) (*model.Item, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var it model.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *itemRepo) ListAcquirable(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("moderation = ? AND availability = ?", model.ModerationApproved, model.AvailabilityAvailable).
		Order("created_at desc").
		Find(&items).Error
	return items, err
}

func (r *itemRepo) ListByUploader(ctx context.Context, uploaderID string) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("uploader_id = ?", uploaderID).
		Order("created_at desc").
		Find(&items).Error
	return items, err
}

func (r *itemRepo) ListByModeration(ctx context.Context, statuses ...model.ModerationStatus) ([]model.Item, error) {
	q := r.db.WithContext(ctx).Order("created_at desc")
	if len(statuses) > 0 {
		q = q.Where("moderation IN ?", statuses)
	}
	var items []model.Item
	err := q.Find(&items).Error
	return items, err
}

func (r *itemRepo) ListByAvailability(ctx context.Context, a model.Availability) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).Where("availability = ?", a).Find(&items).Error
	return items, err
}

func (r *itemRepo) GetItemsUpdatedSince(ctx context.Context, since time.Time) ([]model.Item, error) {
	var items []model.Item
	err := r.db.WithContext(ctx).
		Where("updated_at > ?", since.UTC()).
		Order("updated_at asc").
		Find(&items).Error
	return items, err
}

func (r *itemRepo) UpdateWithVersion(ctx context.Context, id string, expectedVersion int64, updates map[string]any) (int64, error) {
	if err := checkID(id); err != nil {
		return 0, err
	}
	patch := make(map[string]any, len(updates)+2)
	for k, v := range updates {
		patch[k] = v
	}
	patch["version"] = gorm.Expr("version + 1")
	patch["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).Model(&model.Item{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(patch)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.WithContext(ctx).Model(&model.Item{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, gorm.ErrRecordNotFound
		}
		return 0, ErrVersionConflict
	}
	return expectedVersion + 1, nil
}

func (r *itemRepo) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Item{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *itemRepo) CountByModeration(ctx context.Context) (map[model.ModerationStatus]int64, error) {
	type row struct {
		Moderation model.ModerationStatus
		N          int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Item{}).
		Select("moderation, COUNT(*) as n").
		Group("moderation").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[model.ModerationStatus]int64, len(rows))
	for _, rw := range rows {
		out[rw.Moderation] = rw.N
	}
	return out, nil
}
