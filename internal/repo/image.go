package repo

import (
	"context"

	"ReWear/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ImageRepository минимальный контракт доступа к изображениям.
type ImageRepository interface {
	// CreateIfAbsent пытается создать запись. Если существует — ничего не делает.
	// Возвращает created=true если запись была создана в этой операции.
	CreateIfAbsent(ctx context.Context, img *model.Image) (created bool, err error)

	GetByID(ctx context.Context, id string) (*model.Image, error)
	Delete(ctx context.Context, id string) error
}

type imageRepo struct {
	db *gorm.DB
}

// NewImageRepository создаёт реализацию репозитория для Image.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepo{db: db}
}

// CreateIfAbsent создает Image в БД, если его ещё нет.
func (r *imageRepo) CreateIfAbsent(ctx context.Context, img *model.Image) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(img)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *imageRepo) GetByID(ctx context.Context, id string) (*model.Image, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var img model.Image
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&img).Error; err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *imageRepo) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Image{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
