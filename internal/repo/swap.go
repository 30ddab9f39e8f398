package repo

import (
	"context"
	"time"

	"ReWear/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SwapRepository — доступ к заявкам на обмен и записям о выкупе.
type SwapRepository interface {
	Create(ctx context.Context, rec *model.SwapRecord) error
	GetByID(ctx context.Context, id string) (*model.SwapRecord, error)

	// HasPending — есть ли у requester незакрытая заявка на itemID.
	HasPending(ctx context.Context, itemID, requesterID string) (bool, error)

	ListByRequester(ctx context.Context, userID string) ([]model.SwapRecord, error)
	ListByOwner(ctx context.Context, userID string) ([]model.SwapRecord, error)
	ListByItem(ctx context.Context, itemID string) ([]model.SwapRecord, error)

	// UpdateStatus переводит заявку from -> to; если статус уже другой — ErrSwapChanged.
	UpdateStatus(ctx context.Context, id string, from, to model.SwapStatus) error

	// RejectPendingForItem закрывает ожидающие заявки на снятую с витрины вещь.
	RejectPendingForItem(ctx context.Context, itemID string) (int64, error)
}

type swapRepo struct {
	db *gorm.DB
}

// NewSwapRepository создаёт репозиторий заявок.
func NewSwapRepository(db *gorm.DB) SwapRepository {
	return &swapRepo{db: db}
}

func (r *swapRepo) Create(ctx context.Context, rec *model.SwapRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *swapRepo) GetByID(ctx context.Context, id string) (*model.SwapRecord, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	var rec model.SwapRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *swapRepo) HasPending(ctx context.Context, itemID, requesterID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SwapRecord{}).
		Where("item_id = ? AND requester_id = ? AND type = ? AND status = ?",
			itemID, requesterID, model.SwapTypeRequest, model.SwapPending).
		Count(&n).Error
	return n > 0, err
}

func (r *swapRepo) ListByRequester(ctx context.Context, userID string) ([]model.SwapRecord, error) {
	return r.list(ctx, "requester_id = ?", userID)
}

func (r *swapRepo) ListByOwner(ctx context.Context, userID string) ([]model.SwapRecord, error) {
	return r.list(ctx, "owner_id = ?", userID)
}

func (r *swapRepo) ListByItem(ctx context.Context, itemID string) ([]model.SwapRecord, error) {
	return r.list(ctx, "item_id = ?", itemID)
}

func (r *swapRepo) list(ctx context.Context, cond string, arg any) ([]model.SwapRecord, error) {
	var recs []model.SwapRecord
	err := r.db.WithContext(ctx).Where(cond, arg).Order("created_at desc").Find(&recs).Error
	return recs, err
}

func (r *swapRepo) UpdateStatus(ctx context.Context, id string, from, to model.SwapStatus) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&model.SwapRecord{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "responded_at": now, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSwapChanged
	}
	return nil
}

func (r *swapRepo) RejectPendingForItem(ctx context.Context, itemID string) (int64, error) {
	return rejectPending(r.db.WithContext(ctx), []string{itemID}, "")
}
