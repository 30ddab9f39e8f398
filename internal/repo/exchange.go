package repo

import (
	"context"
	"time"

	"ReWear/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RedeemParams — входные данные выкупа вещи за очки.
type RedeemParams struct {
	UserID    string
	UserName  string
	ItemID    string
	ItemTitle string
	OwnerID   string
	Points    int64
}

// ExchangeRepository выполняет многотабличные операции обмена в одной транзакции.
type ExchangeRepository interface {
	// Redeem: условно помечает вещь выкупленной, списывает очки, пишет журнал и
	// завершённую запись points_redeem, отклоняет ожидающие заявки на вещь.
	// ErrItemTaken / ErrBalanceTooLow откатывают всё.
	Redeem(ctx context.Context, p RedeemParams) (*model.SwapRecord, int64, error)

	// AcceptSwap переводит заявку pending -> accepted, помечает itemIDs обменянными
	// и отклоняет остальные ожидающие заявки на эти вещи.
	AcceptSwap(ctx context.Context, swapID string, itemIDs []string) error
}

type exchangeRepo struct {
	db *gorm.DB
}

// NewExchangeRepository создаёт транзакционный репозиторий обмена.
func NewExchangeRepository(db *gorm.DB) ExchangeRepository {
	return &exchangeRepo{db: db}
}

func (r *exchangeRepo) Redeem(ctx context.Context, p RedeemParams) (*model.SwapRecord, int64, error) {
	var (
		rec     *model.SwapRecord
		balance int64
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		if err := takeItem(tx, p.ItemID, map[string]any{
			"availability": model.AvailabilityRedeemed,
			"redeemed_by":  p.UserID,
			"redeemed_at":  now,
		}); err != nil {
			return err
		}
		if _, err := rejectPending(tx, []string{p.ItemID}, ""); err != nil {
			return err
		}

		var err error
		balance, err = adjustBalance(tx, p.UserID, -p.Points)
		if err != nil {
			return err
		}

		rec = &model.SwapRecord{
			ID:            uuid.NewString(),
			ItemID:        p.ItemID,
			ItemTitle:     p.ItemTitle,
			OwnerID:       p.OwnerID,
			RequesterID:   p.UserID,
			RequesterName: p.UserName,
			Type:          model.SwapTypeRedeem,
			Status:        model.SwapCompleted,
			Points:        p.Points,
			RespondedAt:   &now,
		}
		if err := tx.Create(rec).Error; err != nil {
			return err
		}

		itemID, swapID := p.ItemID, rec.ID
		return tx.Create(&model.LedgerEntry{
			ID:           uuid.NewString(),
			UserID:       p.UserID,
			Change:       -p.Points,
			BalanceAfter: balance,
			Reason:       model.LedgerRedeem,
			ItemID:       &itemID,
			SwapID:       &swapID,
		}).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return rec, balance, nil
}

func (r *exchangeRepo) AcceptSwap(ctx context.Context, swapID string, itemIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&model.SwapRecord{}).
			Where("id = ? AND status = ?", swapID, model.SwapPending).
			Updates(map[string]any{"status": model.SwapAccepted, "responded_at": now, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSwapChanged
		}

		for _, id := range itemIDs {
			if err := takeItem(tx, id, map[string]any{"availability": model.AvailabilitySwapped}); err != nil {
				return err
			}
		}

		_, err := rejectPending(tx, itemIDs, swapID)
		return err
	})
}

// rejectPending отклоняет ожидающие заявки, где вещь запрошена или предложена, кроме exceptID.
func rejectPending(tx *gorm.DB, itemIDs []string, exceptID string) (int64, error) {
	now := time.Now().UTC()
	res := tx.Model(&model.SwapRecord{}).
		Where("(item_id IN ? OR offered_item_id IN ?) AND status = ? AND id <> ?",
			itemIDs, itemIDs, model.SwapPending, exceptID).
		Updates(map[string]any{"status": model.SwapRejected, "responded_at": now, "updated_at": now})
	return res.RowsAffected, res.Error
}

// takeItem — compare-and-swap по статусу: обновляет вещь, только если она одобрена и доступна.
func takeItem(tx *gorm.DB, itemID string, updates map[string]any) error {
	updates["version"] = gorm.Expr("version + 1")
	updates["updated_at"] = time.Now().UTC()
	res := tx.Model(&model.Item{}).
		Where("id = ? AND moderation = ? AND availability = ?",
			itemID, model.ModerationApproved, model.AvailabilityAvailable).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrItemTaken
	}
	return nil
}
