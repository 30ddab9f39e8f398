package model

import "time"

// Причины движения очков.
const (
	LedgerWelcomeBonus = "welcome_bonus"
	LedgerRedeem       = "redeem"
	LedgerAdminAdjust  = "admin_adjust"
)

// LedgerEntry — строка журнала очков. Сумма Change по пользователю равна User.Points.
type LedgerEntry struct {
	ID           string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Change       int64   `gorm:"not null" json:"change"`
	BalanceAfter int64   `gorm:"not null" json:"balance_after"`
	Reason       string  `gorm:"type:varchar(32);not null" json:"reason"`
	Note         string  `json:"note,omitempty"`
	ItemID       *string `gorm:"type:uuid" json:"item_id,omitempty"`
	SwapID       *string `gorm:"type:uuid" json:"swap_id,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
