package model

import "time"

// SwapType — вид заявки.
type SwapType string

const (
	SwapTypeRequest SwapType = "swap_request"
	SwapTypeRedeem  SwapType = "points_redeem"
)

// SwapStatus — состояние заявки.
type SwapStatus string

const (
	SwapPending   SwapStatus = "pending"
	SwapAccepted  SwapStatus = "accepted"
	SwapRejected  SwapStatus = "rejected"
	SwapCompleted SwapStatus = "completed"
	SwapCancelled SwapStatus = "cancelled"
)

var swapTransitions = map[SwapStatus][]SwapStatus{
	SwapPending:  {SwapAccepted, SwapRejected, SwapCancelled},
	SwapAccepted: {SwapCompleted},
}

// CanTransition проверяет допустимость перехода статуса заявки.
func (s SwapStatus) CanTransition(to SwapStatus) bool {
	for _, next := range swapTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// SwapRecord — заявка на обмен или запись о выкупе вещи за очки.
type SwapRecord struct {
	ID            string  `gorm:"primaryKey;type:uuid" json:"id"`
	ItemID        string  `gorm:"type:uuid;not null;index" json:"item_id"`
	ItemTitle     string  `json:"item_title"`
	OwnerID       string  `gorm:"type:uuid;not null;index" json:"owner_id"`
	RequesterID   string  `gorm:"type:uuid;not null;index" json:"requester_id"`
	RequesterName string  `json:"requester_name"`
	OfferedItemID *string `gorm:"type:uuid" json:"offered_item_id,omitempty"`
	Message       string  `json:"message,omitempty"`

	Type   SwapType   `gorm:"type:varchar(16);not null" json:"type"`
	Status SwapStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	Points int64      `gorm:"not null;default:0" json:"points,omitempty"`

	RespondedAt *time.Time `json:"responded_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
