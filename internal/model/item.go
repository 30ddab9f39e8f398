package model

import (
	"time"

	"gorm.io/datatypes"
)

// ModerationStatus — статус модерации объявления (управляется администратором).
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
	ModerationRemoved  ModerationStatus = "removed"
)

// moderationTransitions: rejected и removed терминальные.
// approved -> approved разрешён, повторное одобрение идемпотентно.
var moderationTransitions = map[ModerationStatus][]ModerationStatus{
	ModerationPending:  {ModerationApproved, ModerationRejected, ModerationRemoved},
	ModerationApproved: {ModerationApproved, ModerationRemoved},
}

// CanTransition проверяет допустимость перехода статуса модерации.
func (s ModerationStatus) CanTransition(to ModerationStatus) bool {
	for _, next := range moderationTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Availability — доступность вещи для получения (обмен или выкуп за очки).
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilitySwapped   Availability = "swapped"
	AvailabilityRedeemed  Availability = "redeemed"
)

// FlagInappropriate — отметка для объявлений, снятых за нарушение правил.
const FlagInappropriate = "inappropriate"

// Item — объявление о вещи.
// Статус хранится по двум осям: модерация и доступность.
type Item struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"not null" json:"description"`
	Category    string `gorm:"not null;index" json:"category"`
	Type        string `json:"type,omitempty"`
	Size        string `gorm:"not null" json:"size"`
	Condition   string `gorm:"not null" json:"condition"`

	Tags   datatypes.JSONSlice[string] `json:"tags"`
	Images datatypes.JSONSlice[string] `json:"images"`

	Points int64 `gorm:"not null" json:"points"`

	UploaderID    string `gorm:"type:uuid;not null;index" json:"uploader_id"`
	UploaderName  string `json:"uploader_name"`
	// UploaderEmail нужен только для писем владельцу; наружу не отдаётся.
	UploaderEmail string `json:"-"`

	Moderation   ModerationStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"moderation"`
	Availability Availability     `gorm:"type:varchar(16);not null;default:'available';index" json:"availability"`

	FlaggedAs       string     `json:"flagged_as,omitempty"`
	ModeratorID     *string    `gorm:"type:uuid" json:"moderator_id,omitempty"`
	ModeratedAt     *time.Time `json:"moderated_at,omitempty"`
	ModerationNotes string     `json:"moderation_notes,omitempty"`

	RedeemedBy *string    `gorm:"type:uuid;index" json:"redeemed_by,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`

	// Version — оптимистическая блокировка для правок модерации.
	Version int64 `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index" json:"updated_at"`
}

// Acquirable — вещь одобрена и ещё не обменяна и не выкуплена.
func (it *Item) Acquirable() bool {
	return it.Moderation == ModerationApproved && it.Availability == AvailabilityAvailable
}
