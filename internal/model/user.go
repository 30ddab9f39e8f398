package model

import "time"

// Role — роль пользователя.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User — профиль пользователя: баланс очков, роль, отображаемое имя.
type User struct {
	ID           string `gorm:"primaryKey;type:uuid" json:"id"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	Name         string `gorm:"not null" json:"name"`
	PasswordHash string `gorm:"not null" json:"-"`

	// Points никогда не уходит в минус: все списания идут условным UPDATE ... WHERE points >= ?
	Points int64   `gorm:"not null;default:0" json:"points"`
	Role   Role    `gorm:"type:varchar(16);not null;default:'user'" json:"role"`
	Avatar *string `json:"avatar,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsAdmin сообщает, есть ли у пользователя права модератора.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
