package model

import "time"

// Image — изображение вещи, бинарное содержимое хранится в БД.
type Image struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	OwnerID     string `gorm:"type:uuid;not null;index"`
	ContentType string `gorm:"not null"`
	Data        []byte `gorm:"not null"`
	Size        int64  `gorm:"not null"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
