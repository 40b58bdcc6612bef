package model

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index"`
	Message     string    `gorm:"not null"`
	Link        string
	Read        bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}
