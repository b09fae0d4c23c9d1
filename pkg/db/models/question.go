package models

import (
	"time"

	"github.com/google/uuid"
)

// Question is a buyer question on a product, optionally answered by the artist.
type Question struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID  `gorm:"column:product_id;type:uuid;not null;index"`
	AskedBy    uuid.UUID  `gorm:"column:asked_by;type:uuid;not null"`
	Question   string     `gorm:"column:question;not null"`
	Answer     *string    `gorm:"column:answer"`
	AnsweredBy *uuid.UUID `gorm:"column:answered_by;type:uuid"`
	AskedAt    time.Time  `gorm:"column:asked_at;autoCreateTime"`
	AnsweredAt *time.Time `gorm:"column:answered_at"`
}
