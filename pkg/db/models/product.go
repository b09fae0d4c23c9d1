package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/soundstall-backend/pkg/types"
)

// Product is a merch listing owned by one artist.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	ArtistID    uuid.UUID        `gorm:"column:artist_id;type:uuid;not null;index"`
	Name        string           `gorm:"column:name;not null"`
	Description string           `gorm:"column:description;not null"`
	Price       decimal.Decimal  `gorm:"column:price;type:numeric(12,2);not null"`
	Image       string           `gorm:"column:image;not null"`
	Colors      types.StringList `gorm:"column:colors;type:jsonb"`
	Stock       int              `gorm:"column:stock;not null;default:0"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
