package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/soundstall-backend/pkg/types"
)

// CartItem is one line in a user's cart. Product fields are a snapshot taken
// when the line was first added.
type CartItem struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID        `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_cart_items_user_product,priority:1"`
	ProductID   uuid.UUID        `gorm:"column:product_id;type:uuid;not null;uniqueIndex:idx_cart_items_user_product,priority:2"`
	ArtistID    uuid.UUID        `gorm:"column:artist_id;type:uuid;not null"`
	Name        string           `gorm:"column:name;not null"`
	Description string           `gorm:"column:description;not null"`
	UnitPrice   decimal.Decimal  `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Image       string           `gorm:"column:image;not null"`
	Colors      types.StringList `gorm:"column:colors;type:jsonb"`
	Quantity    int              `gorm:"column:quantity;not null"`
	TotalPrice  decimal.Decimal  `gorm:"column:total_price;type:numeric(12,2);not null"`
	AddedAt     time.Time        `gorm:"column:added_at;not null"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
