package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/soundstall-backend/pkg/enums"
	"github.com/angelmondragon/soundstall-backend/pkg/types"
)

// PaymentAttempt records one initiated payment with a provider.
type PaymentAttempt struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index:idx_payment_attempts_user_created,priority:1"`
	Amount      decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency    enums.Currency       `gorm:"column:currency;type:varchar(3);not null;default:'USD'"`
	Gateway     enums.PaymentGateway `gorm:"column:gateway;type:varchar(16);not null;uniqueIndex:idx_payment_attempts_gateway_reference,priority:1"`
	Status      enums.PaymentStatus  `gorm:"column:status;type:varchar(16);not null;default:'created'"`
	ReferenceID string               `gorm:"column:reference_id;not null;uniqueIndex:idx_payment_attempts_gateway_reference,priority:2"`
	Metadata    types.Metadata       `gorm:"column:metadata;type:jsonb"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime;index:idx_payment_attempts_user_created,priority:2,sort:desc"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
