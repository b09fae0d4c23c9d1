package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/soundstall-backend/internal/gateways"
	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	"github.com/angelmondragon/soundstall-backend/pkg/enums"
)

// IntentInput is a request to start a payment with a gateway.
type IntentInput struct {
	UserID   uuid.UUID
	Gateway  string
	Amount   decimal.Decimal
	Currency string
	Metadata map[string]string
}

// IntentResult is returned to the client after the provider accepted the intent.
type IntentResult struct {
	AttemptID       uuid.UUID            `json:"attempt_id"`
	ReferenceID     string               `json:"reference_id"`
	Gateway         enums.PaymentGateway `json:"gateway"`
	Currency        enums.Currency       `json:"currency"`
	ProviderHandoff gateways.Handoff     `json:"provider_handoff"`
}

// ConfirmInput identifies the payment to settle. PaymentIntentID takes
// precedence over OrderID; PaymentID and Signature are Razorpay only.
type ConfirmInput struct {
	UserID          uuid.UUID
	Gateway         string
	PaymentIntentID string
	OrderID         string
	PaymentID       string
	Signature       string
}

// Reference returns the provider reference the confirmation targets.
func (in ConfirmInput) Reference() string {
	if in.PaymentIntentID != "" {
		return in.PaymentIntentID
	}
	return in.OrderID
}

// ConfirmResult is the settled outcome after the record was updated.
type ConfirmResult struct {
	ReferenceID string               `json:"reference_id"`
	Status      enums.PaymentStatus  `json:"status"`
	Amount      decimal.Decimal      `json:"amount"`
	Currency    enums.Currency       `json:"currency"`
	Gateway     enums.PaymentGateway `json:"gateway"`
}

// AttemptDTO is the public shape of a payment attempt.
type AttemptDTO struct {
	ID          uuid.UUID            `json:"id"`
	Amount      decimal.Decimal      `json:"amount"`
	Currency    enums.Currency       `json:"currency"`
	Gateway     enums.PaymentGateway `json:"gateway"`
	Status      enums.PaymentStatus  `json:"status"`
	ReferenceID string               `json:"reference_id"`
	Metadata    map[string]string    `json:"metadata,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// AttemptsFromModels maps persisted attempts to DTOs.
func AttemptsFromModels(attempts []models.PaymentAttempt) []AttemptDTO {
	return lo.Map(attempts, func(a models.PaymentAttempt, _ int) AttemptDTO {
		return AttemptDTO{
			ID:          a.ID,
			Amount:      a.Amount,
			Currency:    a.Currency,
			Gateway:     a.Gateway,
			Status:      a.Status,
			ReferenceID: a.ReferenceID,
			Metadata:    a.Metadata,
			CreatedAt:   a.CreatedAt,
			UpdatedAt:   a.UpdatedAt,
		}
	})
}
