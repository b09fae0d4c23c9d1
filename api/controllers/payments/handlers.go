package payments

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/soundstall-backend/api/controllers/callercontext"
	"github.com/angelmondragon/soundstall-backend/api/responses"
	"github.com/angelmondragon/soundstall-backend/api/validators"
	paymentsvc "github.com/angelmondragon/soundstall-backend/internal/payments"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
)

type createIntentRequest struct {
	Amount   *decimal.Decimal  `json:"amount" validate:"required,gt=0"`
	Currency string            `json:"currency,omitempty" validate:"omitempty,currency"`
	Gateway  string            `json:"gateway" validate:"required"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type confirmRequest struct {
	Gateway         string `json:"gateway" validate:"required"`
	PaymentIntentID string `json:"payment_intent_id,omitempty"`
	OrderID         string `json:"order_id,omitempty"`
	PaymentID       string `json:"payment_id,omitempty"`
	Signature       string `json:"signature,omitempty"`
}

// Gateways lists the configured payment gateways.
func Gateways(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}
		responses.WriteSuccess(w, svc.Gateways())
	}
}

// CreateIntent starts a payment with the requested gateway.
func CreateIntent(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateIntent(r.Context(), paymentsvc.IntentInput{
			UserID:   userID,
			Gateway:  payload.Gateway,
			Amount:   *payload.Amount,
			Currency: validators.SanitizeString(payload.Currency, 3),
			Metadata: payload.Metadata,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// Confirm settles a payment with the provider and records the outcome.
func Confirm(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload confirmRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Confirm(r.Context(), paymentsvc.ConfirmInput{
			UserID:          userID,
			Gateway:         payload.Gateway,
			PaymentIntentID: validators.SanitizeString(payload.PaymentIntentID, 0),
			OrderID:         validators.SanitizeString(payload.OrderID, 0),
			PaymentID:       validators.SanitizeString(payload.PaymentID, 0),
			Signature:       validators.SanitizeString(payload.Signature, 0),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// History returns the caller's most recent payment attempts.
func History(svc paymentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		userID, err := callercontext.ResolveUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		attempts, err := svc.History(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, attempts)
	}
}
