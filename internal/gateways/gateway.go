package gateways

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/soundstall-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

// DefaultProviderTimeout bounds every outbound provider call when no timeout
// is configured.
const DefaultProviderTimeout = 10 * time.Second

var (
	ErrUnsupportedGateway   = errors.New("unsupported gateway")
	ErrGatewayUnconfigured  = errors.New("gateway unconfigured")
	ErrGatewayRequestFailed = errors.New("gateway request failed")
	ErrSignatureMismatch    = errors.New("signature mismatch")
)

// Gateway is the capability set every payment provider adapter implements.
type Gateway interface {
	Name() enums.PaymentGateway
	Descriptor() Descriptor
	Configured() bool
	DefaultCurrency() enums.Currency
	Initiate(ctx context.Context, req InitiateRequest) (*PendingResult, error)
	Finalize(ctx context.Context, req FinalizeRequest) (*SettledResult, error)
}

// InitiateRequest is the provider-agnostic payment creation input.
type InitiateRequest struct {
	UserID   uuid.UUID
	Amount   decimal.Decimal
	Currency string
	Metadata map[string]string
}

// Handoff carries what the client needs to complete payment with the
// provider. Exactly one field is populated per provider.
type Handoff struct {
	ClientSecret string         `json:"client_secret,omitempty"`
	ApprovalURL  string         `json:"approval_url,omitempty"`
	Order        map[string]any `json:"order,omitempty"`
}

// PendingResult is returned once the provider has accepted a payment intent.
type PendingResult struct {
	ReferenceID string
	Currency    enums.Currency
	Handoff     Handoff
}

// FinalizeRequest identifies the payment to settle. ReferenceID is the intent
// or order id; PaymentID and Signature are only used by signature-verified
// providers.
type FinalizeRequest struct {
	ReferenceID string
	PaymentID   string
	Signature   string
}

// SettledResult is the normalized provider outcome. Amount is zero and
// Currency empty when the provider does not report them.
type SettledResult struct {
	Status   enums.PaymentStatus
	Amount   decimal.Decimal
	Currency enums.Currency
}

// Descriptor describes a gateway for discovery endpoints.
type Descriptor struct {
	ID                  enums.PaymentGateway `json:"id"`
	Name                string               `json:"name"`
	SupportedCurrencies []enums.Currency     `json:"supported_currencies"`
	IsAvailable         bool                 `json:"is_available"`
}

// toMinorUnits converts a major-unit amount to the provider's integer minor
// units (cents, paise), rounding half away from zero.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func fromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// validateInitiate checks the amount and resolves the currency, which must be
// one the adapter advertises. Minor-unit conversion assumes two decimals, so
// zero-decimal currencies are never accepted.
func validateInitiate(req InitiateRequest, fallback enums.Currency, supported []enums.Currency) (enums.Currency, error) {
	if !req.Amount.IsPositive() || toMinorUnits(req.Amount) <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero").
			WithDetails(map[string]string{"amount": "must be greater than zero"})
	}
	cur, err := resolveCurrency(req.Currency, fallback)
	if err != nil {
		return "", err
	}
	if !lo.Contains(supported, cur) {
		codes := lo.Map(supported, func(c enums.Currency, _ int) string { return c.String() })
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "currency %s is not supported by this gateway", cur).
			WithDetails(map[string]string{"currency": "must be one of " + strings.Join(codes, ", ")})
	}
	return cur, nil
}

func resolveCurrency(raw string, fallback enums.Currency) (enums.Currency, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	cur, err := enums.ParseCurrency(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency").
			WithDetails(map[string]string{"currency": "must be an ISO 4217 code"})
	}
	return cur, nil
}

func requireReference(req FinalizeRequest, field string) error {
	if strings.TrimSpace(req.ReferenceID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, field+" is required").
			WithDetails(map[string]string{field: "is required"})
	}
	return nil
}

// Unconfigured reports that a provider has no credentials.
func Unconfigured(name enums.PaymentGateway) error {
	return pkgerrors.Wrap(pkgerrors.CodeConfiguration, ErrGatewayUnconfigured, fmt.Sprintf("%s credentials are not configured", name))
}

// RequestFailed wraps a provider error, keeping the provider's message for
// diagnostics. Deadline errors are flagged as timeouts.
func RequestFailed(name enums.PaymentGateway, operation string, cause error, providerMessage string) error {
	if providerMessage == "" && cause != nil {
		providerMessage = cause.Error()
	}
	details := map[string]any{
		"gateway":          name,
		"operation":        operation,
		"provider_message": providerMessage,
	}
	if errors.Is(cause, context.DeadlineExceeded) {
		details["timeout"] = true
	}
	return pkgerrors.Wrap(
		pkgerrors.CodeUpstream,
		fmt.Errorf("%w: %w", ErrGatewayRequestFailed, cause),
		fmt.Sprintf("%s %s failed", name, operation),
	).WithDetails(details)
}

func unexpectedResponse(name enums.PaymentGateway, operation, problem string) error {
	return RequestFailed(name, operation, errors.New(problem), problem)
}

func providerTimeout(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return DefaultProviderTimeout
	}
	return timeout
}
