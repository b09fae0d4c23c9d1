package gateways

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/soundstall-backend/pkg/enums"
	pkgstripe "github.com/angelmondragon/soundstall-backend/pkg/stripe"
)

// stripeIntentAPI is the slice of the Stripe PaymentIntents service the
// adapter needs.
type stripeIntentAPI interface {
	Create(ctx context.Context, params *stripe.PaymentIntentCreateParams) (*stripe.PaymentIntent, error)
	Retrieve(ctx context.Context, id string, params *stripe.PaymentIntentRetrieveParams) (*stripe.PaymentIntent, error)
}

// StripeGateway creates PaymentIntents and reads their status back.
type StripeGateway struct {
	intents stripeIntentAPI
	timeout time.Duration
}

// NewStripeGateway builds the adapter. A nil client yields an adapter whose
// operations fail with ErrGatewayUnconfigured.
func NewStripeGateway(client *pkgstripe.Client, timeout time.Duration) *StripeGateway {
	g := &StripeGateway{timeout: providerTimeout(timeout)}
	if api := client.API(); api != nil {
		g.intents = api.V1PaymentIntents
	}
	return g
}

func (g *StripeGateway) Name() enums.PaymentGateway { return enums.PaymentGatewayStripe }

func (g *StripeGateway) Configured() bool { return g != nil && g.intents != nil }

func (g *StripeGateway) DefaultCurrency() enums.Currency { return enums.CurrencyUSD }

func (g *StripeGateway) Descriptor() Descriptor {
	return Descriptor{
		ID:                  enums.PaymentGatewayStripe,
		Name:                "Stripe",
		SupportedCurrencies: []enums.Currency{enums.CurrencyUSD, enums.CurrencyEUR},
		IsAvailable:         g.Configured(),
	}
}

func (g *StripeGateway) Initiate(ctx context.Context, req InitiateRequest) (*PendingResult, error) {
	if !g.Configured() {
		return nil, Unconfigured(g.Name())
	}
	currency, err := validateInitiate(req, g.DefaultCurrency(), g.Descriptor().SupportedCurrencies)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(toMinorUnits(req.Amount)),
		Currency: stripe.String(strings.ToLower(currency.String())),
	}
	for key, value := range req.Metadata {
		params.AddMetadata(key, value)
	}
	if req.UserID != uuid.Nil {
		params.AddMetadata("user_id", req.UserID.String())
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	intent, err := g.intents.Create(callCtx, params)
	if err != nil {
		return nil, RequestFailed(g.Name(), "initiate", err, StripeMessage(err))
	}
	if intent == nil || intent.ID == "" {
		return nil, unexpectedResponse(g.Name(), "initiate", "payment intent missing id")
	}

	return &PendingResult{
		ReferenceID: intent.ID,
		Currency:    currency,
		Handoff:     Handoff{ClientSecret: intent.ClientSecret},
	}, nil
}

func (g *StripeGateway) Finalize(ctx context.Context, req FinalizeRequest) (*SettledResult, error) {
	if !g.Configured() {
		return nil, Unconfigured(g.Name())
	}
	if err := requireReference(req, "payment_intent_id"); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	intent, err := g.intents.Retrieve(callCtx, req.ReferenceID, &stripe.PaymentIntentRetrieveParams{})
	if err != nil {
		return nil, RequestFailed(g.Name(), "finalize", err, StripeMessage(err))
	}
	if intent == nil {
		return nil, unexpectedResponse(g.Name(), "finalize", "empty payment intent")
	}

	result := &SettledResult{
		Status: StripeIntentStatus(intent),
		Amount: fromMinorUnits(intent.Amount),
	}
	if cur, err := resolveCurrency(string(intent.Currency), ""); err == nil {
		result.Currency = cur
	}
	return result, nil
}

// StripeIntentStatus maps a PaymentIntent onto the attempt lifecycle. An
// intent that went back to requires_payment_method after a declined attempt
// is reported as failed.
func StripeIntentStatus(intent *stripe.PaymentIntent) enums.PaymentStatus {
	if intent == nil {
		return enums.PaymentStatusFailed
	}
	switch intent.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return enums.PaymentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return enums.PaymentStatusCancelled
	case stripe.PaymentIntentStatusRequiresPaymentMethod:
		if intent.LastPaymentError != nil {
			return enums.PaymentStatusFailed
		}
		return enums.PaymentStatusPending
	case stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresAction,
		stripe.PaymentIntentStatusRequiresCapture,
		stripe.PaymentIntentStatusRequiresConfirmation:
		return enums.PaymentStatusPending
	default:
		return enums.PaymentStatusFailed
	}
}

// StripeMessage extracts the human readable message from a Stripe API error.
func StripeMessage(err error) string {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}
	return ""
}
