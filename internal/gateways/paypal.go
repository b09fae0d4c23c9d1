package gateways

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/soundstall-backend/pkg/enums"
	pkgpaypal "github.com/angelmondragon/soundstall-backend/pkg/paypal"
)

// paypalOrderAPI is the slice of the Orders v2 API the adapter needs.
type paypalOrderAPI interface {
	CreateOrder(ctx context.Context, intent string, purchaseUnits []paypal.PurchaseUnitRequest, paymentSource *paypal.PaymentSource, appContext *paypal.ApplicationContext) (*paypal.Order, error)
	CaptureOrder(ctx context.Context, orderID string, captureOrderRequest paypal.CaptureOrderRequest) (*paypal.CaptureOrderResponse, error)
}

// PayPalGateway creates CAPTURE orders and captures them after buyer approval.
type PayPalGateway struct {
	orders    paypalOrderAPI
	returnURL string
	cancelURL string
	timeout   time.Duration
}

// NewPayPalGateway builds the adapter. A nil client yields an adapter whose
// operations fail with ErrGatewayUnconfigured.
func NewPayPalGateway(client *pkgpaypal.Client, returnURL, cancelURL string, timeout time.Duration) *PayPalGateway {
	g := &PayPalGateway{
		returnURL: returnURL,
		cancelURL: cancelURL,
		timeout:   providerTimeout(timeout),
	}
	if api := client.API(); api != nil {
		g.orders = api
	}
	return g
}

func (g *PayPalGateway) Name() enums.PaymentGateway { return enums.PaymentGatewayPayPal }

func (g *PayPalGateway) Configured() bool { return g != nil && g.orders != nil }

func (g *PayPalGateway) DefaultCurrency() enums.Currency { return enums.CurrencyUSD }

func (g *PayPalGateway) Descriptor() Descriptor {
	return Descriptor{
		ID:                  enums.PaymentGatewayPayPal,
		Name:                "PayPal",
		SupportedCurrencies: []enums.Currency{enums.CurrencyUSD, enums.CurrencyEUR},
		IsAvailable:         g.Configured(),
	}
}

func (g *PayPalGateway) Initiate(ctx context.Context, req InitiateRequest) (*PendingResult, error) {
	if !g.Configured() {
		return nil, Unconfigured(g.Name())
	}
	currency, err := validateInitiate(req, g.DefaultCurrency(), g.Descriptor().SupportedCurrencies)
	if err != nil {
		return nil, err
	}

	unit := paypal.PurchaseUnitRequest{
		Amount: &paypal.PurchaseUnitAmount{
			Currency: currency.String(),
			Value:    fromMinorUnits(toMinorUnits(req.Amount)).StringFixed(2),
		},
	}
	if req.UserID != uuid.Nil {
		unit.CustomID = req.UserID.String()
	}
	appCtx := &paypal.ApplicationContext{
		ReturnURL: g.returnURL,
		CancelURL: g.cancelURL,
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	order, err := g.orders.CreateOrder(callCtx, paypal.OrderIntentCapture, []paypal.PurchaseUnitRequest{unit}, nil, appCtx)
	if err != nil {
		return nil, RequestFailed(g.Name(), "initiate", err, paypalMessage(err))
	}
	if order == nil || order.ID == "" {
		return nil, unexpectedResponse(g.Name(), "initiate", "order missing id")
	}

	approval := approvalLink(order.Links)
	if approval == "" {
		return nil, unexpectedResponse(g.Name(), "initiate", "order missing approve link")
	}

	return &PendingResult{
		ReferenceID: order.ID,
		Currency:    currency,
		Handoff:     Handoff{ApprovalURL: approval},
	}, nil
}

func (g *PayPalGateway) Finalize(ctx context.Context, req FinalizeRequest) (*SettledResult, error) {
	if !g.Configured() {
		return nil, Unconfigured(g.Name())
	}
	if err := requireReference(req, "order_id"); err != nil {
		return nil, err
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	capture, err := g.orders.CaptureOrder(callCtx, req.ReferenceID, paypal.CaptureOrderRequest{})
	if err != nil {
		return nil, RequestFailed(g.Name(), "finalize", err, paypalMessage(err))
	}
	if capture == nil {
		return nil, unexpectedResponse(g.Name(), "finalize", "empty capture response")
	}

	result := &SettledResult{Status: paypalStatus(capture.Status)}
	if amount := firstCapture(capture); amount != nil {
		if amount.Status != "" {
			result.Status = paypalStatus(amount.Status)
		}
		if amount.Amount != nil {
			if value, err := decimal.NewFromString(amount.Amount.Value); err == nil {
				result.Amount = value
			}
			if cur, err := resolveCurrency(amount.Amount.Currency, ""); err == nil {
				result.Currency = cur
			}
		}
	}
	return result, nil
}

func approvalLink(links []paypal.Link) string {
	for _, rel := range []string{"approve", "payer-action"} {
		for _, link := range links {
			if strings.EqualFold(link.Rel, rel) && link.Href != "" {
				return link.Href
			}
		}
	}
	return ""
}

func firstCapture(resp *paypal.CaptureOrderResponse) *paypal.CaptureAmount {
	for _, unit := range resp.PurchaseUnits {
		if unit.Payments != nil && len(unit.Payments.Captures) > 0 {
			return &unit.Payments.Captures[0]
		}
	}
	return nil
}

// paypalStatus maps order and capture statuses onto the attempt lifecycle.
func paypalStatus(raw string) enums.PaymentStatus {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "COMPLETED":
		return enums.PaymentStatusSucceeded
	case "VOIDED":
		return enums.PaymentStatusCancelled
	case "CREATED", "SAVED", "APPROVED", "PENDING", "PAYER_ACTION_REQUIRED":
		return enums.PaymentStatusPending
	default:
		return enums.PaymentStatusFailed
	}
}

func paypalMessage(err error) string {
	var pe *paypal.ErrorResponse
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return ""
}
