package gateways

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/soundstall-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	pkgrazorpay "github.com/angelmondragon/soundstall-backend/pkg/razorpay"
)

// razorpayOrderAPI matches the SDK's order resource. The SDK takes no
// context, so calls are bounded by the adapter.
type razorpayOrderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayGateway creates orders and verifies checkout signatures locally.
type RazorpayGateway struct {
	orders  razorpayOrderAPI
	secret  string
	timeout time.Duration
	now     func() time.Time
}

// NewRazorpayGateway builds the adapter. A nil client yields an adapter whose
// operations fail with ErrGatewayUnconfigured.
func NewRazorpayGateway(client *pkgrazorpay.Client, timeout time.Duration) *RazorpayGateway {
	g := &RazorpayGateway{
		secret:  client.KeySecret(),
		timeout: providerTimeout(timeout),
		now:     time.Now,
	}
	if api := client.API(); api != nil && api.Order != nil {
		g.orders = api.Order
	}
	return g
}

func (g *RazorpayGateway) Name() enums.PaymentGateway { return enums.PaymentGatewayRazorpay }

func (g *RazorpayGateway) Configured() bool {
	return g != nil && g.orders != nil && g.secret != ""
}

func (g *RazorpayGateway) DefaultCurrency() enums.Currency { return enums.CurrencyINR }

func (g *RazorpayGateway) Descriptor() Descriptor {
	return Descriptor{
		ID:                  enums.PaymentGatewayRazorpay,
		Name:                "Razorpay",
		SupportedCurrencies: []enums.Currency{enums.CurrencyINR},
		IsAvailable:         g.Configured(),
	}
}

func (g *RazorpayGateway) Initiate(ctx context.Context, req InitiateRequest) (*PendingResult, error) {
	if !g.Configured() {
		return nil, Unconfigured(g.Name())
	}
	currency, err := validateInitiate(req, g.DefaultCurrency(), g.Descriptor().SupportedCurrencies)
	if err != nil {
		return nil, err
	}

	notes := map[string]interface{}{}
	for key, value := range req.Metadata {
		notes[key] = value
	}
	if req.UserID != uuid.Nil {
		notes["user_id"] = req.UserID.String()
	}
	data := map[string]interface{}{
		"amount":   toMinorUnits(req.Amount),
		"currency": currency.String(),
		"receipt":  fmt.Sprintf("rcpt_%d", g.now().Unix()),
		"notes":    notes,
	}

	order, err := g.createOrder(ctx, data)
	if err != nil {
		return nil, RequestFailed(g.Name(), "initiate", err, "")
	}
	id, _ := order["id"].(string)
	if id == "" {
		return nil, unexpectedResponse(g.Name(), "initiate", "order missing id")
	}

	return &PendingResult{
		ReferenceID: id,
		Currency:    currency,
		Handoff:     Handoff{Order: order},
	}, nil
}

func (g *RazorpayGateway) createOrder(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error) {
	type result struct {
		order map[string]interface{}
		err   error
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	done := make(chan result, 1)
	go func() {
		order, err := g.orders.Create(data, nil)
		done <- result{order: order, err: err}
	}()

	select {
	case <-callCtx.Done():
		return nil, callCtx.Err()
	case res := <-done:
		return res.order, res.err
	}
}

// Finalize verifies the checkout signature. It never calls the provider.
func (g *RazorpayGateway) Finalize(_ context.Context, req FinalizeRequest) (*SettledResult, error) {
	if !g.Configured() {
		return nil, Unconfigured(g.Name())
	}
	missing := map[string]string{}
	if strings.TrimSpace(req.ReferenceID) == "" {
		missing["order_id"] = "is required"
	}
	if strings.TrimSpace(req.PaymentID) == "" {
		missing["payment_id"] = "is required"
	}
	if req.Signature == "" {
		missing["signature"] = "is required"
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "razorpay confirmation requires order_id, payment_id and signature").WithDetails(missing)
	}

	expected := RazorpaySignature(g.secret, req.ReferenceID, req.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(req.Signature)) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, ErrSignatureMismatch, "payment signature verification failed")
	}

	return &SettledResult{Status: enums.PaymentStatusSucceeded}, nil
}

// RazorpaySignature is the hex HMAC-SHA256 of "orderID|paymentID" keyed with
// the account secret.
func RazorpaySignature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
