package subscriptions

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/soundstall-backend/internal/gateways"
	"github.com/angelmondragon/soundstall-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

const metadataUserID = "user_id"

// Service defines the subscription lifecycle surface.
type Service interface {
	Create(ctx context.Context, input CreateSubscriptionInput) (*Result, error)
	Cancel(ctx context.Context, userID uuid.UUID, subscriptionID string) (*Result, error)
}

// ServiceParams groups dependencies for the subscription service. Nil
// clients leave the service unconfigured.
type ServiceParams struct {
	Customers     StripeCustomerClient
	Subscriptions StripeSubscriptionClient
	Timeout       time.Duration
}

// CreateSubscriptionInput captures the data required to start a subscription.
type CreateSubscriptionInput struct {
	UserID  uuid.UUID
	Email   string
	Name    string
	PriceID string
}

// Result is the public view of a Stripe subscription.
type Result struct {
	SubscriptionID string                   `json:"subscription_id"`
	CustomerID     string                   `json:"customer_id"`
	Status         enums.SubscriptionStatus `json:"status"`
	ClientSecret   string                   `json:"client_secret,omitempty"`
}

type service struct {
	customers     StripeCustomerClient
	subscriptions StripeSubscriptionClient
	timeout       time.Duration
}

// NewService builds a subscription service.
func NewService(params ServiceParams) Service {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = gateways.DefaultProviderTimeout
	}
	return &service{
		customers:     params.Customers,
		subscriptions: params.Subscriptions,
		timeout:       timeout,
	}
}

func (s *service) configured() bool {
	return s.customers != nil && s.subscriptions != nil
}

// Create registers a customer for the user and starts an incomplete
// subscription that the client completes with the returned secret.
func (s *service) Create(ctx context.Context, input CreateSubscriptionInput) (*Result, error) {
	if !s.configured() {
		return nil, gateways.Unconfigured(enums.PaymentGatewayStripe)
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user required")
	}
	priceID := strings.TrimSpace(input.PriceID)
	if priceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_id is required").
			WithDetails(map[string]string{"price_id": "is required"})
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	customerParams := &stripe.CustomerCreateParams{}
	if email := strings.TrimSpace(input.Email); email != "" {
		customerParams.Email = stripe.String(email)
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		customerParams.Name = stripe.String(name)
	}
	customerParams.AddMetadata(metadataUserID, input.UserID.String())

	customer, err := s.customers.Create(callCtx, customerParams)
	if err != nil {
		return nil, gateways.RequestFailed(enums.PaymentGatewayStripe, "create_customer", err, gateways.StripeMessage(err))
	}

	subParams := &stripe.SubscriptionCreateParams{
		Customer:        stripe.String(customer.ID),
		Items:           []*stripe.SubscriptionCreateItemParams{{Price: stripe.String(priceID)}},
		PaymentBehavior: stripe.String("default_incomplete"),
	}
	subParams.AddMetadata(metadataUserID, input.UserID.String())
	subParams.AddExpand("latest_invoice.confirmation_secret")

	sub, err := s.subscriptions.Create(callCtx, subParams)
	if err != nil {
		return nil, gateways.RequestFailed(enums.PaymentGatewayStripe, "create_subscription", err, gateways.StripeMessage(err))
	}
	return toResult(sub, customer.ID), nil
}

// Cancel stops a subscription the user started. Subscriptions belonging to
// other users are reported as not found; ended ones are returned unchanged.
func (s *service) Cancel(ctx context.Context, userID uuid.UUID, subscriptionID string) (*Result, error) {
	if !s.configured() {
		return nil, gateways.Unconfigured(enums.PaymentGatewayStripe)
	}
	subscriptionID = strings.TrimSpace(subscriptionID)
	if subscriptionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subscription id is required")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	existing, err := s.subscriptions.Retrieve(callCtx, subscriptionID, &stripe.SubscriptionRetrieveParams{})
	if err != nil {
		var se *stripe.Error
		if errors.As(err, &se) && se.HTTPStatusCode == http.StatusNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "subscription not found")
		}
		return nil, gateways.RequestFailed(enums.PaymentGatewayStripe, "retrieve_subscription", err, gateways.StripeMessage(err))
	}
	if existing == nil || existing.Metadata[metadataUserID] != userID.String() {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "subscription not found")
	}
	if enums.SubscriptionStatus(existing.Status).IsEnded() {
		return toResult(existing, customerOf(existing)), nil
	}

	sub, err := s.subscriptions.Cancel(callCtx, subscriptionID, &stripe.SubscriptionCancelParams{})
	if err != nil {
		return nil, gateways.RequestFailed(enums.PaymentGatewayStripe, "cancel_subscription", err, gateways.StripeMessage(err))
	}
	return toResult(sub, customerOf(existing)), nil
}

func customerOf(sub *stripe.Subscription) string {
	if sub == nil || sub.Customer == nil {
		return ""
	}
	return sub.Customer.ID
}

func toResult(sub *stripe.Subscription, customerID string) *Result {
	if sub == nil {
		return &Result{CustomerID: customerID}
	}
	out := &Result{
		SubscriptionID: sub.ID,
		CustomerID:     customerID,
		Status:         enums.SubscriptionStatus(sub.Status),
	}
	if inv := sub.LatestInvoice; inv != nil && inv.ConfirmationSecret != nil {
		out.ClientSecret = inv.ConfirmationSecret.ClientSecret
	}
	return out
}
