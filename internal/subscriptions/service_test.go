package subscriptions

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/soundstall-backend/internal/gateways"
	"github.com/angelmondragon/soundstall-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

type stubCustomerClient struct {
	params *stripe.CustomerCreateParams
	resp   *stripe.Customer
	err    error
}

func (s *stubCustomerClient) Create(_ context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error) {
	s.params = params
	return s.resp, s.err
}

type stubSubscriptionClient struct {
	createParams *stripe.SubscriptionCreateParams
	createResp   *stripe.Subscription
	createErr    error
	existing     *stripe.Subscription
	retrieveErr  error
	cancelled    []string
	cancelResp   *stripe.Subscription
}

func (s *stubSubscriptionClient) Create(_ context.Context, params *stripe.SubscriptionCreateParams) (*stripe.Subscription, error) {
	s.createParams = params
	return s.createResp, s.createErr
}

func (s *stubSubscriptionClient) Retrieve(_ context.Context, _ string, _ *stripe.SubscriptionRetrieveParams) (*stripe.Subscription, error) {
	return s.existing, s.retrieveErr
}

func (s *stubSubscriptionClient) Cancel(_ context.Context, id string, _ *stripe.SubscriptionCancelParams) (*stripe.Subscription, error) {
	s.cancelled = append(s.cancelled, id)
	return s.cancelResp, nil
}

func TestServiceCreatesIncompleteSubscription(t *testing.T) {
	userID := uuid.New()
	customers := &stubCustomerClient{resp: &stripe.Customer{ID: "cus_1"}}
	subs := &stubSubscriptionClient{createResp: &stripe.Subscription{
		ID:     "sub_1",
		Status: stripe.SubscriptionStatusIncomplete,
		LatestInvoice: &stripe.Invoice{
			ConfirmationSecret: &stripe.InvoiceConfirmationSecret{ClientSecret: "pi_secret"},
		},
	}}
	svc := NewService(ServiceParams{Customers: customers, Subscriptions: subs})

	res, err := svc.Create(context.Background(), CreateSubscriptionInput{
		UserID:  userID,
		Email:   "fan@example.com",
		Name:    "Fan",
		PriceID: " price_123 ",
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if res.SubscriptionID != "sub_1" || res.CustomerID != "cus_1" || res.Status != "incomplete" || res.ClientSecret != "pi_secret" {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := *customers.params.Email; got != "fan@example.com" {
		t.Fatalf("unexpected customer email %q", got)
	}
	if got := *subs.createParams.Customer; got != "cus_1" {
		t.Fatalf("expected customer cus_1, got %q", got)
	}
	if got := *subs.createParams.PaymentBehavior; got != "default_incomplete" {
		t.Fatalf("unexpected payment behavior %q", got)
	}
	if len(subs.createParams.Items) != 1 || *subs.createParams.Items[0].Price != "price_123" {
		t.Fatalf("unexpected items %+v", subs.createParams.Items)
	}
	if subs.createParams.Metadata[metadataUserID] != userID.String() {
		t.Fatalf("expected user id metadata")
	}
}

func TestServiceCreateRequiresPrice(t *testing.T) {
	svc := NewService(ServiceParams{Customers: &stubCustomerClient{}, Subscriptions: &stubSubscriptionClient{}})

	_, err := svc.Create(context.Background(), CreateSubscriptionInput{UserID: uuid.New()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceUnconfigured(t *testing.T) {
	svc := NewService(ServiceParams{})

	_, err := svc.Create(context.Background(), CreateSubscriptionInput{UserID: uuid.New(), PriceID: "price"})
	if !errors.Is(err, gateways.ErrGatewayUnconfigured) {
		t.Fatalf("expected unconfigured error, got %v", err)
	}
	if _, err := svc.Cancel(context.Background(), uuid.New(), "sub_1"); !errors.Is(err, gateways.ErrGatewayUnconfigured) {
		t.Fatalf("expected unconfigured error, got %v", err)
	}
}

func TestServiceCreateWrapsProviderError(t *testing.T) {
	customers := &stubCustomerClient{err: &stripe.Error{Msg: "Invalid email address"}}
	svc := NewService(ServiceParams{Customers: customers, Subscriptions: &stubSubscriptionClient{}})

	_, err := svc.Create(context.Background(), CreateSubscriptionInput{UserID: uuid.New(), PriceID: "price"})
	if !errors.Is(err, gateways.ErrGatewayRequestFailed) {
		t.Fatalf("expected request failed, got %v", err)
	}
}

func TestServiceCancelOwnSubscription(t *testing.T) {
	userID := uuid.New()
	subs := &stubSubscriptionClient{
		existing: &stripe.Subscription{
			ID:       "sub_1",
			Customer: &stripe.Customer{ID: "cus_1"},
			Metadata: map[string]string{metadataUserID: userID.String()},
		},
		cancelResp: &stripe.Subscription{ID: "sub_1", Status: stripe.SubscriptionStatusCanceled},
	}
	svc := NewService(ServiceParams{Customers: &stubCustomerClient{}, Subscriptions: subs})

	res, err := svc.Cancel(context.Background(), userID, "sub_1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if res.Status != "canceled" || res.CustomerID != "cus_1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(subs.cancelled) != 1 || subs.cancelled[0] != "sub_1" {
		t.Fatalf("expected sub_1 cancelled, got %v", subs.cancelled)
	}
}

func TestServiceCancelForeignSubscription(t *testing.T) {
	subs := &stubSubscriptionClient{existing: &stripe.Subscription{
		ID:       "sub_1",
		Metadata: map[string]string{metadataUserID: uuid.NewString()},
	}}
	svc := NewService(ServiceParams{Customers: &stubCustomerClient{}, Subscriptions: subs})

	_, err := svc.Cancel(context.Background(), uuid.New(), "sub_1")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(subs.cancelled) != 0 {
		t.Fatalf("foreign subscription must not be cancelled")
	}
}

func TestServiceCancelMissingSubscription(t *testing.T) {
	subs := &stubSubscriptionClient{retrieveErr: &stripe.Error{HTTPStatusCode: http.StatusNotFound, Msg: "No such subscription"}}
	svc := NewService(ServiceParams{Customers: &stubCustomerClient{}, Subscriptions: subs})

	_, err := svc.Cancel(context.Background(), uuid.New(), "sub_missing")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceCancelAlreadyEndedIsNoop(t *testing.T) {
	userID := uuid.New()
	subs := &stubSubscriptionClient{existing: &stripe.Subscription{
		ID:       "sub_1",
		Status:   stripe.SubscriptionStatusCanceled,
		Customer: &stripe.Customer{ID: "cus_1"},
		Metadata: map[string]string{metadataUserID: userID.String()},
	}}
	svc := NewService(ServiceParams{Customers: &stubCustomerClient{}, Subscriptions: subs})

	res, err := svc.Cancel(context.Background(), userID, "sub_1")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if res.Status != enums.SubscriptionStatusCanceled || res.CustomerID != "cus_1" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(subs.cancelled) != 0 {
		t.Fatalf("ended subscription must not be cancelled again")
	}
}
