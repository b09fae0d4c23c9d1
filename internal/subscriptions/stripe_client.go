package subscriptions

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/angelmondragon/soundstall-backend/pkg/stripe"
)

// StripeCustomerClient is the subset of the Customers API the service needs.
type StripeCustomerClient interface {
	Create(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error)
}

// StripeSubscriptionClient exposes the subset of Stripe operations required by the subscription service.
type StripeSubscriptionClient interface {
	Create(ctx context.Context, params *stripe.SubscriptionCreateParams) (*stripe.Subscription, error)
	Retrieve(ctx context.Context, id string, params *stripe.SubscriptionRetrieveParams) (*stripe.Subscription, error)
	Cancel(ctx context.Context, id string, params *stripe.SubscriptionCancelParams) (*stripe.Subscription, error)
}

// StripeClients resolves the customer and subscription services from the
// shared Stripe client. Both are nil when Stripe is not configured.
func StripeClients(client *pkgstripe.Client) (StripeCustomerClient, StripeSubscriptionClient) {
	api := client.API()
	if api == nil {
		return nil, nil
	}
	return api.V1Customers, api.V1Subscriptions
}
