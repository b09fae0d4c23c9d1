package stripewebhook

import (
	"context"
	"encoding/json"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/soundstall-backend/pkg/db/models"
	"github.com/angelmondragon/soundstall-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
)

type statusApplier interface {
	ApplyProviderStatus(ctx context.Context, gateway enums.PaymentGateway, referenceID string, status enums.PaymentStatus) (*models.PaymentAttempt, error)
}

type ServiceParams struct {
	Payments statusApplier
	Logger   *logger.Logger
}

// Service applies PaymentIntent lifecycle events to recorded attempts.
type Service struct {
	payments statusApplier
	logg     *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments service required")
	}
	return &Service{payments: params.Payments, logg: params.Logger}, nil
}

var intentEventStatus = map[stripe.EventType]enums.PaymentStatus{
	stripe.EventTypePaymentIntentSucceeded:     enums.PaymentStatusSucceeded,
	stripe.EventTypePaymentIntentPaymentFailed: enums.PaymentStatusFailed,
	stripe.EventTypePaymentIntentCanceled:      enums.PaymentStatusCancelled,
	stripe.EventTypePaymentIntentProcessing:    enums.PaymentStatusPending,
}

// HandleEvent records the status carried by a payment_intent event. Unknown
// attempts surface as not found; late events that would move a settled
// attempt backwards are dropped.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	status, ok := intentEventStatus[event.Type]
	if !ok {
		return nil
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode payment intent event")
	}
	if intent.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment intent id missing")
	}

	_, err := s.payments.ApplyProviderStatus(ctx, enums.PaymentGatewayStripe, intent.ID, status)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
			if s.logg != nil {
				logCtx := s.logg.WithReferenceID(s.logg.WithGateway(ctx, enums.PaymentGatewayStripe.String()), intent.ID)
				s.logg.Warn(s.logg.WithField(logCtx, "event_type", string(event.Type)), "stripe.webhook.stale_event")
			}
			return nil
		}
		return err
	}
	return nil
}
