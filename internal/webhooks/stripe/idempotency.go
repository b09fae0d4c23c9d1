package stripewebhook

import (
	"context"
	"time"

	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

// DefaultEventTTL is how long processed event ids are remembered. Stripe
// retries a failed delivery for up to three days, but a redelivery of an
// applied event only needs to be caught within a day.
const DefaultEventTTL = 24 * time.Hour

// eventStore is the slice of the redis client the ledger needs.
type eventStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	IdempotencyKey(scope, id string) string
}

// IdempotencyGuard claims Stripe event ids so redeliveries are acknowledged
// without being applied twice.
type IdempotencyGuard struct {
	store eventStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store eventStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	switch {
	case store == nil:
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "event store required")
	case scope == "":
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "event scope required")
	case ttl < 0:
		return nil, pkgerrors.Newf(pkgerrors.CodeInternal, "event ttl %s is negative", ttl)
	case ttl == 0:
		ttl = DefaultEventTTL
	}
	return &IdempotencyGuard{store: store, ttl: ttl, scope: scope}, nil
}

// CheckAndMark claims eventID and reports whether an earlier delivery already
// held it.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	key, err := g.key(eventID)
	if err != nil {
		return false, err
	}
	claimed, err := g.store.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), g.ttl)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim stripe event")
	}
	return !claimed, nil
}

// Delete releases eventID so Stripe's next redelivery is applied.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	key, err := g.key(eventID)
	if err != nil {
		return err
	}
	if err := g.store.Del(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release stripe event")
	}
	return nil
}

func (g *IdempotencyGuard) key(eventID string) (string, error) {
	if eventID == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "stripe event id required")
	}
	return g.store.IdempotencyKey(g.scope, eventID), nil
}
