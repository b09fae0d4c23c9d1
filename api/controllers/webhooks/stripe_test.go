package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	stripewebhook "github.com/angelmondragon/soundstall-backend/internal/webhooks/stripe"
	pkgerrors "github.com/angelmondragon/soundstall-backend/pkg/errors"
)

const testSecret = "whsec_test"

type webhookHarness struct {
	service *fakeStripeWebhookService
	store   *eventStore
	handler http.HandlerFunc
}

func newHarness(t *testing.T, serviceErr error, secret string) *webhookHarness {
	t.Helper()
	store := &eventStore{data: make(map[string]string)}
	guard, err := stripewebhook.NewIdempotencyGuard(store, time.Minute, "stripe-webhook")
	if err != nil {
		t.Fatalf("guard setup: %v", err)
	}
	service := &fakeStripeWebhookService{err: serviceErr}
	return &webhookHarness{
		service: service,
		store:   store,
		handler: StripeWebhook(service, signingSecret(secret), guard, nil),
	}
}

func (h *webhookHarness) deliver(payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestStripeWebhookAppliesEventOnce(t *testing.T) {
	h := newHarness(t, nil, testSecret)
	payload, signature := signedIntentEvent(t, stripe.EventTypePaymentIntentSucceeded)

	for i := 0; i < 3; i++ {
		if rec := h.deliver(payload, signature); rec.Code != http.StatusOK {
			t.Fatalf("delivery %d: expected 200, got %d (%s)", i, rec.Code, rec.Body.String())
		}
	}
	if h.service.calls != 1 {
		t.Fatalf("redeliveries must not be applied, call count %d", h.service.calls)
	}
}

func TestStripeWebhookRejectsUnverifiedDeliveries(t *testing.T) {
	payload, signature := signedIntentEvent(t, stripe.EventTypePaymentIntentSucceeded)
	oversized := append([]byte(`{"id":"evt_big","pad":"`), bytes.Repeat([]byte("x"), maxEventBytes)...)

	cases := map[string]struct {
		payload   []byte
		signature string
	}{
		"missing signature": {payload, ""},
		"bad signature":     {payload, "t=1,v1=invalid"},
		"stale timestamp":   {payload, signHeader(payload, testSecret, time.Now().Add(-time.Hour).Unix())},
		"wrong secret":      {payload, signHeader(payload, "whsec_other", time.Now().Unix())},
		"tampered payload":  {bytes.Replace(payload, []byte("1999"), []byte("1"), 1), signature},
		"oversized payload": {oversized, signHeader(oversized, testSecret, time.Now().Unix())},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, nil, testSecret)
			rec := h.deliver(tc.payload, tc.signature)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
			}
			if h.service.calls != 0 {
				t.Fatal("unverified events must not reach the service")
			}
			if len(h.store.data) != 0 {
				t.Fatal("unverified events must not be claimed")
			}
		})
	}
}

func TestStripeWebhookFailureReleasesEventForRedelivery(t *testing.T) {
	h := newHarness(t, pkgerrors.New(pkgerrors.CodeNotFound, "payment attempt not found"), testSecret)
	payload, signature := signedIntentEvent(t, stripe.EventTypePaymentIntentPaymentFailed)

	for i := 0; i < 2; i++ {
		if rec := h.deliver(payload, signature); rec.Code != http.StatusNotFound {
			t.Fatalf("attempt %d: expected 404, got %d", i, rec.Code)
		}
	}
	if h.service.calls != 2 {
		t.Fatalf("failed events must be retried, call count %d", h.service.calls)
	}
	if len(h.store.data) != 0 {
		t.Fatalf("failed event left claimed: %v", h.store.data)
	}
}

func TestStripeWebhookRequiresSigningSecret(t *testing.T) {
	h := newHarness(t, nil, "")
	payload, signature := signedIntentEvent(t, stripe.EventTypePaymentIntentSucceeded)

	rec := h.deliver(payload, signature)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a signing secret, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), string(pkgerrors.CodeConfiguration)) {
		t.Fatalf("expected configuration error code, got %s", rec.Body.String())
	}
}

func signedIntentEvent(t *testing.T, eventType stripe.EventType) ([]byte, string) {
	t.Helper()
	rawIntent, err := json.Marshal(&stripe.PaymentIntent{
		ID:       "pi_" + uuid.NewString(),
		Amount:   1999,
		Currency: stripe.CurrencyUSD,
		Status:   stripe.PaymentIntentStatusSucceeded,
	})
	if err != nil {
		t.Fatalf("marshal payment intent: %v", err)
	}
	payload, err := json.Marshal(&stripe.Event{
		ID:         "evt_" + uuid.NewString(),
		Type:       eventType,
		Object:     "event",
		APIVersion: stripe.APIVersion,
		Data:       &stripe.EventData{Raw: rawIntent},
	})
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return payload, signHeader(payload, testSecret, time.Now().Unix())
}

func signHeader(payload []byte, secret string, ts int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

type fakeStripeWebhookService struct {
	calls int
	err   error
}

func (f *fakeStripeWebhookService) HandleEvent(context.Context, *stripe.Event) error {
	f.calls++
	return f.err
}

type signingSecret string

func (s signingSecret) SigningSecret() string { return string(s) }

type eventStore struct {
	mu   sync.Mutex
	data map[string]string
}

func (s *eventStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = fmt.Sprint(value)
	return true, nil
}

func (s *eventStore) IdempotencyKey(scope, id string) string {
	return "ss:idempotency:" + scope + ":" + id
}

func (s *eventStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}
