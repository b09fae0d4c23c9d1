package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"github.com/angelmondragon/soundstall-backend/internal/gateways"
	"github.com/angelmondragon/soundstall-backend/internal/payments"
	products "github.com/angelmondragon/soundstall-backend/internal/products"
	songs "github.com/angelmondragon/soundstall-backend/internal/songs"
	pkgAuth "github.com/angelmondragon/soundstall-backend/pkg/auth"
	"github.com/angelmondragon/soundstall-backend/pkg/config"
	"github.com/angelmondragon/soundstall-backend/pkg/enums"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
	"github.com/angelmondragon/soundstall-backend/pkg/metrics"
)

// Embedding the interface leaves unexercised methods nil; calling one panics
// and the recoverer turns it into a 500.
type stubPayments struct {
	payments.Service

	mu          sync.Mutex
	intentCalls int
	historyUser uuid.UUID
}

func (s *stubPayments) Gateways() []gateways.Descriptor {
	return []gateways.Descriptor{{ID: enums.PaymentGatewayStripe, Name: "Stripe", IsAvailable: true}}
}

func (s *stubPayments) CreateIntent(_ context.Context, input payments.IntentInput) (*payments.IntentResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intentCalls++
	return &payments.IntentResult{
		AttemptID:   uuid.New(),
		ReferenceID: fmt.Sprintf("pi_%d", s.intentCalls),
		Gateway:     enums.PaymentGateway(input.Gateway),
		Currency:    enums.CurrencyUSD,
	}, nil
}

func (s *stubPayments) History(_ context.Context, userID uuid.UUID) ([]payments.AttemptDTO, error) {
	s.historyUser = userID
	return []payments.AttemptDTO{}, nil
}

type stubProducts struct {
	products.Service
}

func (stubProducts) GetProduct(_ context.Context, productID uuid.UUID) (*products.ProductDTO, error) {
	return &products.ProductDTO{ID: productID, Name: "Tour Tee"}, nil
}

type stubSongs struct {
	songs.Service

	mu    sync.Mutex
	calls []string
}

func (s *stubSongs) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *stubSongs) GetSong(_ context.Context, songID uuid.UUID) (*songs.SongDTO, error) {
	s.record("get:" + songID.String())
	return &songs.SongDTO{ID: songID}, nil
}

func (s *stubSongs) Search(_ context.Context, term string) ([]songs.SongDTO, error) {
	s.record("search:" + term)
	return []songs.SongDTO{}, nil
}

func (s *stubSongs) GetByTitle(_ context.Context, title string) ([]songs.SongDTO, error) {
	s.record("title:" + title)
	return []songs.SongDTO{}, nil
}

type stubLimiter struct {
	allow bool
}

func (s stubLimiter) FixedWindowAllow(context.Context, string, int64, time.Duration) (bool, int64, error) {
	return s.allow, 1, nil
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string)}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprintf("%v", value)
	return nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprintf("%v", value)
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "ss:idempotency:" + scope + ":" + id
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", CORSOrigins: []string{"*"}},
		JWT: config.JWTConfig{Secret: "router-secret", Issuer: "soundstall-test"},
		RateLimit: config.RateLimitConfig{
			PaymentIntentWindow: time.Minute,
			PaymentIntentLimit:  5,
		},
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test-routing", Level: "debug", Output: io.Discard})
}

func newTestRouter(cfg *config.Config, infra Infra, svc Services) http.Handler {
	if svc.Payments == nil {
		svc.Payments = &stubPayments{}
	}
	if svc.Products == nil {
		svc.Products = stubProducts{}
	}
	return NewRouter(cfg, testLogger(), infra, svc)
}

func buildToken(t *testing.T, cfg *config.Config, userID uuid.UUID) string {
	t.Helper()
	token, err := pkgAuth.Mint(cfg.JWT, time.Now(), time.Hour, pkgAuth.Payload{
		UserID: userID,
		Email:  "fan@example.com",
		Name:   "Fan",
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(), Infra{}, Services{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPublicRoutesSkipAuth(t *testing.T) {
	router := newTestRouter(testConfig(), Infra{}, Services{})

	for _, path := range []string{"/api/v1/payments/gateways", "/api/v1/products/" + uuid.NewString()} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d (%s)", path, resp.Code, resp.Body.String())
		}
	}
}

func TestPrivateRoutesRejectMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), Infra{}, Services{})

	cases := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/payments/history"},
		{http.MethodPost, "/api/v1/payments/intents"},
		{http.MethodGet, "/api/v1/cart/count"},
		{http.MethodPost, "/api/v1/products"},
		{http.MethodPut, "/api/v1/products/" + uuid.NewString()},
		{http.MethodPost, "/api/v1/songs"},
		{http.MethodDelete, "/api/v1/songs/" + uuid.NewString()},
		{http.MethodPost, "/api/v1/albums/tracks"},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(tc.method, tc.path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestSongLookupsRouteBeforeSongID(t *testing.T) {
	stub := &stubSongs{}
	router := newTestRouter(testConfig(), Infra{}, Services{Songs: stub})
	songID := uuid.New()

	for _, path := range []string{
		"/api/v1/songs/search?title=hour",
		"/api/v1/songs/title/Blue%20Hour",
		"/api/v1/songs/" + songID.String(),
	} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d (%s)", path, resp.Code, resp.Body.String())
		}
	}

	want := []string{"search:hour", "title:Blue Hour", "get:" + songID.String()}
	if fmt.Sprint(stub.calls) != fmt.Sprint(want) {
		t.Fatalf("expected calls %v got %v", want, stub.calls)
	}
}

func TestPrivateRouteCarriesCallerIdentity(t *testing.T) {
	cfg := testConfig()
	stub := &stubPayments{}
	router := newTestRouter(cfg, Infra{}, Services{Payments: stub})
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments/history", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, userID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d (%s)", resp.Code, resp.Body.String())
	}
	if stub.historyUser != userID {
		t.Fatalf("expected history for %s got %s", userID, stub.historyUser)
	}
}

func TestPaymentIntentRateLimited(t *testing.T) {
	cfg := testConfig()
	stub := &stubPayments{}
	router := newTestRouter(cfg, Infra{RateLimiter: stubLimiter{allow: false}}, Services{Payments: stub})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/intents", strings.NewReader(`{"amount":"10.00","gateway":"stripe"}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, uuid.New()))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
	if stub.intentCalls != 0 {
		t.Fatalf("limited request must not reach the service")
	}
}

func TestPaymentIntentReplaysIdempotentRequest(t *testing.T) {
	cfg := testConfig()
	stub := &stubPayments{}
	router := newTestRouter(cfg, Infra{
		RateLimiter: stubLimiter{allow: true},
		Idempotency: newMemoryStore(),
	}, Services{Payments: stub})
	token := buildToken(t, cfg, uuid.New())

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/intents", strings.NewReader(`{"amount":"10.00","gateway":"stripe"}`))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Idempotency-Key", "intent-1")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	first := send()
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d (%s)", first.Code, first.Body.String())
	}
	second := send()
	if second.Code != http.StatusCreated {
		t.Fatalf("expected replayed 201 got %d", second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected identical replay body")
	}
	if stub.intentCalls != 1 {
		t.Fatalf("expected one provider call got %d", stub.intentCalls)
	}
}

func TestMetricsEndpointExposesRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := newTestRouter(testConfig(), Infra{
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
	}, Services{})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	count, err := testutil.GatherAndCount(reg, "http_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one series got %d", count)
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `route="/health/live"`) {
		t.Fatalf("expected route label in exposition")
	}
}
