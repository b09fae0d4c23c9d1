package stripe

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/angelmondragon/soundstall-backend/pkg/config"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), config.StripeConfig{Env: "test"}, nil)
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestNewClientValidatesKeyAgainstEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.StripeConfig
		wantErr bool
	}{
		{name: "test key in test", cfg: config.StripeConfig{APIKey: "sk_test_123", Env: "test"}},
		{name: "restricted test key", cfg: config.StripeConfig{APIKey: "rk_test_123", Env: ""}},
		{name: "live key in live", cfg: config.StripeConfig{APIKey: "sk_live_123", Env: "LIVE"}},
		{name: "live key in test", cfg: config.StripeConfig{APIKey: "sk_live_123", Env: "test"}, wantErr: true},
		{name: "test key in live", cfg: config.StripeConfig{APIKey: "sk_test_123", Env: "live"}, wantErr: true},
		{name: "unknown env", cfg: config.StripeConfig{APIKey: "sk_test_123", Env: "staging"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(context.Background(), tt.cfg, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.API() == nil {
				t.Fatalf("expected api client")
			}
		})
	}
}

func TestSigningSecretOptional(t *testing.T) {
	client, err := NewClient(context.Background(), config.StripeConfig{APIKey: "sk_test_123"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.SigningSecret() != "" {
		t.Fatalf("expected empty signing secret")
	}
	if client.Environment() != "test" {
		t.Fatalf("expected test environment, got %q", client.Environment())
	}

	var nilClient *Client
	if nilClient.API() != nil || nilClient.SigningSecret() != "" {
		t.Fatalf("nil client accessors should be zero values")
	}
}

func TestLeveledLoggerRoutesThroughZerolog(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "stripe-test", Level: "debug", Output: &buf})

	if _, err := NewClient(context.Background(), config.StripeConfig{APIKey: "sk_test_123", MaxRetries: -1}, logg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), `"max_retries":0`) {
		t.Fatalf("expected negative retries clamped to zero, got %s", buf.String())
	}

	buf.Reset()
	l := &leveledLogger{ctx: context.Background(), logg: logg}
	l.Infof("Requesting %s %s", "POST", "/v1/payment_intents")
	l.Errorf("Request failed with error: %s", "card_declined")
	out := buf.String()
	if !strings.Contains(out, `"level":"debug"`) || !strings.Contains(out, "/v1/payment_intents") {
		t.Fatalf("expected info demoted to debug, got %s", out)
	}
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, "card_declined") {
		t.Fatalf("expected error entry, got %s", out)
	}
}
