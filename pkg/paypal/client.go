package paypal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/plutov/paypal/v4"

	"github.com/angelmondragon/soundstall-backend/pkg/config"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
)

const (
	sandboxMode = "sandbox"
	liveMode    = "live"
)

// ErrNotConfigured is returned when client credentials are missing.
var ErrNotConfigured = errors.New("paypal client id and secret are required")

// Client wraps the PayPal REST client plus the resolved mode.
type Client struct {
	api  *paypal.Client
	mode string
}

// NewClient builds the REST client once from configuration. The access token
// is fetched lazily by the SDK on the first call.
func NewClient(ctx context.Context, cfg config.PayPalConfig, timeout time.Duration, logg *logger.Logger) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}

	mode, base, err := resolveMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	api, err := paypal.NewClient(strings.TrimSpace(cfg.ClientID), strings.TrimSpace(cfg.ClientSecret), base)
	if err != nil {
		return nil, fmt.Errorf("init paypal client: %w", err)
	}
	if timeout > 0 {
		api.SetHTTPClient(&http.Client{Timeout: timeout})
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("paypal client initialized (%s)", mode))
	}

	return &Client{api: api, mode: mode}, nil
}

// API returns the underlying PayPal client.
func (c *Client) API() *paypal.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// Mode reports sandbox or live.
func (c *Client) Mode() string {
	if c == nil {
		return ""
	}
	return c.mode
}

func resolveMode(raw string) (string, string, error) {
	mode := strings.ToLower(strings.TrimSpace(raw))
	switch mode {
	case "", sandboxMode:
		return sandboxMode, paypal.APIBaseSandBox, nil
	case liveMode:
		return liveMode, paypal.APIBaseLive, nil
	default:
		return "", "", fmt.Errorf("paypal mode must be %q or %q", sandboxMode, liveMode)
	}
}
