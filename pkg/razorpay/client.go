package razorpay

import (
	"context"
	"errors"
	"strings"

	"github.com/razorpay/razorpay-go"

	"github.com/angelmondragon/soundstall-backend/pkg/config"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
)

// ErrNotConfigured is returned when the key pair is missing.
var ErrNotConfigured = errors.New("razorpay key id and key secret are required")

// Client wraps the Razorpay SDK client and keeps the key secret used to
// verify checkout signatures.
type Client struct {
	api    *razorpay.Client
	secret string
}

func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if !cfg.Configured() {
		return nil, ErrNotConfigured
	}
	secret := strings.TrimSpace(cfg.KeySecret)
	api := razorpay.NewClient(strings.TrimSpace(cfg.KeyID), secret)

	if logg != nil {
		logg.Info(ctx, "razorpay client initialized")
	}
	return &Client{api: api, secret: secret}, nil
}

// API returns the underlying SDK client.
func (c *Client) API() *razorpay.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// KeySecret returns the shared secret for HMAC verification.
func (c *Client) KeySecret() string {
	if c == nil {
		return ""
	}
	return c.secret
}
