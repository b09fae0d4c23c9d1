package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/angelmondragon/soundstall-backend/pkg/config"
	"github.com/angelmondragon/soundstall-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

// keyPrefixes lists the secret and restricted key prefixes valid per env.
var keyPrefixes = map[string][]string{
	testEnv: {"sk_test", "rk_test"},
	liveEnv: {"sk_live", "rk_live"},
}

var (
	// ErrNotConfigured is returned when no API key is present.
	ErrNotConfigured    = errors.New("stripe api key is required")
	errInvalidStripeEnv = fmt.Errorf("stripe environment must be %q or %q", testEnv, liveEnv)
)

// Client holds the Stripe API client used by the payment gateway and
// subscriptions, plus the webhook signing secret.
type Client struct {
	api           *stripe.Client
	environment   string
	signingSecret string
}

// NewClient validates the key against the configured environment and builds a
// per-instance Stripe client. The package-level stripe.Key is never set. The
// webhook signing secret is optional; without it the webhook endpoint answers
// 503.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env := cfg.Environment()
	prefixes, ok := keyPrefixes[env]
	if !ok {
		return nil, errInvalidStripeEnv
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrNotConfigured
	}
	if !hasAnyPrefix(apiKey, prefixes) {
		return nil, fmt.Errorf("stripe environment %q requires a %s key", env, strings.Join(prefixes, "/"))
	}

	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	backendCfg := &stripe.BackendConfig{
		MaxNetworkRetries: stripe.Int64(retries),
	}
	if logg != nil {
		backendCfg.LeveledLogger = &leveledLogger{ctx: logg.WithGateway(ctx, "stripe"), logg: logg}
	}
	api := stripe.NewClient(apiKey, stripe.WithBackends(stripe.NewBackendsWithConfig(backendCfg)))

	signingSecret := strings.TrimSpace(cfg.Secret)
	if logg != nil {
		logCtx := logg.WithFields(ctx, map[string]any{"stripe_env": env, "max_retries": retries})
		logg.Info(logCtx, "stripe client initialized")
		if signingSecret == "" {
			logg.Warn(logCtx, "stripe webhook secret missing; webhook endpoint disabled")
		}
	}

	return &Client{
		api:           api,
		environment:   env,
		signingSecret: signingSecret,
	}, nil
}

// API returns the underlying Stripe API client.
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

func hasAnyPrefix(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

// leveledLogger routes stripe-go's request logs through zerolog. Stripe's
// info-level request lines are demoted to debug.
type leveledLogger struct {
	ctx  context.Context
	logg *logger.Logger
}

func (l *leveledLogger) Debugf(format string, v ...interface{}) {
	l.logg.Debug(l.ctx, fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Infof(format string, v ...interface{}) {
	l.logg.Debug(l.ctx, fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Warnf(format string, v ...interface{}) {
	l.logg.Warn(l.ctx, fmt.Sprintf(format, v...))
}

func (l *leveledLogger) Errorf(format string, v ...interface{}) {
	l.logg.Error(l.ctx, "stripe client error", fmt.Errorf(format, v...))
}
