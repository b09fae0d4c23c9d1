package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Mongo        MongoConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Cart         CartConfig
	Payments     PaymentsConfig
	Stripe       StripeConfig
	PayPal       PayPalConfig
	Razorpay     RazorpayConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	if err := cfg.Cart.validate(cfg.Mongo); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"SOUNDSTALL_APP_ENV" required:"true"`
	Port         string   `envconfig:"SOUNDSTALL_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"SOUNDSTALL_LOG_LEVEL" default:"info"`
	LogFormat    string   `envconfig:"SOUNDSTALL_LOG_FORMAT" default:"json"`
	LogWarnStack bool     `envconfig:"SOUNDSTALL_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"SOUNDSTALL_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SOUNDSTALL_DB_DSN"`
	Driver string `envconfig:"SOUNDSTALL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SOUNDSTALL_DB_HOST"`
	LegacyPort     int    `envconfig:"SOUNDSTALL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SOUNDSTALL_DB_USER"`
	LegacyPassword string `envconfig:"SOUNDSTALL_DB_PASSWORD"`
	LegacyName     string `envconfig:"SOUNDSTALL_DB_NAME"`
	LegacySSLMode  string `envconfig:"SOUNDSTALL_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"SOUNDSTALL_SQLITE_PATH" default:"soundstall.db"`

	MaxOpenConns    int           `envconfig:"SOUNDSTALL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOUNDSTALL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOUNDSTALL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOUNDSTALL_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"SOUNDSTALL_DB_SLOW_QUERY" default:"200ms"`
	ConnectTimeout     time.Duration `envconfig:"SOUNDSTALL_DB_CONNECT_TIMEOUT" default:"5s"`
}

type MongoConfig struct {
	URI            string        `envconfig:"SOUNDSTALL_MONGO_URI"`
	Database       string        `envconfig:"SOUNDSTALL_MONGO_DATABASE" default:"soundstall"`
	ConnectTimeout time.Duration `envconfig:"SOUNDSTALL_MONGO_CONNECT_TIMEOUT" default:"10s"`
	MaxPoolSize    uint64        `envconfig:"SOUNDSTALL_MONGO_MAX_POOL_SIZE" default:"100"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SOUNDSTALL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SOUNDSTALL_REDIS_ADDR"`
	Password     string        `envconfig:"SOUNDSTALL_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOUNDSTALL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOUNDSTALL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOUNDSTALL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOUNDSTALL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOUNDSTALL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOUNDSTALL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret   string        `envconfig:"SOUNDSTALL_JWT_SECRET" required:"true"`
	Issuer   string        `envconfig:"SOUNDSTALL_JWT_ISSUER" required:"true"`
	Audience string        `envconfig:"SOUNDSTALL_JWT_AUDIENCE"`
	Leeway   time.Duration `envconfig:"SOUNDSTALL_JWT_LEEWAY" default:"30s"`
}

type CartConfig struct {
	Store string `envconfig:"SOUNDSTALL_CART_STORE" default:"postgres"`
}

// UsesMongo reports whether cart lines live in the document store.
func (c CartConfig) UsesMongo() bool {
	return strings.EqualFold(strings.TrimSpace(c.Store), CartStoreMongo)
}

func (c CartConfig) validate(mongo MongoConfig) error {
	switch strings.ToLower(strings.TrimSpace(c.Store)) {
	case CartStorePostgres:
		return nil
	case CartStoreMongo:
		if mongo.URI == "" {
			return fmt.Errorf("%s is required when %s=%s", EnvMongoURI, EnvCartStore, CartStoreMongo)
		}
		return nil
	default:
		return fmt.Errorf("unsupported %s %q", EnvCartStore, c.Store)
	}
}

type PaymentsConfig struct {
	ProviderTimeout time.Duration `envconfig:"SOUNDSTALL_PAYMENTS_PROVIDER_TIMEOUT" default:"10s"`
	FrontendURL     string        `envconfig:"SOUNDSTALL_FRONTEND_URL" default:"http://localhost:3000"`
	HistoryLimit    int           `envconfig:"SOUNDSTALL_PAYMENTS_HISTORY_LIMIT" default:"20"`
	IdempotencyTTL  time.Duration `envconfig:"SOUNDSTALL_IDEMPOTENCY_TTL" default:"24h"`
	IdempotencyLock time.Duration `envconfig:"SOUNDSTALL_IDEMPOTENCY_LOCK_TTL" default:"1m"`
}

// SuccessURL is where PayPal returns the payer after approval.
func (p PaymentsConfig) SuccessURL() string {
	return strings.TrimRight(p.FrontendURL, "/") + "/payment/success"
}

// CancelURL is where PayPal returns the payer after cancelling.
func (p PaymentsConfig) CancelURL() string {
	return strings.TrimRight(p.FrontendURL, "/") + "/payment/cancel"
}

type StripeConfig struct {
	APIKey     string `envconfig:"SOUNDSTALL_STRIPE_API_KEY"`
	Secret     string `envconfig:"SOUNDSTALL_STRIPE_WEBHOOK_SECRET"`
	Env        string `envconfig:"SOUNDSTALL_STRIPE_ENV" default:"test"`
	MaxRetries int64  `envconfig:"SOUNDSTALL_STRIPE_MAX_RETRIES" default:"2"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// Configured reports whether an API key is present.
func (s StripeConfig) Configured() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type PayPalConfig struct {
	ClientID     string `envconfig:"SOUNDSTALL_PAYPAL_CLIENT_ID"`
	ClientSecret string `envconfig:"SOUNDSTALL_PAYPAL_CLIENT_SECRET"`
	Mode         string `envconfig:"SOUNDSTALL_PAYPAL_MODE" default:"sandbox"`
}

func (p PayPalConfig) Configured() bool {
	return strings.TrimSpace(p.ClientID) != "" && strings.TrimSpace(p.ClientSecret) != ""
}

// IsLive reports whether requests target the production PayPal API.
func (p PayPalConfig) IsLive() bool {
	return strings.EqualFold(strings.TrimSpace(p.Mode), "live")
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"SOUNDSTALL_RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"SOUNDSTALL_RAZORPAY_KEY_SECRET"`
}

func (r RazorpayConfig) Configured() bool {
	return strings.TrimSpace(r.KeyID) != "" && strings.TrimSpace(r.KeySecret) != ""
}

type RateLimitConfig struct {
	PaymentIntentWindow time.Duration `envconfig:"SOUNDSTALL_RATE_LIMIT_PAYMENT_INTENT_WINDOW" default:"1m"`
	PaymentIntentLimit  int           `envconfig:"SOUNDSTALL_RATE_LIMIT_PAYMENT_INTENT_LIMIT" default:"10"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SOUNDSTALL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SOUNDSTALL_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DBDriverSQLite
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
