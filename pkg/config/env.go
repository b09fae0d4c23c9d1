package config

const (
	EnvPrefix = "SOUNDSTALL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	CartStorePostgres = "postgres"
	CartStoreMongo    = "mongo"
)

const (
	EnvAppEnv    = "SOUNDSTALL_APP_ENV"
	EnvPort      = "SOUNDSTALL_APP_PORT"
	EnvLogLevel  = "SOUNDSTALL_LOG_LEVEL"
	EnvLogFormat = "SOUNDSTALL_LOG_FORMAT"

	EnvDBDSN     = "SOUNDSTALL_DB_DSN"
	EnvDBDriver  = "SOUNDSTALL_DB_DRIVER"
	EnvDBHost    = "SOUNDSTALL_DB_HOST"
	EnvDBUser    = "SOUNDSTALL_DB_USER"
	EnvDBName    = "SOUNDSTALL_DB_NAME"
	EnvUseSQLite = "SOUNDSTALL_USE_SQLITE"

	EnvMongoURI  = "SOUNDSTALL_MONGO_URI"
	EnvCartStore = "SOUNDSTALL_CART_STORE"

	EnvRedisURL = "SOUNDSTALL_REDIS_URL"

	EnvJWTSecret = "SOUNDSTALL_JWT_SECRET"
	EnvJWTIssuer = "SOUNDSTALL_JWT_ISSUER"

	EnvProviderTimeout = "SOUNDSTALL_PAYMENTS_PROVIDER_TIMEOUT"
	EnvFrontendURL     = "SOUNDSTALL_FRONTEND_URL"

	EnvStripeAPIKey        = "SOUNDSTALL_STRIPE_API_KEY"
	EnvStripeWebhookSecret = "SOUNDSTALL_STRIPE_WEBHOOK_SECRET"
	EnvPayPalClientID      = "SOUNDSTALL_PAYPAL_CLIENT_ID"
	EnvPayPalClientSecret  = "SOUNDSTALL_PAYPAL_CLIENT_SECRET"
	EnvRazorpayKeyID       = "SOUNDSTALL_RAZORPAY_KEY_ID"
	EnvRazorpayKeySecret   = "SOUNDSTALL_RAZORPAY_KEY_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
