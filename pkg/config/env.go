package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "EMPORIUM"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv       = "EMPORIUM_APP_ENV"
	EnvPort         = "EMPORIUM_APP_PORT"
	EnvBaseURL      = "EMPORIUM_APP_BASE_URL"
	EnvLogLevel     = "EMPORIUM_LOG_LEVEL"
	EnvLogWarnStack = "EMPORIUM_LOG_WARN_STACK"

	EnvDBDSN      = "EMPORIUM_DB_DSN"
	EnvDBDriver   = "EMPORIUM_DB_DRIVER"
	EnvDBHost     = "EMPORIUM_DB_HOST"
	EnvDBPort     = "EMPORIUM_DB_PORT"
	EnvDBUser     = "EMPORIUM_DB_USER"
	EnvDBPassword = "EMPORIUM_DB_PASSWORD"
	EnvDBName     = "EMPORIUM_DB_NAME"
	EnvDBSSLMode  = "EMPORIUM_DB_SSLMODE"

	EnvRedisURL = "EMPORIUM_REDIS_URL"

	EnvJWTSecret        = "EMPORIUM_JWT_SECRET"
	EnvJWTIssuer        = "EMPORIUM_JWT_ISSUER"
	EnvJWTExpMins       = "EMPORIUM_JWT_EXPIRATION_MINUTES"
	EnvResetTokenTTLMin = "EMPORIUM_RESET_TOKEN_TTL_MINUTES"

	EnvUseSQLite   = "EMPORIUM_USE_SQLITE"
	EnvSQLitePath  = "EMPORIUM_SQLITE_PATH"
	EnvAutoMigrate = "EMPORIUM_AUTO_MIGRATE"

	EnvCartSessionTTL = "EMPORIUM_CART_SESSION_TTL"
	EnvCookieSecure   = "EMPORIUM_COOKIE_SECURE"

	EnvStripeAPIKey   = "EMPORIUM_STRIPE_API_KEY"
	EnvStripeEnv      = "EMPORIUM_STRIPE_ENV"
	EnvStripeCurrency = "EMPORIUM_STRIPE_CURRENCY"

	EnvSMTPHost = "EMPORIUM_SMTP_HOST"
	EnvSMTPPort = "EMPORIUM_SMTP_PORT"
	EnvMailFrom = "EMPORIUM_MAIL_FROM"
)

// legacyDBEnvVars must all be present when no DSN is configured.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
