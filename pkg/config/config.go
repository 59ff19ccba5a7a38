package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Session       SessionConfig
	Stripe        StripeConfig
	Mail          MailConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
		if cfg.DB.DSN == "" {
			cfg.DB.DSN = cfg.FeatureFlags.SQLitePath
		}
		return &cfg, nil
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"EMPORIUM_APP_ENV" required:"true"`
	Port         string   `envconfig:"EMPORIUM_APP_PORT" required:"true"`
	BaseURL      string   `envconfig:"EMPORIUM_APP_BASE_URL" default:"http://localhost:8080"`
	LogLevel     string   `envconfig:"EMPORIUM_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"EMPORIUM_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"EMPORIUM_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DBConfig struct {
	DSN    string `envconfig:"EMPORIUM_DB_DSN"`
	Driver string `envconfig:"EMPORIUM_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"EMPORIUM_DB_HOST"`
	LegacyPort     int    `envconfig:"EMPORIUM_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"EMPORIUM_DB_USER"`
	LegacyPassword string `envconfig:"EMPORIUM_DB_PASSWORD"`
	LegacyName     string `envconfig:"EMPORIUM_DB_NAME"`
	LegacySSLMode  string `envconfig:"EMPORIUM_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"EMPORIUM_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"EMPORIUM_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"EMPORIUM_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"EMPORIUM_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"EMPORIUM_REDIS_URL" required:"true"`
	Address      string        `envconfig:"EMPORIUM_REDIS_ADDR"`
	Password     string        `envconfig:"EMPORIUM_REDIS_PASSWORD"`
	DB           int           `envconfig:"EMPORIUM_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"EMPORIUM_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"EMPORIUM_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"EMPORIUM_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"EMPORIUM_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"EMPORIUM_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret               string `envconfig:"EMPORIUM_JWT_SECRET" required:"true"`
	Issuer               string `envconfig:"EMPORIUM_JWT_ISSUER" required:"true"`
	ExpirationMinutes    int    `envconfig:"EMPORIUM_JWT_EXPIRATION_MINUTES" required:"true"`
	ResetTokenTTLMinutes int    `envconfig:"EMPORIUM_RESET_TOKEN_TTL_MINUTES" default:"60"`
}

// AccessTTL returns the lifetime of login tokens and their server-side sessions.
func (j JWTConfig) AccessTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// ResetTokenTTL returns the password reset link lifetime.
func (j JWTConfig) ResetTokenTTL() time.Duration {
	if j.ResetTokenTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ResetTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"EMPORIUM_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"EMPORIUM_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"EMPORIUM_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"EMPORIUM_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"EMPORIUM_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"EMPORIUM_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit    int           `envconfig:"EMPORIUM_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"EMPORIUM_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow        time.Duration `envconfig:"EMPORIUM_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUsernameLimit int           `envconfig:"EMPORIUM_AUTH_RATE_LIMIT_REGISTER_USERNAME_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"EMPORIUM_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
	ForgotWindow          time.Duration `envconfig:"EMPORIUM_AUTH_RATE_LIMIT_FORGOT_WINDOW" default:"15m"`
	ForgotIPLimit         int           `envconfig:"EMPORIUM_AUTH_RATE_LIMIT_FORGOT_IP_LIMIT" default:"5"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"EMPORIUM_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"EMPORIUM_SQLITE_PATH" default:"emporium.db"`
	AutoMigrate bool   `envconfig:"EMPORIUM_AUTO_MIGRATE" default:"false"`
}

type SessionConfig struct {
	AuthCookie     string        `envconfig:"EMPORIUM_AUTH_COOKIE" default:"emporium_session"`
	CartCookie     string        `envconfig:"EMPORIUM_CART_COOKIE" default:"emporium_sid"`
	CookieSecure   bool          `envconfig:"EMPORIUM_COOKIE_SECURE" default:"false"`
	CartSessionTTL time.Duration `envconfig:"EMPORIUM_CART_SESSION_TTL" default:"336h"`
	IdempotencyTTL time.Duration `envconfig:"EMPORIUM_IDEMPOTENCY_TTL" default:"24h"`
}

type StripeConfig struct {
	APIKey   string `envconfig:"EMPORIUM_STRIPE_API_KEY"`
	Env      string `envconfig:"EMPORIUM_STRIPE_ENV" default:"test"`
	Currency string `envconfig:"EMPORIUM_STRIPE_CURRENCY" default:"inr"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// Enabled reports whether online payments can be offered.
func (s StripeConfig) Enabled() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type MailConfig struct {
	SMTPHost     string `envconfig:"EMPORIUM_SMTP_HOST"`
	SMTPPort     int    `envconfig:"EMPORIUM_SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"EMPORIUM_SMTP_USERNAME"`
	SMTPPassword string `envconfig:"EMPORIUM_SMTP_PASSWORD"`
	From         string `envconfig:"EMPORIUM_MAIL_FROM" default:"no-reply@emporium.local"`
}

func (db *DBConfig) ensureDSN() error {
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
