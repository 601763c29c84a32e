package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "RIDEPAY_DB_DSN"
	EnvDBHost = "RIDEPAY_DB_HOST"
	EnvDBUser = "RIDEPAY_DB_USER"
	EnvDBName = "RIDEPAY_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Stripe       StripeConfig
	Pricing      PricingConfig
	FeatureFlags FeatureFlagsConfig
	Outbox       OutboxConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RIDEPAY_APP_ENV" required:"true"`
	Port         string `envconfig:"RIDEPAY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RIDEPAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RIDEPAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RIDEPAY_DB_DSN"`
	Driver string `envconfig:"RIDEPAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"RIDEPAY_DB_HOST"`
	LegacyPort     int    `envconfig:"RIDEPAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"RIDEPAY_DB_USER"`
	LegacyPassword string `envconfig:"RIDEPAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"RIDEPAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"RIDEPAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RIDEPAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RIDEPAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RIDEPAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RIDEPAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RIDEPAY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"RIDEPAY_REDIS_ADDR"`
	Password     string        `envconfig:"RIDEPAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"RIDEPAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RIDEPAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RIDEPAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RIDEPAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RIDEPAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RIDEPAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"RIDEPAY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"RIDEPAY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"RIDEPAY_JWT_EXPIRATION_MINUTES" default:"60"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"RIDEPAY_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type StripeConfig struct {
	APIKey        string `envconfig:"RIDEPAY_STRIPE_API_KEY"`
	WebhookSecret string `envconfig:"RIDEPAY_STRIPE_WEBHOOK_SECRET"`
	Env           string `envconfig:"RIDEPAY_STRIPE_ENV" default:"test"`
	Currency      string `envconfig:"RIDEPAY_STRIPE_CURRENCY" default:"usd"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type PricingConfig struct {
	MinSegmentPrice string `envconfig:"RIDEPAY_PRICING_MIN_SEGMENT_PRICE" default:"2.00"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"RIDEPAY_AUTO_MIGRATE" default:"false"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"RIDEPAY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"RIDEPAY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"RIDEPAY_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"RIDEPAY_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	PaymentsTopic        string `envconfig:"RIDEPAY_PUBSUB_PAYMENTS_TOPIC" default:"ridepay-payment-events"`
	PaymentsSubscription string `envconfig:"RIDEPAY_PUBSUB_PAYMENTS_SUBSCRIPTION"`
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
