package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FORNODORO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "FORNODORO_DB_DSN"
	EnvDBHost = "FORNODORO_DB_HOST"
	EnvDBUser = "FORNODORO_DB_USER"
	EnvDBName = "FORNODORO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Store        StoreConfig
	Loyalty      LoyaltyConfig
	Coupon       CouponConfig
	Pix          PixConfig
	Cron         CronConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"FORNODORO_APP_ENV" required:"true"`
	Port         string `envconfig:"FORNODORO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FORNODORO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FORNODORO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FORNODORO_DB_DSN"`
	Driver string `envconfig:"FORNODORO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FORNODORO_DB_HOST"`
	LegacyPort     int    `envconfig:"FORNODORO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FORNODORO_DB_USER"`
	LegacyPassword string `envconfig:"FORNODORO_DB_PASSWORD"`
	LegacyName     string `envconfig:"FORNODORO_DB_NAME"`
	LegacySSLMode  string `envconfig:"FORNODORO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FORNODORO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FORNODORO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FORNODORO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FORNODORO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FORNODORO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FORNODORO_REDIS_ADDR"`
	Password     string        `envconfig:"FORNODORO_REDIS_PASSWORD"`
	DB           int           `envconfig:"FORNODORO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FORNODORO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FORNODORO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FORNODORO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FORNODORO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FORNODORO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"FORNODORO_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"FORNODORO_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"FORNODORO_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"FORNODORO_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FORNODORO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FORNODORO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FORNODORO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FORNODORO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FORNODORO_ARGON_KEY_LEN" default:"32"`
}

// StoreConfig carries storefront defaults; the values double as the seed for
// the store_settings row when none exists yet.
type StoreConfig struct {
	DeliveryFee   string        `envconfig:"FORNODORO_STORE_DELIVERY_FEE" default:"5.90"`
	MinOrderValue string        `envconfig:"FORNODORO_STORE_MIN_ORDER_VALUE" default:"0"`
	WhatsAppPhone string        `envconfig:"FORNODORO_STORE_WHATSAPP_PHONE"`
	CartTTL       time.Duration `envconfig:"FORNODORO_STORE_CART_TTL" default:"72h"`
}

type LoyaltyConfig struct {
	EarnDivisor      int `envconfig:"FORNODORO_LOYALTY_EARN_DIVISOR" default:"10"`
	RedeemRate       int `envconfig:"FORNODORO_LOYALTY_REDEEM_RATE" default:"10"`
	MaxRedeemPercent int `envconfig:"FORNODORO_LOYALTY_MAX_REDEEM_PERCENT" default:"50"`
}

type CouponConfig struct {
	PerUserSingleUse bool `envconfig:"FORNODORO_COUPON_PER_USER_SINGLE_USE" default:"true"`
}

type PixConfig struct {
	MerchantName string        `envconfig:"FORNODORO_PIX_MERCHANT_NAME" default:"FORNO D ORO"`
	MerchantCity string        `envconfig:"FORNODORO_PIX_MERCHANT_CITY" default:"SAO PAULO"`
	Key          string        `envconfig:"FORNODORO_PIX_KEY"`
	Expiry       time.Duration `envconfig:"FORNODORO_PIX_EXPIRY" default:"15m"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"FORNODORO_CRON_INTERVAL" default:"1m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FORNODORO_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FORNODORO_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"FORNODORO_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FORNODORO_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"FORNODORO_PUBSUB_ORDERS_TOPIC" default:"fd-order-events"`
	OrdersSubscription string `envconfig:"FORNODORO_PUBSUB_ORDERS_SUBSCRIPTION" default:"fd-order-events-notifications"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FORNODORO_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FORNODORO_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FORNODORO_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
