package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "boxibox"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Sweep        SweepConfig
	Notices      NoticesConfig
	Marketplace  MarketplaceConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"BOXIBOX_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"BOXIBOX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOXIBOX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"BOXIBOX_SERVICE_KIND" default:"auction-worker"`
}

type DBConfig struct {
	DSN    string `envconfig:"BOXIBOX_DB_DSN"`
	Driver string `envconfig:"BOXIBOX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOXIBOX_DB_HOST"`
	LegacyPort     int    `envconfig:"BOXIBOX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOXIBOX_DB_USER"`
	LegacyPassword string `envconfig:"BOXIBOX_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOXIBOX_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOXIBOX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOXIBOX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOXIBOX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOXIBOX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOXIBOX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("database DSN or host/user/name settings are required")
	}
	dsn := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.LegacyUser, d.LegacyPassword),
		Host:   fmt.Sprintf("%s:%d", d.LegacyHost, d.LegacyPort),
		Path:   d.LegacyName,
	}
	query := dsn.Query()
	query.Set("sslmode", d.LegacySSLMode)
	dsn.RawQuery = query.Encode()
	d.DSN = dsn.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"BOXIBOX_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOXIBOX_REDIS_ADDR"`
	Password     string        `envconfig:"BOXIBOX_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOXIBOX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOXIBOX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOXIBOX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOXIBOX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOXIBOX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOXIBOX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// SweepConfig drives the periodic delinquency/lifecycle worker.
type SweepConfig struct {
	Interval time.Duration `envconfig:"BOXIBOX_SWEEP_INTERVAL" default:"1h"`
	LockTTL  time.Duration `envconfig:"BOXIBOX_SWEEP_LOCK_TTL" default:"55m"`
}

// NoticesConfig carries the customer-facing values substituted into notice templates.
type NoticesConfig struct {
	PaymentURL       string `envconfig:"BOXIBOX_NOTICES_PAYMENT_URL" default:"https://app.boxibox.com/customer/invoices"`
	PaymentDeadlines int    `envconfig:"BOXIBOX_NOTICES_PAYMENT_DEADLINE_DAYS" default:"15"`
	FromAddress      string `envconfig:"BOXIBOX_NOTICES_FROM_ADDRESS" default:"no-reply@boxibox.com"`

	SMTPHost     string `envconfig:"BOXIBOX_NOTICES_SMTP_HOST"`
	SMTPPort     int    `envconfig:"BOXIBOX_NOTICES_SMTP_PORT" default:"587"`
	SMTPUsername string `envconfig:"BOXIBOX_NOTICES_SMTP_USERNAME"`
	SMTPPassword string `envconfig:"BOXIBOX_NOTICES_SMTP_PASSWORD"`
}

// MarketplaceConfig selects and configures the external auction listing platform.
type MarketplaceConfig struct {
	StorageTreasuresBaseURL string        `envconfig:"BOXIBOX_MARKETPLACE_STORAGE_TREASURES_BASE_URL" default:"https://api.storagetreasures.com/v1"`
	StorageTreasuresAPIKey  string        `envconfig:"BOXIBOX_MARKETPLACE_STORAGE_TREASURES_API_KEY"`
	LockerFoxBaseURL        string        `envconfig:"BOXIBOX_MARKETPLACE_LOCKERFOX_BASE_URL" default:"https://api.lockerfox.com/v2"`
	LockerFoxAPIKey         string        `envconfig:"BOXIBOX_MARKETPLACE_LOCKERFOX_API_KEY"`
	HTTPTimeout             time.Duration `envconfig:"BOXIBOX_MARKETPLACE_HTTP_TIMEOUT" default:"10s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BOXIBOX_FEATURE_AUTO_MIGRATE" default:"false"`
}
