package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "WASSEL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "WASSEL_DB_DSN"
	EnvDBHost = "WASSEL_DB_HOST"
	EnvDBUser = "WASSEL_DB_USER"
	EnvDBName = "WASSEL_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Invoicing    InvoicingConfig
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
	Env          string `envconfig:"WASSEL_APP_ENV" required:"true"`
	Port         string `envconfig:"WASSEL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WASSEL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WASSEL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"WASSEL_DB_DSN"`
	Driver string `envconfig:"WASSEL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WASSEL_DB_HOST"`
	LegacyPort     int    `envconfig:"WASSEL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WASSEL_DB_USER"`
	LegacyPassword string `envconfig:"WASSEL_DB_PASSWORD"`
	LegacyName     string `envconfig:"WASSEL_DB_NAME"`
	LegacySSLMode  string `envconfig:"WASSEL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WASSEL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WASSEL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WASSEL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WASSEL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WASSEL_REDIS_URL"`
	Address      string        `envconfig:"WASSEL_REDIS_ADDR"`
	Password     string        `envconfig:"WASSEL_REDIS_PASSWORD"`
	DB           int           `envconfig:"WASSEL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WASSEL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WASSEL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WASSEL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WASSEL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WASSEL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WASSEL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WASSEL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WASSEL_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WASSEL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WASSEL_AUTO_MIGRATE" default:"false"`
}

type InvoicingConfig struct {
	IdempotencyTTL      time.Duration `envconfig:"WASSEL_INVOICING_IDEMPOTENCY_TTL" default:"168h"`
	MaxOrdersPerInvoice int           `envconfig:"WASSEL_INVOICING_MAX_ORDERS" default:"500"`
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
