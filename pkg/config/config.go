package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "reelist"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv   = "REELIST_APP_ENV"
	EnvPort     = "REELIST_APP_PORT"
	EnvDBDSN    = "REELIST_DB_DSN"
	EnvDBHost   = "REELIST_DB_HOST"
	EnvDBUser   = "REELIST_DB_USER"
	EnvDBName   = "REELIST_DB_NAME"
	EnvRedisURL = "REELIST_REDIS_URL"
	EnvJWTKey   = "REELIST_JWT_SECRET"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"REELIST_APP_ENV" required:"true"`
	Port         string `envconfig:"REELIST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"REELIST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REELIST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"REELIST_DB_DSN"`
	Driver string `envconfig:"REELIST_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"REELIST_DB_HOST"`
	LegacyPort     int    `envconfig:"REELIST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"REELIST_DB_USER"`
	LegacyPassword string `envconfig:"REELIST_DB_PASSWORD"`
	LegacyName     string `envconfig:"REELIST_DB_NAME"`
	LegacySSLMode  string `envconfig:"REELIST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REELIST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REELIST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REELIST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REELIST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REELIST_REDIS_URL" required:"true"`
	Address      string        `envconfig:"REELIST_REDIS_ADDR"`
	Password     string        `envconfig:"REELIST_REDIS_PASSWORD"`
	DB           int           `envconfig:"REELIST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REELIST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REELIST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REELIST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REELIST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REELIST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig describes how to validate access tokens minted by the external
// identity provider. This service never issues tokens.
type JWTConfig struct {
	Secret string `envconfig:"REELIST_JWT_SECRET" required:"true"`
	Issuer string `envconfig:"REELIST_JWT_ISSUER" required:"true"`
}

type RateLimitConfig struct {
	MutationWindow time.Duration `envconfig:"REELIST_RATE_LIMIT_MUTATION_WINDOW" default:"1m"`
	MutationLimit  int           `envconfig:"REELIST_RATE_LIMIT_MUTATION_LIMIT" default:"120"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"REELIST_AUTO_MIGRATE" default:"false"`
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
