package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "littleshop"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "LITTLESHOP_DB_DSN"
	EnvDBHost = "LITTLESHOP_DB_HOST"
	EnvDBUser = "LITTLESHOP_DB_USER"
	EnvDBName = "LITTLESHOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
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
	Env          string `envconfig:"LITTLESHOP_APP_ENV" default:"dev"`
	Port         string `envconfig:"LITTLESHOP_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"LITTLESHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"LITTLESHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"LITTLESHOP_DB_DSN"`

	LegacyHost     string `envconfig:"LITTLESHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"LITTLESHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LITTLESHOP_DB_USER"`
	LegacyPassword string `envconfig:"LITTLESHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"LITTLESHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"LITTLESHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns int `envconfig:"LITTLESHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns int `envconfig:"LITTLESHOP_DB_MAX_IDLE_CONNS" default:"10"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"LITTLESHOP_AUTO_MIGRATE" default:"false"`
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
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:     db.LegacyName,
		RawQuery: url.Values{"sslmode": []string{db.LegacySSLMode}}.Encode(),
	}
	db.DSN = u.String()
	return nil
}
