package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix shared by every configuration environment variable,
// e.g. TASKSPLIT_DATABASE_URL.
const EnvPrefix = "TASKSPLIT"

// Default values applied before files and environment variables are read.
const (
	DefaultPort                 = 8080
	DefaultLogLevel             = "info"
	DefaultBasePath             = "/api"
	DefaultShutdownTimeout      = 10
	DefaultMaxOpenConns         = 25
	DefaultMaxIdleConns         = 5
	DefaultTokenLifetimeMinutes = 60
	DefaultBCryptCost           = 10
	DefaultMaxUploadBytes       = 5 << 20
)

// keys lists every configuration key so that each one can be bound to its
// environment variable. viper's AutomaticEnv alone does not populate keys
// during Unmarshal unless they are known.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.base_path",
	"server.cors_allowed_origins",
	"server.shutdown_timeout_seconds",
	"database.url",
	"database.max_open_conns",
	"database.max_idle_conns",
	"auth.jwt_secret",
	"auth.token_lifetime_minutes",
	"auth.bcrypt_cost",
	"auth.allow_admin_registration",
	"lists.max_upload_bytes",
}

// Load configuration from environment variables and optionally config files.
// A .env file in the working directory is loaded into the process environment
// first (existing variables win), then config.yaml is read if present.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom behaves like Load but reads the given config file instead of
// searching for config.yaml. A missing explicit file is an error.
func LoadFrom(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	cfg.Server.BasePath = strings.TrimRight(cfg.Server.BasePath, "/")

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.log_level", DefaultLogLevel)
	v.SetDefault("server.base_path", DefaultBasePath)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout_seconds", DefaultShutdownTimeout)
	v.SetDefault("database.max_open_conns", DefaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", DefaultMaxIdleConns)
	v.SetDefault("auth.token_lifetime_minutes", DefaultTokenLifetimeMinutes)
	v.SetDefault("auth.bcrypt_cost", DefaultBCryptCost)
	v.SetDefault("auth.allow_admin_registration", false)
	v.SetDefault("lists.max_upload_bytes", DefaultMaxUploadBytes)
}
