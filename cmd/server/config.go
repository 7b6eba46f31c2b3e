package main

import (
	"fmt"
	"log/slog"

	"github.com/phrazzld/tasksplit/internal/config"
)

// loadAppConfig loads configuration from the environment, .env and the
// optional config file.
func loadAppConfig(configFile string) (*config.Config, error) {
	cfg, err := config.LoadFrom(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// initializeApp loads configuration and sets up logging.
func initializeApp(configFile string) (*config.Config, *slog.Logger, error) {
	cfg, err := loadAppConfig(configFile)
	if err != nil {
		return nil, nil, err
	}

	log, err := setupAppLogger(cfg)
	if err != nil {
		return nil, nil, err
	}

	log.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"base_path", cfg.Server.BasePath)
	log.Debug("Auth configuration",
		"jwt_secret_present", cfg.Auth.JWTSecret != "",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"allow_admin_registration", cfg.Auth.AllowAdminRegistration)

	return cfg, log, nil
}
