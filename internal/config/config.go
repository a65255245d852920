package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func Load() (*Config, error) {
	host := os.Getenv("DATABRICKS_HOST")
	if host == "" {
		return nil, fmt.Errorf("DATABRICKS_HOST is required")
	}

	spaceID := os.Getenv("GENIE_SPACE_ID")
	if spaceID == "" {
		return nil, fmt.Errorf("GENIE_SPACE_ID is required")
	}

	authConfig, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Host:    host,
		SpaceID: spaceID,
		Auth:    authConfig,
		Client:  loadClientConfig(),
		Poll:    loadPollConfig(),
		Web:     loadWebConfig(),
		Profile: loadProfileConfig(),
	}, nil
}

func loadAuthConfig() (AuthConfig, error) {
	cfg := AuthConfig{
		Token:        os.Getenv("DATABRICKS_TOKEN"),
		ClientID:     os.Getenv("DATABRICKS_CLIENT_ID"),
		ClientSecret: os.Getenv("DATABRICKS_CLIENT_SECRET"),
	}

	if cfg.Token == "" && (cfg.ClientID == "" || cfg.ClientSecret == "") {
		return cfg, fmt.Errorf("either DATABRICKS_TOKEN or DATABRICKS_CLIENT_ID + DATABRICKS_CLIENT_SECRET must be set")
	}

	return cfg, nil
}

func loadClientConfig() ClientConfig {
	return ClientConfig{
		MaxAttempts: intEnv("GENIE_MAX_ATTEMPTS", 5),
		BaseDelay:   durationEnv("GENIE_RETRY_BASE_DELAY", 500*time.Millisecond),
	}
}

func loadPollConfig() PollConfig {
	return PollConfig{
		Interval: durationEnv("GENIE_POLL_INTERVAL", 2*time.Second),
		Timeout:  durationEnv("GENIE_POLL_TIMEOUT", 300*time.Second),
	}
}

func loadWebConfig() WebConfig {
	addr := os.Getenv("GENIE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return WebConfig{Addr: addr}
}

func loadProfileConfig() ProfileConfig {
	path := os.Getenv("GENIE_SPACE_PROFILE")
	if path == "" {
		path = "genie.yml"
	}
	return ProfileConfig{Path: path}
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
