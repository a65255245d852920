package config

import "time"

type Config struct {
	Host    string
	SpaceID string
	Auth    AuthConfig
	Client  ClientConfig
	Poll    PollConfig
	Web     WebConfig
	Profile ProfileConfig
}

type AuthConfig struct {
	// Token is a Databricks personal access token. Used when set and no
	// OAuth client credentials are configured.
	Token string

	// ClientID and ClientSecret enable the OAuth machine-to-machine flow.
	ClientID     string
	ClientSecret string
}

type ClientConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

type PollConfig struct {
	Interval time.Duration
	Timeout  time.Duration
}

type WebConfig struct {
	Addr string
}

// ProfileConfig points at the optional yaml space profile (welcome copy,
// suggestion prompts) rendered by the UI.
type ProfileConfig struct {
	Path string
}
