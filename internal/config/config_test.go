package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABRICKS_HOST", "example.cloud.databricks.com")
	t.Setenv("GENIE_SPACE_ID", "space-1")
	t.Setenv("DATABRICKS_TOKEN", "dapi-test")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Client.MaxAttempts != 5 {
		t.Errorf("unexpected max attempts: %d", cfg.Client.MaxAttempts)
	}
	if cfg.Client.BaseDelay != 500*time.Millisecond {
		t.Errorf("unexpected base delay: %s", cfg.Client.BaseDelay)
	}
	if cfg.Poll.Interval != 2*time.Second || cfg.Poll.Timeout != 300*time.Second {
		t.Errorf("unexpected poll config: %+v", cfg.Poll)
	}
	if cfg.Web.Addr != ":8080" {
		t.Errorf("unexpected addr: %s", cfg.Web.Addr)
	}
	if cfg.Profile.Path != "genie.yml" {
		t.Errorf("unexpected profile path: %s", cfg.Profile.Path)
	}
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("GENIE_MAX_ATTEMPTS", "3")
	t.Setenv("GENIE_RETRY_BASE_DELAY", "250ms")
	t.Setenv("GENIE_POLL_INTERVAL", "1s")
	t.Setenv("GENIE_POLL_TIMEOUT", "2m")
	t.Setenv("GENIE_ADDR", ":9090")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Client.MaxAttempts != 3 || cfg.Client.BaseDelay != 250*time.Millisecond {
		t.Errorf("unexpected client config: %+v", cfg.Client)
	}
	if cfg.Poll.Interval != time.Second || cfg.Poll.Timeout != 2*time.Minute {
		t.Errorf("unexpected poll config: %+v", cfg.Poll)
	}
	if cfg.Web.Addr != ":9090" {
		t.Errorf("unexpected addr: %s", cfg.Web.Addr)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	setRequired(t)
	t.Setenv("GENIE_MAX_ATTEMPTS", "zero")
	t.Setenv("GENIE_POLL_INTERVAL", "-5s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Client.MaxAttempts != 5 {
		t.Errorf("expected fallback max attempts, got %d", cfg.Client.MaxAttempts)
	}
	if cfg.Poll.Interval != 2*time.Second {
		t.Errorf("expected fallback interval, got %s", cfg.Poll.Interval)
	}
}

func TestLoadRequiresHostAndSpace(t *testing.T) {
	t.Setenv("DATABRICKS_HOST", "")
	t.Setenv("GENIE_SPACE_ID", "space-1")
	t.Setenv("DATABRICKS_TOKEN", "dapi-test")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "DATABRICKS_HOST") {
		t.Errorf("expected host error, got %v", err)
	}

	t.Setenv("DATABRICKS_HOST", "example.cloud.databricks.com")
	t.Setenv("GENIE_SPACE_ID", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "GENIE_SPACE_ID") {
		t.Errorf("expected space error, got %v", err)
	}
}

func TestLoadRequiresCredentials(t *testing.T) {
	t.Setenv("DATABRICKS_HOST", "example.cloud.databricks.com")
	t.Setenv("GENIE_SPACE_ID", "space-1")
	t.Setenv("DATABRICKS_TOKEN", "")
	t.Setenv("DATABRICKS_CLIENT_ID", "")
	t.Setenv("DATABRICKS_CLIENT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error without credentials")
	}

	// client id alone is not enough
	t.Setenv("DATABRICKS_CLIENT_ID", "client-1")
	if _, err := Load(); err == nil {
		t.Fatal("expected error with client id but no secret")
	}

	t.Setenv("DATABRICKS_CLIENT_SECRET", "secret")
	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error with full client credentials: %v", err)
	}
}
