package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"DATABASE_PATH", "PLATFORM_FEE_PERCENT", "MIRROR_POLLING_INTERVAL", "FORMANCE_STACK_URL", "API_LISTEN_ADDR"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Path != "campaigns.db" {
		t.Errorf("Expected campaigns.db, got %s", cfg.Database.Path)
	}
	if !cfg.Program.FeePercent.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected 10%% fee, got %s", cfg.Program.FeePercent)
	}
	if cfg.Mirror.PollingInterval != 15*time.Second {
		t.Errorf("Expected 15s polling interval, got %v", cfg.Mirror.PollingInterval)
	}
	if cfg.Formance.Enabled() {
		t.Error("Expected Formance to be disabled without credentials")
	}
	if cfg.API.ListenAddr != ":8080" {
		t.Errorf("Expected :8080, got %s", cfg.API.ListenAddr)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PLATFORM_FEE_PERCENT", "2.5")
	t.Setenv("MIRROR_BATCH_SIZE", "10")
	t.Setenv("FORMANCE_STACK_URL", "http://localhost:8080")
	t.Setenv("FORMANCE_CLIENT_ID", "id")
	t.Setenv("FORMANCE_CLIENT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Program.FeePercent.Equal(decimal.RequireFromString("2.5")) {
		t.Errorf("Expected 2.5%% fee, got %s", cfg.Program.FeePercent)
	}
	if cfg.Mirror.BatchSize != 10 {
		t.Errorf("Expected batch size 10, got %d", cfg.Mirror.BatchSize)
	}
	if !cfg.Formance.Enabled() {
		t.Error("Expected Formance to be enabled")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := map[string]string{
		"PLATFORM_FEE_PERCENT":    "ten",
		"MIRROR_POLLING_INTERVAL": "soon",
		"API_REQUEST_TIMEOUT":     "1 minute",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%q", key, value)
			}
		})
	}
}
