package config

import (
	"os"
	"path/filepath"
	"testing"
)

// unsetenv clears keys for the test; t.Setenv restores them afterwards.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetenv(t, "API_ADDRESS", "DEFAULT_TAX_RATE")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Address != ":8080" || cfg.DefaultTaxRate != 0.21 {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	unsetenv(t, "API_ADDRESS", "DEFAULT_TAX_RATE")

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("API_ADDRESS=:9090\nDEFAULT_TAX_RATE=0.26\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Address != ":9090" || cfg.DefaultTaxRate != 0.26 {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadRejectsTaxRate(t *testing.T) {
	t.Setenv("DEFAULT_TAX_RATE", "1.5")
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Fatal("expected error for tax rate 1.5")
	}
}
