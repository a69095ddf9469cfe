package mediacredit_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	mediacredit "github.com/goliatone/go-media-credit"
)

func TestConfigValidateExportsSentinels(t *testing.T) {
	cfg := mediacredit.DefaultConfig()
	cfg.Storage.Driver = "sqlite"

	if err := cfg.Validate(); !errors.Is(err, mediacredit.ErrStorageDSNRequired) {
		t.Fatalf("expected ErrStorageDSNRequired, got %v", err)
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "media-credit.toml")
	doc := "[credits]\norganization = \"Daily Planet\"\ncredit_at_end = true\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := mediacredit.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Credits.Organization != "Daily Planet" || !cfg.Credits.CreditAtEnd {
		t.Fatalf("unexpected credits: %+v", cfg.Credits)
	}
	if cfg.StorageDriver() != "memory" {
		t.Fatalf("expected default storage to survive, got %q", cfg.StorageDriver())
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := mediacredit.LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
