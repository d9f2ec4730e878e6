package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounty.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ClaimFee != DefaultClaimFee {
		t.Fatalf("unexpected default claim fee %d", cfg.ClaimFee)
	}
	if cfg.RefundFee != 0 {
		t.Fatalf("refund transfers default to zero fee, got %d", cfg.RefundFee)
	}
	if cfg.DataDir == "" {
		t.Fatalf("default data dir must be set")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.ClaimFee != cfg.ClaimFee || reloaded.DataDir != cfg.DataDir {
		t.Fatalf("reload mismatch: %+v vs %+v", reloaded, cfg)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounty.toml")
	body := "DataDir = \"/var/lib/openbounty\"\nClaimFee = 2500\nRefundFee = 10\nPaused = [\"bounty\"]\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ClaimFee != 2500 || cfg.RefundFee != 10 {
		t.Fatalf("unexpected fees: %+v", cfg)
	}
	if len(cfg.Paused) != 1 || cfg.Paused[0] != "bounty" {
		t.Fatalf("unexpected pause set: %v", cfg.Paused)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bounty.toml")
	if err := os.WriteFile(path, []byte("LegacyFeeSchedule = true\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected unknown field error")
	}
}

func TestValidateRejectsBlankPauseEntries(t *testing.T) {
	cfg := &Config{DataDir: "./data", Paused: []string{" "}}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
}
