package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesDocumentedConstants(t *testing.T) {
	cfg := Default()
	if cfg.ListenAddress != ":8090" || cfg.AdminListenAddress != ":8091" {
		t.Fatalf("listen addresses = (%s, %s), want (:8090, :8091)", cfg.ListenAddress, cfg.AdminListenAddress)
	}
	if cfg.MissedPollThreshold != 3 {
		t.Fatalf("MissedPollThreshold = %d, want 3", cfg.MissedPollThreshold)
	}
	if cfg.QueueMultiplier != 1.5 {
		t.Fatalf("QueueMultiplier = %v, want 1.5", cfg.QueueMultiplier)
	}
}

func TestLoadFallsBackToDefaultsWithoutConfigFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Environment != defaultEnv {
		t.Fatalf("Environment = %s, want %s", cfg.Environment, defaultEnv)
	}
	if cfg.ListenAddress != Default().ListenAddress {
		t.Fatalf("ListenAddress = %s, want default %s", cfg.ListenAddress, Default().ListenAddress)
	}
}

func TestLoadAppliesSettingsFileOverride(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	settings := "environment=dev\nlisten_address=:9000\n"
	if err := os.WriteFile(filepath.Join(dir, "config", "setting.ini"), []byte(settings), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ListenAddress != ":9000" {
		t.Fatalf("ListenAddress = %s, want :9000", cfg.ListenAddress)
	}
}

func TestParseRosterOverrides(t *testing.T) {
	out := parseRosterOverrides("A=00:00-08:05,B=07:55-16:05")
	if out["A"].Start != "00:00" || out["A"].End != "08:05" {
		t.Fatalf("team A override = %+v", out["A"])
	}
	if out["B"].Start != "07:55" || out["B"].End != "16:05" {
		t.Fatalf("team B override = %+v", out["B"])
	}
}

func TestParseRosterOverridesEmptyInput(t *testing.T) {
	out := parseRosterOverrides("")
	if len(out) != 0 {
		t.Fatalf("len(out) = %d, want 0 for empty input", len(out))
	}
}
