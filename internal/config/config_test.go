package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.hcl"))
	if err != nil {
		t.Fatalf("Load failed on missing file: %v", err)
	}
	if cfg != Default() {
		t.Errorf("got %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoadOverlaysPresentFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.hcl")
	contents := `
shell = "/usr/bin/zsh"
default_cols = 132
log_level = "debug"
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Shell != "/usr/bin/zsh" {
		t.Errorf("Shell = %q, want /usr/bin/zsh", cfg.Shell)
	}
	if cfg.DefaultCols != 132 {
		t.Errorf("DefaultCols = %d, want 132", cfg.DefaultCols)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	// Untouched fields keep their defaults.
	if cfg.DefaultRows != Default().DefaultRows {
		t.Errorf("DefaultRows = %d, want default %d", cfg.DefaultRows, Default().DefaultRows)
	}
}

func TestLoadMalformedFileReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.hcl")
	if err := os.WriteFile(path, []byte("this is not valid hcl {{{"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Error("expected an error for malformed HCL")
	}
}

func TestSpawnLockEnabledDefaultsTrue(t *testing.T) {
	cfg := Default()
	if !cfg.SpawnLockEnabled() {
		t.Error("SpawnLockEnabled() should default to true")
	}
}

func TestSpawnLockEnabledCanBeDisabled(t *testing.T) {
	cfg := Default()
	disabled := false
	cfg.EnableSpawnLock = &disabled
	if cfg.SpawnLockEnabled() {
		t.Error("SpawnLockEnabled() should honor an explicit false")
	}
}
