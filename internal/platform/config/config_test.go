package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"quotawin/internal/platform/config"
	apperrors "quotawin/internal/platform/errors"
)

func TestNewAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Store.Driver != config.DriverSQLite || cfg.Store.DSN != filepath.Join(dir, "quotawin.db") {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Window.DurationMinutes != 300 || cfg.Window.MinUsefulMinutes != 30 {
		t.Fatalf("unexpected window config: %+v", cfg.Window)
	}
	if cfg.Recommend.LeadInMinutes != 15 || cfg.Recommend.SaturationDays != 5 || cfg.Recommend.HistoryDays != 30 {
		t.Fatalf("unexpected recommend config: %+v", cfg.Recommend)
	}
	if cfg.Sync.Backend != config.SyncBackendFile || cfg.Sync.Document != config.DefaultSyncDocument {
		t.Fatalf("unexpected sync config: %+v", cfg.Sync)
	}
}

func TestNewReadsConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "workday:\n  start: \"06:00\"\n  end: \"18:00\"\nlog:\n  level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("QUOTAWIN_RECOMMEND_HISTORY_DAYS", "14")

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Workday.Start != "06:00" || cfg.Workday.End != "18:00" {
		t.Fatalf("config file not applied: %+v", cfg.Workday)
	}
	if cfg.Log.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Log.Level)
	}
	if cfg.Recommend.HistoryDays != 14 {
		t.Fatalf("env override not applied: %d", cfg.Recommend.HistoryDays)
	}
}

func TestNewRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("workday:\n  start: \"9:5\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.New(dir); !errors.Is(err, apperrors.ErrInvalidTimeFormat) {
		t.Fatalf("expected invalid time format, got %v", err)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	cfg.Sync.Backend = "ftp"
	if err := cfg.Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	cfg.Sync.Backend = config.SyncBackendS3
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected missing bucket error")
	}
}

func TestNewRequiresDataDir(t *testing.T) {
	t.Parallel()
	if _, err := config.New(""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestValidateRequiresUsefulCoverage(t *testing.T) {
	t.Parallel()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	cfg.Window.MinUsefulMinutes = 0
	if err := cfg.Validate(); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
