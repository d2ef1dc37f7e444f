package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"quotawin/internal/platform/clock"
	apperrors "quotawin/internal/platform/errors"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"

	SyncBackendFile = "file"
	SyncBackendS3   = "s3"

	DefaultSyncDocument = "quotawin-sync.json"
)

type Config struct {
	DataDir   string
	Store     StoreConfig     `mapstructure:"store"`
	Window    WindowConfig    `mapstructure:"window"`
	Recommend RecommendConfig `mapstructure:"recommend"`
	Workday   WorkdayConfig   `mapstructure:"workday"`
	Sync      SyncConfig      `mapstructure:"sync"`
	Log       LogConfig       `mapstructure:"log"`
	Serve     ServeConfig     `mapstructure:"serve"`
}

type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type WindowConfig struct {
	DurationMinutes  int `mapstructure:"duration_minutes"`
	MinUsefulMinutes int `mapstructure:"min_useful_minutes"`
}

type RecommendConfig struct {
	LeadInMinutes  int `mapstructure:"lead_in_minutes"`
	SaturationDays int `mapstructure:"saturation_days"`
	HistoryDays    int `mapstructure:"history_days"`
}

type WorkdayConfig struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

type SyncConfig struct {
	Backend  string   `mapstructure:"backend"`
	Dir      string   `mapstructure:"dir"`
	Document string   `mapstructure:"document"`
	S3       S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	Prefix          string `mapstructure:"prefix"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

// New loads configuration for dataDir from defaults, <dataDir>/config.yaml,
// <dataDir>/.env and QUOTAWIN_* environment variables, later sources winning.
func New(dataDir string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	absDir, err := filepath.Abs(dataDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve data dir: %w", err)
	}

	envFile := filepath.Join(absDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v, absDir)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(absDir)
	v.SetEnvPrefix("QUOTAWIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.DataDir = absDir
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, dataDir string) {
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.dsn", filepath.Join(dataDir, "quotawin.db"))
	v.SetDefault("window.duration_minutes", 300)
	v.SetDefault("window.min_useful_minutes", 30)
	v.SetDefault("recommend.lead_in_minutes", 15)
	v.SetDefault("recommend.saturation_days", 5)
	v.SetDefault("recommend.history_days", 30)
	v.SetDefault("workday.start", "09:00")
	v.SetDefault("workday.end", "17:00")
	v.SetDefault("sync.backend", SyncBackendFile)
	v.SetDefault("sync.dir", filepath.Join(dataDir, "sync"))
	v.SetDefault("sync.document", DefaultSyncDocument)
	v.SetDefault("sync.s3.bucket", "")
	v.SetDefault("sync.s3.region", "us-east-1")
	v.SetDefault("sync.s3.endpoint", "")
	v.SetDefault("sync.s3.prefix", "")
	v.SetDefault("sync.s3.access_key_id", "")
	v.SetDefault("sync.s3.secret_access_key", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "console")
	v.SetDefault("serve.addr", "127.0.0.1:8787")
}

func (c Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("%w: store.driver %q", apperrors.ErrInvalidInput, c.Store.Driver)
	}
	if c.Store.DSN == "" {
		return fmt.Errorf("%w: store.dsn is required", apperrors.ErrInvalidInput)
	}
	if c.Window.DurationMinutes <= 0 {
		return fmt.Errorf("%w: window.duration_minutes must be positive", apperrors.ErrInvalidInput)
	}
	if c.Window.MinUsefulMinutes < 1 || c.Window.MinUsefulMinutes > c.Window.DurationMinutes {
		return fmt.Errorf("%w: window.min_useful_minutes must be within [1, duration]", apperrors.ErrInvalidInput)
	}
	if c.Recommend.LeadInMinutes < 0 {
		return fmt.Errorf("%w: recommend.lead_in_minutes must not be negative", apperrors.ErrInvalidInput)
	}
	if c.Recommend.SaturationDays <= 0 {
		return fmt.Errorf("%w: recommend.saturation_days must be positive", apperrors.ErrInvalidInput)
	}
	if c.Recommend.HistoryDays <= 0 {
		return fmt.Errorf("%w: recommend.history_days must be positive", apperrors.ErrInvalidInput)
	}
	if _, err := clock.ParseTimeToMinutes(c.Workday.Start); err != nil {
		return fmt.Errorf("workday.start: %w", err)
	}
	if _, err := clock.ParseTimeToMinutes(c.Workday.End); err != nil {
		return fmt.Errorf("workday.end: %w", err)
	}
	switch c.Sync.Backend {
	case SyncBackendFile:
		if c.Sync.Dir == "" {
			return fmt.Errorf("%w: sync.dir is required for the file backend", apperrors.ErrInvalidInput)
		}
	case SyncBackendS3:
		if c.Sync.S3.Bucket == "" {
			return fmt.Errorf("%w: sync.s3.bucket is required for the s3 backend", apperrors.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: sync.backend %q", apperrors.ErrInvalidInput, c.Sync.Backend)
	}
	if c.Sync.Document == "" {
		return fmt.Errorf("%w: sync.document is required", apperrors.ErrInvalidInput)
	}
	return nil
}
