package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	minRateWindowMS           = 10
	maxRateWindowMS           = 60000
	minAssembleTimeoutSeconds = 1
	maxAssembleTimeoutSeconds = 600
	minTickIntervalSeconds    = 10
	maxTickIntervalSeconds    = 86400
	minRetentionDays          = 1
	maxRetentionDays          = 3650
	minCleanupIntervalHours   = 1
	maxCleanupIntervalHours   = 720
)

type Config struct {
	Sampler  SamplerConfig  `toml:"sampler"`
	Storage  StorageConfig  `toml:"storage"`
	Registry RegistryConfig `toml:"registry"`
	Cleanup  CleanupConfig  `toml:"cleanup"`
}

type SamplerConfig struct {
	// RateWindowMS is the delay between the two CPU counter reads. Smaller
	// is more responsive, larger is smoother.
	RateWindowMS           int `toml:"rate_window_ms"`
	AssembleTimeoutSeconds int `toml:"assemble_timeout_seconds"`
	TickIntervalSeconds    int `toml:"tick_interval_seconds"`
}

type StorageConfig struct {
	DBPath      string `toml:"db_path"`
	CallLogPath string `toml:"call_log_path"`
}

type RegistryConfig struct {
	SystemAppDirs []string `toml:"system_app_dirs"`
	UserAppDirs   []string `toml:"user_app_dirs"`
}

type CleanupConfig struct {
	RetentionDays int `toml:"retention_days"`
	IntervalHours int `toml:"interval_hours"`
}

func DefaultConfig() *Config {
	return &Config{
		Sampler: SamplerConfig{
			RateWindowMS:           360,
			AssembleTimeoutSeconds: 30,
			TickIntervalSeconds:    900,
		},
		Storage: StorageConfig{
			DBPath:      "/var/lib/carat-sampler/samples.db",
			CallLogPath: "/var/lib/carat-sampler/calls.db",
		},
		Registry: RegistryConfig{
			SystemAppDirs: []string{"/usr/share/applications", "/usr/local/share/applications"},
			UserAppDirs:   []string{},
		},
		Cleanup: CleanupConfig{
			RetentionDays: 30,
			IntervalHours: 24,
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return NormalizeAndValidate(cfg)
}

func NormalizeAndValidate(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	sanitized := *cfg

	var err error
	sanitized.Storage.DBPath, err = sanitizePath("storage.db_path", sanitized.Storage.DBPath)
	if err != nil {
		return nil, err
	}
	sanitized.Storage.CallLogPath, err = sanitizePath("storage.call_log_path", sanitized.Storage.CallLogPath)
	if err != nil {
		return nil, err
	}
	sanitized.Registry.SystemAppDirs, err = sanitizePaths("registry.system_app_dirs", sanitized.Registry.SystemAppDirs)
	if err != nil {
		return nil, err
	}
	sanitized.Registry.UserAppDirs, err = sanitizePaths("registry.user_app_dirs", sanitized.Registry.UserAppDirs)
	if err != nil {
		return nil, err
	}

	if err := validateRange("sampler.rate_window_ms", sanitized.Sampler.RateWindowMS, minRateWindowMS, maxRateWindowMS); err != nil {
		return nil, err
	}
	if err := validateRange("sampler.assemble_timeout_seconds", sanitized.Sampler.AssembleTimeoutSeconds, minAssembleTimeoutSeconds, maxAssembleTimeoutSeconds); err != nil {
		return nil, err
	}
	if err := validateRange("sampler.tick_interval_seconds", sanitized.Sampler.TickIntervalSeconds, minTickIntervalSeconds, maxTickIntervalSeconds); err != nil {
		return nil, err
	}
	if err := validateRange("cleanup.retention_days", sanitized.Cleanup.RetentionDays, minRetentionDays, maxRetentionDays); err != nil {
		return nil, err
	}
	if err := validateRange("cleanup.interval_hours", sanitized.Cleanup.IntervalHours, minCleanupIntervalHours, maxCleanupIntervalHours); err != nil {
		return nil, err
	}

	return &sanitized, nil
}

func Save(path string, cfg *Config) error {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return fmt.Errorf("config path must not be empty")
	}

	sanitized, err := NormalizeAndValidate(cfg)
	if err != nil {
		return err
	}

	var data bytes.Buffer
	if err := toml.NewEncoder(&data).Encode(sanitized); err != nil {
		return fmt.Errorf("encode config TOML: %w", err)
	}

	dir := filepath.Dir(trimmedPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data.Bytes()); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, trimmedPath); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	tmpPath = ""

	return nil
}

func sanitizePath(name, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%s must not be empty", name)
	}
	cleaned := filepath.Clean(trimmed)
	if !filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%s must be an absolute path, got %q", name, value)
	}
	return cleaned, nil
}

func sanitizePaths(name string, values []string) ([]string, error) {
	cleaned := make([]string, 0, len(values))
	for i, v := range values {
		p, err := sanitizePath(fmt.Sprintf("%s[%d]", name, i), v)
		if err != nil {
			return nil, err
		}
		cleaned = append(cleaned, p)
	}
	return cleaned, nil
}

func validateRange(name string, value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, min, max, value)
	}

	return nil
}
