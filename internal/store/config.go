package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"
)

var (
	ErrConfigInvalid = errors.New("invalid config")
	ErrConfigRead    = errors.New("cannot read config")
)

const (
	EnvConfigDir   = "TASKTREE_CONFIG_DIR"
	EnvDir         = "TASKTREE_DIR"
	EnvDriver      = "TASKTREE_DRIVER"
	EnvPostgresDSN = "TASKTREE_POSTGRES_DSN"
	EnvProject     = "TASKTREE_PROJECT"
)

// Config is the user-level configuration file. It is JSON with comments and trailing commas
// allowed. Zero values mean "use the default".
type Config struct {
	// Dir pins the workspace directory instead of discovering .tasktree upwards.
	Dir            string `json:"dir,omitempty"`
	Driver         string `json:"driver,omitempty"`
	PostgresDSN    string `json:"postgresDsn,omitempty"`
	CurrentProject string `json:"currentProject,omitempty"`
	// MetricsFile, when set, receives a Prometheus text snapshot after each command.
	MetricsFile string `json:"metricsFile,omitempty"`

	Engine EngineConfig `json:"engine"`
}

// EngineConfig overrides drag classification and tree options. Nil pointers keep defaults.
type EngineConfig struct {
	MaxDepth           *int     `json:"maxDepth,omitempty"`
	UnnestMargin       *float64 `json:"unnestMargin,omitempty"`
	HandleWidth        *float64 `json:"handleWidth,omitempty"`
	NestBandLow        *float64 `json:"nestBandLow,omitempty"`
	NestBandHigh       *float64 `json:"nestBandHigh,omitempty"`
	UpwardThreshold    *float64 `json:"upwardThreshold,omitempty"`
	DownwardThreshold  *float64 `json:"downwardThreshold,omitempty"`
	AllowCompletedDrag bool     `json:"allowCompletedDrag,omitempty"`
	AllowCrossParent   bool     `json:"allowCrossParent,omitempty"`
}

func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "tasktree"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfig reads the config file. A missing file yields an empty config.
func LoadConfig() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrConfigRead, path, err)
	}
	cfg, err := parseConfig(b)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}
	return cfg, nil
}

func parseConfig(data []byte) (*Config, error) {
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONC: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if cfg.Driver != "" {
		if _, err := ParseDriver(cfg.Driver); err != nil {
			return nil, err
		}
	}
	if cfg.Engine.MaxDepth != nil && *cfg.Engine.MaxDepth < 0 {
		return nil, errors.New("engine.maxDepth must be >= 0")
	}
	return &cfg, nil
}

// SaveConfig writes cfg atomically, keeping the previous file as config.json.bak.
func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomic.WriteFile(path+".bak", bytes.NewReader(prev))
	}
	return atomic.WriteFile(path, bytes.NewReader(append(b, '\n')))
}

// ApplyEnv overlays TASKTREE_* environment variables onto cfg.
func (cfg *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(EnvDir)); v != "" {
		cfg.Dir = v
	}
	if v := strings.TrimSpace(getenv(EnvDriver)); v != "" {
		cfg.Driver = v
	}
	if v := strings.TrimSpace(getenv(EnvPostgresDSN)); v != "" {
		cfg.PostgresDSN = v
	}
	if v := strings.TrimSpace(getenv(EnvProject)); v != "" {
		cfg.CurrentProject = v
	}
}
