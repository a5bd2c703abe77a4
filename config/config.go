// Package config loads the service configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Predict   PredictConfig   `yaml:"predict"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	Timeout        time.Duration `yaml:"timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

type ArtifactsConfig struct {
	Dir                    string        `yaml:"dir"`
	ColumnsFile            string        `yaml:"columns_file"`
	ModelFile              string        `yaml:"model_file"`
	Watch                  bool          `yaml:"watch"`
	WatchDebounce          time.Duration `yaml:"watch_debounce"`
	FallbackOnCorruptModel bool          `yaml:"fallback_on_corrupt_model"`
}

type PredictConfig struct {
	// CacheSize is the number of cached estimates; 0 disables the cache.
	CacheSize int `yaml:"cache_size"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb"`
	MaxBackups  int    `yaml:"max_backups"`
	MaxAgeDays  int    `yaml:"max_age_days"`
	Compress    bool   `yaml:"compress"`
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:           5000,
			Timeout:        30 * time.Second,
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   1 << 20,
		},
		Artifacts: ArtifactsConfig{
			Dir:                    "artifacts",
			ColumnsFile:            "columns.json",
			ModelFile:              "banglore_home_prices_model.json",
			Watch:                  true,
			WatchDebounce:          250 * time.Millisecond,
			FallbackOnCorruptModel: true,
		},
		Predict: PredictConfig{
			CacheSize: 1024,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  100,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
	}
}

// Load reads path over the defaults, then applies environment overrides.
func Load(path string) (*Config, error) {
	config := Default()

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadOrDefault behaves like Load but falls back to Default when path does
// not exist. The bool reports whether the file was found.
func LoadOrDefault(path string) (*Config, bool, error) {
	config, err := Load(path)
	if err == nil {
		return config, true, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, false, err
	}
	config = Default()
	if err := config.ApplyEnv(); err != nil {
		return nil, false, err
	}
	return config, false, config.Validate()
}

// ApplyEnv honours PORT and ARTIFACTS_DIR for container platforms.
func (c *Config) ApplyEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", port, err)
		}
		c.HTTP.Port = p
	}
	if dir := os.Getenv("ARTIFACTS_DIR"); dir != "" {
		c.Artifacts.Dir = dir
	}
	return nil
}

func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if c.Artifacts.Dir == "" {
		return errors.New("artifacts.dir is required")
	}
	if c.Artifacts.ColumnsFile == "" || c.Artifacts.ModelFile == "" {
		return errors.New("artifacts.columns_file and artifacts.model_file are required")
	}
	if c.Predict.CacheSize < 0 {
		return errors.New("predict.cache_size must not be negative")
	}
	return nil
}

func (a ArtifactsConfig) ColumnsPath() string {
	return filepath.Join(a.Dir, a.ColumnsFile)
}

func (a ArtifactsConfig) ModelPath() string {
	return filepath.Join(a.Dir, a.ModelFile)
}
