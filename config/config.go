package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for spamlens.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Normalize NormalizeConfig `yaml:"normalize"`
	Explain   ExplainConfig   `yaml:"explain"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Cache     CacheConfig     `yaml:"cache"`
	Scan      ScanConfig      `yaml:"scan"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ModelConfig selects the classifier artifact.
type ModelConfig struct {
	Path string `yaml:"path"` // JSON artifact; when empty the stored model named Name is used
	Name string `yaml:"name"`
}

// NormalizeConfig toggles the placeholder masks of the text cleaner.
type NormalizeConfig struct {
	MaskURLs    bool `yaml:"mask_urls"`
	MaskPhones  bool `yaml:"mask_phones"`
	MaskNumbers bool `yaml:"mask_numbers"`
}

// ExplainConfig holds explanation defaults.
type ExplainConfig struct {
	NumFeatures int     `yaml:"num_features"`
	NumSamples  int     `yaml:"num_samples"`
	KernelWidth float64 `yaml:"kernel_width"`
	RidgeAlpha  float64 `yaml:"ridge_alpha"`
	Target      string  `yaml:"target"` // class label explained by default
}

// OracleConfig holds batching configuration for classifier queries.
type OracleConfig struct {
	BatchSize int      `yaml:"batch_size"`
	Workers   int      `yaml:"workers"`
	Timeout   Duration `yaml:"timeout"`
}

// CacheConfig holds explanation cache configuration.
type CacheConfig struct {
	Enabled bool     `yaml:"enabled"`
	Size    int      `yaml:"size"`
	TTL     Duration `yaml:"ttl"`
	Persist bool     `yaml:"persist"` // also keep explanations in the store
}

// ScanConfig holds message file scanning configuration.
type ScanConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
	PerLine  bool     `yaml:"per_line"`
	Explain  bool     `yaml:"explain"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	NumSamples     int      `yaml:"num_samples"`
	RequestTimeout Duration `yaml:"request_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Duration is a time.Duration written as a string ("10s", "5m") in YAML.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Name: "default",
		},
		Normalize: NormalizeConfig{
			MaskURLs:    true,
			MaskPhones:  true,
			MaskNumbers: true,
		},
		Explain: ExplainConfig{
			NumFeatures: 5,
			NumSamples:  5000,
			KernelWidth: 16,
			RidgeAlpha:  1.0,
			Target:      "spam",
		},
		Oracle: OracleConfig{
			BatchSize: 256,
			Workers:   4,
			Timeout:   Duration(10 * time.Second),
		},
		Cache: CacheConfig{
			Enabled: true,
			Size:    256,
			TTL:     Duration(10 * time.Minute),
			Persist: true,
		},
		Scan: ScanConfig{
			Includes: []string{"**/*.txt", "**/*.sms", "**/*.msg"},
			Excludes: []string{"**/.git/**", "**/.spamlens/**"},
		},
		Server: ServerConfig{
			Addr:           ":8080",
			NumSamples:     1000,
			RequestTimeout: Duration(30 * time.Second),
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, cfg.Validate()
}

// LoadFromDir loads configuration from a directory (looks for spamlens.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "spamlens.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".spamlens", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Validate rejects values the explainer and oracle cannot work with.
func (c *Config) Validate() error {
	switch {
	case c.Explain.NumFeatures < 0:
		return fmt.Errorf("explain.num_features must not be negative")
	case c.Explain.NumSamples < 0:
		return fmt.Errorf("explain.num_samples must not be negative")
	case c.Explain.KernelWidth < 0:
		return fmt.Errorf("explain.kernel_width must not be negative")
	case c.Explain.RidgeAlpha < 0:
		return fmt.Errorf("explain.ridge_alpha must not be negative")
	case c.Oracle.BatchSize < 0 || c.Oracle.Workers < 0:
		return fmt.Errorf("oracle.batch_size and oracle.workers must not be negative")
	case c.Cache.Size < 0:
		return fmt.Errorf("cache.size must not be negative")
	case c.Server.NumSamples < 0:
		return fmt.Errorf("server.num_samples must not be negative")
	}
	return nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// StorePath returns the path to the model and explanation database.
func StorePath(dir string) string {
	return filepath.Join(dir, ".spamlens", "spamlens.db")
}

// EnsureDataDir ensures the .spamlens directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".spamlens"), 0755)
}
