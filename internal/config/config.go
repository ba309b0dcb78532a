// Package config loads runtime settings from defaults, an optional YAML file,
// and the environment (after .env has been loaded by the caller).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/haricheung/bizflow/internal/tools"
)

// DefaultPath is the YAML file read when no --config flag is given.
const DefaultPath = "bizflow.yaml"

// Config holds all bizflow settings.
type Config struct {
	DataDir string        `yaml:"data_dir"`
	LLM     LLMConfig     `yaml:"llm"`
	Store   StoreConfig   `yaml:"store"`
	Metrics MetricsConfig `yaml:"metrics"`
	Inputs  InputsConfig  `yaml:"inputs"`
	Logging LoggingConfig `yaml:"logging"`
}

// LLMConfig selects and configures the text generation provider.
type LLMConfig struct {
	Provider string        `yaml:"provider"` // gemini, openai, anthropic
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	UseFake  bool          `yaml:"use_fake"`
}

// StoreConfig configures the preference store.
type StoreConfig struct {
	Backend string `yaml:"backend"` // sqlite, leveldb
	Path    string `yaml:"path"`
}

// MetricsConfig configures the evaluation log and the audit journal.
type MetricsConfig struct {
	Path      string `yaml:"path"`
	AuditPath string `yaml:"audit_path"`
}

// InputsConfig names the files read by the report and meeting handlers.
type InputsConfig struct {
	SalesCSV          string `yaml:"sales_csv"`
	MeetingTranscript string `yaml:"meeting_transcript"`
}

// LoggingConfig configures the application log.
type LoggingConfig struct {
	Dir        string `yaml:"dir"`
	Level      string `yaml:"level"`
	Console    bool   `yaml:"console"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir: "data",
		LLM: LLMConfig{
			Provider: "gemini",
			Timeout:  60 * time.Second,
			UseFake:  true,
		},
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    "memory.db",
		},
		Metrics: MetricsConfig{
			Path:      "metrics.csv",
			AuditPath: "audit.jsonl",
		},
		Inputs: InputsConfig{
			SalesCSV:          "examples/sales_data.csv",
			MeetingTranscript: "examples/meeting_transcript.txt",
		},
		Logging: LoggingConfig{
			Dir:        "logs",
			Level:      "info",
			Console:    true,
			MaxSizeMB:  1,
			MaxBackups: 3,
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// absent), and environment overrides, then resolves data paths.
//
// Expectations:
//   - Returns Default() values when path does not exist and no env vars are set
//   - YAML fields override defaults; omitted fields keep their defaults
//   - Environment variables override YAML values
//   - USE_FAKE_LLM is true only when its lowercased value is "true"
//   - Bare store/metrics/audit filenames are placed under DataDir
//   - Returns an error for malformed YAML, an invalid LLM_TIMEOUT, or an unknown store backend
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// optional
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	switch cfg.Store.Backend {
	case "sqlite", "leveldb":
	default:
		return nil, fmt.Errorf("config: unknown store backend %q", cfg.Store.Backend)
	}

	cfg.Store.Path = tools.ResolveDataPath(cfg.DataDir, cfg.Store.Path)
	cfg.Metrics.Path = tools.ResolveDataPath(cfg.DataDir, cfg.Metrics.Path)
	cfg.Metrics.AuditPath = tools.ResolveDataPath(cfg.DataDir, cfg.Metrics.AuditPath)
	cfg.Inputs.SalesCSV = tools.ExpandHome(cfg.Inputs.SalesCSV)
	cfg.Inputs.MeetingTranscript = tools.ExpandHome(cfg.Inputs.MeetingTranscript)
	cfg.Logging.Dir = tools.ExpandHome(cfg.Logging.Dir)
	return cfg, nil
}

func (c *Config) applyEnv() error {
	set := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set("LLM_PROVIDER", &c.LLM.Provider)
	set("LLM_API_KEY", &c.LLM.APIKey)
	set("LLM_MODEL", &c.LLM.Model)
	set("LLM_BASE_URL", &c.LLM.BaseURL)
	set("BIZFLOW_DATA_DIR", &c.DataDir)
	set("BIZFLOW_STORE_BACKEND", &c.Store.Backend)
	set("BIZFLOW_LOG_DIR", &c.Logging.Dir)
	set("BIZFLOW_LOG_LEVEL", &c.Logging.Level)

	if v := os.Getenv("USE_FAKE_LLM"); v != "" {
		c.LLM.UseFake = strings.ToLower(v) == "true"
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: LLM_TIMEOUT: %w", err)
		}
		c.LLM.Timeout = d
	}
	return nil
}
