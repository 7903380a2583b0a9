// Package file provides the TOML configuration store.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/typetide/typetide/internal/core/domain"
	"github.com/typetide/typetide/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// fileConfig is the TOML schema of the configuration file. Durations are
// written as strings ("300ms", "15s") and parsed on load.
type fileConfig struct {
	Inference struct {
		Provider string `toml:"provider,omitempty"`
		APIKey   string `toml:"api_key,omitempty"`
		BaseURL  string `toml:"base_url,omitempty"`
		Model    string `toml:"model,omitempty"`
		Timeout  string `toml:"timeout,omitempty"`
	} `toml:"inference"`

	Resolver struct {
		CapSensitive     bool    `toml:"cap_sensitive,omitempty"`
		CacheTTL         string  `toml:"cache_ttl,omitempty"`
		InferenceTimeout string  `toml:"inference_timeout,omitempty"`
		InferenceRPS     float64 `toml:"inference_rps,omitempty"`
	} `toml:"resolver"`

	Orchestrator struct {
		Debounce string `toml:"debounce,omitempty"`
	} `toml:"orchestrator"`

	Loader struct {
		BatchWindow string `toml:"batch_window,omitempty"`
	} `toml:"loader"`

	CatalogPath string `toml:"catalog_path,omitempty"`
	VettedPath  string `toml:"vetted_path,omitempty"`
	DataDir     string `toml:"data_dir,omitempty"`
}

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
type ConfigStore struct {
	mu       sync.Mutex
	filePath string
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.typetide/config.toml.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".typetide")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &ConfigStore{
		filePath: filepath.Join(configDir, "config.toml"),
	}, nil
}

// Load reads the configuration, applying defaults for absent fields.
// A missing file yields the default configuration.
func (s *ConfigStore) Load() (driven.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fc fileConfig
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return driven.Config{}, err
		}
	} else if err := toml.Unmarshal(data, &fc); err != nil {
		return driven.Config{}, fmt.Errorf("parsing %s: %w", s.filePath, err)
	}

	cfg := driven.Config{
		Inference: domain.InferenceSettings{
			Provider: domain.AIProvider(fc.Inference.Provider),
			APIKey:   fc.Inference.APIKey,
			BaseURL:  fc.Inference.BaseURL,
			Model:    fc.Inference.Model,
		},
		Resolver: domain.ResolverSettings{
			CapSensitive: fc.Resolver.CapSensitive,
			InferenceRPS: fc.Resolver.InferenceRPS,
		},
		CatalogPath: fc.CatalogPath,
		VettedPath:  fc.VettedPath,
		DataDir:     fc.DataDir,
	}

	if cfg.Inference.Timeout, err = parseDuration(fc.Inference.Timeout, 0); err != nil {
		return driven.Config{}, fmt.Errorf("inference.timeout: %w", err)
	}
	if cfg.Resolver.CacheTTL, err = parseDuration(fc.Resolver.CacheTTL, 0); err != nil {
		return driven.Config{}, fmt.Errorf("resolver.cache_ttl: %w", err)
	}
	if cfg.Resolver.InferenceTimeout, err = parseDuration(fc.Resolver.InferenceTimeout, domain.DefaultInferenceTimeout); err != nil {
		return driven.Config{}, fmt.Errorf("resolver.inference_timeout: %w", err)
	}
	if cfg.Orchestrator.Debounce, err = parseDuration(fc.Orchestrator.Debounce, domain.DefaultDebounce); err != nil {
		return driven.Config{}, fmt.Errorf("orchestrator.debounce: %w", err)
	}
	if cfg.Loader.BatchWindow, err = parseDuration(fc.Loader.BatchWindow, domain.DefaultBatchWindow); err != nil {
		return driven.Config{}, fmt.Errorf("loader.batch_window: %w", err)
	}

	return cfg, nil
}

// Save persists the configuration.
func (s *ConfigStore) Save(cfg driven.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fc fileConfig
	fc.Inference.Provider = string(cfg.Inference.Provider)
	fc.Inference.APIKey = cfg.Inference.APIKey
	fc.Inference.BaseURL = cfg.Inference.BaseURL
	fc.Inference.Model = cfg.Inference.Model
	fc.Inference.Timeout = formatDuration(cfg.Inference.Timeout)

	fc.Resolver.CapSensitive = cfg.Resolver.CapSensitive
	fc.Resolver.CacheTTL = formatDuration(cfg.Resolver.CacheTTL)
	fc.Resolver.InferenceTimeout = formatDuration(cfg.Resolver.InferenceTimeout)
	fc.Resolver.InferenceRPS = cfg.Resolver.InferenceRPS

	fc.Orchestrator.Debounce = formatDuration(cfg.Orchestrator.Debounce)
	fc.Loader.BatchWindow = formatDuration(cfg.Loader.BatchWindow)

	fc.CatalogPath = cfg.CatalogPath
	fc.VettedPath = cfg.VettedPath
	fc.DataDir = cfg.DataDir

	data, err := toml.Marshal(fc)
	if err != nil {
		return err
	}

	// Restricted permissions: the file may hold an API key.
	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

func parseDuration(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}
	return time.ParseDuration(raw)
}

func formatDuration(d time.Duration) string {
	if d == 0 {
		return ""
	}
	return d.String()
}
