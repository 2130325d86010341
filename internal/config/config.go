package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds application configuration.
type Config struct {
	// CatalogPath is a products JSON file read on every catalog fetch.
	// Takes precedence over CatalogURL. When both are empty the built-in catalog is used.
	CatalogPath string `json:"catalog_path,omitempty" env:"REGIMEN_CATALOG_PATH"`

	// CatalogURL is an HTTP(S) location serving the products JSON document.
	CatalogURL string `json:"catalog_url,omitempty" env:"REGIMEN_CATALOG_URL"`

	// CompletionURL is the chat completion endpoint.
	CompletionURL string `json:"completion_url" env:"REGIMEN_COMPLETION_URL"`

	// Model is sent as the "model" field of every completion request.
	Model string `json:"model" env:"REGIMEN_MODEL"`

	// APIKey is only ever read from the environment, never from config.json.
	APIKey string `json:"-" env:"OPENAI_API_KEY"`

	// CompletionTimeoutSeconds bounds a single completion request.
	CompletionTimeoutSeconds int `json:"completion_timeout_seconds" env:"REGIMEN_COMPLETION_TIMEOUT_SECONDS"`

	// Bind and Port are the web UI listen address. CLI flags override both.
	Bind string `json:"bind" env:"REGIMEN_BIND"`
	Port int    `json:"port" env:"REGIMEN_PORT"`

	// LogLevel is a zap level name: debug, info, warn, error.
	LogLevel string `json:"log_level" env:"REGIMEN_LOG_LEVEL"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" env:"REGIMEN_DISABLED_TOOLS" envSeparator:","`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "catalog", "selection", "routine", "chat".
	DisabledTypes []string `json:"disabled_types,omitempty" env:"REGIMEN_DISABLED_TYPES" envSeparator:","`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CompletionURL:            "https://api.openai.com/v1/chat/completions",
		Model:                    "gpt-4o",
		CompletionTimeoutSeconds: 60,
		Bind:                     "127.0.0.1",
		Port:                     8080,
		LogLevel:                 "info",
	}
}

// CompletionTimeout returns CompletionTimeoutSeconds as a duration.
func (c *Config) CompletionTimeout() time.Duration {
	return time.Duration(c.CompletionTimeoutSeconds) * time.Second
}

// Load loads configuration from baseDir/config.json, then applies environment overrides.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.regimen.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return applyEnv(cfg)
}

// LoadWithRepo loads configuration from both global (~/.regimen) and project (.regimen) directories.
// The project config is found by walking upward from startDir to find the nearest .regimen/config.json.
// Project config takes precedence for scalar values; arrays are merged (deduplicated).
// Environment variables are applied last.
func LoadWithRepo(globalDir, startDir string) (*Config, error) {
	global, err := loadFileRaw(filepath.Join(globalDir, "config.json"))
	if err != nil {
		return nil, err
	}

	repo, err := loadFileRaw(FindRepoConfig(startDir))
	if err != nil {
		return nil, err
	}

	return applyEnv(Merge(Merge(DefaultConfig(), global), repo))
}

// FindRepoConfig walks upward from startDir to find the nearest .regimen/config.json.
// Returns the path if found, or empty string if not found.
func FindRepoConfig(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir := startDir
	for {
		configPath := filepath.Join(dir, ".regimen", "config.json")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// applyEnv overlays environment variables on cfg.
func applyEnv(cfg *Config) (*Config, error) {
	overlay := &Config{}
	if err := env.Parse(overlay); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return Merge(cfg, overlay), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the path is empty or the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	if configPath == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		CatalogPath:              pickString(overlay.CatalogPath, base.CatalogPath),
		CatalogURL:               pickString(overlay.CatalogURL, base.CatalogURL),
		CompletionURL:            pickString(overlay.CompletionURL, base.CompletionURL),
		Model:                    pickString(overlay.Model, base.Model),
		APIKey:                   pickString(overlay.APIKey, base.APIKey),
		CompletionTimeoutSeconds: pickInt(overlay.CompletionTimeoutSeconds, base.CompletionTimeoutSeconds),
		Bind:                     pickString(overlay.Bind, base.Bind),
		Port:                     pickInt(overlay.Port, base.Port),
		LogLevel:                 pickString(overlay.LogLevel, base.LogLevel),
		DBMaxOpenConns:           pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:           pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

func pickString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
