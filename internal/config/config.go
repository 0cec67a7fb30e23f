package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hpungsan/promptbase/internal/query"
)

// Environment variables consulted by LoadEnv.
const (
	EnvDatabaseURL       = "PROMPTBASE_DATABASE_URL"
	EnvLegacyDatabaseURL = "DATABASE_URL"
	EnvLogLevel          = "PROMPTBASE_LOG_LEVEL"
)

// MaxListLimit caps any page size, configured or requested.
const MaxListLimit = 500

// Config holds application configuration.
type Config struct {
	// DatabaseURL selects PostgreSQL when set (postgres://...).
	// Empty means the embedded SQLite file under the base directory.
	DatabaseURL string `json:"database_url,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DefaultListLimit is the page size when a list request gives none.
	DefaultListLimit int `json:"default_list_limit,omitempty"`

	// DefaultSort and DefaultDirection seed the list order for every surface.
	DefaultSort      string `json:"default_sort,omitempty"`
	DefaultDirection string `json:"default_direction,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	Log LogConfig `json:"log"`
	Web WebConfig `json:"web"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `json:"level,omitempty"`
	// File enables rotated file output in addition to stderr.
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
	MaxAgeDays int    `json:"max_age_days,omitempty"`
	Compress   bool   `json:"compress,omitempty"`
}

// WebConfig configures the form UI server.
type WebConfig struct {
	Bind string `json:"bind,omitempty"`
	Port int    `json:"port,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultListLimit: 50,
		DefaultSort:      string(query.DefaultSortKey),
		DefaultDirection: string(query.DefaultDirection),
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Web: WebConfig{
			Bind: "127.0.0.1",
			Port: 8314,
		},
	}
}

// Load loads configuration from baseDir/config.json, then applies
// environment overrides (including baseDir/.env and ./.env when present).
// Returns default config if no file exists.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.promptbase.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	if err := loadDotEnv(filepath.Join(baseDir, ".env"), ".env"); err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// loadDotEnv loads the given .env files into the process environment.
// Missing files are skipped; existing variables are never overwritten.
func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		if err := godotenv.Load(p); err != nil {
			return err
		}
	}
	return nil
}

// ApplyEnv overlays environment overrides using getenv.
// PROMPTBASE_DATABASE_URL wins over DATABASE_URL.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvDatabaseURL)); v != "" {
		c.DatabaseURL = v
	} else if v := strings.TrimSpace(getenv(EnvLegacyDatabaseURL)); v != "" {
		c.DatabaseURL = v
	}
	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

// Validate checks values that would otherwise only fail deep inside a request.
func (c *Config) Validate() error {
	if _, err := query.ParseSortKey(c.DefaultSort); err != nil {
		return err
	}
	if _, err := query.ParseDirection(c.DefaultDirection); err != nil {
		return err
	}
	return nil
}

// ListLimit returns the effective page size for a requested limit.
func (c *Config) ListLimit(requested int) int {
	limit := requested
	if limit <= 0 {
		limit = c.DefaultListLimit
	}
	if limit <= 0 {
		limit = DefaultConfig().DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return limit
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
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
	result := &Config{}

	// Scalars: overlay wins if non-zero, else base
	result.DatabaseURL = pick(overlay.DatabaseURL, base.DatabaseURL)
	result.DBMaxOpenConns = pick(overlay.DBMaxOpenConns, base.DBMaxOpenConns)
	result.DBMaxIdleConns = pick(overlay.DBMaxIdleConns, base.DBMaxIdleConns)
	result.DefaultListLimit = pick(overlay.DefaultListLimit, base.DefaultListLimit)
	result.DefaultSort = pick(overlay.DefaultSort, base.DefaultSort)
	result.DefaultDirection = pick(overlay.DefaultDirection, base.DefaultDirection)

	result.Log.Level = pick(overlay.Log.Level, base.Log.Level)
	result.Log.File = pick(overlay.Log.File, base.Log.File)
	result.Log.MaxSizeMB = pick(overlay.Log.MaxSizeMB, base.Log.MaxSizeMB)
	result.Log.MaxBackups = pick(overlay.Log.MaxBackups, base.Log.MaxBackups)
	result.Log.MaxAgeDays = pick(overlay.Log.MaxAgeDays, base.Log.MaxAgeDays)

	result.Web.Bind = pick(overlay.Web.Bind, base.Web.Bind)
	result.Web.Port = pick(overlay.Web.Port, base.Web.Port)

	// Booleans: overlay wins if true, else base
	result.Log.Compress = base.Log.Compress || overlay.Log.Compress

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

func pick[T comparable](overlay, base T) T {
	var zero T
	if overlay != zero {
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
