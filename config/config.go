package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar points at an optional YAML config file.
const ConfigPathEnvVar = "STREAMVAULT_CONFIG"

// Config is the full runtime configuration. Precedence: environment
// variables override the config file, which overrides built-in defaults.
// Secrets (TMDB key, JWT secret) have no defaults and must be supplied.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	TMDB     TMDBConfig     `koanf:"tmdb"`
	Auth     AuthConfig     `koanf:"auth"`
	Sync     SyncConfig     `koanf:"sync"`
	Cache    CacheConfig    `koanf:"cache"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	ListenAddr     string   `koanf:"listen_addr"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

type TMDBConfig struct {
	APIKey  string `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
}

type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
}

type SyncConfig struct {
	Enabled         bool          `koanf:"enabled"`
	CheckInterval   time.Duration `koanf:"check_interval"`
	Frequency       time.Duration `koanf:"frequency"`
	MovieCategories []string      `koanf:"movie_categories"`
	TVCategories    []string      `koanf:"tv_categories"`
	PageCap         int           `koanf:"page_cap"`
	BatchSize       int           `koanf:"batch_size"`
	BatchDelay      time.Duration `koanf:"batch_delay"`
}

type CacheConfig struct {
	TTL  time.Duration `koanf:"ttl"`
	Size int           `koanf:"size"`
}

type LogConfig struct {
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
}

// Manager loads and validates configuration.
type Manager struct {
	path string
}

// NewManager creates a Manager. An empty path falls back to the
// STREAMVAULT_CONFIG environment variable; with neither set, only env vars
// and defaults apply.
func NewManager(path string) *Manager {
	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	return &Manager{path: path}
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Database: DatabaseConfig{
			Path: "data/streamvault.db",
		},
		TMDB: TMDBConfig{
			BaseURL: "https://api.themoviedb.org/3",
		},
		Sync: SyncConfig{
			Enabled:         true,
			CheckInterval:   time.Minute,
			Frequency:       6 * time.Hour,
			MovieCategories: []string{"popular", "top_rated", "upcoming", "now_playing"},
			TVCategories:    []string{"popular", "top_rated", "on_the_air"},
			PageCap:         5,
			BatchSize:       10,
			BatchDelay:      time.Second,
		},
		Cache: CacheConfig{
			TTL:  5 * time.Minute,
			Size: 512,
		},
		Log: LogConfig{
			MaxSizeMB:  20,
			MaxBackups: 3,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file, and
// STREAMVAULT_* environment variables, in increasing precedence.
func (m *Manager) Load() (*Config, error) {
	k := koanf.New(".")

	d := defaults()
	if err := k.Load(structs.Provider(d, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if m.path != "" {
		if err := k.Load(file.Provider(m.path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", m.path, err)
		}
	}

	// STREAMVAULT_TMDB__API_KEY -> tmdb.api_key; a double underscore
	// separates sections so key names may themselves contain underscores.
	envProvider := env.Provider("STREAMVAULT_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "STREAMVAULT_"))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations missing required external settings.
func (c *Config) Validate() error {
	if c.TMDB.APIKey == "" {
		return fmt.Errorf("tmdb.api_key is required (STREAMVAULT_TMDB__API_KEY)")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required (STREAMVAULT_AUTH__JWT_SECRET)")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Sync.BatchSize < 1 {
		return fmt.Errorf("sync.batch_size must be at least 1")
	}
	if c.Sync.PageCap < 1 {
		return fmt.Errorf("sync.page_cap must be at least 1")
	}
	return nil
}
