package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/varoOP/moviedb/internal/domain"
)

const EnvPrefix = "MOVIEDB"

// envAliases maps config keys to the plain variable names used in .env files
var envAliases = map[string]string{
	"tmdb_api_key":      "TMDB_API_KEY",
	"omdb_api_key":      "OMDB_API_KEY",
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.name":     "DB_NAME",
	"database.user":     "DB_USER",
	"database.password": "DB_PASSWORD",
}

// SetDefaults registers every key with its default so env lookups work for
// all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("tmdb_api_key", "")
	v.SetDefault("tmdb_base_url", "https://api.themoviedb.org/3")
	v.SetDefault("omdb_api_key", "")
	v.SetDefault("omdb_base_url", "https://www.omdbapi.com")
	v.SetDefault("language", "en-US")
	v.SetDefault("http_timeout", 10*time.Second)
	v.SetDefault("requests_per_second", 20)
	v.SetDefault("start_page", 1)
	v.SetDefault("max_pages", 0)
	v.SetDefault("database.driver", string(domain.DriverSQLite))
	v.SetDefault("database.path", "moviedb.db")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 0)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("report_path", "")
	v.SetDefault("discord_webhook_url", "")
}

// BindEnv enables MOVIEDB_* variables plus the plain aliases. A prefixed
// variable wins over its alias.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, alias := range envAliases {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, prefixed, alias)
	}
}

// Load reads the configuration from the global viper instance
func Load() (*domain.Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom builds and validates a config from v
func LoadFrom(v *viper.Viper) (*domain.Config, error) {
	cfg := &domain.Config{
		TmdbApiKey:        strings.TrimSpace(v.GetString("tmdb_api_key")),
		TmdbBaseURL:       v.GetString("tmdb_base_url"),
		OmdbApiKey:        strings.TrimSpace(v.GetString("omdb_api_key")),
		OmdbBaseURL:       v.GetString("omdb_base_url"),
		Language:          v.GetString("language"),
		HTTPTimeout:       v.GetDuration("http_timeout"),
		RequestsPerSecond: v.GetFloat64("requests_per_second"),
		StartPage:         v.GetInt("start_page"),
		MaxPages:          v.GetInt("max_pages"),
		Database: domain.DatabaseConfig{
			Driver:   domain.Driver(strings.ToLower(v.GetString("database.driver"))),
			Path:     v.GetString("database.path"),
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			Name:     v.GetString("database.name"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		LogLevel:          v.GetString("log_level"),
		LogFile:           v.GetString("log_file"),
		ReportPath:        v.GetString("report_path"),
		DiscordWebhookURL: v.GetString("discord_webhook_url"),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings every command depends on. API keys are
// checked by the commands that use them.
func Validate(cfg *domain.Config) error {
	db := cfg.Database

	switch db.Driver {
	case domain.DriverSQLite:
		if db.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case domain.DriverMySQL, domain.DriverPostgres:
		if db.Host == "" {
			return fmt.Errorf("database.host is required for the %s driver (set via config or DB_HOST)", db.Driver)
		}
		if db.Name == "" {
			return fmt.Errorf("database.name is required for the %s driver (set via config or DB_NAME)", db.Driver)
		}
	default:
		return fmt.Errorf("invalid database.driver: %s (must be 'sqlite', 'mysql', or 'postgres')", db.Driver)
	}

	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive, got %s", cfg.HTTPTimeout)
	}
	if cfg.StartPage < 1 {
		return fmt.Errorf("start_page must be at least 1, got %d", cfg.StartPage)
	}
	if cfg.MaxPages < 0 {
		return fmt.Errorf("max_pages must not be negative, got %d", cfg.MaxPages)
	}

	return nil
}
