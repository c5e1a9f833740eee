package domain

import "time"

// Driver names the SQL backend the movies are written to
type Driver string

const (
	// DriverSQLite - embedded database file, the default
	DriverSQLite Driver = "sqlite"
	// DriverMySQL - MySQL/MariaDB server
	DriverMySQL Driver = "mysql"
	// DriverPostgres - PostgreSQL server
	DriverPostgres Driver = "postgres"
)

type DatabaseConfig struct {
	Driver   Driver `mapstructure:"driver"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

type Config struct {
	TmdbApiKey        string         `mapstructure:"tmdb_api_key"`
	TmdbBaseURL       string         `mapstructure:"tmdb_base_url"`
	OmdbApiKey        string         `mapstructure:"omdb_api_key"`
	OmdbBaseURL       string         `mapstructure:"omdb_base_url"`
	Language          string         `mapstructure:"language"`
	HTTPTimeout       time.Duration  `mapstructure:"http_timeout"`
	RequestsPerSecond float64        `mapstructure:"requests_per_second"`
	StartPage         int            `mapstructure:"start_page"`
	MaxPages          int            `mapstructure:"max_pages"`
	Database          DatabaseConfig `mapstructure:"database"`
	LogLevel          string         `mapstructure:"log_level"`
	LogFile           string         `mapstructure:"log_file"`
	ReportPath        string         `mapstructure:"report_path"`
	DiscordWebhookURL string         `mapstructure:"discord_webhook_url"`
}
