package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Edgar   EdgarConfig
	Ingest  IngestConfig
	Archive ArchiveConfig
	Log     LogConfig
	CORS    CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// EdgarConfig holds settings for the EDGAR HTTP client.
// UserAgent is mandatory: the SEC requires a contact-identifying
// user agent on every request and blocks anonymous clients.
type EdgarConfig struct {
	UserAgent       string        `mapstructure:"user_agent"`
	SearchBaseURL   string        `mapstructure:"search_base_url"`
	ArchivesBaseURL string        `mapstructure:"archives_base_url"`
	MinRequestGap   time.Duration `mapstructure:"min_request_gap"`
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialBackoff  time.Duration `mapstructure:"initial_backoff"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// IngestConfig holds settings for the background ingestion worker.
type IngestConfig struct {
	WorkerEnabled bool          `mapstructure:"worker_enabled"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
}

// ArchiveConfig holds raw-document archive (S3) settings.
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the DEALSCOUT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DEALSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "dealscout")
	v.SetDefault("db.password", "dealscout_secret")
	v.SetDefault("db.name", "dealscout_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// EDGAR defaults. The 150ms gap keeps the client inside the SEC's
	// published fair-access limit of 10 requests per second.
	v.SetDefault("edgar.user_agent", "")
	v.SetDefault("edgar.search_base_url", "https://efts.sec.gov/LATEST/search-index")
	v.SetDefault("edgar.archives_base_url", "https://www.sec.gov/Archives/edgar/data")
	v.SetDefault("edgar.min_request_gap", "150ms")
	v.SetDefault("edgar.max_retries", 3)
	v.SetDefault("edgar.initial_backoff", "1s")
	v.SetDefault("edgar.request_timeout", "30s")

	// Ingest worker defaults
	v.SetDefault("ingest.worker_enabled", false)
	v.SetDefault("ingest.poll_interval", "6h")

	// Archive defaults
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.bucket", "dealscout-filings")
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.key_prefix", "formd/raw")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "DEALSCOUT_SERVER_PORT",
		"server.read_timeout":     "DEALSCOUT_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "DEALSCOUT_SERVER_WRITE_TIMEOUT",
		"server.environment":      "DEALSCOUT_SERVER_ENVIRONMENT",
		"db.host":                 "DEALSCOUT_DB_HOST",
		"db.port":                 "DEALSCOUT_DB_PORT",
		"db.user":                 "DEALSCOUT_DB_USER",
		"db.password":             "DEALSCOUT_DB_PASSWORD",
		"db.name":                 "DEALSCOUT_DB_NAME",
		"db.sslmode":              "DEALSCOUT_DB_SSLMODE",
		"db.max_open":             "DEALSCOUT_DB_MAX_OPEN",
		"db.max_idle":             "DEALSCOUT_DB_MAX_IDLE",
		"edgar.user_agent":        "DEALSCOUT_EDGAR_USER_AGENT",
		"edgar.search_base_url":   "DEALSCOUT_EDGAR_SEARCH_BASE_URL",
		"edgar.archives_base_url": "DEALSCOUT_EDGAR_ARCHIVES_BASE_URL",
		"edgar.min_request_gap":   "DEALSCOUT_EDGAR_MIN_REQUEST_GAP",
		"edgar.max_retries":       "DEALSCOUT_EDGAR_MAX_RETRIES",
		"edgar.initial_backoff":   "DEALSCOUT_EDGAR_INITIAL_BACKOFF",
		"edgar.request_timeout":   "DEALSCOUT_EDGAR_REQUEST_TIMEOUT",
		"ingest.worker_enabled":   "DEALSCOUT_INGEST_WORKER_ENABLED",
		"ingest.poll_interval":    "DEALSCOUT_INGEST_POLL_INTERVAL",
		"archive.enabled":         "DEALSCOUT_ARCHIVE_ENABLED",
		"archive.region":          "DEALSCOUT_ARCHIVE_REGION",
		"archive.bucket":          "DEALSCOUT_ARCHIVE_BUCKET",
		"archive.endpoint":        "DEALSCOUT_ARCHIVE_ENDPOINT",
		"archive.access_key":      "DEALSCOUT_ARCHIVE_ACCESS_KEY",
		"archive.secret_key":      "DEALSCOUT_ARCHIVE_SECRET_KEY",
		"archive.key_prefix":      "DEALSCOUT_ARCHIVE_KEY_PREFIX",
		"log.level":               "DEALSCOUT_LOG_LEVEL",
		"log.format":              "DEALSCOUT_LOG_FORMAT",
		"cors.allowed_origins":    "DEALSCOUT_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DEALSCOUT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DEALSCOUT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Edgar = EdgarConfig{
		UserAgent:       v.GetString("edgar.user_agent"),
		SearchBaseURL:   v.GetString("edgar.search_base_url"),
		ArchivesBaseURL: v.GetString("edgar.archives_base_url"),
		MinRequestGap:   v.GetDuration("edgar.min_request_gap"),
		MaxRetries:      v.GetInt("edgar.max_retries"),
		InitialBackoff:  v.GetDuration("edgar.initial_backoff"),
		RequestTimeout:  v.GetDuration("edgar.request_timeout"),
	}
	cfg.Ingest = IngestConfig{
		WorkerEnabled: v.GetBool("ingest.worker_enabled"),
		PollInterval:  v.GetDuration("ingest.poll_interval"),
	}
	cfg.Archive = ArchiveConfig{
		Enabled:   v.GetBool("archive.enabled"),
		Region:    v.GetString("archive.region"),
		Bucket:    v.GetString("archive.bucket"),
		Endpoint:  v.GetString("archive.endpoint"),
		AccessKey: v.GetString("archive.access_key"),
		SecretKey: v.GetString("archive.secret_key"),
		KeyPrefix: v.GetString("archive.key_prefix"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
