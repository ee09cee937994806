package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Archive backend identifiers
const (
	BackendNotion   = "notion"
	BackendPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	App      AppConfig      `yaml:"app"`
	Logging  LoggingConfig  `yaml:"logging"`
	Telegram TelegramConfig `yaml:"telegram"`
	Worker   WorkerConfig   `yaml:"worker"`
	Gemini   GeminiConfig   `yaml:"gemini"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Ops      OpsConfig      `yaml:"ops"`

	// Credentials are environment-supplied, never read from the yaml file.
	Credentials Credentials `yaml:"-"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// TelegramConfig holds chat transport configuration
type TelegramConfig struct {
	PollingTimeout int `yaml:"polling_timeout"`
}

// WorkerConfig holds the job processor configuration
type WorkerConfig struct {
	// Cooldown is the fixed pause between jobs
	Cooldown time.Duration `yaml:"cooldown"`
	// ReportTimeout bounds how long the worker waits for a status edit
	// to complete on the chat dispatch loop
	ReportTimeout time.Duration `yaml:"report_timeout"`
}

// GeminiConfig holds enrichment API configuration
type GeminiConfig struct {
	Model string `yaml:"model"`
}

// ArchiveConfig selects and configures the persistence backend
type ArchiveConfig struct {
	// Backend is "notion" or "postgres"
	Backend  string         `yaml:"backend"`
	Notion   NotionConfig   `yaml:"notion"`
	Postgres DatabaseConfig `yaml:"postgres"`
}

// NotionConfig holds Notion workspace settings
type NotionConfig struct {
	DatabaseID string `yaml:"database_id"`
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// OpsConfig holds the observability HTTP server configuration
type OpsConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Credentials holds the environment-supplied secrets
type Credentials struct {
	TelegramBotToken   string
	TwitterBearerToken string
	GeminiAPIKey       string
	NotionAPIKey       string
	PostgresPassword   string
}

// Load reads and parses the configuration file, then fills credentials
// from the environment
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.Credentials = Credentials{
		TelegramBotToken:   os.Getenv("TELEGRAM_BOT_TOKEN"),
		TwitterBearerToken: os.Getenv("TWITTER_BEARER_TOKEN"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		NotionAPIKey:       os.Getenv("NOTION_API_KEY"),
		PostgresPassword:   os.Getenv("POSTGRES_PASSWORD"),
	}

	config.applyDefaults()

	return &config, nil
}

// applyDefaults fills optional settings the file may omit
func (c *Config) applyDefaults() {
	if c.Telegram.PollingTimeout == 0 {
		c.Telegram.PollingTimeout = 30
	}
	if c.Worker.Cooldown == 0 {
		c.Worker.Cooldown = 15 * time.Second
	}
	if c.Worker.ReportTimeout == 0 {
		c.Worker.ReportTimeout = 10 * time.Second
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Ops.ShutdownTimeout == 0 {
		c.Ops.ShutdownTimeout = 5 * time.Second
	}
}

// Validate checks if the configuration is valid. The process refuses to
// start without the chat, fetch and enrichment credentials and the
// settings of the selected archive backend.
func (c *Config) Validate() error {
	if c.Credentials.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	if c.Credentials.TwitterBearerToken == "" {
		return fmt.Errorf("TWITTER_BEARER_TOKEN is required")
	}

	if c.Credentials.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}

	switch c.Archive.Backend {
	case BackendNotion:
		if c.Credentials.NotionAPIKey == "" {
			return fmt.Errorf("NOTION_API_KEY is required for the notion backend")
		}
		if c.Archive.Notion.DatabaseID == "" {
			return fmt.Errorf("archive.notion.database_id is required for the notion backend")
		}
	case BackendPostgres:
		if c.Archive.Postgres.Host == "" {
			return fmt.Errorf("archive.postgres.host is required for the postgres backend")
		}
		if c.Archive.Postgres.Port < MinPort || c.Archive.Postgres.Port > MaxPort {
			return fmt.Errorf("invalid archive.postgres.port: %d (must be between %d and %d)", c.Archive.Postgres.Port, MinPort, MaxPort)
		}
		if c.Archive.Postgres.Database == "" {
			return fmt.Errorf("archive.postgres.database is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown archive backend: %q (must be %q or %q)", c.Archive.Backend, BackendNotion, BackendPostgres)
	}

	if c.Ops.Enabled {
		if c.Ops.Port < MinPort || c.Ops.Port > MaxPort {
			return fmt.Errorf("invalid ops port: %d (must be between %d and %d)", c.Ops.Port, MinPort, MaxPort)
		}
	}

	if c.Worker.Cooldown < 0 {
		return fmt.Errorf("worker cooldown must not be negative")
	}

	if c.Worker.ReportTimeout <= 0 {
		return fmt.Errorf("worker report_timeout must be greater than 0")
	}

	return nil
}
