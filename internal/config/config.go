package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"customerbooking/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Outbox     OutboxConfig     `yaml:"outbox"`
	Sheets     SheetsConfig     `yaml:"sheets"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path          string `yaml:"path"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
	MaxOpenConns  int    `yaml:"max_open_conns"`
}

type RedisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	PoolSize int           `yaml:"pool_size"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	HTTP       APIHTTPConfig       `yaml:"http"`
	GRPC       APIGRPCConfig       `yaml:"grpc"`
	RateLimit  APIRateLimitConfig  `yaml:"rate_limit"`
	Pagination APIPaginationConfig `yaml:"pagination"`
}

type APIHTTPConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type APIGRPCConfig struct {
	Enabled             bool          `yaml:"enabled"`
	Port                int           `yaml:"port"`
	Reflection          bool          `yaml:"reflection"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
	TLS                 APITLSConfig  `yaml:"tls"`
}

type APITLSConfig struct {
	Enabled           bool   `yaml:"enabled"`
	CertFile          string `yaml:"cert_file"`
	KeyFile           string `yaml:"key_file"`
	ClientCAFile      string `yaml:"client_ca_file"`
	RequireClientCert bool   `yaml:"require_client_cert"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type APIPaginationConfig struct {
	DefaultSize int `yaml:"default_size"`
	MaxSize     int `yaml:"max_size"`
}

type OutboxConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Channel       string        `yaml:"channel"`
	DeadLetterKey string        `yaml:"dead_letter_key"`
	PollInterval  time.Duration `yaml:"poll_interval"`
	BatchSize     int           `yaml:"batch_size"`
	MaxRetries    int           `yaml:"max_retries"`
	InitialDelay  time.Duration `yaml:"initial_delay"`
	MaxDelay      time.Duration `yaml:"max_delay"`
}

// SheetsConfig points the booking mirror at a Google spreadsheet tab.
type SheetsConfig struct {
	Enabled         bool          `yaml:"enabled"`
	CredentialsFile string        `yaml:"credentials_file"`
	SpreadsheetID   string        `yaml:"spreadsheet_id"`
	SheetName       string        `yaml:"sheet_name"`
	QueueSize       int           `yaml:"queue_size"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// Load reads the YAML file at configPath after loading an optional .env file,
// expanding ${VAR} references against the environment.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	return Parse(data)
}

// Parse decodes raw YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	expanded := []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(expanded, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}
	if c.API.HTTP.Port < 0 || c.API.HTTP.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.API.HTTP.Port)
	}
	if c.API.GRPC.Port < 0 || c.API.GRPC.Port > 65535 {
		return fmt.Errorf("invalid grpc port %d", c.API.GRPC.Port)
	}
	if c.API.Pagination.DefaultSize > c.API.Pagination.MaxSize {
		return fmt.Errorf("pagination default_size %d exceeds max_size %d",
			c.API.Pagination.DefaultSize, c.API.Pagination.MaxSize)
	}
	if c.Backup.Enabled && c.Backup.StoragePath == "" {
		return errors.New("backup storage_path is required when backups are enabled")
	}
	if c.Outbox.Enabled && c.Redis.Address == "" {
		return errors.New("outbox requires redis.address")
	}
	if c.Sheets.Enabled && (c.Sheets.CredentialsFile == "" || c.Sheets.SpreadsheetID == "") {
		return errors.New("sheets requires credentials_file and spreadsheet_id")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "customerbooking"
	}
	if c.Database.BusyTimeoutMS == 0 {
		c.Database.BusyTimeoutMS = 5000
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Redis.CacheTTL == 0 {
		c.Redis.CacheTTL = 10 * time.Minute
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.HTTP.ReadTimeout == 0 {
		c.API.HTTP.ReadTimeout = 5 * time.Second
	}
	if c.API.HTTP.WriteTimeout == 0 {
		c.API.HTTP.WriteTimeout = 15 * time.Second
	}
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 8081
	}
	if c.API.GRPC.HealthCheckInterval == 0 {
		c.API.GRPC.HealthCheckInterval = 10 * time.Second
	}
	if c.API.Pagination.DefaultSize == 0 {
		c.API.Pagination.DefaultSize = models.DefaultPageSize
	}
	if c.API.Pagination.MaxSize == 0 {
		c.API.Pagination.MaxSize = models.MaxPageSize
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Backup.Schedule == "" {
		c.Backup.Schedule = "24h"
	}
	if c.Outbox.Channel == "" {
		c.Outbox.Channel = "bookings.events"
	}
	if c.Outbox.DeadLetterKey == "" {
		c.Outbox.DeadLetterKey = "bookings.events.deadletter"
	}
	if c.Outbox.PollInterval == 0 {
		c.Outbox.PollInterval = 2 * time.Second
	}
	if c.Outbox.BatchSize == 0 {
		c.Outbox.BatchSize = 20
	}
	if c.Sheets.SheetName == "" {
		c.Sheets.SheetName = "Bookings"
	}
	if c.Sheets.QueueSize == 0 {
		c.Sheets.QueueSize = 128
	}
	if c.Sheets.RefreshInterval == 0 {
		c.Sheets.RefreshInterval = time.Hour
	}
}
