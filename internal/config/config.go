package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Databricks DatabricksConfig
	Staging    StagingConfig
	S3         S3Config
	Agent      AgentConfig
	Queue      QueueConfig
	Notify     NotifyConfig
	CORS       CORSConfig
	Log        LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DatabricksConfig holds workspace connection settings for the SQL
// statement and DBFS APIs. ParseWait and QueryWait are passed through
// as the statement wait_timeout, so they use the API's "30s" form.
type DatabricksConfig struct {
	Host           string `mapstructure:"host"`
	Token          string `mapstructure:"token"`
	WarehouseID    string `mapstructure:"warehouse_id"`
	TimeoutSecs    int    `mapstructure:"timeout_secs"`
	ParseWait      string `mapstructure:"parse_wait"`
	QueryWait      string `mapstructure:"query_wait"`
	PollIntervalMS int    `mapstructure:"poll_interval_ms"`
}

// StagingConfig selects where uploaded files are staged before the
// warehouse reads them, and bounds what intake accepts.
type StagingConfig struct {
	Backend       string `mapstructure:"backend"`
	Prefix        string `mapstructure:"prefix"`
	Cleanup       bool   `mapstructure:"cleanup"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// S3Config holds AWS S3 settings for the s3 staging backend.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// AgentConfig holds agent query settings.
type AgentConfig struct {
	Model        string `mapstructure:"model"`
	DefaultLimit int    `mapstructure:"default_limit"`
	MaxLimit     int    `mapstructure:"max_limit"`
}

// QueueConfig holds batch parse worker settings.
type QueueConfig struct {
	Concurrency int `mapstructure:"concurrency"`
}

// NotifyConfig holds batch completion notification settings.
type NotifyConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ToAddress   string `mapstructure:"to_address"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Ready reports whether the warehouse connection is configured.
func (d DatabricksConfig) Ready() bool {
	return d.Host != "" && d.Token != "" && d.WarehouseID != ""
}

// Load reads configuration from environment variables with the DOCSIGHT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// Databricks defaults
	v.SetDefault("databricks.host", "")
	v.SetDefault("databricks.token", "")
	v.SetDefault("databricks.warehouse_id", "")
	v.SetDefault("databricks.timeout_secs", 120)
	v.SetDefault("databricks.parse_wait", "30s")
	v.SetDefault("databricks.query_wait", "50s")
	v.SetDefault("databricks.poll_interval_ms", 500)

	// Staging defaults
	v.SetDefault("staging.backend", "dbfs")
	v.SetDefault("staging.prefix", "/tmp/docsight")
	v.SetDefault("staging.cleanup", true)
	v.SetDefault("staging.max_file_size_mb", 50)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "docsight-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Agent defaults
	v.SetDefault("agent.model", "databricks-gpt-5-2")
	v.SetDefault("agent.default_limit", 100)
	v.SetDefault("agent.max_limit", 1000)

	// Queue defaults
	v.SetDefault("queue.concurrency", 3)

	// Notify defaults
	v.SetDefault("notify.provider", "noop")
	v.SetDefault("notify.region", "us-east-1")
	v.SetDefault("notify.from_address", "noreply@docsight.local")
	v.SetDefault("notify.from_name", "Docsight")
	v.SetDefault("notify.to_address", "")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                 "DOCSIGHT_SERVER_PORT",
		"server.read_timeout":         "DOCSIGHT_SERVER_READ_TIMEOUT",
		"server.write_timeout":        "DOCSIGHT_SERVER_WRITE_TIMEOUT",
		"server.environment":          "DOCSIGHT_SERVER_ENVIRONMENT",
		"databricks.host":             "DOCSIGHT_DATABRICKS_HOST",
		"databricks.token":            "DOCSIGHT_DATABRICKS_TOKEN",
		"databricks.warehouse_id":     "DOCSIGHT_DATABRICKS_WAREHOUSE_ID",
		"databricks.timeout_secs":     "DOCSIGHT_DATABRICKS_TIMEOUT_SECS",
		"databricks.parse_wait":       "DOCSIGHT_DATABRICKS_PARSE_WAIT",
		"databricks.query_wait":       "DOCSIGHT_DATABRICKS_QUERY_WAIT",
		"databricks.poll_interval_ms": "DOCSIGHT_DATABRICKS_POLL_INTERVAL_MS",
		"staging.backend":             "DOCSIGHT_STAGING_BACKEND",
		"staging.prefix":              "DOCSIGHT_STAGING_PREFIX",
		"staging.cleanup":             "DOCSIGHT_STAGING_CLEANUP",
		"staging.max_file_size_mb":    "DOCSIGHT_STAGING_MAX_FILE_SIZE_MB",
		"s3.region":                   "DOCSIGHT_S3_REGION",
		"s3.bucket":                   "DOCSIGHT_S3_BUCKET",
		"s3.endpoint":                 "DOCSIGHT_S3_ENDPOINT",
		"s3.access_key":               "DOCSIGHT_S3_ACCESS_KEY",
		"s3.secret_key":               "DOCSIGHT_S3_SECRET_KEY",
		"s3.presign_expiry":           "DOCSIGHT_S3_PRESIGN_EXPIRY",
		"agent.model":                 "DOCSIGHT_AGENT_MODEL",
		"agent.default_limit":         "DOCSIGHT_AGENT_DEFAULT_LIMIT",
		"agent.max_limit":             "DOCSIGHT_AGENT_MAX_LIMIT",
		"queue.concurrency":           "DOCSIGHT_QUEUE_CONCURRENCY",
		"notify.provider":             "DOCSIGHT_NOTIFY_PROVIDER",
		"notify.region":               "DOCSIGHT_NOTIFY_REGION",
		"notify.from_address":         "DOCSIGHT_NOTIFY_FROM_ADDRESS",
		"notify.from_name":            "DOCSIGHT_NOTIFY_FROM_NAME",
		"notify.to_address":           "DOCSIGHT_NOTIFY_TO_ADDRESS",
		"cors.allowed_origins":        "DOCSIGHT_CORS_ALLOWED_ORIGINS",
		"log.level":                   "DOCSIGHT_LOG_LEVEL",
		"log.format":                  "DOCSIGHT_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DOCSIGHT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCSIGHT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Databricks = DatabricksConfig{
		Host:           v.GetString("databricks.host"),
		Token:          v.GetString("databricks.token"),
		WarehouseID:    v.GetString("databricks.warehouse_id"),
		TimeoutSecs:    v.GetInt("databricks.timeout_secs"),
		ParseWait:      v.GetString("databricks.parse_wait"),
		QueryWait:      v.GetString("databricks.query_wait"),
		PollIntervalMS: v.GetInt("databricks.poll_interval_ms"),
	}
	cfg.Staging = StagingConfig{
		Backend:       v.GetString("staging.backend"),
		Prefix:        v.GetString("staging.prefix"),
		Cleanup:       v.GetBool("staging.cleanup"),
		MaxFileSizeMB: v.GetInt64("staging.max_file_size_mb"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Agent = AgentConfig{
		Model:        v.GetString("agent.model"),
		DefaultLimit: v.GetInt("agent.default_limit"),
		MaxLimit:     v.GetInt("agent.max_limit"),
	}
	cfg.Queue = QueueConfig{
		Concurrency: v.GetInt("queue.concurrency"),
	}
	cfg.Notify = NotifyConfig{
		Provider:    v.GetString("notify.provider"),
		Region:      v.GetString("notify.region"),
		FromAddress: v.GetString("notify.from_address"),
		FromName:    v.GetString("notify.from_name"),
		ToAddress:   v.GetString("notify.to_address"),
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
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}
