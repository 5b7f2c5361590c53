package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	Email     EmailConfig
	Storage   StorageConfig
	Upload    UploadConfig
	Reminders RemindersConfig
	Logging   LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig selects the backing store and holds its settings
type DatabaseConfig struct {
	Driver      string // "postgres" or "mongo"
	AutoMigrate bool
	Postgres    PostgresConfig
	Mongo       MongoConfig
}

// PostgresConfig holds PostgreSQL connection settings
type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// MongoConfig holds MongoDB connection settings
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// RedisConfig holds Redis specific configuration
type RedisConfig struct {
	Enabled        bool
	URL            string
	Password       string
	DB             int
	UnreadCountTTL time.Duration
}

// KafkaConfig holds Kafka specific configuration
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	ClientID string
	Topic    string
}

// AuthConfig holds authentication specific configuration
type AuthConfig struct {
	JWTSecret  string
	ServiceKey string
}

// EmailConfig holds SMTP settings for the email collaborator
type EmailConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseTLS   bool
	Timeout  time.Duration
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type  string // "local" or "s3"
	Local LocalStorageConfig
	S3    S3StorageConfig
}

// LocalStorageConfig holds local storage configuration
type LocalStorageConfig struct {
	BasePath    string
	BaseURL     string
	Permissions string
}

// S3StorageConfig holds AWS S3 configuration
type S3StorageConfig struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	BaseURL   string
}

// UploadConfig holds upload limits for case documents
type UploadConfig struct {
	MaxFileSize       int64
	AllowedExtensions []string
}

// RemindersConfig holds settings for the reminder passes
type RemindersConfig struct {
	Timezone    string
	Deduplicate bool
	AppURL      string
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Location resolves the configured reminder time zone, falling back to UTC.
func (c RemindersConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfig loads the configuration from file and environment variables.
// A missing file is not an error; defaults and environment still apply.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Read from environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "mongo":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Storage.Type {
	case "local", "s3":
	default:
		return fmt.Errorf("unsupported storage type %q", c.Storage.Type)
	}
	if _, err := time.LoadLocation(c.Reminders.Timezone); err != nil {
		return fmt.Errorf("invalid reminders timezone %q: %w", c.Reminders.Timezone, err)
	}
	return nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "30s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", "5432")
	v.SetDefault("database.postgres.user", "caseflow")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "caseflow")
	v.SetDefault("database.postgres.sslmode", "disable")
	v.SetDefault("database.postgres.maxOpenConns", 25)
	v.SetDefault("database.postgres.maxIdleConns", 5)
	v.SetDefault("database.postgres.connMaxLifetime", "30m")
	v.SetDefault("database.mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("database.mongo.database", "caseflow")
	v.SetDefault("database.mongo.connectTimeout", "10s")

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.unreadCountTTL", "5m")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.clientID", "caseflow-notifications")
	v.SetDefault("kafka.topic", "notification-events")

	// Auth defaults
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.serviceKey", "caseflow-service-key")

	// Email defaults
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.host", "")
	v.SetDefault("email.port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.fromName", "Case Management")
	v.SetDefault("email.useTLS", true)
	v.SetDefault("email.timeout", "30s")

	// Storage defaults
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local.basePath", "/data/documents")
	v.SetDefault("storage.local.baseURL", "http://localhost:8080/files")
	v.SetDefault("storage.local.permissions", "0644")
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.accessKey", "")
	v.SetDefault("storage.s3.secretKey", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.baseURL", "")

	// Upload defaults
	v.SetDefault("upload.maxFileSize", 20971520) // 20MB
	v.SetDefault("upload.allowedExtensions", []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".jpg", ".jpeg", ".png", ".txt"})

	// Reminder defaults
	v.SetDefault("reminders.timezone", "Africa/Nairobi")
	v.SetDefault("reminders.deduplicate", true)
	v.SetDefault("reminders.appURL", "http://localhost:3000")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
