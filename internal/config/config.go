package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Port               string
	Origin             string
	Environment        string
	AppURL             string
	JWTSecret          string
	AdminPasskeyHash   string
	PhoneDefaultRegion string
	Database           DatabaseConfig
	Storage            StorageConfig
	Redis              RedisConfig
	Mailer             MailerConfig
	Logging            LoggingConfig
	Forms              FormsConfig

	JWTExpirationMinutes int
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       string
	Username   string
	Password   string
	Name       string
	SQLitePath string
	DSN        string
}

// StorageConfig selects where identification documents are kept.
type StorageConfig struct {
	Driver string
	S3     S3Config
}

// S3Config holds S3-compatible object storage settings.
type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	PublicURL       string
}

// RedisConfig is optional; an empty Addr keeps submission locks in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MailerConfig holds email service configuration
type MailerConfig struct {
	Enabled     bool
	Host        string
	Port        int
	Username    string
	Password    string
	DefaultFrom string
}

// LoggingConfig controls the zerolog output.
type LoggingConfig struct {
	Level          string
	Format         string
	FilePath       string
	FileMaxSizeMB  int
	FileMaxBackups int
	FileMaxAgeDays int
}

// FormsConfig holds form session and submission lock lifetimes.
type FormsConfig struct {
	SessionTTL        time.Duration
	SubmissionLockTTL time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	dbConfig := DatabaseConfig{
		Driver:     strings.ToLower(v.GetString("DB_DRIVER")),
		Host:       v.GetString("DB_HOST"),
		Port:       v.GetString("DB_PORT"),
		Username:   v.GetString("DB_USERNAME"),
		Password:   v.GetString("DB_PASSWORD"),
		Name:       v.GetString("DB_NAME"),
		SQLitePath: v.GetString("SQLITE_PATH"),
		DSN:        v.GetString("DB_DSN"),
	}
	if dbConfig.DSN == "" {
		dbConfig.DSN = dbConfig.buildDSN()
	}

	cfg := &Config{
		Port:               v.GetString("PORT"),
		Origin:             v.GetString("ORIGIN"),
		Environment:        v.GetString("APP_ENV"),
		AppURL:             v.GetString("APP_URL"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		AdminPasskeyHash:   v.GetString("ADMIN_PASSKEY_HASH"),
		PhoneDefaultRegion: strings.ToUpper(v.GetString("PHONE_DEFAULT_REGION")),
		Database:           dbConfig,
		Storage: StorageConfig{
			Driver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
			S3: S3Config{
				Endpoint:        v.GetString("S3_ENDPOINT"),
				Region:          v.GetString("S3_REGION"),
				Bucket:          v.GetString("S3_BUCKET"),
				AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
				SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
				PublicURL:       v.GetString("S3_PUBLIC_URL"),
			},
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Mailer: MailerConfig{
			Enabled:     v.GetBool("MAILER_ENABLED"),
			Host:        v.GetString("MAILER_HOST"),
			Port:        v.GetInt("MAILER_PORT"),
			Username:    v.GetString("MAILER_USERNAME"),
			Password:    v.GetString("MAILER_PASSWORD"),
			DefaultFrom: v.GetString("MAILER_DEFAULT_FROM"),
		},
		Logging: LoggingConfig{
			Level:          v.GetString("LOG_LEVEL"),
			Format:         v.GetString("LOG_FORMAT"),
			FilePath:       v.GetString("LOG_FILE_PATH"),
			FileMaxSizeMB:  v.GetInt("LOG_FILE_MAX_SIZE_MB"),
			FileMaxBackups: v.GetInt("LOG_FILE_MAX_BACKUPS"),
			FileMaxAgeDays: v.GetInt("LOG_FILE_MAX_AGE_DAYS"),
		},
		Forms: FormsConfig{
			SessionTTL:        time.Duration(v.GetInt("FORM_SESSION_TTL_MINUTES")) * time.Minute,
			SubmissionLockTTL: time.Duration(v.GetInt("SUBMISSION_LOCK_TTL_SECONDS")) * time.Second,
		},
		JWTExpirationMinutes: v.GetInt("JWT_EXPIRATION_MINUTES"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3001")
	v.SetDefault("ORIGIN", "http://localhost:3000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_URL", "http://localhost:3001")
	v.SetDefault("JWT_SECRET", "default_jwt_secret")
	v.SetDefault("JWT_EXPIRATION_MINUTES", 60)
	v.SetDefault("PHONE_DEFAULT_REGION", "NG")

	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_USERNAME", "root")
	v.SetDefault("DB_NAME", "care4")
	v.SetDefault("SQLITE_PATH", "data/care4.db")

	v.SetDefault("STORAGE_DRIVER", "database")
	v.SetDefault("S3_REGION", "us-east-1")

	v.SetDefault("MAILER_ENABLED", false)
	v.SetDefault("MAILER_PORT", 587)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "")
	v.SetDefault("LOG_FILE_MAX_SIZE_MB", 50)
	v.SetDefault("LOG_FILE_MAX_BACKUPS", 5)
	v.SetDefault("LOG_FILE_MAX_AGE_DAYS", 28)

	v.SetDefault("FORM_SESSION_TTL_MINUTES", 30)
	v.SetDefault("SUBMISSION_LOCK_TTL_SECONDS", 30)
}

// buildDSN builds the driver specific Data Source Name.
func (d DatabaseConfig) buildDSN() string {
	switch d.Driver {
	case "postgres":
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			d.Host, d.Port, d.Username, d.Password, d.Name)
	case "sqlite":
		return d.SQLitePath
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.Username, d.Password, d.Host, d.Port, d.Name)
	}
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Environment == "development"
}

// Validate checks the combinations that would otherwise fail at first use.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be one of mysql, postgres, sqlite, got %q", c.Database.Driver)
	}

	switch c.Storage.Driver {
	case "database":
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER is s3")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be database or s3, got %q", c.Storage.Driver)
	}

	if c.Mailer.Enabled && c.Mailer.Host == "" {
		return fmt.Errorf("MAILER_HOST is required when MAILER_ENABLED is true")
	}
	if c.JWTExpirationMinutes <= 0 {
		return fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %d", c.JWTExpirationMinutes)
	}
	if c.Forms.SessionTTL <= 0 {
		return fmt.Errorf("FORM_SESSION_TTL_MINUTES must be positive")
	}
	if c.Forms.SubmissionLockTTL <= 0 {
		return fmt.Errorf("SUBMISSION_LOCK_TTL_SECONDS must be positive")
	}
	return nil
}
