// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Store       StoreConfig
	Redis       RedisConfig
	AWS         AWSConfig
	Blockchain  BlockchainConfig
	Transfer    TransferConfig
	Email       EmailConfig
	I18n        I18nConfig
	Frontend    FrontendConfig
	Fixtures    FixturesConfig
}

type FrontendConfig struct {
	BaseURL string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
	AuditLog     bool
}

type DatabaseConfig struct {
	Driver       string // sqlite or postgres
	Path         string // sqlite file
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

// StoreConfig selects the backend holding the ownership record and transfer list.
type StoreConfig struct {
	Driver string // database or redis
	Prefix string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	ArchivePrefix   string
}

type BlockchainConfig struct {
	Network                string
	ConfirmationDelayMS    int
	TransactionIDPrefix    string
	CertificateArchiveMode string // none or s3
}

type TransferConfig struct {
	TTLHours         int
	ClaimTokenSecret string
	CodeAttempts     int
	LookupRatePerMin int
	LookupBurst      int
	ClaimPath        string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

type I18nConfig struct {
	DefaultLocale string
	LocalesPath   string
}

type FixturesConfig struct {
	Path string // empty means the embedded defaults
}

const defaultClaimTokenSecret = "dpp-claim-secret-change-in-production"

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
			AuditLog:     getEnvAsBool("SERVER_AUDIT_LOG", true),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			Path:         getEnv("DB_PATH", "dpp.db"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "digital_passport"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getEnv("STORE_DRIVER", "database")),
			Prefix: getEnv("STORE_PREFIX", "lv-dpp"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "eu-west-3"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "dpp-certificates"),
			ArchivePrefix:   getEnv("AWS_ARCHIVE_PREFIX", "certificates"),
		},
		Blockchain: BlockchainConfig{
			Network:                getEnv("BLOCKCHAIN_NETWORK", "Aura Blockchain"),
			ConfirmationDelayMS:    getEnvAsInt("BLOCKCHAIN_CONFIRMATION_DELAY_MS", 2000),
			TransactionIDPrefix:    getEnv("BLOCKCHAIN_TX_PREFIX", "TX-LV"),
			CertificateArchiveMode: strings.ToLower(getEnv("CERTIFICATE_ARCHIVE", "none")),
		},
		Transfer: TransferConfig{
			TTLHours:         getEnvAsInt("TRANSFER_TTL_HOURS", 7*24),
			ClaimTokenSecret: getEnv("TRANSFER_CLAIM_SECRET", defaultClaimTokenSecret),
			CodeAttempts:     getEnvAsInt("TRANSFER_CODE_ATTEMPTS", 10),
			LookupRatePerMin: getEnvAsInt("TRANSFER_LOOKUP_RATE_PER_MIN", 10),
			LookupBurst:      getEnvAsInt("TRANSFER_LOOKUP_BURST", 5),
			ClaimPath:        getEnv("TRANSFER_CLAIM_PATH", "/dpp/certificate/transfer/claim"),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@dpp.example.com"),
			FromName:     getEnv("FROM_NAME", "Digital Product Passport"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
			LocalesPath:   getEnv("LOCALES_PATH", ""),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		},
		Fixtures: FixturesConfig{
			Path: getEnv("FIXTURES_PATH", ""),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.Transfer.ClaimTokenSecret == defaultClaimTokenSecret && c.Environment == "production" {
		return fmt.Errorf("transfer claim secret must be changed in production")
	}

	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}

	switch c.Store.Driver {
	case "database", "redis":
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}

	if c.Database.Driver == "postgres" && c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Transfer.TTLHours <= 0 {
		return fmt.Errorf("TRANSFER_TTL_HOURS must be positive")
	}

	if c.Blockchain.ConfirmationDelayMS < 0 {
		return fmt.Errorf("BLOCKCHAIN_CONFIRMATION_DELAY_MS must not be negative")
	}

	return nil
}

// TransferTTL is how long a transfer code stays claimable.
func (c *Config) TransferTTL() time.Duration {
	return time.Duration(c.Transfer.TTLHours) * time.Hour
}

// ConfirmationDelay is the simulated ledger confirmation latency.
func (c *Config) ConfirmationDelay() time.Duration {
	return time.Duration(c.Blockchain.ConfirmationDelayMS) * time.Millisecond
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
