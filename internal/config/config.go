package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	PayOS       PayOSConfig
	VietQR      VietQRConfig
	Fees        FeeConfig
	Business    BusinessConfig
	Secrets     SecretsConfig
	Cron        CronConfig
	RateLimit   RateLimitConfig
	Logger      LoggerConfig
}

// ServerConfig holds listener configuration
type ServerConfig struct {
	Host        string
	HTTPPort    int
	GRPCPort    int
	MetricsPort int
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL      string // takes precedence over the individual fields
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	MinConns int32
}

// RedisConfig holds the Redis connection used for distributed locks.
// An empty Addr disables locking.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	LockTTL  time.Duration
}

// PayOSConfig holds the hosted-checkout gateway configuration. The API key
// and checksum key are read from the secret store at the given paths.
type PayOSConfig struct {
	BaseURL           string
	ClientID          string
	APIKeyPath        string
	ChecksumKeyPath   string
	ReturnURL         string
	CancelURL         string
	LinkExpiryMinutes int
}

// VietQRConfig holds the QR generator configuration and the platform's
// receiving account that guests transfer to
type VietQRConfig struct {
	BaseURL     string
	ClientID    string
	APIKeyPath  string
	AccountNo   string
	AccountName string
	AcqID       string // bank BIN
	Template    string
}

// FeeConfig holds the percentages applied when a payment is recorded
type FeeConfig struct {
	ProcessingRate decimal.Decimal
	PlatformRate   decimal.Decimal
}

// BusinessConfig holds domain defaults
type BusinessConfig struct {
	DefaultTimezone string
	TxRefPrefix     string
	Currency        string
	GatewayTimeout  time.Duration
}

// SecretsConfig selects the secret backend
type SecretsConfig struct {
	Backend   string // local, aws, vault
	LocalPath string
	AWSRegion string
	VaultAddr string
	VaultPath string
}

// CronConfig holds the scheduler-facing endpoint settings
type CronConfig struct {
	Secret  string
	Timeout time.Duration
}

// RateLimitConfig bounds public and webhook request rates per client
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// Load reads an optional .env file and then the environment
func Load() (*Config, error) {
	// Missing .env is normal outside local development
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:        getEnv("SERVER_HOST", "0.0.0.0"),
			HTTPPort:    getEnvAsInt("HTTP_PORT", 8080),
			GRPCPort:    getEnvAsInt("GRPC_PORT", 50051),
			MetricsPort: getEnvAsInt("METRICS_PORT", 9090),
		},
		Database: LoadDatabaseConfig(),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			LockTTL:  getEnvAsDuration("PAYOUT_BATCH_LOCK_TTL", 10*time.Minute),
		},
		PayOS: PayOSConfig{
			BaseURL:           getEnv("PAYOS_BASE_URL", "https://api-merchant.payos.vn"),
			ClientID:          getEnv("PAYOS_CLIENT_ID", ""),
			APIKeyPath:        getEnv("PAYOS_API_KEY_PATH", "payos/api_key"),
			ChecksumKeyPath:   getEnv("PAYOS_CHECKSUM_KEY_PATH", "payos/checksum_key"),
			ReturnURL:         getEnv("PAYOS_RETURN_URL", "http://localhost:3000/payments/return"),
			CancelURL:         getEnv("PAYOS_CANCEL_URL", "http://localhost:3000/payments/cancel"),
			LinkExpiryMinutes: getEnvAsInt("PAYOS_LINK_EXPIRY_MINUTES", 15),
		},
		VietQR: VietQRConfig{
			BaseURL:     getEnv("VIETQR_BASE_URL", "https://api.vietqr.io"),
			ClientID:    getEnv("VIETQR_CLIENT_ID", ""),
			APIKeyPath:  getEnv("VIETQR_API_KEY_PATH", "vietqr/api_key"),
			AccountNo:   getEnv("VIETQR_ACCOUNT_NO", ""),
			AccountName: getEnv("VIETQR_ACCOUNT_NAME", ""),
			AcqID:       getEnv("VIETQR_ACQ_ID", ""),
			Template:    getEnv("VIETQR_TEMPLATE", "compact"),
		},
		Fees: FeeConfig{
			ProcessingRate: getEnvAsDecimal("FEE_PROCESSING_RATE", decimal.Zero),
			PlatformRate:   getEnvAsDecimal("FEE_PLATFORM_RATE", decimal.NewFromInt(10)),
		},
		Business: BusinessConfig{
			DefaultTimezone: getEnv("DEFAULT_HOTEL_TIMEZONE", "Asia/Ho_Chi_Minh"),
			TxRefPrefix:     getEnv("TX_REF_PREFIX", "HB"),
			Currency:        getEnv("CURRENCY", "VND"),
			GatewayTimeout:  getEnvAsDuration("GATEWAY_TIMEOUT", 10*time.Second),
		},
		Secrets: SecretsConfig{
			Backend:   getEnv("SECRET_MANAGER", "local"),
			LocalPath: getEnv("LOCAL_SECRETS_BASE_PATH", "./secrets"),
			AWSRegion: getEnv("AWS_REGION", "ap-southeast-1"),
			VaultAddr: getEnv("VAULT_ADDR", ""),
			VaultPath: getEnv("VAULT_MOUNT_PATH", "secret"),
		},
		Cron: CronConfig{
			Secret:  getEnv("CRON_SECRET", ""),
			Timeout: getEnvAsDuration("CRON_TIMEOUT", 5*time.Minute),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 20),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabaseConfig reads only the database section, for tools such as
// the migrator that need nothing else
func LoadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL:      getEnv("DATABASE_URL", ""),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Database: getEnv("DB_NAME", "hotel_payout"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(getEnvAsInt("DB_MAX_CONNS", 25)),
		MinConns: int32(getEnvAsInt("DB_MIN_CONNS", 5)),
	}
}

// Validate returns every configuration problem at once
func (c *Config) Validate() error {
	var errs []error

	if c.Database.URL == "" && c.Database.Password == "" {
		errs = append(errs, errors.New("DATABASE_URL or DB_PASSWORD is required"))
	}
	if c.Cron.Secret == "" && c.IsProduction() {
		errs = append(errs, errors.New("CRON_SECRET is required in production"))
	}

	switch c.Secrets.Backend {
	case "local", "aws":
	case "vault":
		if c.Secrets.VaultAddr == "" {
			errs = append(errs, errors.New("VAULT_ADDR is required when SECRET_MANAGER=vault"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SECRET_MANAGER %q (want local, aws or vault)", c.Secrets.Backend))
	}

	hundred := decimal.NewFromInt(100)
	for name, rate := range map[string]decimal.Decimal{
		"FEE_PROCESSING_RATE": c.Fees.ProcessingRate,
		"FEE_PLATFORM_RATE":   c.Fees.PlatformRate,
	} {
		if rate.IsNegative() || rate.GreaterThan(hundred) {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 100, got %s", name, rate))
		}
	}
	if c.Fees.ProcessingRate.Add(c.Fees.PlatformRate).GreaterThan(hundred) {
		errs = append(errs, errors.New("FEE_PROCESSING_RATE + FEE_PLATFORM_RATE must not exceed 100"))
	}

	if _, err := time.LoadLocation(c.Business.DefaultTimezone); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_HOTEL_TIMEZONE: %w", err))
	}
	if c.Business.GatewayTimeout <= 0 {
		errs = append(errs, errors.New("GATEWAY_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// PayOSEnabled reports whether hosted checkout can be offered
func (c *Config) PayOSEnabled() bool {
	return c.PayOS.ClientID != ""
}

// VietQREnabled reports whether QR transfers can be offered
func (c *Config) VietQREnabled() bool {
	return c.VietQR.AccountNo != "" && c.VietQR.AcqID != ""
}

// DSN returns the PostgreSQL connection string
func (c DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
