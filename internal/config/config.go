package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Service identifies which process is loading configuration.
type Service string

const (
	ServiceIdentity Service = "identity"
	ServiceTodos    Service = "todos"
)

// Driver is the database/sql driver used to reach the store.
type Driver string

const (
	DriverPostgres Driver = "postgres" // lib/pq
	DriverPgx      Driver = "pgx"      // pgx stdlib
	DriverSQLite   Driver = "sqlite"   // modernc.org/sqlite
)

// Token formats understood by the token codec.
const (
	TokenFormatJWT    = "jwt"
	TokenFormatPaseto = "paseto"
)

// Password hashing algorithms.
const (
	HasherArgon2id = "argon2id"
	HasherBcrypt   = "bcrypt"
)

var ErrMissingTokenSecret = errors.New("TOKEN_SECRET is required")

type Config struct {
	Service  Service
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port             string
	Env              string // dev or prod
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	OperationTimeout time.Duration // bound on a single hash or persistence call
	TrustedOrigins   []string      // CORS allowed origins
}

type DatabaseConfig struct {
	Driver         Driver
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB, empty for local
	Path           string // sqlite file path or ":memory:"
	AutoMigrate    bool
}

type RedisConfig struct {
	Host     string // empty disables the todo list cache
	Port     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type AuthConfig struct {
	// Shared by the identity and todos services; distributed out of band.
	TokenSecret    []byte
	TokenFormat    string
	TokenDuration  time.Duration
	PasswordHasher string
	BcryptCost     int
}

// Load reads configuration for the given service from environment variables.
// A .env file in the working directory is loaded first if present.
func Load(service Service) (*Config, error) {
	_ = godotenv.Load()

	defaultPort, defaultDB := defaults(service)

	cfg := &Config{
		Service: service,
		Server: ServerConfig{
			Port:             getEnv("SERVER_PORT", defaultPort),
			Env:              getEnv("APP_ENV", "dev"),
			ReadTimeout:      getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:     getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout:  getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			OperationTimeout: getDurationEnv("OPERATION_TIMEOUT", 5*time.Second),
			TrustedOrigins:   getSliceEnv("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
		},
		Database: loadDatabase(defaultDB),
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", ""),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			CacheTTL: getDurationEnv("TODO_CACHE_TTL", 60*time.Second),
		},
		Auth: AuthConfig{
			TokenSecret:    []byte(os.Getenv("TOKEN_SECRET")),
			TokenFormat:    strings.ToLower(getEnv("TOKEN_FORMAT", TokenFormatJWT)),
			TokenDuration:  getDurationEnv("TOKEN_DURATION", time.Hour),
			PasswordHasher: strings.ToLower(getEnv("PASSWORD_HASHER", HasherArgon2id)),
			BcryptCost:     getIntEnv("BCRYPT_COST", 10),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings of service. Tools that never
// touch tokens, such as migrations, use it so TOKEN_SECRET is not required.
func LoadDatabase(service Service) (DatabaseConfig, error) {
	_ = godotenv.Load()

	_, defaultDB := defaults(service)
	cfg := loadDatabase(defaultDB)
	if err := cfg.validate(); err != nil {
		return DatabaseConfig{}, err
	}
	return cfg, nil
}

func defaults(service Service) (port, dbName string) {
	if service == ServiceTodos {
		return "5001", "tododb"
	}
	return "5000", "userdb"
}

func loadDatabase(defaultDB string) DatabaseConfig {
	return DatabaseConfig{
		Driver:         Driver(getEnv("DB_DRIVER", string(DriverPostgres))),
		Host:           getEnv("DB_HOST", "localhost"),
		Port:           getEnv("DB_PORT", "5432"),
		User:           getEnv("DB_USER", "postgres"),
		Password:       getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", defaultDB),
		SSLMode:        getEnv("DB_SSLMODE", "disable"),
		ChannelBinding: getEnv("DB_CHANNEL_BINDING", ""),
		Path:           getEnv("DB_PATH", defaultDB+".db"),
		AutoMigrate:    getBoolEnv("DB_AUTO_MIGRATE", true),
	}
}

// Validate checks the settings that cannot be defaulted safely.
func (c *Config) Validate() error {
	if len(c.Auth.TokenSecret) == 0 {
		return ErrMissingTokenSecret
	}

	switch c.Auth.TokenFormat {
	case TokenFormatJWT:
	case TokenFormatPaseto:
		// v4.local needs a raw 32-byte symmetric key
		if len(c.Auth.TokenSecret) != 32 {
			return fmt.Errorf("TOKEN_SECRET must be exactly 32 bytes for paseto, got %d", len(c.Auth.TokenSecret))
		}
	default:
		return fmt.Errorf("unsupported TOKEN_FORMAT %q", c.Auth.TokenFormat)
	}

	switch c.Auth.PasswordHasher {
	case HasherArgon2id, HasherBcrypt:
	default:
		return fmt.Errorf("unsupported PASSWORD_HASHER %q", c.Auth.PasswordHasher)
	}

	if err := c.Database.validate(); err != nil {
		return err
	}

	if c.Auth.TokenDuration <= 0 {
		return fmt.Errorf("TOKEN_DURATION must be positive")
	}

	return nil
}

func (c *DatabaseConfig) validate() error {
	switch c.Driver {
	case DriverPostgres, DriverPgx, DriverSQLite:
		return nil
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Driver)
	}
}

func (c *DatabaseConfig) ConnectionString() string {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)

	// Add channel_binding if configured (required for Neon DB)
	if c.ChannelBinding != "" {
		connStr += fmt.Sprintf(" channel_binding=%s", c.ChannelBinding)
	}

	return connStr
}

// Enabled reports whether a Redis server has been configured.
func (c *RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Address returns Redis connection address (host:port)
func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDevelopment returns true if the environment is set to dev
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

// getDurationEnv reads a whole number of seconds.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	seconds, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return time.Duration(seconds) * time.Second
}

func getSliceEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return defaultValue
	}

	return result
}
