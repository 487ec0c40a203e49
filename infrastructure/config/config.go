package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"clothing-api/pkg/utils"
)

// Store backends selectable through STORE_BACKEND.
const (
	BackendDynamoDB = "dynamodb"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
	BackendLevelDB  = "leveldb"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Environment       string `yaml:"environment" validate:"required"`
	ServerAddress     string `yaml:"server_address" validate:"required"`
	ServerTimeoutMS   int    `yaml:"server_timeout_ms" validate:"min=1"`
	ServerKeepAliveMS int    `yaml:"server_keepalive_ms" validate:"min=1"`

	// Store configuration
	StoreBackend     string `yaml:"store_backend" validate:"oneof=dynamodb sqlite mysql leveldb"`
	TableName        string `yaml:"table_name" validate:"required"`
	AWSRegion        string `yaml:"aws_region" validate:"required"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint" validate:"omitempty,url"`
	SQLDSN           string `yaml:"sql_dsn" validate:"required_if=StoreBackend sqlite,required_if=StoreBackend mysql"`
	LevelDBPath      string `yaml:"leveldb_path" validate:"required_if=StoreBackend leveldb"`

	// Cache configuration. An empty RedisAddr disables the cache.
	RedisAddr       string `yaml:"redis_addr" validate:"omitempty,hostname_port"`
	RedisPassword   string `yaml:"redis_password"`
	RedisDB         int    `yaml:"redis_db" validate:"min=0"`
	CacheTTLSeconds int    `yaml:"cache_ttl_seconds" validate:"min=0"`

	// Events. An empty bus name disables publishing.
	EventBusName string `yaml:"event_bus_name"`

	// CORS
	CORSOrigin      string `yaml:"cors_origin" validate:"required"`
	CORSCredentials bool   `yaml:"cors_credentials"`

	// Lambda configuration
	HandlerName string `yaml:"handler_name"`
	IsLambda    bool   `yaml:"-"`

	// Logging and features
	LogLevel      string `yaml:"log_level" validate:"oneof=debug info warn error"`
	EnableMetrics bool   `yaml:"enable_metrics"`
	EnableTracing bool   `yaml:"enable_tracing"`
}

func defaults() *Config {
	return &Config{
		Environment:       "development",
		ServerAddress:     "0.0.0.0:8080",
		ServerTimeoutMS:   30000,
		ServerKeepAliveMS: 65000,
		StoreBackend:      BackendDynamoDB,
		TableName:         "clothing_items",
		AWSRegion:         "us-east-1",
		SQLDSN:            "clothing.db",
		LevelDBPath:       "data/clothing",
		CacheTTLSeconds:   300,
		CORSOrigin:        "*",
		HandlerName:       "get",
		LogLevel:          "info",
	}
}

// LoadConfig loads configuration from defaults, the optional YAML file named
// by CONFIG_FILE and environment variables, in increasing priority.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.loadEnvironment()

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnvironment() {
	c.Environment = getEnv("ENVIRONMENT", getEnv("NODE_ENV", c.Environment))
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.serverAddressFromParts())
	c.ServerTimeoutMS = getEnvInt("SERVER_TIMEOUT_MS", c.ServerTimeoutMS)
	c.ServerKeepAliveMS = getEnvInt("SERVER_KEEPALIVE_MS", c.ServerKeepAliveMS)

	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.TableName = getEnv("CLOTHING_TABLE", getEnv("DYNAMODB_TABLE", getEnv("DB_DYNAMONAME", c.TableName)))
	c.AWSRegion = getEnv("DYNAMODB_REGION", getEnv("AWS_REGION", c.AWSRegion))
	c.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", c.DynamoDBEndpoint)
	c.SQLDSN = getEnv("SQL_DSN", c.SQLDSN)
	c.LevelDBPath = getEnv("LEVELDB_PATH", c.LevelDBPath)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.CacheTTLSeconds = getEnvInt("CACHE_TTL_SECONDS", c.CacheTTLSeconds)

	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.CORSOrigin = getEnv("CORS_ORIGIN", c.CORSOrigin)
	c.CORSCredentials = getEnvBool("CORS_CREDENTIALS", c.CORSCredentials)

	functionName := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")
	c.IsLambda = functionName != ""
	c.HandlerName = getEnv("HANDLER_NAME", getEnv("AWS_LAMBDA_FUNCTION_NAME", c.HandlerName))

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
}

// serverAddressFromParts honours HOST and PORT (or APP_PORT) when
// SERVER_ADDRESS is not set.
func (c *Config) serverAddressFromParts() string {
	host, port, err := net.SplitHostPort(c.ServerAddress)
	if err != nil {
		host, port = "0.0.0.0", "8080"
	}
	host = getEnv("HOST", host)
	port = getEnv("PORT", getEnv("APP_PORT", port))
	return net.JoinHostPort(host, port)
}

// Validate checks the configuration against its struct rules
func (c *Config) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CacheEnabled reports whether a Redis address is configured
func (c *Config) CacheEnabled() bool {
	return c.RedisAddr != ""
}

// CacheTTL returns the cache entry lifetime
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ServerTimeout is the read and write timeout of the HTTP server
func (c *Config) ServerTimeout() time.Duration {
	return time.Duration(c.ServerTimeoutMS) * time.Millisecond
}

// ServerKeepAlive is the idle timeout of the HTTP server
func (c *Config) ServerKeepAlive() time.Duration {
	return time.Duration(c.ServerKeepAliveMS) * time.Millisecond
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
