// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by Load.
const (
	EnvDatabaseURL    = "DATABASE_URL"
	EnvPort           = "PORT"
	EnvDynamoTable    = "DYNAMODB_TABLE"
	EnvDynamoIndex    = "DYNAMODB_INDEX"
	EnvDynamoEndpoint = "DYNAMODB_ENDPOINT"
	EnvDynamoCreate   = "DYNAMODB_CREATE_TABLE"
	EnvAWSRegion      = "AWS_REGION"
	EnvAutoMigrate    = "DATABASE_AUTO_MIGRATE"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
)

// ErrMissingDatabaseURL is returned when DATABASE_URL is unset.
var ErrMissingDatabaseURL = errors.New("config: DATABASE_URL is required")

// Config holds process-wide settings.
type Config struct {
	// DatabaseURL selects the backend. mysql://, postgres://, sqlite:// and
	// file: URLs select the relational backend; anything else selects DynamoDB.
	DatabaseURL string

	// Port is the HTTP listen port.
	// Default: 8080
	Port int

	// DynamoTable is the single table name. A dynamodb://<table> DatabaseURL
	// overrides it.
	// Default: "one-table"
	DynamoTable string

	// DynamoIndex is the slug index name.
	// Default: "gsi"
	DynamoIndex string

	// DynamoEndpoint overrides the DynamoDB endpoint, e.g. DynamoDB Local.
	DynamoEndpoint string

	// CreateTable creates the DynamoDB table at startup.
	CreateTable bool

	// AWSRegion is the DynamoDB region.
	// Default: "us-east-1"
	AWSRegion string

	// AutoMigrate creates the relational tables at startup.
	AutoMigrate bool

	// LogLevel is the minimum slog level.
	// Default: info
	LogLevel slog.Level

	// LogFormat is "json" or "text".
	// Default: "json"
	LogFormat string
}

// DefaultConfig returns defaults for everything except DatabaseURL.
func DefaultConfig() Config {
	return Config{
		Port:        8080,
		DynamoTable: "one-table",
		DynamoIndex: "gsi",
		AWSRegion:   "us-east-1",
		LogLevel:    slog.LevelInfo,
		LogFormat:   "json",
	}
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv.
func LoadFrom(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()

	cfg.DatabaseURL = strings.TrimSpace(getenv(EnvDatabaseURL))
	if cfg.DatabaseURL == "" {
		return Config{}, ErrMissingDatabaseURL
	}

	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return Config{}, fmt.Errorf("config: invalid %s %q", EnvPort, v)
		}
		cfg.Port = port
	}

	if v := getenv(EnvDynamoTable); v != "" {
		cfg.DynamoTable = v
	}
	if v := getenv(EnvDynamoIndex); v != "" {
		cfg.DynamoIndex = v
	}
	cfg.DynamoEndpoint = getenv(EnvDynamoEndpoint)
	if v := getenv(EnvAWSRegion); v != "" {
		cfg.AWSRegion = v
	}

	var err error
	if cfg.CreateTable, err = parseBool(getenv, EnvDynamoCreate); err != nil {
		return Config{}, err
	}
	if cfg.AutoMigrate, err = parseBool(getenv, EnvAutoMigrate); err != nil {
		return Config{}, err
	}

	logging, err := LoadLoggingFrom(getenv)
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel, cfg.LogFormat = logging.Level, logging.Format

	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// NewLogger builds the process logger described by the config.
func (c Config) NewLogger() *slog.Logger {
	return Logging{Level: c.LogLevel, Format: c.LogFormat}.NewLogger(os.Stderr)
}

// Logging holds the logger settings. Processes that need no database, such
// as the stream consumer, load only these.
type Logging struct {
	Level  slog.Level
	Format string
}

// LoadLogging reads LOG_LEVEL and LOG_FORMAT from the process environment.
func LoadLogging() (Logging, error) {
	return LoadLoggingFrom(os.Getenv)
}

// LoadLoggingFrom reads the logger settings through getenv.
func LoadLoggingFrom(getenv func(string) string) (Logging, error) {
	l := Logging{Level: slog.LevelInfo, Format: "json"}

	if v := getenv(EnvLogLevel); v != "" {
		if err := l.Level.UnmarshalText([]byte(v)); err != nil {
			return Logging{}, fmt.Errorf("config: invalid %s %q", EnvLogLevel, v)
		}
	}
	if v := getenv(EnvLogFormat); v != "" {
		v = strings.ToLower(v)
		if v != "json" && v != "text" {
			return Logging{}, fmt.Errorf("config: invalid %s %q", EnvLogFormat, v)
		}
		l.Format = v
	}

	return l, nil
}

// NewLogger builds a logger writing to w.
func (l Logging) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: l.Level}
	if l.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseBool(getenv func(string) string, key string) (bool, error) {
	v := getenv(key)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s %q", key, v)
	}
	return b, nil
}
