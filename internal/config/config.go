package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"golang.org/x/crypto/bcrypt"
)

const (
	// ConfigPathEnvVar overrides the YAML config file location.
	ConfigPathEnvVar = "CONFIG_PATH"
	// DotEnvPathEnvVar overrides the .env file location.
	DotEnvPathEnvVar = "DOTENV_PATH"

	defaultConfigPath = "articlesapi.yaml"
	defaultDotEnvPath = ".env"

	// MinSecretLength is the minimum HMAC secret size in bytes.
	MinSecretLength = 32
)

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN)
	DatabaseURL string `koanf:"database_url"`

	// Server bind address (host:port)
	ServerAddr string `koanf:"server_addr"`

	// Maximum database connection pool size
	MaxDBConnections int `koanf:"max_db_connections"`

	// Enable debug logging
	Debug bool `koanf:"debug"`

	// bcrypt work factor for stored passwords
	BcryptCost int `koanf:"bcrypt_cost"`

	Log     LogConfig     `koanf:"log"`
	JWT     JWTConfig     `koanf:"jwt"`
	Metrics MetricsConfig `koanf:"metrics"`
	CORS    CORSConfig    `koanf:"cors"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// JWTConfig holds the token signing and verification settings.
// The same values are used to issue tokens at login and to verify them on
// every authenticated request.
type JWTConfig struct {
	Secret    string        `koanf:"secret"`
	Issuer    string        `koanf:"issuer"`
	Audience  string        `koanf:"audience"`
	ExpiresIn time.Duration `koanf:"expires_in"`
}

// MetricsConfig toggles the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// CORSConfig lists browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins"`
}

func defaultConfig() *Config {
	return &Config{
		DatabaseURL:      "file:articles.db?cache=shared",
		ServerAddr:       "localhost:8080",
		MaxDBConnections: 25,
		BcryptCost:       11,
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		JWT: JWTConfig{
			Issuer:    "articles-service",
			Audience:  "articles-clients",
			ExpiresIn: time.Hour,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		},
	}
}

// envKeys maps environment variables to config paths. Variables not listed
// here are ignored.
var envKeys = map[string]string{
	"DATABASE_URL":         "database_url",
	"SERVER_ADDR":          "server_addr",
	"MAX_DB_CONNECTIONS":   "max_db_connections",
	"DEBUG":                "debug",
	"BCRYPT_COST":          "bcrypt_cost",
	"LOG_LEVEL":            "log.level",
	"LOG_FORMAT":           "log.format",
	"JWT_SECRET":           "jwt.secret",
	"JWT_ISSUER":           "jwt.issuer",
	"JWT_AUDIENCE":         "jwt.audience",
	"JWT_EXPIRES_IN":       "jwt.expires_in",
	"METRICS_ENABLED":      "metrics.enabled",
	"METRICS_PATH":         "metrics.path",
	"CORS_ALLOWED_ORIGINS": "cors.allowed_origins",
}

func envTransformFunc(key string) string {
	return envKeys[key]
}

// Load reads configuration in increasing priority: built-in defaults, the
// optional YAML file, then environment variables. A .env file is loaded into
// the process environment first without overriding variables already set.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitListFields(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// listPaths are config paths that arrive from the environment as
// comma-separated strings.
var listPaths = []string{"cors.allowed_origins"}

func splitListFields(k *koanf.Koanf) error {
	for _, path := range listPaths {
		raw, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		items := make([]string, 0)
		for _, item := range strings.Split(raw, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		if err := k.Set(path, items); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	if path == "" {
		path = defaultDotEnvPath
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
		return ""
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.ServerAddr == "" {
		return fmt.Errorf("SERVER_ADDR is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWT.Secret) < MinSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", MinSecretLength)
	}
	if c.JWT.Issuer == "" {
		return fmt.Errorf("JWT_ISSUER is required")
	}
	if c.JWT.Audience == "" {
		return fmt.Errorf("JWT_AUDIENCE is required")
	}
	if c.JWT.ExpiresIn <= 0 {
		return fmt.Errorf("JWT_EXPIRES_IN must be positive, got %s", c.JWT.ExpiresIn)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	return nil
}

// LogLevel resolves the effective log level; Debug wins over the configured level.
func (c *Config) LogLevel() string {
	if c.Debug {
		return "debug"
	}
	return c.Log.Level
}
