// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types and validates that the
// required values are present so they can be reused across the application
// runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Apply defaults for optional blocks (server tuning, store, observability).
//   - Validate required values so the app fails fast on bad/missing config.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process environment before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the TUTORIAL_ prefix. Keys are lower-cased with the
	prefix removed, and "." is the nesting delimiter:

	  TUTORIAL_SERVER.PORT          -> server.port          -> Config.Server.Port
	  TUTORIAL_DATABASE.SSL_MODE    -> database.ssl_mode    -> Config.Database.SSLMode

	Underscores inside a key are kept as-is, so field names with underscores
	map directly onto the koanf tags below. List settings are comma-separated:

	  TUTORIAL_SERVER.CORS_ALLOWED_ORIGINS=http://a.example,http://b.example
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "TUTORIAL_"

// Supported values for StoreConfig.Driver.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Store         StoreConfig          `koanf:"store" validate:"required"`
	Database      DatabaseConfig       `koanf:"database"`
	Redis         RedisConfig          `koanf:"redis"`
	OpenAPI       OpenAPIConfig        `koanf:"openapi"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required,min=1"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required,min=1"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required,min=1"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required,min=1"`

	// RateLimit is the number of requests per second allowed per client IP.
	// Zero disables rate limiting.
	RateLimit float64 `koanf:"rate_limit" validate:"min=0"`
}

// StoreConfig selects which TutorialRepository adapter backs the API.
type StoreConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=postgres redis"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
// It is only required when Store.Driver is "postgres".
type DatabaseConfig struct {
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	User            string `koanf:"user"`
	Password        string `koanf:"password"`
	Name            string `koanf:"name"`
	SSLMode         string `koanf:"ssl_mode"`
	MaxOpenConns    int    `koanf:"max_open_conns"`
	MaxIdleConns    int    `koanf:"max_idle_conns"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port"; an empty address means Redis is not used.
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
}

// OpenAPIConfig holds the server URLs advertised in the published API document.
type OpenAPIConfig struct {
	DevURL  string `koanf:"dev_url" validate:"omitempty,url"`
	ProdURL string `koanf:"prod_url" validate:"omitempty,url"`
}

// listKeys are the settings given as comma-separated lists.
var listKeys = map[string]bool{
	"server.cors_allowed_origins": true,
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, applies defaults, validates it and returns the result.
//
// Every failure is returned; the caller decides how to stop the process.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	mainConfig.applyDefaults()

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.validateStore(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

// applyDefaults fills zero-valued optional settings.
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60
	}
	if len(c.Server.CORSAllowedOrigins) == 0 {
		c.Server.CORSAllowedOrigins = []string{"http://localhost:8081"}
	}

	if c.Store.Driver == "" {
		c.Store.Driver = StoreDriverPostgres
	}

	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 25
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 300
	}
	if c.Database.ConnMaxIdleTime == 0 {
		c.Database.ConnMaxIdleTime = 60
	}

	if c.OpenAPI.DevURL == "" {
		c.OpenAPI.DevURL = "http://localhost:" + c.Server.Port
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	} else {
		c.Observability.fillDefaults()
	}

	// Service name is fixed; environment always follows primary.env so logs
	// and traces agree with each other.
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env
}

// validateStore checks the settings the selected store driver depends on.
func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case StoreDriverPostgres:
		var missing []string
		if c.Database.Host == "" {
			missing = append(missing, "database.host")
		}
		if c.Database.User == "" {
			missing = append(missing, "database.user")
		}
		if c.Database.Name == "" {
			missing = append(missing, "database.name")
		}
		if len(missing) > 0 {
			return fmt.Errorf("store driver %q requires %s", c.Store.Driver, strings.Join(missing, ", "))
		}
	case StoreDriverRedis:
		if c.Redis.Address == "" {
			return fmt.Errorf("store driver %q requires redis.address", c.Store.Driver)
		}
	}
	return nil
}

// UsesPostgres reports whether tutorials are stored in PostgreSQL.
func (c *Config) UsesPostgres() bool {
	return c.Store.Driver == StoreDriverPostgres
}

// UsesRedis reports whether tutorials are stored in Redis.
func (c *Config) UsesRedis() bool {
	return c.Store.Driver == StoreDriverRedis
}
