package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/aretw0/folio/pkg/domain"
	"github.com/aretw0/folio/pkg/layout"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "folio.yaml"

// Store drivers.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Config is the complete folio configuration.
type Config struct {
	Layout     layout.Config     `yaml:"layout"`
	Thresholds domain.Thresholds `yaml:"thresholds"`
	Store      StoreConfig       `yaml:"store"`
	Server     ServerConfig      `yaml:"server"`
	Producer   ProducerConfig    `yaml:"producer"`
	LogLevel   string            `yaml:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
}

type StoreConfig struct {
	Driver        string        `yaml:"driver" validate:"oneof=memory file redis"`
	Dir           string        `yaml:"dir" validate:"required_if=Driver file"`
	Format        string        `yaml:"format" validate:"omitempty,oneof=json yaml"`
	RedisAddr     string        `yaml:"redis_addr" validate:"required_if=Driver redis"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db" validate:"min=0"`
	TTL           time.Duration `yaml:"ttl" validate:"min=0"`
	// EncryptionKey is a hex-encoded AES-256 key; when set, stories are sealed at rest.
	EncryptionKey string `yaml:"encryption_key" validate:"omitempty,hexadecimal,len=64"`
	// Redact lists regular expressions masked out of story text before it is stored.
	Redact []string `yaml:"redact"`
}

type ServerConfig struct {
	Port    int  `yaml:"port" validate:"min=1,max=65535"`
	Metrics bool `yaml:"metrics"`
}

// ProducerConfig selects the external command that writes new pages. Either Command is
// set directly, or Name picks an entry from the Registry file.
type ProducerConfig struct {
	Command  string        `yaml:"command"`
	Args     []string      `yaml:"args"`
	Dir      string        `yaml:"dir"`
	Timeout  time.Duration `yaml:"timeout" validate:"min=0"`
	Name     string        `yaml:"name"`
	Registry string        `yaml:"registry" validate:"required_with=Name"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Layout:     layout.DefaultConfig(),
		Thresholds: domain.DefaultThresholds(),
		Store: StoreConfig{
			Driver: DriverFile,
			Dir:    ".folio/stories",
			Format: "json",
		},
		Server: ServerConfig{
			Port:    8080,
			Metrics: true,
		},
		Producer: ProducerConfig{
			Timeout: 2 * time.Minute,
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults, applies environment overrides (after loading any
// .env file) and validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("FOLIO_STORE_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("FOLIO_STORE_DIR"); v != "" {
		c.Store.Dir = v
	}
	if v := os.Getenv("FOLIO_REDIS_ADDR"); v != "" {
		c.Store.RedisAddr = v
	}
	if v := os.Getenv("FOLIO_REDIS_PASSWORD"); v != "" {
		c.Store.RedisPassword = v
	}
	if v := os.Getenv("FOLIO_ENCRYPTION_KEY"); v != "" {
		c.Store.EncryptionKey = v
	}
	if v := os.Getenv("FOLIO_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FOLIO_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("FOLIO_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the struct tags of the whole configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
