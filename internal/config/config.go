// Package config loads server settings from defaults, an optional YAML file
// and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const devJWTSecret = "whisphaven-dev-secret"

type Config struct {
	Port        string `yaml:"port"`
	DatabaseURL string `yaml:"database_url"`
	CORSOrigin  string `yaml:"cors_origin"`
	JWTSecret   string `yaml:"jwt_secret"`
	GinMode     string `yaml:"gin_mode"`
	Debug       bool   `yaml:"debug"`

	// AdminToken enables the admin routes when set.
	AdminToken string `yaml:"admin_token"`

	AMQP      AMQPConfig      `yaml:"amqp"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// SimulatedLatency delays every feed operation. Zero disables it.
	SimulatedLatency time.Duration `yaml:"simulated_latency"`
}

// AMQPConfig enables event publishing to RabbitMQ when URL is set.
type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

func Default() *Config {
	return &Config{
		Port:        "8080",
		DatabaseURL: "sqlite://whisphaven.db",
		CORSOrigin:  "*",
		GinMode:     "debug",
		AMQP:        AMQPConfig{Exchange: "whisphaven.feed"},
		RateLimit:   RateLimitConfig{RPS: 1.0 / 3.0, Burst: 1},
	}
}

// LoadEnvFile loads a dotenv file into the process environment. A missing
// file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads path (if non-empty and present) over the defaults, then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if cfg.JWTSecret == "" && cfg.GinMode != "release" {
		cfg.JWTSecret = devJWTSecret
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnvOverrides() error {
	str := map[string]*string{
		"PORT":          &c.Port,
		"DATABASE_URL":  &c.DatabaseURL,
		"CORS_ORIGIN":   &c.CORSOrigin,
		"JWT_SECRET":    &c.JWTSecret,
		"X_ADMIN_TOKEN": &c.AdminToken,
		"GIN_MODE":      &c.GinMode,
		"AMQP_URL":      &c.AMQP.URL,
		"AMQP_EXCHANGE": &c.AMQP.Exchange,
	}
	for key, dst := range str {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("DEBUG: %w", err)
		}
		c.Debug = b
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_RPS: %w", err)
		}
		c.RateLimit.RPS = f
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RATE_LIMIT_BURST: %w", err)
		}
		c.RateLimit.Burst = n
	}
	if v := os.Getenv("SIMULATED_LATENCY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SIMULATED_LATENCY: %w", err)
		}
		c.SimulatedLatency = d
	}
	return nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.DatabaseURL == "" {
		return errors.New("database_url is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set in release mode")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("invalid rate limit %v/%d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	if c.SimulatedLatency < 0 {
		return errors.New("simulated_latency must not be negative")
	}
	return nil
}
