package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vasiliy-maslov/storefront/internal/validation"
)

type Config struct {
	App struct {
		Name       string `yaml:"name" json:"name" validate:"required"`
		LogLevel   string `yaml:"log_level" json:"log_level" validate:"oneof=trace debug info warn error"`
		PrettyLogs bool   `yaml:"pretty_logs" json:"pretty_logs"`
	} `yaml:"app" json:"app"`

	API struct {
		BaseURL string        `yaml:"base_url" json:"base_url" validate:"required,url"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`
		Token   string        `yaml:"token" json:"token"`
	} `yaml:"api" json:"api"`

	Breaker struct {
		Enabled     bool          `yaml:"enabled" json:"enabled"`
		MaxFailures uint32        `yaml:"max_failures" json:"max_failures" validate:"gte=1"`
		OpenTimeout time.Duration `yaml:"open_timeout" json:"open_timeout" validate:"gte=0"`
	} `yaml:"breaker" json:"breaker"`

	Callback struct {
		Addr string `yaml:"addr" json:"addr" validate:"required"`
	} `yaml:"callback" json:"callback"`

	Notifications struct {
		TTL time.Duration `yaml:"ttl" json:"ttl" validate:"gte=0"`
	} `yaml:"notifications" json:"notifications"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	cfg := &Config{}
	cfg.App.Name = "storefront"
	cfg.App.LogLevel = "info"
	cfg.App.PrettyLogs = true
	cfg.API.BaseURL = "http://localhost:8080"
	cfg.API.Timeout = 30 * time.Second
	cfg.Breaker.Enabled = true
	cfg.Breaker.MaxFailures = 5
	cfg.Breaker.OpenTimeout = 30 * time.Second
	cfg.Callback.Addr = ":5173"
	cfg.Notifications.TTL = 4 * time.Second
	return cfg
}

// Load builds the configuration from defaults, then the YAML file at path
// (optional), then the .env file at envPath (optional), then STOREFRONT_*
// environment variables.
func Load(path, envPath string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("config: open %s: %w", path, err)
		default:
			defer file.Close()
			if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
				return nil, fmt.Errorf("config: invalid config file %s: %w", path, err)
			}
		}
	}

	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to load .env: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	str("STOREFRONT_APP_NAME", &cfg.App.Name)
	str("STOREFRONT_LOG_LEVEL", &cfg.App.LogLevel)
	str("STOREFRONT_API_BASE_URL", &cfg.API.BaseURL)
	str("STOREFRONT_API_TOKEN", &cfg.API.Token)
	str("STOREFRONT_CALLBACK_ADDR", &cfg.Callback.Addr)

	if v, ok := os.LookupEnv("STOREFRONT_PRETTY_LOGS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: STOREFRONT_PRETTY_LOGS: %w", err)
		}
		cfg.App.PrettyLogs = b
	}
	if v, ok := os.LookupEnv("STOREFRONT_BREAKER_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: STOREFRONT_BREAKER_ENABLED: %w", err)
		}
		cfg.Breaker.Enabled = b
	}
	if v, ok := os.LookupEnv("STOREFRONT_BREAKER_MAX_FAILURES"); ok {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("config: STOREFRONT_BREAKER_MAX_FAILURES: %w", err)
		}
		cfg.Breaker.MaxFailures = uint32(n)
	}

	durations := map[string]*time.Duration{
		"STOREFRONT_API_TIMEOUT":          &cfg.API.Timeout,
		"STOREFRONT_BREAKER_OPEN_TIMEOUT": &cfg.Breaker.OpenTimeout,
		"STOREFRONT_NOTIFICATIONS_TTL":    &cfg.Notifications.TTL,
	}
	for key, dst := range durations {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", key, err)
		}
		*dst = d
	}
	return nil
}
