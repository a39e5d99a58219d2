// Package config loads process configuration from the environment. A .env
// file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/dshills/stylist/internal/llm"
)

// Prefix is the environment variable prefix, e.g. STYLIST_PROVIDER.
const Prefix = "stylist"

// Config holds every runtime setting.
type Config struct {
	Provider string `envconfig:"PROVIDER" default:"groq"`
	Model    string `envconfig:"MODEL"`
	// APIKey overrides the provider's conventional key variable. It is never
	// logged.
	APIKey    string        `envconfig:"API_KEY"`
	BaseURL   string        `envconfig:"BASE_URL"`
	AITimeout time.Duration `envconfig:"AI_TIMEOUT" default:"30s"`
	MaxTokens int           `envconfig:"MAX_TOKENS" default:"1024"`

	Host           string `envconfig:"HOST" default:"127.0.0.1"`
	Port           int    `envconfig:"PORT" default:"8000"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	FaceURL string `envconfig:"FACE_URL"`
}

// Load reads .env (if any) and then the STYLIST_* environment variables.
func Load() (Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: process env: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting, joined into one error.
func (c Config) Validate() error {
	var errs []error
	if !llm.Known(c.Provider) {
		errs = append(errs, fmt.Errorf("config: unknown provider %q (available: %s)",
			c.Provider, strings.Join(llm.Names(), ", ")))
	}
	if c.AITimeout <= 0 {
		errs = append(errs, fmt.Errorf("config: AI_TIMEOUT must be positive, got %s", c.AITimeout))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("config: PORT must be in 1..65535, got %d", c.Port))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("config: MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}
	return errors.Join(errs...)
}

// Credential returns the ambient API key: STYLIST_API_KEY when set,
// otherwise the provider's conventional variable such as GROQ_API_KEY.
func (c Config) Credential() string {
	if k := strings.TrimSpace(c.APIKey); k != "" {
		return k
	}
	if env := llm.CredentialEnv(c.Provider); env != "" {
		return strings.TrimSpace(os.Getenv(env))
	}
	return ""
}

// ModelName returns the configured model or the provider default.
func (c Config) ModelName() string {
	if c.Model != "" {
		return c.Model
	}
	return llm.DefaultModel(c.Provider)
}

// Settings returns provider settings carrying the ambient credential.
func (c Config) Settings() llm.Settings {
	return llm.Settings{
		Provider: c.Provider,
		Model:    c.ModelName(),
		APIKey:   c.Credential(),
		BaseURL:  c.BaseURL,
		Timeout:  c.AITimeout,
	}
}

// Addr returns the HTTP listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
