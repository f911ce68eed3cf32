package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	IdentityFirebase = "firebase"
	IdentityNone     = "none"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`
	Identity IdentityConfig `yaml:"identity"`
	Plans    PlansConfig    `yaml:"plans"`
}

type ServerConfig struct {
	Name           string   `yaml:"name"`
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	BaseURL        string   `yaml:"base_url"`
	FrontendURL    string   `yaml:"frontend_url"`
	TrustedProxies []string `yaml:"trusted_proxies"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	LogLevel       string   `yaml:"log_level"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	JWTSecret             string        `yaml:"jwt_secret"`
	AccessTokenTTL        time.Duration `yaml:"access_token_ttl"`
	VerificationTokenTTL  time.Duration `yaml:"verification_token_ttl"`
	VerificationRetention time.Duration `yaml:"verification_retention"`
}

type EmailConfig struct {
	AppName string     `yaml:"app_name"`
	SMTP    SMTPConfig `yaml:"smtp"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type IdentityConfig struct {
	Provider string `yaml:"provider"` // "firebase" or "none"
	APIKey   string `yaml:"api_key"`
	BaseURL  string `yaml:"base_url"`
}

type PlansConfig struct {
	Timezone string `yaml:"timezone"` // zone whose calendar decides which plan is active
}

// Load reads the YAML file at path. Variables from a .env file in the
// working directory are loaded first so that FITNESS_* overrides can live
// there.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FITNESS_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("FITNESS_SMTP_PASSWORD"); v != "" {
		c.Email.SMTP.Password = v
	}
	if v := os.Getenv("FITNESS_IDENTITY_API_KEY"); v != "" {
		c.Identity.APIKey = v
	}
	if v := os.Getenv("FITNESS_DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}
	if c.Email.SMTP.Host == "" {
		return fmt.Errorf("email.smtp.host is required")
	}
	if c.Email.SMTP.Port == 0 {
		return fmt.Errorf("email.smtp.port is required")
	}
	if c.Email.SMTP.From == "" {
		return fmt.Errorf("email.smtp.from is required")
	}
	switch c.Identity.Provider {
	case "", IdentityNone:
	case IdentityFirebase:
		if c.Identity.APIKey == "" {
			return fmt.Errorf("identity.api_key is required for the firebase provider")
		}
	default:
		return fmt.Errorf("identity.provider must be %q or %q", IdentityFirebase, IdentityNone)
	}
	if c.Server.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(c.Server.LogLevel)); err != nil {
			return fmt.Errorf("server.log_level: %w", err)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Name == "" {
		c.Server.Name = "Fitness Server"
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
	}
	if c.Server.FrontendURL == "" {
		c.Server.FrontendURL = "http://localhost:3000"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/fitness.db"
	}
	if c.Auth.AccessTokenTTL == 0 {
		c.Auth.AccessTokenTTL = 24 * time.Hour
	}
	if c.Auth.VerificationTokenTTL == 0 {
		c.Auth.VerificationTokenTTL = 24 * time.Hour
	}
	if c.Auth.VerificationRetention == 0 {
		c.Auth.VerificationRetention = 7 * 24 * time.Hour
	}
	if c.Email.AppName == "" {
		c.Email.AppName = "Booty Fitness"
	}
	if c.Identity.Provider == "" {
		c.Identity.Provider = IdentityNone
	}
	if c.Plans.Timezone == "" {
		c.Plans.Timezone = "America/New_York"
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// LogLevel returns the configured slog level, Info when unset.
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Server.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}
