package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port int `yaml:"port" env:"SERVER_PORT"`
}

type DatabaseConfig struct {
	DSN string `yaml:"url" env:"DATABASE_URL"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"-" env:"JWT_SECRET"`
	TokenTTL      time.Duration `yaml:"-" env:"JWT_TOKEN_TTL"`
	CookieTTL     time.Duration `yaml:"-" env:"JWT_COOKIE_TTL"`
	BcryptCost    int           `yaml:"-" env:"BCRYPT_COST"`
	ResetTokenTTL time.Duration `yaml:"-" env:"RESET_TOKEN_TTL"`
}

// UnmarshalYAML parses the duration fields from "24h" style strings, which
// the YAML decoder cannot do for time.Duration on its own.
func (a *AuthConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		JWTSecret     string `yaml:"jwt_secret"`
		TokenTTL      string `yaml:"token_ttl"`
		CookieTTL     string `yaml:"cookie_ttl"`
		BcryptCost    int    `yaml:"bcrypt_cost"`
		ResetTokenTTL string `yaml:"reset_token_ttl"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	a.JWTSecret = raw.JWTSecret
	a.BcryptCost = raw.BcryptCost
	for _, f := range []struct {
		src string
		dst *time.Duration
	}{
		{raw.TokenTTL, &a.TokenTTL},
		{raw.CookieTTL, &a.CookieTTL},
		{raw.ResetTokenTTL, &a.ResetTokenTTL},
	} {
		if f.src == "" {
			continue
		}
		d, err := time.ParseDuration(f.src)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", f.src, err)
		}
		*f.dst = d
	}
	return nil
}

type EmailConfig struct {
	SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT"`
	SMTPUser     string `yaml:"smtp_user" env:"SMTP_USER"`
	SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
	FromEmail    string `yaml:"from_email" env:"SMTP_FROM"`
	FrontendURL  string `yaml:"frontend_url" env:"FRONTEND_URL"`
}

type PhotoStoreConfig struct {
	Endpoint      string `yaml:"endpoint" env:"PHOTOS_ENDPOINT"`
	AccessKey     string `yaml:"access_key" env:"PHOTOS_ACCESS_KEY"`
	SecretKey     string `yaml:"secret_key" env:"PHOTOS_SECRET_KEY"`
	Bucket        string `yaml:"bucket" env:"PHOTOS_BUCKET"`
	UseSSL        bool   `yaml:"use_ssl" env:"PHOTOS_USE_SSL"`
	PublicBaseURL string `yaml:"public_base_url" env:"PHOTOS_PUBLIC_BASE_URL"`
}

type Config struct {
	Server   ServerConfig     `yaml:"server"`
	Database DatabaseConfig   `yaml:"database"`
	Auth     AuthConfig       `yaml:"auth"`
	Email    EmailConfig      `yaml:"email"`
	Photos   PhotoStoreConfig `yaml:"photos"`
}

// Load reads the YAML file at path, then applies environment overrides so
// secrets never have to live in the file. The returned Config is handed to
// the components that need it; nothing reads the environment after this.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env overrides: %w", err)
	}

	cfg.applyDefaults()
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required")
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}
	if c.Auth.CookieTTL == 0 {
		c.Auth.CookieTTL = c.Auth.TokenTTL
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = 12
	}
	if c.Auth.ResetTokenTTL == 0 {
		c.Auth.ResetTokenTTL = 10 * time.Minute
	}
	if c.Email.FrontendURL == "" {
		c.Email.FrontendURL = "http://localhost:5371"
	}
}
