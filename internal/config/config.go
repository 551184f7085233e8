// Package config assembles runtime settings from defaults, an optional TOML file,
// configs/.env and the process environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	// DevJWTSecret is only accepted outside release mode.
	DevJWTSecret = "default_super_secret_key"
)

type Database struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`
}

type Payment struct {
	KeyID     string `toml:"key_id"`
	KeySecret string `toml:"key_secret"`
	APIURL    string `toml:"api_url"`
}

type Admin struct {
	Name     string `toml:"name"`
	Email    string `toml:"email"`
	Password string `toml:"password"`
}

type Config struct {
	Port           string        `toml:"port"`
	GinMode        string        `toml:"gin_mode"`
	Storage        string        `toml:"storage"`
	JWTSecret      string        `toml:"jwt_secret"`
	TokenTTL       time.Duration `toml:"token_ttl"`
	AllowedOrigins []string      `toml:"allowed_origins"`
	UploadDir      string        `toml:"upload_dir"`
	Database       Database      `toml:"database"`
	Payment        Payment       `toml:"payment"`
	Admin          Admin         `toml:"admin"`
}

func DefaultConfig() *Config {
	return &Config{
		Port:           "8080",
		GinMode:        "debug",
		Storage:        StoragePostgres,
		JWTSecret:      DevJWTSecret,
		TokenTTL:       24 * time.Hour,
		AllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"},
		UploadDir:      "uploads",
		Database: Database{
			Host:     "localhost",
			Port:     "5432",
			User:     "postgres",
			Password: "postgres",
			Name:     "postgres",
			SSLMode:  "disable",
		},
		Admin: Admin{Name: "Administrator"},
	}
}

// Path returns the TOML file location, VASTU_CONFIG or configs/config.toml.
func Path() string {
	if p := os.Getenv("VASTU_CONFIG"); p != "" {
		return p
	}
	return "configs/config.toml"
}

// Load reads every source and validates the result. A missing TOML or .env file is not an error.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	path := Path()
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	// godotenv never overrides variables that are already set
	_ = godotenv.Load("configs/.env")

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setFromEnv(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func (c *Config) applyEnv() error {
	setFromEnv(&c.Port, "PORT")
	setFromEnv(&c.GinMode, "GIN_MODE")
	setFromEnv(&c.Storage, "STORAGE")
	setFromEnv(&c.JWTSecret, "JWT_SECRET")
	setFromEnv(&c.UploadDir, "UPLOAD_DIR")
	setFromEnv(&c.Database.Host, "DB_HOST")
	setFromEnv(&c.Database.Port, "DB_PORT")
	setFromEnv(&c.Database.User, "DB_USER")
	setFromEnv(&c.Database.Password, "DB_PASSWORD")
	setFromEnv(&c.Database.Name, "DB_NAME")
	setFromEnv(&c.Database.SSLMode, "DB_SSLMODE")
	setFromEnv(&c.Payment.KeyID, "PAYMENT_KEY_ID")
	setFromEnv(&c.Payment.KeySecret, "PAYMENT_KEY_SECRET")
	setFromEnv(&c.Payment.APIURL, "PAYMENT_API_URL")
	setFromEnv(&c.Admin.Name, "ADMIN_NAME")
	setFromEnv(&c.Admin.Email, "ADMIN_EMAIL")
	setFromEnv(&c.Admin.Password, "ADMIN_PASSWORD")

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TOKEN_TTL %q: %w", v, err)
		}
		c.TokenTTL = ttl
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StoragePostgres:
	default:
		return fmt.Errorf("unknown STORAGE %q, expected %s or %s", c.Storage, StoragePostgres, StorageMemory)
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.IsRelease() && c.JWTSecret == DevJWTSecret {
		return errors.New("JWT_SECRET environment variable is required in release mode")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token_ttl must be positive")
	}
	if (c.Payment.KeyID == "") != (c.Payment.KeySecret == "") {
		return errors.New("PAYMENT_KEY_ID and PAYMENT_KEY_SECRET must be set together")
	}
	return nil
}

// DSN builds the postgres connection URL.
func (c *Config) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, c.Database.Port),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.Database.SSLMode),
	}
	return u.String()
}
