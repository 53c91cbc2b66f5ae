// Package config provides configuration loading for the confer CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CONFER_DATABASE_DRIVER.
const EnvPrefix = "CONFER"

// Config holds the application configuration.
type Config struct {
	// Actor is recorded in the audit log when --actor is not given
	Actor string `mapstructure:"actor"`

	Database DatabaseConfig `mapstructure:"database"`
	Email    EmailConfig    `mapstructure:"email"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig selects the store.
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // sqlite or postgres
	Path   string `mapstructure:"path"`   // sqlite file; empty means ~/.confer/confer.db
	DSN    string `mapstructure:"dsn"`    // postgres connection string
}

// EmailConfig holds SMTP settings for reviewer invitations.
type EmailConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	SMTPHost      string `mapstructure:"smtp_host"`
	SMTPPort      string `mapstructure:"smtp_port"`
	SMTPUsername  string `mapstructure:"smtp_username"`
	SMTPPassword  string `mapstructure:"smtp_password"`
	From          string `mapstructure:"from"`
	InvitationURL string `mapstructure:"invitation_url"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// DataSource returns the connection string for the configured driver.
func (c DatabaseConfig) DataSource() string {
	if strings.EqualFold(c.Driver, "postgres") || strings.EqualFold(c.Driver, "postgresql") {
		return c.DSN
	}
	return c.Path
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "sqlite3":
	case "postgres", "postgresql":
		if c.Database.DSN == "" {
			errs = append(errs, errors.New("database.dsn is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}

	if c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			errs = append(errs, errors.New("email.smtp_host is required when email is enabled"))
		}
		if c.Email.From == "" {
			errs = append(errs, errors.New("email.from is required when email is enabled"))
		}
	}

	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not supported", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Load loads configuration from defaults, an optional YAML file, .env files and
// CONFER_* environment variables, in increasing precedence.
func Load(configPath string) (*Config, error) {
	// godotenv never overrides variables that are already set
	_ = godotenv.Load(".env")
	if home, err := os.UserHomeDir(); err == nil {
		_ = godotenv.Load(filepath.Join(home, ".confer", ".env"))
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".confer"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("confer")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Config file is optional unless named explicitly
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("actor", "")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "")
	v.SetDefault("database.dsn", "")
	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", "587")
	v.SetDefault("email.smtp_username", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from", "noreply@example.com")
	v.SetDefault("email.invitation_url", "http://localhost:3000/reviewers/invitation")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
}
