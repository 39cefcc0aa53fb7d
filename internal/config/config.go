package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string   `yaml:"port" env:"SERVER_PORT"`
		Mode           string   `yaml:"mode" env:"SERVER_MODE"`
		StoragePath    string   `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		PublicBaseURL  string   `yaml:"public_base_url" env:"SERVER_PUBLIC_BASE_URL"`
		AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS" envSeparator:","`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	JWT struct {
		Secret                string `yaml:"secret" env:"JWT_SECRET"`
		AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION"`
		Issuer                string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Mail struct {
		Driver      string `yaml:"driver" env:"MAIL_DRIVER"`
		Host        string `yaml:"host" env:"MAIL_HOST"`
		Port        int    `yaml:"port" env:"MAIL_PORT"`
		Username    string `yaml:"username" env:"MAIL_USERNAME"`
		Password    string `yaml:"password" env:"MAIL_PASSWORD"`
		FromName    string `yaml:"from_name" env:"MAIL_FROM_NAME"`
		FromEmail   string `yaml:"from_email" env:"MAIL_FROM_EMAIL"`
		UseTLS      bool   `yaml:"use_tls" env:"MAIL_USE_TLS"`
		Timeout     string `yaml:"timeout" env:"MAIL_TIMEOUT"`
		FrontendURL string `yaml:"frontend_url" env:"MAIL_FRONTEND_URL"`
	} `yaml:"mail"`

	Registration struct {
		AllowedEmailDomains []string `yaml:"allowed_email_domains" env:"REGISTRATION_ALLOWED_EMAIL_DOMAINS" envSeparator:","`
	} `yaml:"registration"`

	Seed struct {
		AdminEmail    string   `yaml:"admin_email" env:"SEED_ADMIN_EMAIL"`
		AdminPassword string   `yaml:"admin_password" env:"SEED_ADMIN_PASSWORD"`
		Communities   []string `yaml:"communities" env:"SEED_COMMUNITIES" envSeparator:","`
	} `yaml:"seed"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`
}

// Mail drivers
const (
	MailDriverSMTP = "smtp"
	MailDriverLog  = "log"
)

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	// The file is optional; environment variables alone are enough in containers.
	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "uploads"
	config.Server.PublicBaseURL = "http://localhost:8080"
	config.Server.AllowedOrigins = []string{"http://localhost:5173"}

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "uniconnect"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "uniconnect"

	config.Mail.Driver = MailDriverLog
	config.Mail.Port = 587
	config.Mail.FromName = "Uni-Connect"
	config.Mail.FromEmail = "no-reply@uniconnect.local"
	config.Mail.Timeout = "15s"
	config.Mail.FrontendURL = "http://localhost:5173"

	config.Registration.AllowedEmailDomains = []string{"@puce.edu.ec", "@epn.edu.ec", "@est.ups.edu.ec"}

	config.Logging.Level = "info"
	config.Logging.Format = "json"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid database connection max lifetime: %w", err)
	}

	switch config.Mail.Driver {
	case MailDriverLog:
		// The log driver reports every confirmation as delivered
		if config.IsProduction() {
			return fmt.Errorf("mail driver %q cannot be used in production; configure smtp", MailDriverLog)
		}
	case MailDriverSMTP:
		if config.Mail.Host == "" {
			return fmt.Errorf("mail host is required for the smtp driver")
		}
		if config.Mail.FromEmail == "" {
			return fmt.Errorf("mail sender address is required for the smtp driver")
		}
	default:
		return fmt.Errorf("unsupported mail driver %q", config.Mail.Driver)
	}

	if _, err := time.ParseDuration(config.Mail.Timeout); err != nil {
		return fmt.Errorf("invalid mail timeout: %w", err)
	}

	if len(config.Registration.AllowedEmailDomains) == 0 {
		return fmt.Errorf("at least one allowed registration email domain is required")
	}
	for _, domain := range config.Registration.AllowedEmailDomains {
		if !strings.HasPrefix(domain, "@") {
			return fmt.Errorf("registration email domain %q must start with @", domain)
		}
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}
