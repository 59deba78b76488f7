// Package config loads the server configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const envFile = ".env"

// Config holds every setting the server reads at startup.
type Config struct {
	Port        string `env:"PORT" envDefault:":8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"INFO"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`

	Database Database
	Token    Token
	Mail     Mail
	Redis    Redis

	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
}

// Database holds the Postgres connection settings.
type Database struct {
	Host     string        `env:"DB_HOST,required,notEmpty"`
	Port     string        `env:"DB_PORT" envDefault:"5432"`
	User     string        `env:"DB_USER,required,notEmpty"`
	Password string        `env:"DB_PASS,required,notEmpty"`
	Name     string        `env:"DB_NAME,required,notEmpty"`
	Timeout  time.Duration `env:"DB_TIMEOUT" envDefault:"5s"`
}

// Token holds the signing material and lifetimes of the issued tokens.
type Token struct {
	KeyPairPath     string        `env:"KEY_PAIR_PATH" envDefault:"session.key"`
	LinkSecret      string        `env:"LINK_TOKEN_SECRET,required,notEmpty"`
	SessionTTL      time.Duration `env:"SESSION_TOKEN_TTL" envDefault:"1h"`
	VerificationTTL time.Duration `env:"VERIFICATION_TOKEN_TTL" envDefault:"24h"`
	ResetTTL        time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
}

// Mail holds the Mailgun settings.
type Mail struct {
	Domain  string        `env:"MAILGUN_DOMAIN" envDefault:"mail.server-notes.app"`
	APIKey  string        `env:"MAILGUN_API_KEY"`
	EUBase  bool          `env:"MAILGUN_EU" envDefault:"true"`
	From    string        `env:"MAIL_FROM" envDefault:"Server Notes <team@mail.server-notes.app>"`
	Timeout time.Duration `env:"MAIL_TIMEOUT" envDefault:"2s"`
}

// Redis holds the throttle settings. An empty address disables throttling.
type Redis struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	Cooldown time.Duration `env:"MAIL_COOLDOWN" envDefault:"1m"`
}

// IsProduction reports whether mails are actually delivered.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// DSN returns the Postgres connection string.
func (d Database) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}

// Load reads the optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(envFile); err != nil {
		log.Info("No .env file found, using environment variables from system")
	} else {
		log.Info("Loaded environment variables from .env file")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}
