package config // package config loads application configuration from environment variables

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Optional backends (Firebase, RabbitMQ, S3) are
// disabled when their identifying variable is empty.
type Config struct {
	Env      string     `env:"APP_ENV" envDefault:"dev"`    // application environment (dev/test/prod)
	Port     string     `env:"APP_PORT" envDefault:"8080"`  // HTTP port to listen on
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"` // minimum slog level

	DBUser string `env:"DB_USER,required"` // database username
	DBPass string `env:"DB_PASS"`          // database password (optional)
	DBHost string `env:"DB_HOST,required"` // database host address
	DBPort string `env:"DB_PORT" envDefault:"3306"`
	DBName string `env:"DB_NAME,required"`

	JWTSecret      string `env:"JWT_SECRET,required"`                 // secret used to sign access tokens
	AccessTTLMin   int    `env:"ACCESS_TOKEN_TTL_MIN" envDefault:"15"` // access token TTL in minutes
	RefreshTTLDays int    `env:"REFRESH_TOKEN_TTL_DAYS" envDefault:"30"`
	BcryptCost     int    `env:"BCRYPT_COST" envDefault:"12"`

	AMQPURL     string `env:"RABBITMQ_URL"` // empty disables event publishing and the consumer
	EventLogDir string `env:"RESERVATION_LOG_DIR" envDefault:"logs"`

	FirebaseProjectID       string `env:"FIREBASE_PROJECT_ID"` // empty disables Firebase ID tokens
	FirebaseCredentialsFile string `env:"FIREBASE_CREDENTIALS_FILE"`

	S3Bucket    string `env:"S3_BUCKET"` // empty disables avatar uploads
	S3Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	S3PublicURL string `env:"S3_PUBLIC_URL"` // base URL for uploaded objects; derived from bucket/region when empty

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	// TimeZone is the IANA zone bookable slots are expressed in.
	TimeZone string `env:"COURT_TIMEZONE" envDefault:"America/Santo_Domingo"`
}

// Load parses the process environment into a Config.  Missing required
// variables are reported together in the returned error.
func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.BcryptCost < 4 {
		cfg.BcryptCost = 4
	}
	if _, err := time.LoadLocation(cfg.TimeZone); err != nil {
		return Config{}, fmt.Errorf("COURT_TIMEZONE: %w", err)
	}
	return cfg, nil
}

// Location returns the time zone of TimeZone, UTC when it cannot be loaded.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
