package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Governor GovernorConfig
	Storage  StorageConfig
	Email    EmailConfig
	Upload   UploadConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

type AuthConfig struct {
	JWTSecret       string
	SessionExpiry   time.Duration
	CookieDomain    string
	CookieSecure    bool
	CleanupInterval time.Duration
}

// GovernorConfig holds the login attempt policy thresholds.
type GovernorConfig struct {
	ChallengeAfter int           // failures before a challenge is required
	LockoutAfter   int           // failures before lockout
	LockoutFor     time.Duration // lockout window length
	FailClosedFor  time.Duration // lock window applied when the ledger is unreadable
}

type StorageConfig struct {
	Region        string
	Bucket        string
	PublicBaseURL string // overrides the default https://<bucket>.s3.<region>.amazonaws.com
}

type EmailConfig struct {
	AWSRegion   string
	FromAddress string
	OfficeInbox string // contact-form messages are forwarded here
}

type UploadConfig struct {
	MaxImageSize      int64 // bytes, gallery/slideshow photos
	MaxAttachmentSize int64 // bytes, notification attachments
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "panel"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
		},
		Auth: AuthConfig{
			JWTSecret:       jwtSecret,
			SessionExpiry:   getEnvAsDuration("SESSION_EXPIRY", 24*time.Hour),
			CookieDomain:    getEnv("COOKIE_DOMAIN", ""),
			CookieSecure:    env == "production",
			CleanupInterval: getEnvAsDuration("ATTEMPT_CLEANUP_INTERVAL", 15*time.Minute),
		},
		Governor: GovernorConfig{
			ChallengeAfter: getEnvAsInt("LOGIN_CHALLENGE_AFTER", 3),
			LockoutAfter:   getEnvAsInt("LOGIN_LOCKOUT_AFTER", 5),
			LockoutFor:     getEnvAsDuration("LOGIN_LOCKOUT_FOR", 100*time.Second),
			FailClosedFor:  getEnvAsDuration("LOGIN_FAIL_CLOSED_FOR", 30*time.Second),
		},
		Storage: StorageConfig{
			Region:        getEnv("STORAGE_REGION", "ap-south-1"),
			Bucket:        getEnv("STORAGE_BUCKET", "panel-uploads"),
			PublicBaseURL: getEnv("STORAGE_PUBLIC_BASE_URL", ""),
		},
		Email: EmailConfig{
			AWSRegion:   getEnv("AWS_SES_REGION", "ap-south-1"),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
			OfficeInbox: getEnv("EMAIL_OFFICE_INBOX", ""),
		},
		Upload: UploadConfig{
			MaxImageSize:      getEnvAsInt64("MAX_IMAGE_SIZE", 5*1024*1024),
			MaxAttachmentSize: getEnvAsInt64("MAX_ATTACHMENT_SIZE", 10*1024*1024),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	if err := validateGovernor(cfg.Governor); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateJWTSecret enforces minimum security standards for the JWT secret
func validateJWTSecret(secret, env string) error {
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

// validateGovernor rejects threshold orderings that would make the login
// policy unreachable (challenge band must precede lockout).
func validateGovernor(g GovernorConfig) error {
	if g.ChallengeAfter < 1 {
		return fmt.Errorf("LOGIN_CHALLENGE_AFTER must be at least 1")
	}
	if g.LockoutAfter <= g.ChallengeAfter {
		return fmt.Errorf("LOGIN_LOCKOUT_AFTER (%d) must exceed LOGIN_CHALLENGE_AFTER (%d)",
			g.LockoutAfter, g.ChallengeAfter)
	}
	if g.LockoutFor <= 0 {
		return fmt.Errorf("LOGIN_LOCKOUT_FOR must be positive")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		originsStr := getEnv("ALLOWED_ORIGINS", "")
		if originsStr == "" {
			return []string{}
		}
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
