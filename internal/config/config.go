package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultJWTSecret is used when JWT_SECRET is not set. This mirrors the
// behaviour of the original deployment: the server fails open to a known
// default instead of refusing to start. Set JWT_SECRET in any real environment.
const DefaultJWTSecret = "your-secret-key-here"

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTSecret       string
	TokenExpiryDays int

	// PublicBaseURL is the origin used when building magic-link URLs.
	PublicBaseURL string

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	// RedisAddr switches the auth rate limiter to the shared Redis backend
	// when set; the limiter is per-process otherwise.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users    string
	OtpCodes string
	Sessions string
	Books    string
}

// TokenExpiry returns the signed-token and session lifetime.
func (c *Config) TokenExpiry() time.Duration {
	return time.Duration(c.TokenExpiryDays) * 24 * time.Hour
}

// IsProduction reports whether the server runs with production settings
// (Secure cookies, real mail delivery).
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:    getEnv("DYNAMO_TABLE_USERS", "users"),
			OtpCodes: getEnv("DYNAMO_TABLE_OTP_CODES", "otp_codes"),
			Sessions: getEnv("DYNAMO_TABLE_SESSIONS", "sessions"),
			Books:    getEnv("DYNAMO_TABLE_BOOKS", "books"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "bookkita-assets"),

		JWTSecret:       getEnv("JWT_SECRET", DefaultJWTSecret),
		TokenExpiryDays: getEnvInt("TOKEN_EXPIRY_DAYS", 30),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@bookkita.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
