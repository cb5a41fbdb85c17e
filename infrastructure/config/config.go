package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	JWTSecret      string
	JWTAlgorithm   string
	AccessTokenTTL time.Duration
	ServerPort     string
	ServerHost     string
	Environment    string

	// ServiceRoleKey authorizes trusted callers of the ops routes. Empty disables them.
	ServiceRoleKey string

	// AppURL and AdminRecoveryPath build the redirect of approval recovery links.
	AppURL            string
	AdminRecoveryPath string

	EmailProvider string
	ResendAPIKey  string
	EmailFrom     string
	EmailTimeout  time.Duration

	RecaptchaSecret   string
	RecaptchaEnabled  bool
	RecaptchaSkip     bool
	RecaptchaTimeout  time.Duration
	RecaptchaMinScore float64

	RedisURL               string
	RateLimitEnabled       bool
	RateLimitIPAttempts    int
	RateLimitIPWindow      time.Duration
	RateLimitUserAttempts  int
	RateLimitUserWindow    time.Duration
	RateLimitBlockDuration time.Duration

	// Token bucket applied to the unauthenticated workflow routes.
	ThrottleRPS   float64
	ThrottleBurst int

	AMQPURL          string
	AuditAMQPEnabled bool
	AuditQueue       string

	LogLevel               string
	LogFormat              string
	LogCorrelationIDHeader string
	LogEnableRequestLog    bool
	LogEnableResponseLog   bool

	CORSEnabled          bool
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	MetricsEnabled     bool
	CleanupConcurrency int
}

var (
	ErrMissingDatabaseURL     = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret       = errors.New("JWT_SECRET is required")
	ErrInvalidTokenTTL        = errors.New("invalid token TTL format")
	ErrInvalidJWTAlgorithm    = errors.New("invalid JWT algorithm")
	ErrMissingRecaptchaSecret = errors.New("RECAPTCHA_SECRET is required when reCAPTCHA is enabled")
	ErrInvalidEmailProvider   = errors.New("EMAIL_PROVIDER must be resend or log")
	ErrMissingResendAPIKey    = errors.New("RESEND_API_KEY is required when EMAIL_PROVIDER=resend")
	ErrMissingAMQPURL         = errors.New("AMQP_URL is required when AUDIT_AMQP_ENABLED is set")
)

// Load reads the configuration from the environment, loading .env first when present.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTAlgorithm: getEnvOrDefault("JWT_ALG", "HS256"),
		ServerPort:   getEnvOrDefault("SERVER_PORT", "8080"),
		ServerHost:   getEnvOrDefault("SERVER_HOST", "localhost"),
		Environment:  getEnvOrDefault("ENV", "development"),

		ServiceRoleKey:    os.Getenv("SERVICE_ROLE_KEY"),
		AppURL:            strings.TrimRight(getEnvOrDefault("APP_URL", "http://localhost:3000"), "/"),
		AdminRecoveryPath: getEnvOrDefault("ADMIN_RECOVERY_PATH", "/auth/admin"),

		EmailProvider: strings.ToLower(getEnvOrDefault("EMAIL_PROVIDER", "log")),
		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		EmailFrom:     getEnvOrDefault("EMAIL_FROM", "Complaint Portal <noreply@complaints.local>"),
		EmailTimeout:  getEnvOrDefaultDuration("EMAIL_TIMEOUT", 10*time.Second),

		RecaptchaSecret:   os.Getenv("RECAPTCHA_SECRET"),
		RecaptchaEnabled:  getEnvOrDefaultBool("RECAPTCHA_ENABLED", false),
		RecaptchaSkip:     getEnvOrDefaultBool("RECAPTCHA_SKIP", false),
		RecaptchaMinScore: getEnvOrDefaultFloat("RECAPTCHA_MIN_SCORE", 0),

		RedisURL:              getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RateLimitEnabled:      getEnvOrDefaultBool("RATE_LIMIT_ENABLED", true),
		RateLimitIPAttempts:   getEnvOrDefaultInt("RATE_LIMIT_IP_ATTEMPTS", 5),
		RateLimitUserAttempts: getEnvOrDefaultInt("RATE_LIMIT_USER_ATTEMPTS", 10),

		ThrottleRPS:   getEnvOrDefaultFloat("THROTTLE_RPS", 2),
		ThrottleBurst: getEnvOrDefaultInt("THROTTLE_BURST", 10),

		AMQPURL:          os.Getenv("AMQP_URL"),
		AuditAMQPEnabled: getEnvOrDefaultBool("AUDIT_AMQP_ENABLED", false),
		AuditQueue:       getEnvOrDefault("AUDIT_QUEUE", "complaintdesk.audit"),

		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:              getEnvOrDefault("LOG_FORMAT", "json"),
		LogCorrelationIDHeader: getEnvOrDefault("LOG_CORRELATION_ID_HEADER", "X-Correlation-ID"),
		LogEnableRequestLog:    getEnvOrDefaultBool("LOG_ENABLE_REQUEST_LOG", true),
		LogEnableResponseLog:   getEnvOrDefaultBool("LOG_ENABLE_RESPONSE_LOG", false),

		CORSEnabled:          getEnvOrDefaultBool("CORS_ENABLED", true),
		CORSAllowCredentials: getEnvOrDefaultBool("CORS_ALLOW_CREDENTIALS", true),
		CORSAllowedOrigins:   parseAllowedOrigins(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "")),

		MetricsEnabled:     getEnvOrDefaultBool("METRICS_ENABLED", true),
		CleanupConcurrency: getEnvOrDefaultInt("CLEANUP_CONCURRENCY", 8),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	if cfg.JWTAlgorithm != "HS256" {
		return nil, ErrInvalidJWTAlgorithm
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}

	accessTokenTTL, err := parseTokenTTL(getEnvOrDefault("JWT_ACCESS_TOKEN_TTL", "900"))
	if err != nil {
		return nil, ErrInvalidTokenTTL
	}
	cfg.AccessTokenTTL = accessTokenTTL

	recaptchaTimeout, err := parseTokenTTL(getEnvOrDefault("RECAPTCHA_TIMEOUT", "5"))
	if err != nil {
		return nil, ErrInvalidTokenTTL
	}
	cfg.RecaptchaTimeout = recaptchaTimeout

	if cfg.RecaptchaEnabled && !cfg.RecaptchaSkip && cfg.RecaptchaSecret == "" {
		return nil, ErrMissingRecaptchaSecret
	}

	switch cfg.EmailProvider {
	case "log":
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, ErrMissingResendAPIKey
		}
	default:
		return nil, ErrInvalidEmailProvider
	}

	if cfg.AuditAMQPEnabled && cfg.AMQPURL == "" {
		return nil, ErrMissingAMQPURL
	}

	ipWindow, err := parseTokenTTL(getEnvOrDefault("RATE_LIMIT_IP_WINDOW", "900"))
	if err != nil {
		return nil, ErrInvalidTokenTTL
	}
	cfg.RateLimitIPWindow = ipWindow

	userWindow, err := parseTokenTTL(getEnvOrDefault("RATE_LIMIT_USER_WINDOW", "3600"))
	if err != nil {
		return nil, ErrInvalidTokenTTL
	}
	cfg.RateLimitUserWindow = userWindow

	blockDuration, err := parseTokenTTL(getEnvOrDefault("RATE_LIMIT_BLOCK_DURATION", "1800"))
	if err != nil {
		return nil, ErrInvalidTokenTTL
	}
	cfg.RateLimitBlockDuration = blockDuration

	return cfg, nil
}

// RecoveryRedirectURL is where an approved admin lands to set a password.
func (c *Config) RecoveryRedirectURL() string {
	path := c.AdminRecoveryPath
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.AppURL + path
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvOrDefaultBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// getEnvOrDefaultDuration accepts whole seconds or a Go duration string.
func getEnvOrDefaultDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return time.Duration(n) * time.Second
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return defaultValue
		}
		return d
	}
	return defaultValue
}

func parseTokenTTL(value string) (time.Duration, error) {
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return time.Duration(seconds) * time.Second, nil
}

func parseAllowedOrigins(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			res = append(res, trimmed)
		}
	}
	return res
}
