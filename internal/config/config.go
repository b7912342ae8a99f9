package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Profile  string
	HTTPAddr string
	BaseURL  string

	DatabaseDriver string
	DatabaseDSN    string

	HashSalt      string
	AdminEmails   []string
	CronSecretKey string

	FollowupVariant    string
	DispatchInclude72h bool
	DispatchBatchLimit int
	DispatchSendLimit  int

	MailFrom string
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	RedisAddr     string
	RedisPassword string

	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	AccessTokenTTL time.Duration

	APIRateLimitRPM int

	OTELMetricsEnabled        bool
	OTELTracesEnabled         bool
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELServiceName           string
	OTELEnvironment           string
	OTELMetricsExportInterval time.Duration
}

// Load builds the configuration from the environment and validates it.
// Everything the core needs is carried explicitly in this struct; no package
// reads os.Getenv after startup.
func Load(ctx context.Context) (*Config, error) {
	cfg := &Config{
		Profile:  getEnv("APP_PROFILE", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		BaseURL:  getEnv("BASE_URL", "http://localhost:8080"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseDSN:    getEnv("DATABASE_DSN", ""),

		HashSalt:      getEnv("HASH_SALT", ""),
		AdminEmails:   splitList(getEnv("ADMIN_EMAILS", "")),
		CronSecretKey: getEnv("CRON_SECRET_KEY", ""),

		FollowupVariant:    getEnv("FOLLOWUP_VARIANT", "A"),
		DispatchInclude72h: getBool("DISPATCH_INCLUDE_72H", false),
		DispatchBatchLimit: getInt("DISPATCH_BATCH_LIMIT", 100),
		DispatchSendLimit:  getInt("DISPATCH_SEND_CONCURRENCY", 8),

		MailFrom: getEnv("MAIL_FROM", "noreply@moodmeter.local"),
		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: getInt("SMTP_PORT", 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "moodmeter-service"),
		JWTAudience:    getEnv("JWT_AUDIENCE", "moodmeter-dashboard"),
		AccessTokenTTL: getDuration("ACCESS_TOKEN_TTL", time.Hour),

		APIRateLimitRPM: getInt("API_RATE_LIMIT_RPM", 300),

		OTELMetricsEnabled:        getBool("OTEL_METRICS_ENABLED", false),
		OTELTracesEnabled:         getBool("OTEL_TRACES_ENABLED", false),
		OTELExporterOTLPEndpoint:  getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure:  getBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELServiceName:           getEnv("OTEL_SERVICE_NAME", "moodmeter-service"),
		OTELEnvironment:           getEnv("OTEL_ENVIRONMENT", "development"),
		OTELMetricsExportInterval: getDuration("OTEL_METRICS_EXPORT_INTERVAL", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		recordConfigValidationEvent(ctx, cfg.Profile, "failure", classifyConfigLoadError(err))
		return nil, fmt.Errorf("validate config: %w", err)
	}
	recordConfigValidationEvent(ctx, cfg.Profile, "success", "none")
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("DATABASE_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver))
	}
	if c.HashSalt == "" {
		errs = append(errs, errors.New("HASH_SALT is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.FollowupVariant != "A" && c.FollowupVariant != "B" {
		errs = append(errs, fmt.Errorf("FOLLOWUP_VARIANT must be A or B, got %q", c.FollowupVariant))
	}
	if c.DispatchBatchLimit < 1 {
		errs = append(errs, fmt.Errorf("DISPATCH_BATCH_LIMIT must be positive, got %d", c.DispatchBatchLimit))
	}
	if c.DispatchSendLimit < 1 {
		errs = append(errs, fmt.Errorf("DISPATCH_SEND_CONCURRENCY must be positive, got %d", c.DispatchSendLimit))
	}
	if c.Profile == "production" && c.CronSecretKey == "" {
		errs = append(errs, errors.New("CRON_SECRET_KEY is required in production"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsAdminEmail(email string) bool {
	e := strings.ToLower(strings.TrimSpace(email))
	if e == "" {
		return false
	}
	for _, admin := range c.AdminEmails {
		if admin == e {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func getInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
