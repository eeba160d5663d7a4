package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the API server and its workers.
type Config struct {
	Env            string   `env:"APP_ENV,default=development"`
	Port           int      `env:"PORT,default=5000"`
	DatabaseURL    string   `env:"DATABASE_URL,required"`
	FrontendURL    string   `env:"FRONTEND_URL,default=http://localhost:5173"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS,default=http://localhost:5173"`
	RateLimit      int      `env:"RATE_LIMIT_PER_MINUTE,default=100"`

	EmailUser string `env:"EMAIL_USER"`
	EmailPass string `env:"EMAIL_PASS"`
	EmailFrom string `env:"EMAIL_FROM"`
	SMTPHost  string `env:"SMTP_HOST,default=smtp.gmail.com"`
	SMTPPort  int    `env:"SMTP_PORT,default=587"`

	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	ClerkIssuer       string `env:"CLERK_ISSUER"`
	ClerkAudience     string `env:"CLERK_AUDIENCE"`
	DevJWTSecret      string `env:"AUTH_DEV_JWT_SECRET"`
	DevJWTProvider    string `env:"AUTH_DEV_JWT_PROVIDER,default=clerk"`

	ElasticURL   string `env:"ELASTIC_URL"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL,default=1s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE,default=200"`
	OutboxMaxAttempts  int           `env:"OUTBOX_MAX_ATTEMPTS,default=5"`
	DLQRetryInterval   time.Duration `env:"DLQ_RETRY_INTERVAL,default=30s"`
	DLQMaxRetries      int           `env:"DLQ_MAX_RETRIES,default=10"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.ClerkIssuer != "" && c.ClerkAudience == "" {
		return fmt.Errorf("CLERK_AUDIENCE is required when CLERK_ISSUER is set")
	}
	switch c.DevJWTProvider {
	case "clerk", "firebase":
	default:
		return fmt.Errorf("AUTH_DEV_JWT_PROVIDER must be clerk or firebase, got %q", c.DevJWTProvider)
	}
	if c.DevJWTSecret != "" && c.Production() {
		return fmt.Errorf("AUTH_DEV_JWT_SECRET must not be set in production")
	}
	if c.OutboxMaxAttempts < 1 {
		return fmt.Errorf("OUTBOX_MAX_ATTEMPTS must be at least 1")
	}
	if c.OutboxBatchSize < 1 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be at least 1")
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

func (c Config) Production() bool { return c.Env == "production" }

// MailEnabled reports whether SMTP credentials are present.
func (c Config) MailEnabled() bool { return c.EmailUser != "" && c.EmailPass != "" }

func (c Config) SearchEnabled() bool { return c.ElasticURL != "" }

// Sender returns the From address for outgoing mail.
func (c Config) Sender() string {
	if c.EmailFrom != "" {
		return c.EmailFrom
	}
	return c.EmailUser
}
