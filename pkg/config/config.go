package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every environment-derived setting for the service and the
// lambdas. It is loaded once at process start and passed into constructors;
// nothing reads the environment after Load returns.
type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`

	TransactionsTableName string `envconfig:"DYNAMODB_TRANSACTIONS_TABLE_NAME" required:"true"`
	ProfilesTableName     string `envconfig:"DYNAMODB_PROFILES_TABLE_NAME" required:"true"`

	RepairQueueURL string `envconfig:"REPAIR_QUEUE_URL"`

	// Shared secret for verifying provider webhook signatures. Empty means
	// verification is skipped: an explicit degraded mode for environments
	// where the provider sandbox does not sign callbacks.
	PaymentWebhookSecret string `envconfig:"PAYMENT_WEBHOOK_SECRET"`

	// Key the identity provider signs access tokens with. Only the HTTP
	// service needs it; the lambdas serve no authenticated routes, so it is
	// validated at the service entrypoint rather than required here.
	AuthSecret string `envconfig:"AUTH_JWT_SECRET"`

	BonusTimezone    string `envconfig:"BONUS_TIMEZONE" default:"UTC"`
	DailyBonusAmount int64  `envconfig:"DAILY_BONUS_AMOUNT" default:"25"`

	// Pending top-ups older than this are expired by the reconciliation sweep.
	StalePendingAge time.Duration `envconfig:"STALE_PENDING_AGE" default:"24h"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	// Missing .env is fine; deployed environments inject variables directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}
