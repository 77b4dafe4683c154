package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Environment string

const (
	Sandbox    Environment = "sandbox"
	Production Environment = "production"
)

const (
	sandboxEndpoint    = "https://apitest.authorize.net/json/v1/request.api"
	productionEndpoint = "https://api.authorize.net/json/v1/request.api"
)

// Endpoint returns the gateway URL for the environment.
func (e Environment) Endpoint() string {
	if e == Production {
		return productionEndpoint
	}
	return sandboxEndpoint
}

// Credentials authenticate the merchant against the gateway. Never log them.
type Credentials struct {
	APILoginID     string `env:"API_LOGIN_ID, required"`
	TransactionKey string `env:"TRANSACTION_KEY, required"`
}

// HostedPage holds the URLs the gateway's hosted form talks back to.
type HostedPage struct {
	CommunicatorURL string `env:"COMMUNICATOR_URL, required"`
	ReturnURL       string `env:"RETURN_URL, default=https://yourdomain.com/return"`
	CancelURL       string `env:"CANCEL_URL, default=https://yourdomain.com/cancel"`
}

type Config struct {
	Port        string `env:"PORT, default=3000"`
	Environment string `env:"ENVIRONMENT, default=production"`

	AuthNet struct {
		Credentials
		Env     Environment   `env:"ENV, default=sandbox"`
		Timeout time.Duration `env:"TIMEOUT, default=15s"`
	} `env:", prefix=AUTHNET_"`

	HostedPage HostedPage

	InvoicePrefix        string `env:"INVOICE_PREFIX"`
	RequireInvoiceNumber bool   `env:"REQUIRE_INVOICE_NUMBER, default=false"`

	AllowedOrigin string `env:"CORS_ALLOWED_ORIGIN"`

	RedisURL           string `env:"REDIS_URL"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE, default=0"`

	OtelCollectorAddr string `env:"OTEL_COLLECTOR_ADDR"`
}

// Load reads the configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads the configuration from lookuper and validates it.
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var c Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &c,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return &c, nil
}

func (c *Config) validate() error {
	switch c.AuthNet.Env {
	case Sandbox, Production:
	default:
		return fmt.Errorf("AUTHNET_ENV must be %q or %q, got %q", Sandbox, Production, c.AuthNet.Env)
	}

	if c.AuthNet.Timeout <= 0 {
		return fmt.Errorf("AUTHNET_TIMEOUT must be positive, got %s", c.AuthNet.Timeout)
	}

	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute)
	}

	if c.RateLimitPerMinute > 0 && c.RedisURL == "" {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE requires REDIS_URL")
	}

	return nil
}

// ValidateServer checks the settings only the HTTP server needs.
func (c *Config) ValidateServer() error {
	if c.AllowedOrigin == "" {
		return fmt.Errorf("CORS_ALLOWED_ORIGIN is required")
	}
	return nil
}
