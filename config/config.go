package config

import (
	"fmt"
	"os"
)

// StripeConfig holds Stripe API configuration
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	IsLive        bool
}

// ResendConfig holds Resend email API configuration
type ResendConfig struct {
	APIKey      string
	FromAddress string
}

// LoadStripeConfig reads Stripe configuration from environment variables.
func LoadStripeConfig() *StripeConfig {
	return &StripeConfig{
		SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		IsLive:        os.Getenv("STRIPE_ENV") == "live",
	}
}

// Validate checks that the required Stripe keys are present.
func (c *StripeConfig) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is not set")
	}
	if c.WebhookSecret == "" {
		return fmt.Errorf("STRIPE_WEBHOOK_SECRET is not set")
	}
	return nil
}

// LoadResendConfig reads Resend configuration from environment variables.
func LoadResendConfig() *ResendConfig {
	from := os.Getenv("RESEND_FROM_ADDRESS")
	if from == "" {
		from = "orders@foodie-barcart.example.com"
	}
	return &ResendConfig{
		APIKey:      os.Getenv("RESEND_API_KEY"),
		FromAddress: from,
	}
}
