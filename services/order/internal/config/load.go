package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/Skotchmaster/marketplace/pkg/config"
)

type ServiceConfig struct {
	config.Config

	PaymentURL           string
	PaymentAPIKey        string
	PaymentWebhookSecret []byte
	PaymentTimeout       time.Duration

	Currency   string
	SuccessURL string
	CancelURL  string

	RedisURL       string
	IdempotencyTTL time.Duration

	RunMigrations bool
}

func Load() (ServiceConfig, error) {
	cfg := ServiceConfig{
		Config: config.Load(),

		PaymentURL:           config.EnvDefault("PAYMENT_URL", ""),
		PaymentAPIKey:        config.EnvDefault("PAYMENT_API_KEY", ""),
		PaymentWebhookSecret: []byte(config.EnvDefault("PAYMENT_WEBHOOK_SECRET", "")),
		PaymentTimeout:       config.EnvDurationDefault("PAYMENT_TIMEOUT", 10*time.Second),

		Currency:   config.EnvDefault("CURRENCY", "usd"),
		SuccessURL: config.EnvDefault("CHECKOUT_SUCCESS_URL", ""),
		CancelURL:  config.EnvDefault("CHECKOUT_CANCEL_URL", ""),

		RedisURL:       config.EnvDefault("REDIS_URL", ""),
		IdempotencyTTL: config.EnvDurationDefault("IDEMPOTENCY_TTL", 24*time.Hour),

		RunMigrations: config.EnvBoolDefault("MIGRATIONS", true),
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "order"
	}

	var missing config.Missing
	missing.NonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	missing.NonEmptyBytes(cfg.JWTAccessSecret, "JWT_SECRET")
	missing.NonEmpty(cfg.AuthHTTPURL, "AUTH_URL")
	missing.NonEmpty(cfg.PaymentURL, "PAYMENT_URL")
	missing.NonEmpty(cfg.PaymentAPIKey, "PAYMENT_API_KEY")
	missing.NonEmptyBytes(cfg.PaymentWebhookSecret, "PAYMENT_WEBHOOK_SECRET")
	missing.NonEmpty(cfg.SuccessURL, "CHECKOUT_SUCCESS_URL")
	missing.NonEmpty(cfg.CancelURL, "CHECKOUT_CANCEL_URL")
	if err := missing.Err(); err != nil {
		return cfg, err
	}

	for env, raw := range map[string]string{
		"PAYMENT_URL":          cfg.PaymentURL,
		"CHECKOUT_SUCCESS_URL": cfg.SuccessURL,
		"CHECKOUT_CANCEL_URL":  cfg.CancelURL,
	} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			return cfg, fmt.Errorf("%s must be an absolute url, got %q", env, raw)
		}
	}
	return cfg, nil
}
