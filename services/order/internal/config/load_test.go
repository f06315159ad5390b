package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/orders")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("AUTH_URL", "http://auth:8080")
	t.Setenv("PAYMENT_URL", "https://pay.example")
	t.Setenv("PAYMENT_API_KEY", "sk_test")
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "whsec")
	t.Setenv("CHECKOUT_SUCCESS_URL", "https://shop.example/success")
	t.Setenv("CHECKOUT_CANCEL_URL", "https://shop.example/cart")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "order", cfg.ServiceName)
	assert.Equal(t, "usd", cfg.Currency)
	assert.Equal(t, 10*time.Second, cfg.PaymentTimeout)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []byte("whsec"), cfg.PaymentWebhookSecret)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("PAYMENT_API_KEY", "")
	t.Setenv("PAYMENT_WEBHOOK_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAYMENT_API_KEY")
	assert.Contains(t, err.Error(), "PAYMENT_WEBHOOK_SECRET")
}

func TestLoad_RelativeURLRejected(t *testing.T) {
	setRequired(t)
	t.Setenv("CHECKOUT_SUCCESS_URL", "/success")

	_, err := Load()
	assert.ErrorContains(t, err, "CHECKOUT_SUCCESS_URL")
}
