package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoad_RejectsShortJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "too-short")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 characters")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "0.18", cfg.TaxRate)
	assert.Equal(t, "round", cfg.TaxRounding)
	assert.Equal(t, "postgres", cfg.CartBackend)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "cart-events", cfg.KafkaTopic)
}

func TestLoad_KafkaBrokersSplit(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
}

func TestLoad_InvalidTaxRounding(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("TAX_ROUNDING", "banker")

	_, err := Load()

	require.Error(t, err)
}

func TestLoad_InvalidCartBackend(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("CART_BACKEND", "mongo")

	_, err := Load()

	require.Error(t, err)
}
