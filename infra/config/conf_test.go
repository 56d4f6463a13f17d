package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp(t *testing.T) {
	reset()
	cfg := App()
	require.NotNil(t, cfg)
	assert.NotNil(t, cfg.Validator)

	// Singleton.
	assert.Same(t, cfg, App())
}

func TestGatewayDefaults(t *testing.T) {
	reset()
	cfg := Gateway()

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "http://localhost:3000", cfg.ClientBaseURL)
	assert.Equal(t, "http://localhost:9999", cfg.APIBaseURL)

	// No credentials configured anywhere: simulated mode turns on.
	assert.True(t, cfg.Simulated)
}

func TestGatewaySimulatedDerivation(t *testing.T) {
	t.Run("credentials disable simulation", func(t *testing.T) {
		reset()
		t.Setenv("MERCADOPAGO_ACCESS_TOKEN", "APP_USR-token")
		t.Setenv("WOMPI_PUBLIC_KEY", "pub_test")
		t.Setenv("WOMPI_PRIVATE_KEY", "prv_test")

		cfg := Gateway()
		assert.False(t, cfg.Simulated)
	})

	t.Run("explicit override wins over credentials", func(t *testing.T) {
		reset()
		t.Setenv("MERCADOPAGO_ACCESS_TOKEN", "APP_USR-token")
		t.Setenv("PAYMENTS_SIMULATED", "true")

		cfg := Gateway()
		assert.True(t, cfg.Simulated)
	})

	t.Run("explicit override can force live without credentials", func(t *testing.T) {
		reset()
		t.Setenv("PAYMENTS_SIMULATED", "false")

		cfg := Gateway()
		assert.False(t, cfg.Simulated)
	})
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STRING", "value")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty-two")

	assert.Equal(t, "value", GetEnv("TEST_STRING", "fallback"))
	assert.Equal(t, "fallback", GetEnv("TEST_MISSING", "fallback"))

	assert.True(t, GetBoolEnv("TEST_BOOL", false))
	assert.True(t, GetBoolEnv("TEST_MISSING", true))

	assert.Equal(t, 42, GetIntEnv("TEST_INT", 0))
	assert.Equal(t, 7, GetIntEnv("TEST_BAD_INT", 7))
}
