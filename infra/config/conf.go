package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Validator *validator.Validate
}

// GatewayConfig represents the payment gateway configuration. Simulated mode
// is derived from credential absence: a deployment with no gateway
// credentials at all runs simulated unless PAYMENTS_SIMULATED says otherwise.
type GatewayConfig struct {
	Port          string
	Environment   string
	ClientBaseURL string
	APIBaseURL    string

	MercadoPagoAccessToken string
	WompiPublicKey         string
	WompiPrivateKey        string

	Simulated       bool
	SimulatedDBPath string

	OpenSearchURL  string
	OpenSearchUser string
	OpenSearchPass string
	EnableLogging  bool
}

var (
	instance        *Config
	gatewayInstance *GatewayConfig
)

func App() *Config {
	if instance == nil {
		instance = &Config{
			Validator: validator.New(),
		}
	}
	return instance
}

// Gateway returns the gateway configuration, loading it from the environment
// on first use.
func Gateway() *GatewayConfig {
	if gatewayInstance == nil {
		cfg := &GatewayConfig{
			Port:          GetEnv("APP_PORT", "9999"),
			Environment:   GetEnv("ENVIRONMENT", "development"),
			ClientBaseURL: GetEnv("CLIENT_BASE_URL", "http://localhost:3000"),
			APIBaseURL:    GetEnv("API_BASE_URL", "http://localhost:9999"),

			MercadoPagoAccessToken: GetEnv("MERCADOPAGO_ACCESS_TOKEN", ""),
			WompiPublicKey:         GetEnv("WOMPI_PUBLIC_KEY", ""),
			WompiPrivateKey:        GetEnv("WOMPI_PRIVATE_KEY", ""),

			SimulatedDBPath: GetEnv("SIMULATED_DB_PATH", ""),

			OpenSearchURL:  GetEnv("OPENSEARCH_URL", "http://localhost:9200"),
			OpenSearchUser: GetEnv("OPENSEARCH_USER", ""),
			OpenSearchPass: GetEnv("OPENSEARCH_PASSWORD", ""),
			EnableLogging:  GetBoolEnv("ENABLE_OPENSEARCH_LOGGING", false),
		}

		noCredentials := cfg.MercadoPagoAccessToken == "" &&
			cfg.WompiPublicKey == "" && cfg.WompiPrivateKey == ""
		cfg.Simulated = GetBoolEnv("PAYMENTS_SIMULATED", noCredentials)

		gatewayInstance = cfg
	}
	return gatewayInstance
}

// reset clears the cached singletons. Used by tests.
func reset() {
	instance = nil
	gatewayInstance = nil
}

// GetEnv returns the value of an environment variable or a default value
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetBoolEnv returns the boolean value of an environment variable or a default value
func GetBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetIntEnv returns the integer value of an environment variable or a default value
func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
