// Package marketdata provides a session client for the intraday bar market data service.
package marketdata

import (
	"os"
	"time"
)

// DefaultServiceName is the reference data service that serves intraday bar requests.
const DefaultServiceName = "//blp/refdata"

// Config holds configuration for the market data session.
type Config struct {
	APIKey      string        // API key sent in the X-Api-Key header
	BaseURL     string        // Base URL of the gateway (e.g., "http://localhost:8194")
	ServiceName string        // Service opened by OpenService
	Timeout     time.Duration // HTTP request timeout
}

// LoadConfig loads market data configuration from environment variables.
func LoadConfig() Config {
	svc := os.Getenv("MARKETDATA_SERVICE")
	if svc == "" {
		svc = DefaultServiceName
	}
	return Config{
		APIKey:      os.Getenv("MARKETDATA_API_KEY"),
		BaseURL:     os.Getenv("MARKETDATA_BASE_URL"),
		ServiceName: svc,
		Timeout:     30 * time.Second,
	}
}
