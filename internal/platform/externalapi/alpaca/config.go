// Package alpaca serves intraday bar requests from the Alpaca market data API.
package alpaca

import (
	"os"
	"time"
)

// ServiceName is the service opened on an Alpaca session.
const ServiceName = "//alpaca/bars"

// Config holds Alpaca market data credentials.
type Config struct {
	APIKey    string
	APISecret string
	BaseURL   string        // empty uses the client default
	Feed      string        // "iex" or "sip"
	Timeout   time.Duration // HTTP request timeout
}

// LoadConfig loads Alpaca configuration from environment variables.
func LoadConfig() Config {
	feed := os.Getenv("ALPACA_FEED")
	if feed == "" {
		feed = "iex"
	}
	return Config{
		APIKey:    os.Getenv("ALPACA_API_KEY"),
		APISecret: os.Getenv("ALPACA_API_SECRET"),
		BaseURL:   os.Getenv("ALPACA_DATA_URL"),
		Feed:      feed,
		Timeout:   30 * time.Second,
	}
}
