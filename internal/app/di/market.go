// Package di provides dependency injection factories for creating application components.
package di

import (
	"fmt"
	"log/slog"
	"os"

	"intradaybar/internal/feature/intradaybar/usecase"
	"intradaybar/internal/platform/externalapi/alpaca"
	"intradaybar/internal/platform/externalapi/marketdata"
	infrahttp "intradaybar/internal/platform/http"
)

// MARKETDATA_PROVIDER の値
const (
	ProviderGateway = "gateway"
	ProviderAlpaca  = "alpaca"
)

// NewIntradayBarUsecase は MARKETDATA_PROVIDER で選んだ接続先のセッションを開き、
// そのサービスに紐づくユースケースを返します。未設定の場合はゲートウェイです。
func NewIntradayBarUsecase() (*usecase.IntradayBarUsecase, error) {
	switch p := os.Getenv("MARKETDATA_PROVIDER"); p {
	case "", ProviderGateway:
		return newGatewayUsecase(marketdata.LoadConfig())
	case ProviderAlpaca:
		return newAlpacaUsecase(alpaca.LoadConfig())
	default:
		return nil, fmt.Errorf("unknown MARKETDATA_PROVIDER %q (use %s or %s)", p, ProviderGateway, ProviderAlpaca)
	}
}

func newGatewayUsecase(cfg marketdata.Config) (*usecase.IntradayBarUsecase, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("MARKETDATA_BASE_URL is not set")
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = marketdata.DefaultServiceName
	}
	session := marketdata.NewSession(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
	svc, err := session.OpenService(cfg.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("open service: %w", err)
	}
	slog.Info("market data service opened", "provider", ProviderGateway, "service", svc.Name())
	return usecase.NewIntradayBarUsecase(svc, session), nil
}

func newAlpacaUsecase(cfg alpaca.Config) (*usecase.IntradayBarUsecase, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("ALPACA_API_KEY and ALPACA_API_SECRET must be set")
	}
	session := alpaca.NewSession(cfg, infrahttp.NewHTTPClient(cfg.Timeout))
	svc, err := session.OpenService(alpaca.ServiceName)
	if err != nil {
		return nil, fmt.Errorf("open service: %w", err)
	}
	slog.Info("market data service opened", "provider", ProviderAlpaca, "service", svc.Name())
	return usecase.NewIntradayBarUsecase(svc, session), nil
}
