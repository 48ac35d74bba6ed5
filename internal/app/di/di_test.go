package di

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"intradaybar/internal/feature/intradaybar/domain/entity"
	"intradaybar/internal/platform/db"
	"intradaybar/internal/platform/externalapi/alpaca"
	"intradaybar/internal/platform/externalapi/marketdata"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func TestIngestHourFromEnv(t *testing.T) {
	tests := []struct {
		value    string
		expected int
	}{
		{"", DefaultIngestHourUTC},
		{"6", 6},
		{"0", 0},
		{"24", DefaultIngestHourUTC},
		{"-1", DefaultIngestHourUTC},
		{"six", DefaultIngestHourUTC},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("INGEST_HOUR_UTC", tt.value)
			assert.Equal(t, tt.expected, IngestHourFromEnv())
		})
	}
}

func TestNewIntradayBarUsecase(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"messages":[{"barData":{"barTickData":[{"time":"2021-01-01T09:30:00","open":1,"high":2,"low":0.5,"close":1.5,"numEvents":3,"volume":30}]}}]}`))
	}))
	defer server.Close()

	uc, err := newGatewayUsecase(marketdata.Config{BaseURL: server.URL, ServiceName: marketdata.DefaultServiceName, Timeout: 5 * time.Second})
	require.NoError(t, err)

	bars, err := uc.FetchBars(context.Background(), entity.QueryOptions{
		Securities:    []string{"IBM US Equity"},
		EventTypes:    []string{"TRADE"},
		BarInterval:   60,
		StartDateTime: time.Date(2021, 1, 1, 9, 30, 0, 0, time.UTC),
		EndDateTime:   time.Date(2021, 1, 1, 16, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 1.5, bars[0].Close)
}

func TestNewIntradayBarUsecase_Errors(t *testing.T) {
	t.Parallel()

	_, err := newGatewayUsecase(marketdata.Config{})
	assert.ErrorContains(t, err, "MARKETDATA_BASE_URL")

	// empty service name falls back to the default service
	uc, err := newGatewayUsecase(marketdata.Config{BaseURL: "http://gw.test"})
	require.NoError(t, err)
	assert.NotNil(t, uc)

	_, err = newAlpacaUsecase(alpaca.Config{APIKey: "key"})
	assert.ErrorContains(t, err, "ALPACA_API_SECRET")
}

func TestNewIntradayBarUsecase_Provider(t *testing.T) {
	tests := []struct {
		provider string
		wantErr  string
	}{
		{"", ""},
		{ProviderGateway, ""},
		{ProviderAlpaca, ""},
		{"bloomberg", "unknown MARKETDATA_PROVIDER"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			t.Setenv("MARKETDATA_PROVIDER", tt.provider)
			t.Setenv("MARKETDATA_BASE_URL", "http://gw.test")
			t.Setenv("MARKETDATA_SERVICE", "")
			t.Setenv("ALPACA_API_KEY", "key")
			t.Setenv("ALPACA_API_SECRET", "secret")

			uc, err := NewIntradayBarUsecase()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, uc)
		})
	}
}

func TestNewBarRepository_WithoutRedis(t *testing.T) {
	gdb := openTestDB(t)
	repo := NewBarRepository(gdb, nil)

	ctx := context.Background()
	tm := time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertBatch(ctx, []entity.StoredBar{
		{Security: "IBM US Equity", EventType: "TRADE", Interval: 60, Bar: entity.Bar{Time: tm, Close: 42}},
	}))

	got, err := repo.Find(ctx, entity.BarQuery{Security: "IBM US Equity", EventType: "TRADE", Interval: 60})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 42.0, got[0].Close)
}

func TestNewHealthChecks(t *testing.T) {
	t.Parallel()

	assert.Empty(t, NewHealthChecks(nil, nil))

	gdb := openTestDB(t)
	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	checks := NewHealthChecks(gdb, rdb)
	require.Len(t, checks, 2)

	ctx := context.Background()
	assert.NoError(t, checks["db"](ctx))

	mock.ExpectPing().SetVal("PONG")
	assert.NoError(t, checks["redis"](ctx))

	mock.ExpectPing().SetErr(errors.New("connection refused"))
	assert.Error(t, checks["redis"](ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRedisClient_NotConfigured(t *testing.T) {
	t.Setenv("REDIS_HOST", "")
	assert.Nil(t, NewRedisClient(context.Background()))
}
