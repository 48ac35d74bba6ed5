package di

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	baradapters "intradaybar/internal/feature/intradaybar/adapters"
	"intradaybar/internal/feature/intradaybar/usecase"
	"intradaybar/internal/platform/cache"
)

// DefaultIngestHourUTC is the hour (UTC) at which the daily ingest runs.
const DefaultIngestHourUTC = 22

// IngestHourFromEnv は INGEST_HOUR_UTC (0-23) を返します。未設定または不正な値なら既定値です。
func IngestHourFromEnv() int {
	v := os.Getenv("INGEST_HOUR_UTC")
	if v == "" {
		return DefaultIngestHourUTC
	}
	h, err := strconv.Atoi(v)
	if err != nil || h < 0 || h > 23 {
		slog.Warn("invalid INGEST_HOUR_UTC, using default", "value", v, "default", DefaultIngestHourUTC)
		return DefaultIngestHourUTC
	}
	return h
}

// NewBarRepository はDBリポジトリをRedisキャッシュでラップして返します。
// rdb が nil の場合、キャッシュは無効になります。
// 各エントリの TTL は書き込み時点から次回の取り込み時刻までです。
func NewBarRepository(db *gorm.DB, rdb *redis.Client) usecase.BarRepository {
	return cache.NewCachingBarRepository(rdb, 0, baradapters.NewBarRepository(db), "bars").
		ExpireAt(IngestHourFromEnv(), 0, time.UTC)
}
