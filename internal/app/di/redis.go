package di

import (
	"context"
	"errors"
	"log/slog"

	"github.com/redis/go-redis/v9"

	infraredis "intradaybar/internal/platform/redis"
)

// NewRedisClient は環境変数の設定でRedisに接続します。
// 未設定または接続できない場合は nil を返し、キャッシュなしで動作します。
func NewRedisClient(ctx context.Context) *redis.Client {
	rdb, err := infraredis.NewRedisClient(ctx, infraredis.LoadConfig())
	if err != nil {
		if errors.Is(err, infraredis.ErrNotConfigured) {
			slog.Info("REDIS_HOST is not set; running without cache")
		} else {
			slog.Warn("Redis unavailable; running without cache", "error", err)
		}
		return nil
	}
	return rdb
}
