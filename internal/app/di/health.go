package di

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"intradaybar/internal/platform/http/handler"
)

// NewHealthChecks は /healthz で確認する依存先を返します。nil の依存先は含めません。
func NewHealthChecks(db *gorm.DB, rdb *redis.Client) map[string]handler.Check {
	checks := map[string]handler.Check{}
	if db != nil {
		checks["db"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}
