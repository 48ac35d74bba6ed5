package ratelimiter

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// RateLimiterInterface は、リモートサービスへのリクエスト頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	WaitIfNeeded(ctx context.Context) error
}

// RateLimiter は interval ごとに limit 回までリクエストを許可します。
type RateLimiter struct {
	mu        sync.Mutex
	limit     int           // interval あたりの上限
	interval  time.Duration // カウントをリセットする単位
	count     int
	lastReset time.Time
	now       func() time.Time
}

// NewRateLimiter は新しい RateLimiter のインスタンスを生成します。
// limit が 0 以下の場合は制限なしとして扱います。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:     limit,
		interval:  interval,
		lastReset: time.Now(),
		now:       time.Now,
	}
}

// WaitIfNeeded は上限に達している場合、次の interval まで待機します。
// 待機中に ctx がキャンセルされた場合は ctx.Err() を返します。
func (rl *RateLimiter) WaitIfNeeded(ctx context.Context) error {
	if rl.limit <= 0 {
		return ctx.Err()
	}

	rl.mu.Lock()
	now := rl.now()
	// interval を過ぎたらカウントリセット
	if now.Sub(rl.lastReset) >= rl.interval {
		rl.count = 0
		rl.lastReset = now
	}
	rl.count++
	var sleep time.Duration
	if rl.count > rl.limit {
		sleep = rl.interval - now.Sub(rl.lastReset)
		rl.count = 1
		rl.lastReset = now.Add(sleep)
	}
	rl.mu.Unlock()

	if sleep <= 0 {
		return ctx.Err()
	}

	slog.Info("rate limit reached, waiting", "limit", rl.limit, "sleep", sleep)
	timer := time.NewTimer(sleep)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
