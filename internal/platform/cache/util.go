package cache

import (
	"time"
)

// TimeUntilNext は loc における次の hour:minute までの期間を返します。
// 保存済みバーは日次の取り込みでのみ更新されるため、キャッシュの TTL に使います。
func TimeUntilNext(hour, minute int, loc *time.Location) time.Duration {
	return timeUntilNextFrom(time.Now(), hour, minute, loc)
}

func timeUntilNextFrom(now time.Time, hour, minute int, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, loc)
	// 今日の時刻が既に過ぎている場合は翌日
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
