package usecase

import (
	"context"
	"log/slog"

	"intradaybar/internal/feature/intradaybar/domain"
	"intradaybar/internal/feature/intradaybar/domain/entity"
	"intradaybar/internal/shared/ratelimiter"
)

// BarRepository は保存済みバーの読み書きレイヤーを抽象化します。
type BarRepository interface {
	UpsertBatch(ctx context.Context, bars []entity.StoredBar) error
	Find(ctx context.Context, q entity.BarQuery) ([]entity.StoredBar, error)
}

// BarFetcher は1組の銘柄・イベント種別についてバーを取得します。
type BarFetcher interface {
	FetchBars(ctx context.Context, opts entity.QueryOptions) ([]entity.Bar, error)
}

// IngestSummary は IngestAll の結果件数です。
type IngestSummary struct {
	Succeeded int
	Failed    int
	Bars      int
}

// IngestUsecase は複数銘柄のバーを1銘柄ずつ取得し、リポジトリへ永続化します。
type IngestUsecase struct {
	fetcher     BarFetcher
	repo        BarRepository
	rateLimiter ratelimiter.RateLimiterInterface
}

// NewIngestUsecase は新しい IngestUsecase を作成します。
func NewIngestUsecase(fetcher BarFetcher, repo BarRepository, rateLimiter ratelimiter.RateLimiterInterface) *IngestUsecase {
	return &IngestUsecase{fetcher: fetcher, repo: repo, rateLimiter: rateLimiter}
}

// ingestOne は1組の銘柄・イベント種別のバーを取得し、タグ付けして一括保存します。
func (iu *IngestUsecase) ingestOne(ctx context.Context, opts entity.QueryOptions) (int, error) {
	bars, err := iu.fetcher.FetchBars(ctx, opts)
	if err != nil {
		return 0, err
	}

	stored := make([]entity.StoredBar, 0, len(bars))
	for _, b := range bars {
		stored = append(stored, entity.StoredBar{
			Security:  opts.Securities[0],
			EventType: opts.EventTypes[0],
			Interval:  opts.BarInterval,
			Bar:       b,
		})
	}
	if err := iu.repo.UpsertBatch(ctx, stored); err != nil {
		return 0, err
	}
	return len(stored), nil
}

// IngestAll は opts の全銘柄 × 全イベント種別について1リクエストずつ取得・保存します。
// 1件の失敗では止めずにログを出して次へ進みます。ctx がキャンセルされた場合のみ中断します。
func (iu *IngestUsecase) IngestAll(ctx context.Context, opts entity.QueryOptions) (IngestSummary, error) {
	var sum IngestSummary
	if len(opts.Securities) == 0 || len(opts.EventTypes) == 0 {
		return sum, domain.ErrInvalidOptions
	}

	for _, sec := range opts.Securities {
		for _, ev := range opts.EventTypes {
			if err := iu.rateLimiter.WaitIfNeeded(ctx); err != nil {
				return sum, err
			}
			n, err := iu.ingestOne(ctx, opts.ForPair(sec, ev))
			if err != nil {
				if ctx.Err() != nil {
					return sum, ctx.Err()
				}
				slog.Error("failed to ingest bars", "security", sec, "event_type", ev,
					"server_reported", IsServerReported(err), "error", err)
				sum.Failed++
				continue
			}
			slog.Info("ingested bars", "security", sec, "event_type", ev, "bars", n)
			sum.Succeeded++
			sum.Bars += n
		}
	}
	return sum, nil
}
