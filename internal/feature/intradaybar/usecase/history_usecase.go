package usecase

import (
	"context"
	"fmt"

	"intradaybar/internal/feature/intradaybar/domain"
	"intradaybar/internal/feature/intradaybar/domain/entity"
)

const (
	// DefaultEventType は保存済みバー検索のデフォルトのイベント種別です。
	DefaultEventType = "TRADE"
	// DefaultBarInterval はデフォルトのバー間隔（分）です。
	DefaultBarInterval = 60
)

// HistoryUsecase は保存済みバーの検索を行います。
type HistoryUsecase struct {
	repo BarRepository
}

// NewHistoryUsecase は HistoryUsecase の新しいインスタンスを生成します。
func NewHistoryUsecase(repo BarRepository) *HistoryUsecase {
	return &HistoryUsecase{repo: repo}
}

// GetHistory は指定条件の保存済みバーを時刻昇順で返します。
func (hu *HistoryUsecase) GetHistory(ctx context.Context, q entity.BarQuery) ([]entity.StoredBar, error) {
	if q.Security == "" {
		return nil, fmt.Errorf("%w: no security given", domain.ErrInvalidOptions)
	}
	if q.EventType == "" {
		q.EventType = DefaultEventType
	}
	if q.Interval <= 0 {
		q.Interval = DefaultBarInterval
	}
	return hu.repo.Find(ctx, q)
}
