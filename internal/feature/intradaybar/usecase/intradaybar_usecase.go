package usecase

import (
	"context"
	"errors"
	"fmt"

	"intradaybar/internal/feature/intradaybar/domain"
	"intradaybar/internal/feature/intradaybar/domain/entity"
)

// Session はリクエストをリモートサービスへ送信するトランスポートです。
type Session interface {
	SendRequest(ctx context.Context, req *entity.Request) ([]entity.Message, error)
}

// IntradayBarUsecase はリクエストの組み立て・送信・バー抽出をまとめたユースケースです。
type IntradayBarUsecase struct {
	service Service
	session Session
}

// NewIntradayBarUsecase は IntradayBarUsecase の新しいインスタンスを生成します。
func NewIntradayBarUsecase(service Service, session Session) *IntradayBarUsecase {
	return &IntradayBarUsecase{service: service, session: session}
}

// Fetch はリクエストを組み立てて送信し、受信したメッセージをそのまま返します。
func (u *IntradayBarUsecase) Fetch(ctx context.Context, opts entity.QueryOptions) ([]entity.Message, error) {
	req, err := BuildRequest(u.service, opts)
	if err != nil {
		return nil, err
	}
	msgs, err := u.session.SendRequest(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", req.Operation(), err)
	}
	return msgs, nil
}

// FetchBars は Fetch の結果からバーを取り出して返します。
func (u *IntradayBarUsecase) FetchBars(ctx context.Context, opts entity.QueryOptions) ([]entity.Bar, error) {
	msgs, err := u.Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	return ExtractBars(msgs)
}

// ExtractBars は全メッセージのバーを受信順に連結します。
// 最初に見つかったサーバーエラーは *domain.ServerError として返します。
func ExtractBars(messages []entity.Message) ([]entity.Bar, error) {
	var n int
	for _, m := range messages {
		if m.BarData != nil {
			n += len(m.BarData.BarTickData)
		}
	}

	bars := make([]entity.Bar, 0, n)
	for _, m := range messages {
		if m.ResponseError != nil {
			return nil, &domain.ServerError{RequestID: m.RequestID, Detail: *m.ResponseError}
		}
		if m.BarData == nil {
			return nil, fmt.Errorf("request %s: %w: no barData element", m.RequestID, domain.ErrMalformedResponse)
		}
		bars = append(bars, m.BarData.BarTickData...)
	}
	return bars, nil
}

// IsServerReported reports whether err carries an error reported by the remote service.
func IsServerReported(err error) bool {
	return errors.Is(err, domain.ErrServerReported)
}
