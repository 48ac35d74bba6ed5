// Package usecase は日中足（intraday bar）リクエストの組み立てとレスポンス処理を実装します。
package usecase

import (
	"fmt"
	"log/slog"

	"intradaybar/internal/feature/intradaybar/domain"
	"intradaybar/internal/feature/intradaybar/domain/entity"
)

// Service はリクエストを生成するリモートサービスのハンドルです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Service interface {
	CreateRequest(operation string) (*entity.Request, error)
}

// BuildRequest は QueryOptions から IntradayBarRequest を組み立てます。
//
// 1リクエストにつき銘柄・イベント種別は1つのみ。先頭要素だけを使い、残りは捨てます。
// gapFillInitialBar は true のときだけ設定します（未設定はサーバーのデフォルトを意味する）。
// 日付の順序や interval の正当性はここでは検証せず、サーバー側のエラーとして返されます。
func BuildRequest(service Service, opts entity.QueryOptions) (*entity.Request, error) {
	if len(opts.Securities) == 0 {
		return nil, fmt.Errorf("%w: no security given", domain.ErrInvalidOptions)
	}
	if len(opts.EventTypes) == 0 {
		return nil, fmt.Errorf("%w: no event type given", domain.ErrInvalidOptions)
	}
	if len(opts.Securities) > 1 || len(opts.EventTypes) > 1 {
		slog.Warn("only one security and event type per request, extra values ignored",
			"securities", len(opts.Securities), "event_types", len(opts.EventTypes))
	}

	req, err := service.CreateRequest(entity.OperationIntradayBar)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.SetString(entity.FieldSecurity, opts.Securities[0])
	req.SetString(entity.FieldEventType, opts.EventTypes[0])
	req.SetInt(entity.FieldInterval, opts.BarInterval)
	req.SetTime(entity.FieldStartDateTime, opts.StartDateTime)
	req.SetTime(entity.FieldEndDateTime, opts.EndDateTime)

	if opts.GapFillInitialBar {
		req.SetBool(entity.FieldGapFillInitialBar, true)
	}
	return req, nil
}
