// Package handler はintradaybarフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"intradaybar/internal/feature/intradaybar/domain"
	"intradaybar/internal/feature/intradaybar/domain/entity"
	"intradaybar/internal/feature/intradaybar/transport/http/dto"
	"intradaybar/internal/feature/intradaybar/usecase"
)

// BarsUsecase はリモートサービスからのバー取得ユースケースです。
type BarsUsecase interface {
	Fetch(ctx context.Context, opts entity.QueryOptions) ([]entity.Message, error)
}

// HistoryUsecase は保存済みバーの検索ユースケースです。
type HistoryUsecase interface {
	GetHistory(ctx context.Context, q entity.BarQuery) ([]entity.StoredBar, error)
}

// BarHandler はバー取得のHTTPリクエストを処理します。
type BarHandler struct {
	bars    BarsUsecase
	history HistoryUsecase
}

// NewBarHandler は BarHandler の新しいインスタンスを生成します。
func NewBarHandler(bars BarsUsecase, history HistoryUsecase) *BarHandler {
	return &BarHandler{bars: bars, history: history}
}

// GetBars はリモートサービスから日中バーを取得して返します。
//
// エンドポイント例:
// GET /bars/IBM%20US%20Equity?eventType=TRADE&interval=60&start=2021-01-01T09:30&end=2021-01-01T16:00&format=text
func (h *BarHandler) GetBars(c *gin.Context) {
	opts, err := parseQueryOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	if opts.StartDateTime.IsZero() || opts.EndDateTime.IsZero() {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "start and end are required"})
		return
	}

	msgs, err := h.bars.Fetch(c.Request.Context(), opts)
	if err != nil {
		c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
		return
	}

	if strings.EqualFold(c.Query("format"), "text") {
		h.writeText(c, msgs)
		return
	}

	bars, err := usecase.ExtractBars(msgs)
	if err != nil {
		c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toSeries(opts.Securities[0], opts.EventTypes[0], opts.BarInterval, bars))
}

// writeText は表形式のテキストで返します。サーバーエラーを含む場合は 502 です。
func (h *BarHandler) writeText(c *gin.Context, msgs []entity.Message) {
	var buf bytes.Buffer
	if err := usecase.NewResponseFormatter(&buf).Format(msgs); err != nil {
		c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
		return
	}
	status := http.StatusOK
	for _, m := range msgs {
		if m.ResponseError != nil {
			status = http.StatusBadGateway
			break
		}
	}
	c.Data(status, "text/plain; charset=utf-8", buf.Bytes())
}

// GetHistory は保存済みのバーを返します。start/end は省略可能です。
//
// エンドポイント例:
// GET /bars/IBM%20US%20Equity/history?eventType=TRADE&interval=60&start=2021-01-01T09:30
func (h *BarHandler) GetHistory(c *gin.Context) {
	opts, err := parseQueryOptions(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	q := entity.BarQuery{
		Security:  opts.Securities[0],
		EventType: opts.EventTypes[0],
		Interval:  opts.BarInterval,
		Start:     opts.StartDateTime,
		End:       opts.EndDateTime,
	}
	stored, err := h.history.GetHistory(c.Request.Context(), q)
	if err != nil {
		c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
		return
	}

	bars := make([]entity.Bar, 0, len(stored))
	for _, s := range stored {
		bars = append(bars, s.Bar)
	}
	c.JSON(http.StatusOK, toSeries(q.Security, q.EventType, q.Interval, bars))
}

// parseQueryOptions はパスとクエリパラメータから QueryOptions を組み立てます。
func parseQueryOptions(c *gin.Context) (entity.QueryOptions, error) {
	opts := entity.QueryOptions{
		Securities:  []string{c.Param("security")},
		EventTypes:  []string{c.DefaultQuery("eventType", usecase.DefaultEventType)},
		BarInterval: usecase.DefaultBarInterval,
	}
	if strings.TrimSpace(opts.Securities[0]) == "" {
		return opts, errors.New("security is required")
	}

	if s := c.Query("interval"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return opts, errors.New("interval must be an integer")
		}
		opts.BarInterval = n
	}

	var err error
	if opts.StartDateTime, err = optionalTime(c.Query("start")); err != nil {
		return opts, err
	}
	if opts.EndDateTime, err = optionalTime(c.Query("end")); err != nil {
		return opts, err
	}

	if s := c.Query("gapFillInitialBar"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return opts, errors.New("gapFillInitialBar must be a boolean")
		}
		opts.GapFillInitialBar = b
	}
	return opts, nil
}

func optionalTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return entity.ParseDateTime(s)
}

// statusFor はエラーをHTTPステータスに対応付けます。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case usecase.IsServerReported(err):
		return http.StatusBadGateway
	default:
		// 不正なレスポンスや通信エラー
		return http.StatusBadGateway
	}
}

func toSeries(security, eventType string, interval int, bars []entity.Bar) dto.BarSeriesResponse {
	out := make([]dto.BarResponse, 0, len(bars))
	for _, b := range bars {
		out = append(out, dto.BarResponse{
			Time:      b.Time.UTC().Format(time.RFC3339),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			NumEvents: b.NumEvents,
			Volume:    b.Volume,
		})
	}
	return dto.BarSeriesResponse{Security: security, EventType: eventType, Interval: interval, Bars: out}
}
