package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"intradaybar/internal/feature/intradaybar/domain"
	"intradaybar/internal/feature/intradaybar/domain/entity"
	"intradaybar/internal/feature/intradaybar/usecase"
	"intradaybar/internal/platform/externalapi/marketdata/dto"
)

// WireTimeLayout is the datetime format exchanged with the gateway. Times are UTC.
const WireTimeLayout = "2006-01-02T15:04:05"

var (
	// ErrUnknownService is returned by OpenService for a name other than the configured service.
	ErrUnknownService = errors.New("unknown service")
	// ErrUnsupportedOperation is returned by CreateRequest for operations other than IntradayBarRequest.
	ErrUnsupportedOperation = errors.New("unsupported operation")
)

// Session はマーケットデータゲートウェイへのHTTPセッションです。
// 共有の *http.Client を使うため、複数のゴルーチンから同時に利用できます。
type Session struct {
	cfg    Config
	client *http.Client
	newID  func() string
}

// Service は OpenService で開いたサービスのハンドルです。
type Service struct {
	name string
}

// コンパイル時にインターフェースの実装を検証します。
var (
	_ usecase.Session = (*Session)(nil)
	_ usecase.Service = (*Service)(nil)
)

// NewSession は指定された設定とHTTPクライアントで新しいセッションを生成します。
func NewSession(cfg Config, client *http.Client) *Session {
	if cfg.ServiceName == "" {
		cfg.ServiceName = DefaultServiceName
	}
	return &Session{cfg: cfg, client: client, newID: func() string { return uuid.NewString() }}
}

// OpenService は設定されたサービス名と一致する場合にサービスハンドルを返します。
func (s *Session) OpenService(name string) (*Service, error) {
	if name != s.cfg.ServiceName {
		return nil, fmt.Errorf("%w: %q", ErrUnknownService, name)
	}
	return NewService(name), nil
}

// NewService returns a handle for name that creates IntradayBarRequests.
func NewService(name string) *Service { return &Service{name: name} }

// Name returns the service name.
func (svc *Service) Name() string { return svc.name }

// CreateRequest は指定されたオペレーションの空のリクエストを生成します。
func (svc *Service) CreateRequest(operation string) (*entity.Request, error) {
	if operation != entity.OperationIntradayBar {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, operation)
	}
	return entity.NewRequest(operation), nil
}

// SendRequest はリクエストにIDを割り当ててゲートウェイへ送信し、
// 受信したメッセージをドメインエンティティに変換して返します。
func (s *Session) SendRequest(ctx context.Context, req *entity.Request) ([]entity.Message, error) {
	id := s.newID()

	payload, err := json.Marshal(dto.SubmitRequest{
		RequestID: id,
		Service:   s.cfg.ServiceName,
		Operation: req.Operation(),
		Fields:    encodeFields(req),
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	u := strings.TrimRight(s.cfg.BaseURL, "/") + "/request"
	hreq, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Content-Type", "application/json")
	hreq.Header.Set("X-Request-Id", id)
	if s.cfg.APIKey != "" {
		hreq.Header.Set("X-Api-Key", s.cfg.APIKey)
	}

	slog.Debug("sending request", "request_id", id, "operation", req.Operation())

	res, err := s.client.Do(hreq)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("marketdata http %d", res.StatusCode)
	}

	var body dto.SubmitResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return toMessages(id, body.Messages)
}

// encodeFields converts the request field bag into its JSON representation.
func encodeFields(req *entity.Request) map[string]any {
	fields := make(map[string]any, req.Len())
	for _, f := range req.Fields() {
		v := f.Value()
		if t, ok := v.(time.Time); ok {
			v = t.UTC().Format(WireTimeLayout)
		}
		fields[string(f.Name)] = v
	}
	return fields
}

func toMessages(requestID string, in []dto.Message) ([]entity.Message, error) {
	out := make([]entity.Message, 0, len(in))
	for _, m := range in {
		msg := entity.Message{RequestID: m.RequestID}
		if msg.RequestID == "" {
			msg.RequestID = requestID
		}
		if m.ResponseError != nil {
			msg.ResponseError = &entity.ResponseError{
				Source:      m.ResponseError.Source,
				Code:        m.ResponseError.Code,
				Category:    m.ResponseError.Category,
				Message:     m.ResponseError.Message,
				Subcategory: m.ResponseError.Subcategory,
			}
		}
		if m.BarData != nil {
			bars, err := toBars(m.BarData.BarTickData)
			if err != nil {
				return nil, fmt.Errorf("request %s: %w", msg.RequestID, err)
			}
			msg.BarData = &entity.BarData{BarTickData: bars}
		}
		out = append(out, msg)
	}
	return out, nil
}

func toBars(ticks []dto.BarTick) ([]entity.Bar, error) {
	bars := make([]entity.Bar, 0, len(ticks))
	for i, b := range ticks {
		if b.Time == nil {
			return nil, fmt.Errorf("%w: bar %d has no time", domain.ErrMalformedResponse, i)
		}
		tm, err := time.ParseInLocation(WireTimeLayout, *b.Time, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("%w: parse time %q: %v", domain.ErrMalformedResponse, *b.Time, err)
		}
		bars = append(bars, entity.Bar{
			Time:      tm,
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			NumEvents: b.NumEvents,
			Volume:    b.Volume,
		})
	}
	return bars, nil
}
