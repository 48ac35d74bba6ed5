package alpaca

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/google/uuid"

	"intradaybar/internal/feature/intradaybar/domain/entity"
	"intradaybar/internal/feature/intradaybar/usecase"
	mdsession "intradaybar/internal/platform/externalapi/marketdata"
)

// tradeEventType is the only event type Alpaca aggregates bars for.
const tradeEventType = "TRADE"

// barsClient is the subset of *marketdata.Client used here.
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// Session answers IntradayBarRequests with Alpaca stock bars.
// Only TRADE bars exist; other event types are reported as response errors.
type Session struct {
	client barsClient
	feed   marketdata.Feed
	newID  func() string
}

var _ usecase.Session = (*Session)(nil)

// NewSession は Alpaca のマーケットデータクライアントでセッションを生成します。
func NewSession(cfg Config, httpClient *http.Client) *Session {
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:     cfg.APIKey,
		APISecret:  cfg.APISecret,
		BaseURL:    cfg.BaseURL,
		Feed:       marketdata.Feed(cfg.Feed),
		HTTPClient: httpClient,
	})
	return &Session{client: client, feed: marketdata.Feed(cfg.Feed), newID: uuid.NewString}
}

// OpenService returns the bars service. Alpaca exposes only ServiceName.
func (s *Session) OpenService(name string) (*mdsession.Service, error) {
	if name != ServiceName {
		return nil, fmt.Errorf("%w: %q", mdsession.ErrUnknownService, name)
	}
	return mdsession.NewService(name), nil
}

// Symbol maps a security such as "IBM US Equity" to the Alpaca ticker "IBM".
func Symbol(security string) string {
	fields := strings.Fields(security)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// SendRequest fetches the bars described by req. Unsupported input is returned
// as a message carrying a ResponseError, like a gateway would report it.
func (s *Session) SendRequest(ctx context.Context, req *entity.Request) ([]entity.Message, error) {
	id := s.newID()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	security, _ := req.StringValue(entity.FieldSecurity)
	eventType, _ := req.StringValue(entity.FieldEventType)
	interval, _ := req.IntValue(entity.FieldInterval)
	start, _ := req.TimeValue(entity.FieldStartDateTime)
	end, _ := req.TimeValue(entity.FieldEndDateTime)

	if eventType != tradeEventType {
		return []entity.Message{badArgs(id, "INVALID_EVENT_TYPE", fmt.Sprintf("event type %q is not supported", eventType))}, nil
	}
	symbol := Symbol(security)
	if symbol == "" {
		return []entity.Message{badArgs(id, "INVALID_SECURITY", "security is empty")}, nil
	}
	if interval <= 0 {
		return []entity.Message{badArgs(id, "INVALID_INTERVAL", fmt.Sprintf("interval %d must be positive", interval))}, nil
	}
	tf, ok := timeFrame(interval)
	if !ok {
		return []entity.Message{badArgs(id, "INVALID_INTERVAL",
			fmt.Sprintf("interval %d minutes has no alpaca timeframe (1-59 minutes, 1-23 hours or 1 day)", interval))}, nil
	}
	if gap, _ := req.BoolValue(entity.FieldGapFillInitialBar); gap {
		slog.Debug("gapFillInitialBar is ignored by alpaca", "request_id", id)
	}

	slog.Debug("sending request", "request_id", id, "symbol", symbol, "interval", interval)
	bars, err := s.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: tf,
		Start:     start,
		End:       end,
		Feed:      s.feed,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, err)
	}

	out := make([]entity.Bar, 0, len(bars))
	for _, b := range bars {
		out = append(out, entity.Bar{
			Time:      b.Timestamp.In(time.UTC),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			NumEvents: int64(b.TradeCount),
			Volume:    int64(b.Volume),
		})
	}
	return []entity.Message{{RequestID: id, BarData: &entity.BarData{BarTickData: out}}}, nil
}

// timeFrame maps a bar interval in minutes to the timeframes Alpaca accepts:
// 1-59Min, 1-23Hour and 1Day.
func timeFrame(minutes int) (marketdata.TimeFrame, bool) {
	switch {
	case minutes >= 1 && minutes < 60:
		return marketdata.NewTimeFrame(minutes, marketdata.Min), true
	case minutes%60 == 0 && minutes/60 >= 1 && minutes/60 <= 23:
		return marketdata.NewTimeFrame(minutes/60, marketdata.Hour), true
	case minutes == 24*60:
		return marketdata.NewTimeFrame(1, marketdata.Day), true
	}
	return marketdata.TimeFrame{}, false
}

func badArgs(requestID, subcategory, msg string) entity.Message {
	return entity.Message{RequestID: requestID, ResponseError: &entity.ResponseError{
		Source:      "alpaca",
		Category:    "BAD_ARGS",
		Message:     msg,
		Subcategory: subcategory,
	}}
}
