package usecase

import (
	"fmt"
	"io"
	"log/slog"

	"intradaybar/internal/feature/intradaybar/domain"
	"intradaybar/internal/feature/intradaybar/domain/entity"
)

// DatetimeLayout は表の時刻列のフォーマット（MM/DD/YYYY HH:MM）です。
const DatetimeLayout = "01/02/2006 15:04"

const (
	headerFormat = "%-16s  %10s  %10s  %10s  %10s  %10s  %12s\n"
	rowFormat    = "%-16s  %10.2f  %10.2f  %10.2f  %10.2f  %10d  %12d\n"
)

// ResponseFormatter はレスポンスメッセージをテキストの表として書き出します。
type ResponseFormatter struct {
	w io.Writer
}

// NewResponseFormatter は出力先 w に書き込む ResponseFormatter を生成します。
func NewResponseFormatter(w io.Writer) *ResponseFormatter {
	return &ResponseFormatter{w: w}
}

// Format はメッセージごとに、エラー行1行またはヘッダー行＋バー行を書き出します。
//
// サーバーが報告したエラーは "REQUEST FAILED: ..." として出力し、処理を続けます。
// エラーもバーデータも持たないメッセージは ErrMalformedResponse を返し、
// そのメッセージについては何も出力しません。
func (f *ResponseFormatter) Format(messages []entity.Message) error {
	for _, msg := range messages {
		slog.Info("received response", "request_id", msg.RequestID)

		if msg.ResponseError != nil {
			if _, err := fmt.Fprintf(f.w, "REQUEST FAILED: %s\n", msg.ResponseError.Text()); err != nil {
				return err
			}
			continue
		}

		if msg.BarData == nil {
			return fmt.Errorf("request %s: %w: no barData element", msg.RequestID, domain.ErrMalformedResponse)
		}

		bars := msg.BarData.BarTickData
		slog.Info("response contains bars", "request_id", msg.RequestID, "bars", len(bars))
		if err := f.writeTable(bars); err != nil {
			return err
		}
	}
	return nil
}

// writeTable はヘッダーとバー行を受信順のまま書き出します（並べ替えはしない）。
func (f *ResponseFormatter) writeTable(bars []entity.Bar) error {
	if _, err := fmt.Fprintf(f.w, headerFormat,
		"Datetime", "Open", "High", "Low", "Close", "NumEvents", "Volume"); err != nil {
		return err
	}
	for _, b := range bars {
		if _, err := fmt.Fprintf(f.w, rowFormat,
			b.Time.Format(DatetimeLayout), b.Open, b.High, b.Low, b.Close, b.NumEvents, b.Volume); err != nil {
			return err
		}
	}
	return nil
}
