package dto

// BarResponse はバー1本分のレスポンスDTOです。
type BarResponse struct {
	Time      string  `json:"time"`      // 期間開始時刻 (UTC, RFC3339)
	Open      float64 `json:"open"`      // 始値
	High      float64 `json:"high"`      // 高値
	Low       float64 `json:"low"`       // 安値
	Close     float64 `json:"close"`     // 終値
	NumEvents int64   `json:"numEvents"` // イベント数
	Volume    int64   `json:"volume"`    // 出来高
}

// BarSeriesResponse は1系列（銘柄・イベント種別・間隔）のバー一覧です。
type BarSeriesResponse struct {
	Security  string        `json:"security"`
	EventType string        `json:"eventType"`
	Interval  int           `json:"interval"`
	Bars      []BarResponse `json:"bars"`
}

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
