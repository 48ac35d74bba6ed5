package dto

// SubmitRequest is the JSON body posted to the gateway for one request.
type SubmitRequest struct {
	RequestID string         `json:"requestId"`
	Service   string         `json:"service"`
	Operation string         `json:"operation"`
	Fields    map[string]any `json:"fields"`
}

// SubmitResponse holds every message received for one request.
type SubmitResponse struct {
	Messages []Message `json:"messages"`
}

// Message is one response message. Pointer members distinguish absent elements.
type Message struct {
	RequestID     string         `json:"requestId"`
	ResponseError *ResponseError `json:"responseError,omitempty"`
	BarData       *BarData       `json:"barData,omitempty"`
}

type ResponseError struct {
	Source      string `json:"source"`
	Code        int    `json:"code"`
	Category    string `json:"category"`
	Message     string `json:"message"`
	Subcategory string `json:"subcategory"`
}

type BarData struct {
	BarTickData []BarTick `json:"barTickData"`
}

// BarTick is one bar on the wire. Time is formatted "2006-01-02T15:04:05" in UTC.
type BarTick struct {
	Time      *string `json:"time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	NumEvents int64   `json:"numEvents"`
	Volume    int64   `json:"volume"`
}
