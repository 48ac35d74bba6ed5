package entity

// Message is one message of a response. It carries either ResponseError or
// BarData. A message with both is treated as an error; a message with neither
// is malformed.
type Message struct {
	RequestID     string
	ResponseError *ResponseError
	BarData       *BarData
}

// BarData is the bar-data collection of a successful message.
type BarData struct {
	BarTickData []Bar
}

// ResponseError is the error element reported by the remote service.
type ResponseError struct {
	Source      string
	Code        int
	Category    string
	Message     string
	Subcategory string
}

// Text returns the human readable detail of the error.
func (e ResponseError) Text() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Category
}
