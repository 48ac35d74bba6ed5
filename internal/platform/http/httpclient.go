// Package http builds the outbound HTTP client used for the market data gateway.
package http

import (
	"log/slog"
	"net"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when the request does not set its own User-Agent.
const DefaultUserAgent = "intradaybar/1.0"

// NewHTTPClient は外部API呼び出し用に設定されたHTTPクライアントを作成します。
//
// http.DefaultClient にはタイムアウトがないため、必ずこちらを使ってください。
// 接続・TLSハンドシェイクのタイムアウトはリクエスト全体のタイムアウトより短く設定しています。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: NewLoggingTransport(t, DefaultUserAgent)}
}

// loggingTransport sets a User-Agent and logs each round trip at debug level.
type loggingTransport struct {
	next      http.RoundTripper
	userAgent string
}

// NewLoggingTransport wraps next. A nil next uses http.DefaultTransport.
func NewLoggingTransport(next http.RoundTripper, userAgent string) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{next: next, userAgent: userAgent}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		// RoundTripper must not modify the caller's request.
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}

	start := time.Now()
	res, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		slog.Debug("http request failed", "method", req.Method, "url", req.URL.Redacted(), "elapsed", elapsed, "error", err)
		return nil, err
	}
	slog.Debug("http request", "method", req.Method, "url", req.URL.Redacted(), "status", res.StatusCode, "elapsed", elapsed)
	return res, nil
}
