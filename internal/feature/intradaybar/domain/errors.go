// Package domain defines domain-level errors for the intraday bar feature.
package domain

import (
	"errors"
	"fmt"

	"intradaybar/internal/feature/intradaybar/domain/entity"
)

var (
	// ErrInvalidOptions indicates that a required option list (securities or event types) is empty.
	// It is returned synchronously while building the request.
	ErrInvalidOptions = errors.New("invalid query options")

	// ErrServerReported indicates that the remote service populated the error field of a message.
	ErrServerReported = errors.New("request failed")

	// ErrMalformedResponse indicates that a message carries neither an error nor bar data,
	// or that a bar lacks a required element.
	ErrMalformedResponse = errors.New("malformed response")
)

// ServerError wraps a ResponseError reported for one request.
type ServerError struct {
	RequestID string
	Detail    entity.ResponseError
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %s", ErrServerReported, e.Detail.Text())
}

// Unwrap lets errors.Is match ErrServerReported.
func (e *ServerError) Unwrap() error { return ErrServerReported }
