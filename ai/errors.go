package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
)

// StatusError is a request the service answered with a non-success status.
type StatusError struct {
	Protocol string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Protocol, e.Code, e.Message)
}

// ShapeError is a response that does not have the expected structure.
type ShapeError struct {
	Protocol string
	Reason   string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s response: %s", e.Protocol, e.Reason)
}

// TransportError is a connection that failed after the request was sent,
// for example one closed while the response body was being read.
type TransportError struct {
	Protocol string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport: %v", e.Protocol, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func shapeErrorf(protocol, format string, args ...any) *ShapeError {
	return &ShapeError{Protocol: protocol, Reason: fmt.Sprintf(format, args...)}
}

// maxDetail bounds the service text carried into a Failure.
const maxDetail = 200

// classify maps a protocol error onto the failure taxonomy.
func classify(err error) Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return Failure{Kind: NetworkFailure, Detail: "timeout"}
	}
	if errors.Is(err, context.Canceled) {
		return Failure{Kind: NetworkFailure, Detail: "cancelled"}
	}

	var se *StatusError
	if errors.As(err, &se) {
		kind := ServiceError
		if se.Code == http.StatusUnauthorized || se.Code == http.StatusForbidden {
			kind = Unauthorized
		}
		detail := fmt.Sprintf("HTTP %d", se.Code)
		if text := http.StatusText(se.Code); text != "" {
			detail += " " + text
		}
		if se.Message != "" {
			detail += ": " + se.Message
		}
		return Failure{Kind: kind, Detail: truncate(detail, maxDetail)}
	}

	var shape *ShapeError
	if errors.As(err, &shape) {
		return Failure{Kind: MalformedResponse, Detail: truncate(shape.Reason, maxDetail)}
	}

	var te *TransportError
	if errors.As(err, &te) {
		if errors.Is(te.Err, io.ErrUnexpectedEOF) {
			return Failure{Kind: NetworkFailure, Detail: "connection closed while reading the response"}
		}
		return Failure{Kind: NetworkFailure, Detail: truncate(rootCause(err).Error(), maxDetail)}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Failure{Kind: NetworkFailure, Detail: "timeout"}
		}
		return Failure{Kind: NetworkFailure, Detail: truncate(rootCause(err).Error(), maxDetail)}
	}

	return Failure{Kind: ServiceError, Detail: truncate(err.Error(), maxDetail)}
}

// rootCause unwraps to the innermost error so url.Error's method and URL
// prefix does not reach the user.
func rootCause(err error) error {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

// serviceMessage pulls a human-readable message out of an error body.
// OpenAI, Groq and Anthropic use {"error":{"message":...}}, Ollama uses
// {"error":"..."}; anything else is returned trimmed.
func serviceMessage(body []byte) string {
	var nested struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &nested) == nil && nested.Error.Message != "" {
		return truncate(nested.Error.Message, maxDetail)
	}

	var flat struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &flat) == nil && flat.Error != "" {
		return truncate(flat.Error, maxDetail)
	}

	return truncate(strings.TrimSpace(string(body)), maxDetail)
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
