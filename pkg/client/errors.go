package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client internals. The public Search and
// GetDetail operations never surface them; they degrade to an empty result
// or a nil detail and log the cause.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled during
	// a backoff or jitter wait.
	ErrContextCancelled = errors.New("context cancelled")

	// ErrClientClosed is returned when an operation runs after Close.
	ErrClientClosed = errors.New("client closed")
)

// ErrorClass represents a classification of upstream failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 rate limit errors.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassParse represents invalid JSON or an unexpected schema.
	ErrorClassParse ErrorClass = "parse"
)

// CatalogError is an upstream failure with enough context to classify it.
type CatalogError struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("catalog %s error (status %d): %s: %v",
			e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("catalog %s error (status %d): %s",
		e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *CatalogError) Unwrap() error {
	return e.Err
}

// classifyStatus categorizes an HTTP status for retry decisions and
// observability.
func classifyStatus(code int) ErrorClass {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case code >= 400 && code < 500:
		return ErrorClassClient
	case code >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// classOf extracts the error class from an error chain; anything that is
// not a classified upstream error counts as a network failure.
func classOf(err error) ErrorClass {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.ErrorClass
	}
	return ErrorClassNetwork
}

// shouldRetry determines if an error class is worth another attempt.
// Rate limits, server errors, network failures and parse failures are
// transient; 4xx responses are not.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork, ErrorClassParse:
		return true
	default:
		return false
	}
}

// isNotFound reports whether an error chain carries an upstream 404, which
// detail lookups treat as a normal absent-product outcome.
func isNotFound(err error) bool {
	var ce *CatalogError
	return errors.As(err, &ce) && ce.StatusCode == http.StatusNotFound
}
