package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeInput       ErrorType = "input"
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeTimeout     ErrorType = "timeout"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeBlocked     ErrorType = "blocked"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUpload      ErrorType = "upload"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a pipeline error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// New creates a typed error without an HTTP code
func New(errorType ErrorType, message string) *Error {
	return &Error{Type: errorType, Message: message}
}

// Newf creates a typed error with a formatted message
func Newf(errorType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errorType, Message: fmt.Sprintf(format, args...)}
}

// TypeOf returns the error type of err, or ErrorTypeUnknown for untyped errors
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeTimeout, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	case ErrorTypeInput, ErrorTypeBlocked, ErrorTypeNotFound, ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 401, 403, 404: // Client errors that won't change
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}

// UserMessage maps an internal error to the fixed set of user-facing
// sentences. Raw transport errors never reach the client; classification is
// by substring over the error text, first match wins.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()

	switch {
	case strings.Contains(msg, "no such host"), strings.Contains(msg, "ENOTFOUND"),
		strings.Contains(msg, "connection refused"):
		return "Network error: Could not connect to Instagram. Please check your internet connection."
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "Request timeout: Instagram is taking too long to respond. Please try again."
	case strings.Contains(msg, "403"), strings.Contains(msg, "blocked"):
		return "Access denied: Instagram is blocking the request. This is common with automated tools. Please try again later or use a different post."
	case strings.Contains(msg, "404"), strings.Contains(msg, "not_found"), strings.Contains(msg, "not found"):
		return "Post not found: The Instagram post might be private or deleted."
	case strings.Contains(msg, "rate limit"), strings.Contains(msg, "rate_limit"), strings.Contains(msg, "429"):
		return "Rate limit exceeded. Please wait a few minutes before trying again."
	default:
		return msg
	}
}
