package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Twitter API error codes that change how a response is classified.
const (
	CodeCouldNotAuthenticate = 32
	CodeRateLimitExceeded    = 88
	CodeInvalidToken         = 89
)

// APIError is one entry of the {"errors": [...]} body returned by the API.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error represents an API error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	// API holds the error entries decoded from the response body, if any.
	API []APIError
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "twitter %s error (code %d): %s", e.Type, e.Code, e.Message)
	for i, info := range e.API {
		if i == 0 {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s (api code %d)", strings.TrimSuffix(info.Message, "."), info.Code)
	}
	return b.String()
}

// HasAPICode reports whether the response carried the given API error code.
func (e *Error) HasAPICode(code int) bool {
	for _, info := range e.API {
		if info.Code == code {
			return true
		}
	}
	return false
}

// Classify maps an HTTP status and API error entries to an ErrorType.
func Classify(statusCode int, api []APIError) ErrorType {
	for _, info := range api {
		switch info.Code {
		case CodeRateLimitExceeded:
			return ErrorTypeRateLimit
		case CodeCouldNotAuthenticate, CodeInvalidToken:
			return ErrorTypeAuth
		}
	}
	switch {
	case statusCode == 0:
		return ErrorTypeNetwork
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return ErrorTypeAuth
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}

// IsRateLimited reports whether err is (or wraps) a rate limit error.
func IsRateLimited(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Type == ErrorTypeRateLimit
	}
	return false
}

// IsAuth reports whether err is (or wraps) an authentication error.
func IsAuth(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Type == ErrorTypeAuth
	}
	return false
}
