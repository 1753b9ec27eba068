package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// LogRequest logs one API round trip. Successful calls are debug noise; error
// statuses are surfaced.
func LogRequest(l Logger, method, url string, statusCode int, duration time.Duration) {
	fields := map[string]interface{}{
		"method":      method,
		"url":         url,
		"status_code": statusCode,
		"duration_ms": duration.Milliseconds(),
	}

	switch {
	case statusCode >= 200 && statusCode < 300:
		l.DebugWithFields("HTTP request completed", fields)
	case statusCode >= 400 && statusCode < 500:
		l.WarnWithFields("HTTP request client error", fields)
	case statusCode >= 500:
		l.ErrorWithFields("HTTP request server error", fields)
	default:
		l.DebugWithFields("HTTP request completed", fields)
	}
}

// LogRateLimit logs that the client is sleeping until the window resets.
func LogRateLimit(l Logger, endpoint string, wait time.Duration, reset time.Time) {
	fields := map[string]interface{}{
		"endpoint": endpoint,
		"wait":     wait,
		"action":   "rate_limited",
	}
	if !reset.IsZero() {
		fields["reset_at"] = reset
	}
	l.WarnWithFields("Rate limit reached, waiting for the window to reset", fields)
}

// LogFetchProgress logs every appended record at debug level.
func LogFetchProgress(l Logger, hashtag, id string, count int) {
	l.DebugWithFields("Record appended", map[string]interface{}{
		"hashtag":  hashtag,
		"tweet_id": id,
		"count":    count,
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger {
	z := zerolog.Nop()
	return &z
}
