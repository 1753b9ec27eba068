package logger

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// LogMessage is one captured log call. Fields holds the context fields
// (run_id, hashtag, ...) merged with the call's own fields; an error attached
// with WithError is stored under "error".
type LogMessage struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

type capture struct {
	mu       sync.Mutex
	messages []LogMessage
}

// TestLogger records every message instead of writing it. Child loggers from
// WithField(s) and WithError share the parent's capture.
type TestLogger struct {
	c      *capture
	fields map[string]interface{}
}

// NewTestLogger creates an empty capturing logger
func NewTestLogger() *TestLogger {
	return &TestLogger{c: &capture{}}
}

func (l *TestLogger) Debug(msg string) { l.log("DEBUG", msg, nil) }
func (l *TestLogger) Info(msg string)  { l.log("INFO", msg, nil) }
func (l *TestLogger) Warn(msg string)  { l.log("WARN", msg, nil) }
func (l *TestLogger) Error(msg string) { l.log("ERROR", msg, nil) }

func (l *TestLogger) DebugWithFields(msg string, fields map[string]interface{}) {
	l.log("DEBUG", msg, fields)
}

func (l *TestLogger) InfoWithFields(msg string, fields map[string]interface{}) {
	l.log("INFO", msg, fields)
}

func (l *TestLogger) WarnWithFields(msg string, fields map[string]interface{}) {
	l.log("WARN", msg, fields)
}

func (l *TestLogger) ErrorWithFields(msg string, fields map[string]interface{}) {
	l.log("ERROR", msg, fields)
}

func (l *TestLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

func (l *TestLogger) WithFields(fields map[string]interface{}) Logger {
	return &TestLogger{c: l.c, fields: l.merge(fields)}
}

func (l *TestLogger) WithError(err error) Logger {
	if err == nil {
		return l
	}
	return l.WithField("error", err.Error())
}

func (l *TestLogger) GetZerolog() *zerolog.Logger {
	z := zerolog.Nop()
	return &z
}

func (l *TestLogger) merge(extra map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(l.fields)+len(extra))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

func (l *TestLogger) log(level, msg string, fields map[string]interface{}) {
	l.c.mu.Lock()
	defer l.c.mu.Unlock()
	l.c.messages = append(l.c.messages, LogMessage{Level: level, Message: msg, Fields: l.merge(fields)})
}

// GetMessages returns a copy of everything logged so far.
func (l *TestLogger) GetMessages() []LogMessage {
	l.c.mu.Lock()
	defer l.c.mu.Unlock()
	return append([]LogMessage(nil), l.c.messages...)
}

// GetMessagesByLevel filters by upper-case level name ("INFO", "WARN", ...).
func (l *TestLogger) GetMessagesByLevel(level string) []LogMessage {
	var out []LogMessage
	for _, m := range l.GetMessages() {
		if m.Level == level {
			out = append(out, m)
		}
	}
	return out
}

func (l *TestLogger) HasMessage(text string) bool {
	for _, m := range l.GetMessages() {
		if m.Message == text {
			return true
		}
	}
	return false
}

func (l *TestLogger) HasMessageContaining(text string) bool {
	for _, m := range l.GetMessages() {
		if strings.Contains(m.Message, text) {
			return true
		}
	}
	return false
}
