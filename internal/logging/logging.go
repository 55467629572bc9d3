// Package logging provides a deliberately small, framework-agnostic logging
// contract plus a JSON-lines stdout implementation used during development.
// Components depend on the Logger interface so any backend can be swapped in.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Field is a simple key/value pair for structured logging fields.
type Field struct {
	Key   string
	Value interface{}
}

// Logger is the logging contract used across the codebase.
type Logger interface {
	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning.
	Warn(msg string, fields ...Field)

	// Error logs an error.
	Error(msg string, fields ...Field)

	// With returns a child logger with persistent fields.
	With(fields ...Field) Logger
}

// StdoutLogger prints one JSON object per log entry. It is safe for
// concurrent use.
type StdoutLogger struct {
	component string
	out       io.Writer
	mu        *sync.Mutex
}

// NewStdoutLogger creates a StdoutLogger. component is optional and is
// carried as a persistent field on every entry.
func NewStdoutLogger(component string) *StdoutLogger {
	return &StdoutLogger{component: component, out: os.Stdout, mu: &sync.Mutex{}}
}

func (s *StdoutLogger) log(level, msg string, fields ...Field) {
	type entry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	e := entry{
		Level:     level,
		Msg:       msg,
		Component: s.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fields:    m,
	}
	enc, err := json.Marshal(e)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		// Fall back to plain formatting if marshalling fails.
		fmt.Fprintf(s.out, "%s %s %v\n", level, msg, m)
		return
	}
	fmt.Fprintln(s.out, string(enc))
}

func (s *StdoutLogger) Debug(msg string, fields ...Field) { s.log("debug", msg, fields...) }
func (s *StdoutLogger) Info(msg string, fields ...Field)  { s.log("info", msg, fields...) }
func (s *StdoutLogger) Warn(msg string, fields ...Field)  { s.log("warn", msg, fields...) }
func (s *StdoutLogger) Error(msg string, fields ...Field) { s.log("error", msg, fields...) }

// With returns a child logger. A "component" field replaces the component
// name; other fields are not persisted by this minimal implementation.
func (s *StdoutLogger) With(fields ...Field) Logger {
	child := &StdoutLogger{component: s.component, out: s.out, mu: s.mu}
	for _, f := range fields {
		if f.Key == "component" {
			if str, ok := f.Value.(string); ok {
				child.component = str
			}
		}
	}
	return child
}

var _ Logger = (*StdoutLogger)(nil)
