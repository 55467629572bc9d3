// Package testutil provides shared test doubles. All dummies implement the
// corresponding production interfaces so they can be injected into components
// under test without real I/O or latency.
package testutil

import (
	"context"
	"sync"

	"github.com/safelinkedu/safelink/internal/logging"
	"github.com/safelinkedu/safelink/internal/scanner"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Debugs []string
	Infos  []string
	Warns  []string
	Errors []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(fields ...logging.Field) logging.Logger { return l }

var _ logging.Logger = (*DummyLogger)(nil)

// ─── Reputation ────────────────────────────────────────────────────────

// StaticReputation returns a fixed Signal with no latency, for deterministic
// scan results in tests.
type StaticReputation struct {
	Signal scanner.Signal
}

func (r *StaticReputation) Check(ctx context.Context, url string) scanner.Signal {
	return r.Signal
}

var _ scanner.ReputationChecker = (*StaticReputation)(nil)
