package scanner

import (
	"context"
	"strings"
	"time"
)

// ReputationChecker consults third-party reputation services for a URL. It is
// the scan pipeline's only suspension point. Implementations must never
// return an error past this boundary: transport failures, timeouts and
// cancellation all degrade to a zero-score Signal carrying
// ReasonReputationUnavailable.
type ReputationChecker interface {
	Check(ctx context.Context, url string) Signal
}

// ReasonReputationUnavailable is the degraded-result reason emitted when a
// reputation lookup cannot complete.
const ReasonReputationUnavailable = "External security check unavailable"

// StubChecker simulates a reputation lookup with fixed latency and
// deterministic substring-triggered flags. A real provider replacing it must
// keep the no-error contract and treat its own timeout as a degraded result.
type StubChecker struct {
	// Delay is the simulated network latency.
	Delay time.Duration
}

// NewStubChecker returns a StubChecker with the default simulated latency.
func NewStubChecker() *StubChecker {
	return &StubChecker{Delay: DefaultReputationDelay}
}

// Check waits out the simulated latency, honoring cancellation, then flags
// known marker substrings.
func (c *StubChecker) Check(ctx context.Context, url string) Signal {
	if c.Delay > 0 {
		t := time.NewTimer(c.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return Signal{Reasons: []string{ReasonReputationUnavailable}}
		case <-t.C:
		}
	}

	var sig Signal
	if strings.Contains(url, "suspicious") || strings.Contains(url, "fake") {
		sig.add(40, "Flagged by external security services")
	}
	if strings.Contains(url, "tk/") || strings.Contains(url, "ml/") {
		sig.add(20, "Domain flagged as high-risk by security databases")
	}
	return sig
}

var _ ReputationChecker = (*StubChecker)(nil)
