// Package scanner implements the URL risk-scoring engine: a sequence of
// independent heuristic evaluators whose contributions are summed, clamped to
// [0,100] and mapped to a safe/suspicious/dangerous classification.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/safelinkedu/safelink/internal/logging"
)

// Scanner evaluates submitted URLs against an immutable Config. It is safe
// for concurrent use; every scan is independent.
type Scanner struct {
	cfg    *Config
	rep    ReputationChecker
	logger logging.Logger
}

// NewScanner constructs a Scanner. If rep is nil the simulated stub checker
// is used.
func NewScanner(cfg *Config, rep ReputationChecker, logger logging.Logger) (*Scanner, error) {
	if cfg == nil {
		return nil, errors.New("scanner: nil config")
	}
	if logger == nil {
		return nil, errors.New("scanner: nil logger")
	}
	if rep == nil {
		rep = NewStubChecker()
	}
	l := logger.With(logging.Field{Key: "component", Value: "scanner"})
	return &Scanner{cfg: cfg, rep: rep, logger: l}, nil
}

// ScanURL evaluates raw and returns a Verdict. It never returns an error: a
// classifier that can fail open by throwing is worse than one that fails to a
// conservative, visible classification, so malformed input, reputation
// failures and internal faults all resolve to fixed verdicts.
func (s *Scanner) ScanURL(ctx context.Context, raw string) (v Verdict) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scan recovered from panic", logging.Field{Key: "panic", Value: fmt.Sprint(r)})
			v = s.verdict(raw, s.cfg.FaultScore, StatusSuspicious, []string{"Error scanning URL"}, start)
		}
	}()

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return s.verdict(raw, s.cfg.InvalidURLScore, StatusDangerous, []string{"Invalid URL format"}, start)
	}

	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.Path)

	// Trust is absolute: an allowlisted host is never diluted by other
	// signals, path content included.
	if s.cfg.isTrusted(host) {
		return s.verdict(raw, s.cfg.TrustedScore, StatusSafe, []string{"Known legitimate domain"}, start)
	}

	// The local evaluators are pure and share no state, so they run
	// concurrently with the (latent) reputation lookup.
	var domainSig, pathSig, structSig, extSig Signal
	g, gctx := errgroup.WithContext(ctx)
	g.Go(guarded(func() { domainSig = scoreDomain(s.cfg, host) }))
	g.Go(guarded(func() { pathSig = scorePath(s.cfg, path) }))
	g.Go(guarded(func() { structSig = scoreStructure(s.cfg, raw, u.Scheme) }))
	g.Go(guarded(func() { extSig = s.rep.Check(gctx, raw) }))
	if err := g.Wait(); err != nil {
		s.logger.Error("scan evaluator fault", logging.Field{Key: "error", Value: err.Error()})
		return s.verdict(raw, s.cfg.FaultScore, StatusSuspicious, []string{"Error scanning URL"}, start)
	}

	// Fixed assembly order keeps reasons deterministic regardless of
	// goroutine completion order.
	score, reasons := aggregate(domainSig, pathSig, structSig, extSig)
	return s.verdict(raw, score, s.cfg.classify(score), reasons, start)
}

func (s *Scanner) verdict(raw string, score int, status Status, reasons []string, start time.Time) Verdict {
	return Verdict{
		URL:        raw,
		RiskScore:  score,
		Status:     status,
		Reasons:    reasons,
		ScanTimeMs: time.Since(start).Milliseconds(),
	}
}

// aggregate sums signal contributions in evaluation order and clamps the
// total to 100. No lower clamp is needed since contributions are
// non-negative.
func aggregate(signals ...Signal) (int, []string) {
	score := 0
	reasons := []string{}
	for _, sig := range signals {
		score += sig.Score
		reasons = append(reasons, sig.Reasons...)
	}
	if score > 100 {
		score = 100
	}
	return score, reasons
}

// guarded wraps an evaluator so a panic surfaces as an error on the group
// instead of crashing the process.
func guarded(fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("evaluator panic: %v", r)
			}
		}()
		fn()
		return nil
	}
}
