package scanner

// Status is the tri-state classification of a scanned URL.
type Status string

const (
	StatusSafe       Status = "safe"
	StatusSuspicious Status = "suspicious"
	StatusDangerous  Status = "dangerous"
)

// Verdict is the complete output of one scan. It is constructed fresh per
// call and never mutated afterwards; durable storage is the caller's concern.
type Verdict struct {
	// URL echoes the submitted input unmodified.
	URL string `json:"url"`

	// RiskScore is in [0,100].
	RiskScore int `json:"riskScore"`

	// Status derives from RiskScore by fixed thresholds, except for the
	// invalid-URL and trusted-domain short-circuits where it is a constant.
	Status Status `json:"status"`

	// Reasons is one human-readable string per triggered heuristic, in
	// evaluation order.
	Reasons []string `json:"reasons"`

	// ScanTimeMs is the wall-clock evaluation time. Informational only.
	ScanTimeMs int64 `json:"scanTime"`
}

// Signal is the contribution of one independent heuristic evaluator: a
// non-negative score delta plus zero or more reasons.
type Signal struct {
	Score   int
	Reasons []string
}

// add records a triggered heuristic.
func (s *Signal) add(score int, reason string) {
	s.Score += score
	s.Reasons = append(s.Reasons, reason)
}

// classify maps an aggregate score to a status using the configured
// thresholds. Only the two short-circuit paths bypass this rule.
func (c *Config) classify(score int) Status {
	switch {
	case score <= c.SafeThreshold:
		return StatusSafe
	case score <= c.DangerousThreshold:
		return StatusSuspicious
	default:
		return StatusDangerous
	}
}
