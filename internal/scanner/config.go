package scanner

import (
	"regexp"
	"strings"
	"time"
)

// Config holds the read-only lookup lists and weights the scanner evaluates
// against. A Config is established once at construction and never mutated, so
// concurrent scans may share it without locking. Tests substitute minimal
// fixtures instead of the defaults.
type Config struct {
	// TrustedDomains short-circuits scoring: an exact match or subdomain of
	// any entry is considered safe without further evaluation.
	TrustedDomains []string `json:"trusted_domains"`

	// SuspiciousTLDs are low-cost, abuse-prone top-level domains.
	SuspiciousTLDs []string `json:"suspicious_tlds"`

	// SuspiciousKeywords is urgency/credential-harvesting vocabulary matched
	// against the URL path.
	SuspiciousKeywords []string `json:"suspicious_keywords"`

	// SpoofPatterns are character-substitution look-alikes of well-known
	// brands (e.g. digit-for-letter swaps).
	SpoofPatterns []*regexp.Regexp `json:"-"`

	// Weights for each heuristic. All contributions are non-negative and
	// additive; the aggregate is clamped to 100.
	SuspiciousTLDWeight int `json:"suspicious_tld_weight"`
	SpoofWeight         int `json:"spoof_weight"`
	DigitWeight         int `json:"digit_weight"`
	HyphenWeight        int `json:"hyphen_weight"`
	LongHostWeight      int `json:"long_host_weight"`
	KeywordWeight       int `json:"keyword_weight"` // per distinct keyword
	HexTokenWeight      int `json:"hex_token_weight"`
	LongURLWeight       int `json:"long_url_weight"`
	NoHTTPSWeight       int `json:"no_https_weight"`

	// Limits the length/density heuristics trigger above.
	MaxHostLen int `json:"max_host_len"`
	MaxHyphens int `json:"max_hyphens"`
	MaxURLLen  int `json:"max_url_len"`

	// Classification thresholds: score <= SafeThreshold is safe, score >
	// DangerousThreshold is dangerous, anything between is suspicious.
	SafeThreshold      int `json:"safe_threshold"`
	DangerousThreshold int `json:"dangerous_threshold"`

	// Fixed scores for the short-circuit and fail-safe paths.
	InvalidURLScore int `json:"invalid_url_score"`
	TrustedScore    int `json:"trusted_score"`
	FaultScore      int `json:"fault_score"`
}

// DefaultConfig returns the production lists and weights.
func DefaultConfig() *Config {
	return &Config{
		TrustedDomains: []string{
			"google.com", "forms.gle", "docs.google.com", "canvas.instructure.com",
			"blackboard.com", "moodle.org", "edmodo.com", "khanacademy.org",
			"coursera.org", "edx.org", "udemy.com", "zoom.us", "microsoft.com",
			"office.com", "outlook.com", "teams.microsoft.com",
		},
		SuspiciousTLDs: []string{
			".tk", ".ml", ".ga", ".cf", ".gq", ".xyz", ".top", ".loan",
			".win", ".click", ".link", ".shop", ".online", ".site",
		},
		SuspiciousKeywords: []string{
			"verify", "urgent", "suspended", "account", "login", "secure",
			"update", "confirm", "payment", "billing", "expire", "limited",
			"immediate", "action", "required", "click", "download", "install",
		},
		SpoofPatterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)goog1e`),
			regexp.MustCompile(`(?i)g00gle`),
			regexp.MustCompile(`(?i)faceb00k`),
			regexp.MustCompile(`(?i)amaz0n`),
			regexp.MustCompile(`(?i)micros0ft`),
			regexp.MustCompile(`(?i)paypa1`),
		},

		SuspiciousTLDWeight: 25,
		SpoofWeight:         30,
		DigitWeight:         10,
		HyphenWeight:        15,
		LongHostWeight:      10,
		KeywordWeight:       8,
		HexTokenWeight:      15,
		LongURLWeight:       10,
		NoHTTPSWeight:       15,

		MaxHostLen: 30,
		MaxHyphens: 2,
		MaxURLLen:  100,

		SafeThreshold:      30,
		DangerousThreshold: 70,

		InvalidURLScore: 95,
		TrustedScore:    5,
		FaultScore:      50,
	}
}

// isTrusted reports whether host equals, or is a subdomain of, a trusted
// domain. host must already be lower-cased.
func (c *Config) isTrusted(host string) bool {
	for _, d := range c.TrustedDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// DefaultReputationDelay is the simulated latency of the stub reputation
// checker.
const DefaultReputationDelay = 500 * time.Millisecond
