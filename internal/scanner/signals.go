package scanner

import (
	"fmt"
	"regexp"
	"strings"
)

// hexRunPattern matches a contiguous run of 20+ hexadecimal characters, the
// kind of opaque token phishing kits embed in paths.
var hexRunPattern = regexp.MustCompile(`(?i)[a-f0-9]{20,}`)

// scoreDomain inspects the hostname for look-alike patterns, suspicious TLDs,
// digit usage, hyphen density and length. host must be lower-cased. Each
// check fires independently; contributions sum.
func scoreDomain(cfg *Config, host string) Signal {
	var sig Signal

	for _, tld := range cfg.SuspiciousTLDs {
		if strings.HasSuffix(host, tld) {
			sig.add(cfg.SuspiciousTLDWeight, fmt.Sprintf("Suspicious top-level domain: %s", tld))
			break
		}
	}

	for _, p := range cfg.SpoofPatterns {
		if p.MatchString(host) {
			sig.add(cfg.SpoofWeight, "Domain appears to be spoofing a legitimate service")
			break
		}
	}

	if label, _, _ := strings.Cut(host, "."); strings.ContainsAny(label, "0123456789") {
		sig.add(cfg.DigitWeight, "Domain contains numbers (common in phishing)")
	}

	if strings.Count(host, "-") > cfg.MaxHyphens {
		sig.add(cfg.HyphenWeight, "Multiple hyphens in domain name")
	}

	if len(host) > cfg.MaxHostLen {
		sig.add(cfg.LongHostWeight, "Unusually long domain name")
	}

	return sig
}

// scorePath inspects the URL path for phishing vocabulary and high-entropy
// tokens. path must be lower-cased.
func scorePath(cfg *Config, path string) Signal {
	var sig Signal

	var matched []string
	for _, kw := range cfg.SuspiciousKeywords {
		if strings.Contains(path, kw) {
			matched = append(matched, kw)
		}
	}
	if len(matched) > 0 {
		sig.add(cfg.KeywordWeight*len(matched),
			fmt.Sprintf("Suspicious keywords in URL: %s", strings.Join(matched, ", ")))
	}

	if hexRunPattern.MatchString(path) {
		sig.add(cfg.HexTokenWeight, "Contains random-looking strings")
	}

	return sig
}

// scoreStructure checks overall URL length and transport security.
func scoreStructure(cfg *Config, rawURL, scheme string) Signal {
	var sig Signal

	if len(rawURL) > cfg.MaxURLLen {
		sig.add(cfg.LongURLWeight, "Unusually long URL")
	}

	if scheme != "https" {
		sig.add(cfg.NoHTTPSWeight, "Not using HTTPS encryption")
	}

	return sig
}
