package server

import (
	"time"

	"github.com/safelinkedu/safelink/internal/logging"
	"github.com/safelinkedu/safelink/internal/scanner"
)

// Config wires the server's collaborators. Zero values fall back to
// development defaults in NewServer.
type Config struct {
	// ListenAddr is the HTTP listen address.
	ListenAddr string

	// DBPath is the SQLite database file for scan records and admin users.
	DBPath string

	// CORSOrigin is the allowed browser origin; "*" in development.
	CORSOrigin string

	// JWTSecret signs admin session tokens.
	JWTSecret string

	// TokenTTL is the admin session lifetime (0 means the auth default).
	TokenTTL time.Duration

	// ScannerCfg holds the engine's lists and weights; nil means
	// scanner.DefaultConfig().
	ScannerCfg *scanner.Config

	// Reputation overrides the reputation checker; nil means the simulated
	// stub with ReputationDelay latency.
	Reputation scanner.ReputationChecker

	// ReputationDelay is the stub checker's simulated latency when
	// Reputation is nil.
	ReputationDelay time.Duration

	Logger logging.Logger
}
