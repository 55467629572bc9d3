// Package server is the HTTP API surface: public scan endpoints, admin
// endpoints behind token auth, and a WebSocket feed of live verdicts.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/safelinkedu/safelink/docs" // swagger spec registration
	"github.com/safelinkedu/safelink/internal/auth"
	"github.com/safelinkedu/safelink/internal/logging"
	"github.com/safelinkedu/safelink/internal/scanner"
	"github.com/safelinkedu/safelink/internal/store"
)

// Server owns the router and the scan/store/auth collaborators.
type Server struct {
	cfg     Config
	scanner *scanner.Scanner
	store   *store.Store
	auth    *auth.Service
	feed    *verdictFeed
	router  chi.Router
	logger  logging.Logger
}

// NewServer opens the store and constructs the engine and auth service from
// cfg.
func NewServer(cfg Config) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "safelink.db"
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "fallback-secret-change-in-production"
	}
	if cfg.ScannerCfg == nil {
		cfg.ScannerCfg = scanner.DefaultConfig()
	}

	rep := cfg.Reputation
	if rep == nil {
		delay := cfg.ReputationDelay
		if delay == 0 {
			delay = scanner.DefaultReputationDelay
		}
		rep = &scanner.StubChecker{Delay: delay}
	}

	st, err := store.New(cfg.DBPath, logger)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	sc, err := scanner.NewScanner(cfg.ScannerCfg, rep, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating scanner: %w", err)
	}

	authSvc, err := auth.NewService(st, cfg.JWTSecret, cfg.TokenTTL, logger)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("creating auth service: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		scanner: sc,
		store:   st,
		auth:    authSvc,
		feed:    newVerdictFeed(logger),
		router:  chi.NewRouter(),
		logger:  logger,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Options("/api/scan", s.optionsHandler("POST"))
	r.Options("/api/scan/history", s.optionsHandler("GET"))
	r.Options("/api/scan/stats", s.optionsHandler("GET"))
	r.Options("/api/auth/login", s.optionsHandler("POST"))
	r.Options("/api/auth/verify", s.optionsHandler("POST"))
	r.Options("/api/auth/setup", s.optionsHandler("POST"))

	r.Get("/health", s.handleHealth)

	r.Post("/api/scan", s.handleScan)
	r.Get("/api/scan/history", s.handleScanHistory)
	r.Get("/api/scan/stats", s.handleScanStats)

	r.Post("/api/auth/login", s.handleLogin)
	r.Post("/api/auth/verify", s.handleVerify)
	r.Post("/api/auth/setup", s.handleSetup)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/dashboard", s.handleAdminDashboard)
		r.Get("/scans", s.handleAdminListScans)
		r.Get("/scans/{id}", s.handleAdminGetScan)
		r.Delete("/scans/{id}", s.handleAdminDeleteScan)
		r.Get("/stats", s.handleAdminStats)
	})

	r.Get("/ws/scans", s.handleScanFeed)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("doc.json")))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler with request logging.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("http_request",
		logging.Field{Key: "method", Value: r.Method},
		logging.Field{Key: "path", Value: r.URL.Path})
	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	// The websocket upgrade hijacks its connection and clears the deadline,
	// so the write timeout only governs plain HTTP responses.
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
}

// Close shuts down the store and disconnects feed clients.
func (s *Server) Close() {
	s.feed.closeAll()
	if s.store != nil {
		s.store.Close()
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, apiResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiResponse{Success: false, Message: msg})
}

// --- Public handlers ---

// handleHealth godoc
// @Summary Service health check
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "SafeLink Backend API",
		"version":   "1.0.0",
	})
}

// handleScan godoc
// @Summary Scan a URL for phishing risk
// @Accept json
// @Produce json
// @Param request body scanRequest true "URL to scan"
// @Success 200 {object} apiResponse
// @Router /api/scan [post]
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var body scanRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.URL == "" {
		writeError(w, http.StatusBadRequest, "URL is required")
		return
	}

	verdict := s.scanner.ScanURL(r.Context(), body.URL)

	// Audit trail is fire-and-forget: a storage failure is logged and the
	// verdict is returned regardless.
	rec := store.ScanRecord{
		URL:            verdict.URL,
		RiskScore:      verdict.RiskScore,
		Status:         string(verdict.Status),
		Reasons:        verdict.Reasons,
		SubmitterIP:    clientIP(r),
		SubmitterAgent: r.UserAgent(),
	}
	if _, err := s.store.SaveScan(context.Background(), rec); err != nil {
		s.logger.Error("saving scan record", logging.Field{Key: "error", Value: err.Error()})
	}

	s.feed.broadcast(verdict)

	s.logger.Info("scanned url",
		logging.Field{Key: "status", Value: string(verdict.Status)},
		logging.Field{Key: "risk_score", Value: verdict.RiskScore})
	writeSuccess(w, http.StatusOK, verdict)
}

// handleScanHistory godoc
// @Summary Recent scan history
// @Produce json
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} apiResponse
// @Router /api/scan/history [get]
func (s *Server) handleScanHistory(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 10)
	offset := queryInt(r, "offset", 0)

	recs, total, err := s.store.ListScans(r.Context(), store.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Warn("listing scan history", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to fetch scan history")
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success:    true,
		Data:       recs,
		Pagination: &pagination{Limit: limit, Offset: offset, Total: total},
	})
}

// handleScanStats godoc
// @Summary Public scan statistics
// @Produce json
// @Success 200 {object} apiResponse
// @Router /api/scan/stats [get]
func (s *Server) handleScanStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountByStatus(r.Context())
	if err != nil {
		s.logger.Warn("fetching scan stats", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}
	writeSuccess(w, http.StatusOK, counts)
}

// --- helpers ---

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
