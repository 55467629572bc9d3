package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/safelinkedu/safelink/internal/auth"
	"github.com/safelinkedu/safelink/internal/logging"
	"github.com/safelinkedu/safelink/internal/store"
)

type ctxKey int

const claimsKey ctxKey = iota

// claimsFrom returns the verified admin claims attached by requireAdmin.
func claimsFrom(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey).(*auth.Claims)
	return c
}

// requireAdmin verifies the Bearer token and the admin role before passing
// the request through.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Access token required")
			return
		}

		claims, err := s.auth.VerifyToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if claims.Role != auth.RoleAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// handleLogin godoc
// @Summary Admin login
// @Accept json
// @Produce json
// @Param request body loginRequest true "credentials"
// @Success 200 {object} loginResponse
// @Router /api/auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	token, user, err := s.auth.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		s.logger.Warn("admin login", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Success: true, Token: token, User: user})
}

// handleVerify godoc
// @Summary Verify a session token
// @Accept json
// @Produce json
// @Param request body verifyRequest true "token"
// @Success 200 {object} apiResponse
// @Router /api/auth/verify [post]
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var body verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.Token == "" {
		writeError(w, http.StatusBadRequest, "Token is required")
		return
	}

	claims, err := s.auth.VerifyToken(body.Token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]string{
		"userId": claims.Subject,
		"email":  claims.Email,
		"role":   claims.Role,
	})
}

// handleSetup godoc
// @Summary Create the initial admin user
// @Accept json
// @Produce json
// @Param request body loginRequest true "credentials"
// @Success 201 {object} apiResponse
// @Router /api/auth/setup [post]
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.Email == "" || body.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := s.auth.Setup(r.Context(), body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			writeError(w, http.StatusBadRequest, "Password must be at least 8 characters long")
		case errors.Is(err, store.ErrAdminExists):
			writeError(w, http.StatusBadRequest, "Admin user already exists")
		default:
			s.logger.Warn("admin setup", logging.Field{Key: "error", Value: err.Error()})
			writeError(w, http.StatusInternalServerError, "Failed to create admin user")
		}
		return
	}

	writeJSON(w, http.StatusCreated, apiResponse{
		Success: true,
		Message: "Admin user created successfully",
		Data:    user,
	})
}
