// Package auth issues and verifies admin session tokens. Passwords are
// bcrypt-hashed; sessions are HS256 JWTs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/safelinkedu/safelink/internal/logging"
	"github.com/safelinkedu/safelink/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWeakPassword       = errors.New("password must be at least 8 characters long")
)

// RoleAdmin is the only role issued today.
const RoleAdmin = "admin"

// minPasswordLen guards the setup path.
const minPasswordLen = 8

// Claims is the JWT payload for an admin session.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Service authenticates admin users against the store.
type Service struct {
	store  *store.Store
	secret []byte
	ttl    time.Duration
	logger logging.Logger
}

// NewService constructs an auth Service. ttl defaults to 7 days when zero.
func NewService(st *store.Store, secret string, ttl time.Duration, logger logging.Logger) (*Service, error) {
	if st == nil {
		return nil, errors.New("auth: nil store")
	}
	if secret == "" {
		return nil, errors.New("auth: empty JWT secret")
	}
	if logger == nil {
		return nil, errors.New("auth: nil logger")
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	l := logger.With(logging.Field{Key: "component", Value: "auth"})
	return &Service{store: st, secret: []byte(secret), ttl: ttl, logger: l}, nil
}

// Login verifies credentials and returns a signed session token plus the
// account. Unknown email and wrong password are indistinguishable to the
// caller.
func (s *Service) Login(ctx context.Context, email, password string) (string, store.AdminUser, error) {
	user, err := s.store.AdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrAdminNotFound) {
			return "", store.AdminUser{}, ErrInvalidCredentials
		}
		return "", store.AdminUser{}, fmt.Errorf("lookup admin: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", store.AdminUser{}, ErrInvalidCredentials
	}

	if err := s.store.TouchLastLogin(ctx, user.ID); err != nil {
		// A failed timestamp update must not block the login.
		s.logger.Warn("updating last login", logging.Field{Key: "error", Value: err.Error()})
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", store.AdminUser{}, fmt.Errorf("sign token: %w", err)
	}

	s.logger.Info("admin login", logging.Field{Key: "email", Value: user.Email})
	return token, user, nil
}

// Setup creates the initial admin account.
func (s *Service) Setup(ctx context.Context, email, password string) (store.AdminUser, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return store.AdminUser{}, errors.New("auth: empty email")
	}
	if len(password) < minPasswordLen {
		return store.AdminUser{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return store.AdminUser{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateAdmin(ctx, email, string(hash))
	if err != nil {
		return store.AdminUser{}, err
	}
	s.logger.Info("admin created", logging.Field{Key: "email", Value: user.Email})
	return user, nil
}

// VerifyToken parses and validates a session token, returning its claims.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) issueToken(user store.AdminUser) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: user.Email,
		Role:  RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
