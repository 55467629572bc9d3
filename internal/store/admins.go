package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// AdminUser is an administrative account. PasswordHash never leaves the
// store/auth boundary.
type AdminUser struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// CreateAdmin inserts a new admin user. Returns ErrAdminExists if the email
// is already registered.
func (s *Store) CreateAdmin(ctx context.Context, email, passwordHash string) (AdminUser, error) {
	u := AdminUser{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admin_users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, formatTime(u.CreatedAt))
	if err != nil {
		var serr *sqlite.Error
		if errors.As(err, &serr) && serr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
			return AdminUser{}, ErrAdminExists
		}
		return AdminUser{}, fmt.Errorf("insert admin: %w", err)
	}
	return u, nil
}

// AdminByEmail looks up an admin account, or returns ErrAdminNotFound.
func (s *Store) AdminByEmail(ctx context.Context, email string) (AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var u AdminUser
	var createdAt string
	var lastLogin sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at, last_login FROM admin_users WHERE email = ?`,
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt, &lastLogin)
	if err == sql.ErrNoRows {
		return AdminUser{}, ErrAdminNotFound
	}
	if err != nil {
		return AdminUser{}, fmt.Errorf("get admin: %w", err)
	}

	ts, err := parseTime(createdAt)
	if err != nil {
		return AdminUser{}, fmt.Errorf("parse created_at: %w", err)
	}
	u.CreatedAt = ts
	if lastLogin.Valid {
		if ll, err := parseTime(lastLogin.String); err == nil {
			u.LastLogin = &ll
		}
	}
	return u, nil
}

// TouchLastLogin records a successful login time.
func (s *Store) TouchLastLogin(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE admin_users SET last_login = ? WHERE id = ?`,
		formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return nil
}
