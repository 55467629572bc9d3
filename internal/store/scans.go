package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScanRecord is one durably stored verdict plus submitter metadata.
type ScanRecord struct {
	ID             string    `json:"id"`
	URL            string    `json:"url"`
	RiskScore      int       `json:"risk_score"`
	Status         string    `json:"status"`
	Reasons        []string  `json:"reasons"`
	SubmitterIP    string    `json:"submitter_ip,omitempty"`
	SubmitterAgent string    `json:"submitter_agent,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListOptions filter and page ListScans.
type ListOptions struct {
	Status string
	Limit  int
	Offset int
}

// SaveScan inserts a scan record. If rec.ID is empty a new UUID is assigned;
// if CreatedAt is zero the current time is used. The stored record is
// returned.
func (s *Store) SaveScan(ctx context.Context, rec ScanRecord) (ScanRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.Reasons == nil {
		rec.Reasons = []string{}
	}

	reasons, err := json.Marshal(rec.Reasons)
	if err != nil {
		return ScanRecord{}, fmt.Errorf("marshal reasons: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO scans (id, url, risk_score, status, reasons, submitter_ip, submitter_agent, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.URL, rec.RiskScore, rec.Status, string(reasons),
		rec.SubmitterIP, rec.SubmitterAgent, formatTime(rec.CreatedAt))
	if err != nil {
		return ScanRecord{}, fmt.Errorf("insert scan: %w", err)
	}
	return rec, nil
}

// GetScan returns one record by id, or ErrScanNotFound.
func (s *Store) GetScan(ctx context.Context, id string) (ScanRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, url, risk_score, status, reasons, submitter_ip, submitter_agent, created_at
		 FROM scans WHERE id = ?`, id)
	rec, err := scanRow(row)
	if err == sql.ErrNoRows {
		return ScanRecord{}, ErrScanNotFound
	}
	if err != nil {
		return ScanRecord{}, fmt.Errorf("get scan: %w", err)
	}
	return rec, nil
}

// DeleteScan removes one record by id, or returns ErrScanNotFound.
func (s *Store) DeleteScan(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM scans WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scan: %w", err)
	}
	if n == 0 {
		return ErrScanNotFound
	}
	return nil
}

// ListScans returns records newest-first with an optional status filter,
// along with the total count matching the filter.
func (s *Store) ListScans(ctx context.Context, opts ListOptions) ([]ScanRecord, int, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	where := ""
	args := []any{}
	if opts.Status != "" {
		where = " WHERE status = ?"
		args = append(args, opts.Status)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM scans`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count scans: %w", err)
	}

	args = append(args, opts.Limit, opts.Offset)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, risk_score, status, reasons, submitter_ip, submitter_agent, created_at
		 FROM scans`+where+` ORDER BY created_at DESC LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	recs := []ScanRecord{}
	for rows.Next() {
		rec, err := scanRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan row: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, total, rows.Err()
}

// RecentScans returns the n newest records.
func (s *Store) RecentScans(ctx context.Context, n int) ([]ScanRecord, error) {
	recs, _, err := s.ListScans(ctx, ListOptions{Limit: n})
	return recs, err
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(r rowScanner) (ScanRecord, error) {
	var rec ScanRecord
	var reasons, createdAt string
	if err := r.Scan(&rec.ID, &rec.URL, &rec.RiskScore, &rec.Status, &reasons,
		&rec.SubmitterIP, &rec.SubmitterAgent, &createdAt); err != nil {
		return ScanRecord{}, err
	}
	if err := json.Unmarshal([]byte(reasons), &rec.Reasons); err != nil {
		return ScanRecord{}, fmt.Errorf("unmarshal reasons: %w", err)
	}
	ts, err := parseTime(createdAt)
	if err != nil {
		return ScanRecord{}, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = ts
	return rec, nil
}
