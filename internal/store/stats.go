package store

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"
)

// StatusCounts is the public scan-volume summary.
type StatusCounts struct {
	TotalScans int `json:"totalScans"`
	Safe       int `json:"safe"`
	Suspicious int `json:"suspicious"`
	Dangerous  int `json:"dangerous"`
}

// DailyStat is one day's verdict counts.
type DailyStat struct {
	Date       string `json:"date"`
	Safe       int    `json:"safe"`
	Suspicious int    `json:"suspicious"`
	Dangerous  int    `json:"dangerous"`
}

// RiskDistribution buckets scans by score range.
type RiskDistribution struct {
	Low    int `json:"low"`    // score <= 30
	Medium int `json:"medium"` // 30 < score <= 70
	High   int `json:"high"`   // score > 70
}

// FlaggedDomain is a registered domain with its non-safe scan count.
type FlaggedDomain struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// CountByStatus tallies all stored scans by status.
func (s *Store) CountByStatus(ctx context.Context) (StatusCounts, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM scans GROUP BY status`)
	if err != nil {
		return StatusCounts{}, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	var c StatusCounts
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return StatusCounts{}, fmt.Errorf("scan status count: %w", err)
		}
		switch status {
		case "safe":
			c.Safe = n
		case "suspicious":
			c.Suspicious = n
		case "dangerous":
			c.Dangerous = n
		}
		c.TotalScans += n
	}
	return c, rows.Err()
}

// DailyStats returns per-day status counts for scans within the last `days`
// days, oldest first.
func (s *Store) DailyStats(ctx context.Context, days int) ([]DailyStat, error) {
	if days <= 0 {
		days = 30
	}
	since := formatTime(time.Now().AddDate(0, 0, -days))

	rows, err := s.db.QueryContext(ctx,
		`SELECT date(created_at), status, COUNT(*)
		 FROM scans WHERE created_at >= ?
		 GROUP BY date(created_at), status
		 ORDER BY date(created_at) ASC`, since)
	if err != nil {
		return nil, fmt.Errorf("daily stats: %w", err)
	}
	defer rows.Close()

	byDate := map[string]*DailyStat{}
	order := []string{}
	for rows.Next() {
		var date, status string
		var n int
		if err := rows.Scan(&date, &status, &n); err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		st, ok := byDate[date]
		if !ok {
			st = &DailyStat{Date: date}
			byDate[date] = st
			order = append(order, date)
		}
		switch status {
		case "safe":
			st.Safe = n
		case "suspicious":
			st.Suspicious = n
		case "dangerous":
			st.Dangerous = n
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]DailyStat, 0, len(order))
	for _, d := range order {
		out = append(out, *byDate[d])
	}
	return out, nil
}

// ScoreDistribution buckets scans from the last `days` days into the fixed
// low/medium/high score ranges.
func (s *Store) ScoreDistribution(ctx context.Context, days int) (RiskDistribution, error) {
	if days <= 0 {
		days = 30
	}
	since := formatTime(time.Now().AddDate(0, 0, -days))

	var d RiskDistribution
	err := s.db.QueryRowContext(ctx,
		`SELECT
			COALESCE(SUM(risk_score <= 30), 0),
			COALESCE(SUM(risk_score > 30 AND risk_score <= 70), 0),
			COALESCE(SUM(risk_score > 70), 0)
		 FROM scans WHERE created_at >= ?`, since).Scan(&d.Low, &d.Medium, &d.High)
	if err != nil {
		return RiskDistribution{}, fmt.Errorf("score distribution: %w", err)
	}
	return d, nil
}

// TopFlaggedDomains groups non-safe scans by registered domain (eTLD+1) and
// returns the n most frequent. Hosts the public-suffix list cannot resolve
// fall back to the raw hostname; unparseable URLs are skipped.
func (s *Store) TopFlaggedDomains(ctx context.Context, n int) ([]FlaggedDomain, error) {
	if n <= 0 {
		n = 10
	}

	rows, err := s.db.QueryContext(ctx, `SELECT url FROM scans WHERE status != 'safe'`)
	if err != nil {
		return nil, fmt.Errorf("flagged domains: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan flagged url: %w", err)
		}
		u, err := url.Parse(raw)
		if err != nil || u.Hostname() == "" {
			continue
		}
		host := strings.ToLower(u.Hostname())
		domain, err := publicsuffix.EffectiveTLDPlusOne(host)
		if err != nil {
			domain = host
		}
		counts[domain]++
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]FlaggedDomain, 0, len(counts))
	for d, c := range counts {
		out = append(out, FlaggedDomain{Domain: d, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Domain < out[j].Domain
	})
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
