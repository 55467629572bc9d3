package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/safelinkedu/safelink/internal/logging"
	"github.com/safelinkedu/safelink/internal/store"
)

// handleAdminDashboard godoc
// @Summary Dashboard statistics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} apiResponse
// @Router /api/admin/dashboard [get]
func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		s.logger.Warn("dashboard counts", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to fetch dashboard data")
		return
	}

	recent, err := s.store.RecentScans(ctx, 50)
	if err != nil {
		s.logger.Warn("dashboard recent scans", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to fetch recent scans")
		return
	}

	top, err := s.store.TopFlaggedDomains(ctx, 10)
	if err != nil {
		s.logger.Warn("dashboard flagged domains", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to fetch flagged domains")
		return
	}

	writeSuccess(w, http.StatusOK, dashboardData{
		Stats: dashboardStats{
			TotalScans:      counts.TotalScans,
			SuspiciousCount: counts.Suspicious,
			DangerousCount:  counts.Dangerous,
		},
		RecentScans:       recent,
		TopFlaggedDomains: top,
	})
}

// handleAdminListScans godoc
// @Summary List scan records
// @Produce json
// @Security BearerAuth
// @Param status query string false "safe|suspicious|dangerous"
// @Param limit query int false "page size"
// @Param offset query int false "page offset"
// @Success 200 {object} apiResponse
// @Router /api/admin/scans [get]
func (s *Server) handleAdminListScans(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	status := r.URL.Query().Get("status")
	switch status {
	case "", "safe", "suspicious", "dangerous":
	default:
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	recs, total, err := s.store.ListScans(r.Context(), store.ListOptions{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.logger.Warn("listing scans", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to fetch scans")
		return
	}

	writeJSON(w, http.StatusOK, apiResponse{
		Success: true,
		Data:    recs,
		Pagination: &pagination{
			Limit:   limit,
			Offset:  offset,
			Total:   total,
			HasMore: offset+limit < total,
		},
	})
}

// handleAdminGetScan godoc
// @Summary Scan record details
// @Produce json
// @Security BearerAuth
// @Param id path string true "scan id"
// @Success 200 {object} apiResponse
// @Router /api/admin/scans/{id} [get]
func (s *Server) handleAdminGetScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, err := s.store.GetScan(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrScanNotFound) {
			writeError(w, http.StatusNotFound, "Scan not found")
			return
		}
		s.logger.Warn("getting scan", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to fetch scan")
		return
	}

	writeSuccess(w, http.StatusOK, rec)
}

// handleAdminDeleteScan godoc
// @Summary Delete a scan record
// @Produce json
// @Security BearerAuth
// @Param id path string true "scan id"
// @Success 200 {object} apiResponse
// @Router /api/admin/scans/{id} [delete]
func (s *Server) handleAdminDeleteScan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.store.DeleteScan(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrScanNotFound) {
			writeError(w, http.StatusNotFound, "Scan not found")
			return
		}
		s.logger.Warn("deleting scan", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to delete scan")
		return
	}

	claims := claimsFrom(r.Context())
	s.logger.Info("scan deleted",
		logging.Field{Key: "scan_id", Value: id},
		logging.Field{Key: "admin", Value: claims.Email})
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "Scan deleted successfully"})
}

// handleAdminStats godoc
// @Summary Time-bucketed statistics
// @Produce json
// @Security BearerAuth
// @Param days query int false "window in days (default 30)"
// @Success 200 {object} apiResponse
// @Router /api/admin/stats [get]
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	if days <= 0 {
		days = 30
	}
	ctx := r.Context()

	daily, err := s.store.DailyStats(ctx, days)
	if err != nil {
		s.logger.Warn("daily stats", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}

	dist, err := s.store.ScoreDistribution(ctx, days)
	if err != nil {
		s.logger.Warn("score distribution", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, "Failed to fetch statistics")
		return
	}

	writeSuccess(w, http.StatusOK, adminStatsData{
		DailyStats: daily,
		RiskRanges: dist,
		TotalScans: dist.Low + dist.Medium + dist.High,
		Period:     fmt.Sprintf("%d days", days),
	})
}
