package server

import "github.com/safelinkedu/safelink/internal/store"

// apiResponse is the envelope every JSON endpoint uses.
type apiResponse struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore,omitempty"`
}

// scanRequest is the POST /api/scan body.
type scanRequest struct {
	URL string `json:"url"`
}

// loginRequest is the POST /api/auth/login and /setup body.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// verifyRequest is the POST /api/auth/verify body.
type verifyRequest struct {
	Token string `json:"token"`
}

// loginResponse mirrors the envelope with the token alongside the user.
type loginResponse struct {
	Success bool            `json:"success"`
	Token   string          `json:"token"`
	User    store.AdminUser `json:"user"`
}

// dashboardData is the admin dashboard payload.
type dashboardData struct {
	Stats             dashboardStats        `json:"stats"`
	RecentScans       []store.ScanRecord    `json:"recentScans"`
	TopFlaggedDomains []store.FlaggedDomain `json:"topFlaggedDomains"`
}

type dashboardStats struct {
	TotalScans      int `json:"totalScans"`
	SuspiciousCount int `json:"suspiciousCount"`
	DangerousCount  int `json:"dangerousCount"`
}

// adminStatsData is the time-bucketed statistics payload.
type adminStatsData struct {
	DailyStats []store.DailyStat      `json:"dailyStats"`
	RiskRanges store.RiskDistribution `json:"riskRanges"`
	TotalScans int                    `json:"totalScans"`
	Period     string                 `json:"period"`
}
