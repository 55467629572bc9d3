package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/safelinkedu/safelink/internal/scanner"
	"github.com/safelinkedu/safelink/internal/server"
	"github.com/safelinkedu/safelink/internal/testutil"
)

func newTestServer(t *testing.T) *server.Server {
	t.Helper()

	cfg := server.Config{
		ListenAddr: ":0",
		DBPath:     filepath.Join(t.TempDir(), "safelink.db"),
		JWTSecret:  "test-secret",
		Reputation: &scanner.StubChecker{Delay: 0},
		Logger:     &testutil.DummyLogger{},
	}
	s, err := server.NewServer(cfg)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func doJSON(t *testing.T, s http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON response: %v (body: %s)", err, rec.Body.String())
	}
}

// adminToken creates an admin account and returns a valid session token.
func adminToken(t *testing.T, s *server.Server) string {
	t.Helper()
	rec := doJSON(t, s, "POST", "/api/auth/setup", `{"email":"admin@school.edu","password":"correct-horse"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("setup: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, s, "POST", "/api/auth/login", `{"email":"admin@school.edu","password":"correct-horse"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	decodeJSON(t, rec, &body)
	if body.Token == "" {
		t.Fatal("login returned empty token")
	}
	return body.Token
}

// ─── Health & CORS ─────────────────────────────────────────────────────

func TestServer_Health(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	decodeJSON(t, rec, &body)
	if body["status"] != "OK" {
		t.Errorf("status = %q", body["status"])
	}
}

func TestServer_CORS_HeaderPresent(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/health", "")
	if origin := rec.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("expected CORS origin *, got %q", origin)
	}
}

func TestServer_NotFoundEnvelope(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeJSON(t, rec, &body)
	if body.Success || body.Message == "" {
		t.Errorf("unexpected envelope: %+v", body)
	}
}

// ─── Scan ──────────────────────────────────────────────────────────────

func TestServer_Scan(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/scan", `{"url":"http://g00gle-forms.tk/verify-account"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Success bool            `json:"success"`
		Data    scanner.Verdict `json:"data"`
	}
	decodeJSON(t, rec, &body)
	if !body.Success {
		t.Error("expected success envelope")
	}
	if body.Data.Status == scanner.StatusSafe {
		t.Errorf("phishing URL classified safe: %+v", body.Data)
	}
	if body.Data.URL != "http://g00gle-forms.tk/verify-account" {
		t.Errorf("url not echoed: %q", body.Data.URL)
	}
}

func TestServer_Scan_MissingURL(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/scan", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestServer_Scan_InvalidURLStillSucceeds(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	// Malformed input yields a verdict, not an HTTP error.
	rec := doJSON(t, s, "POST", "/api/scan", `{"url":"not a url"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data scanner.Verdict `json:"data"`
	}
	decodeJSON(t, rec, &body)
	if body.Data.RiskScore != 95 || body.Data.Status != scanner.StatusDangerous {
		t.Errorf("verdict = %+v", body.Data)
	}
}

func TestServer_Scan_PersistsHistory(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	doJSON(t, s, "POST", "/api/scan", `{"url":"https://example.com"}`)
	doJSON(t, s, "POST", "/api/scan", `{"url":"http://bad.example.tk/verify"}`)

	rec := doJSON(t, s, "GET", "/api/scan/history?limit=5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Success    bool `json:"success"`
		Data       []struct {
			URL string `json:"url"`
		} `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	decodeJSON(t, rec, &body)
	if body.Pagination.Total != 2 || len(body.Data) != 2 {
		t.Errorf("expected 2 records, got %+v", body)
	}
	// Newest first.
	if body.Data[0].URL != "http://bad.example.tk/verify" {
		t.Errorf("unexpected order: %+v", body.Data)
	}
}

func TestServer_ScanStats(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	doJSON(t, s, "POST", "/api/scan", `{"url":"https://example.com"}`)

	rec := doJSON(t, s, "GET", "/api/scan/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data struct {
			TotalScans int `json:"totalScans"`
			Safe       int `json:"safe"`
		} `json:"data"`
	}
	decodeJSON(t, rec, &body)
	if body.Data.TotalScans != 1 || body.Data.Safe != 1 {
		t.Errorf("stats = %+v", body.Data)
	}
}

// ─── Auth ──────────────────────────────────────────────────────────────

func TestServer_AuthFlow(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	token := adminToken(t, s)

	rec := doJSON(t, s, "POST", "/api/auth/verify", `{"token":"`+token+`"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d", rec.Code)
	}
	var body struct {
		Data map[string]string `json:"data"`
	}
	decodeJSON(t, rec, &body)
	if body.Data["email"] != "admin@school.edu" || body.Data["role"] != "admin" {
		t.Errorf("verify data = %+v", body.Data)
	}
}

func TestServer_Login_WrongPassword(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	adminToken(t, s)

	rec := doJSON(t, s, "POST", "/api/auth/login", `{"email":"admin@school.edu","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestServer_Setup_WeakPassword(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "POST", "/api/auth/setup", `{"email":"admin@school.edu","password":"short"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// ─── Admin ─────────────────────────────────────────────────────────────

func TestServer_Admin_RequiresToken(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	rec := doJSON(t, s, "GET", "/api/admin/dashboard", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	rec = doJSON(t, s, "GET", "/api/admin/dashboard", "", "Authorization", "Bearer garbage")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for forged token, got %d", rec.Code)
	}
}

func TestServer_Admin_Dashboard(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	token := adminToken(t, s)

	doJSON(t, s, "POST", "/api/scan", `{"url":"http://bad.example.tk/verify"}`)

	rec := doJSON(t, s, "GET", "/api/admin/dashboard", "", "Authorization", "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			Stats struct {
				TotalScans int `json:"totalScans"`
			} `json:"stats"`
			RecentScans       []json.RawMessage `json:"recentScans"`
			TopFlaggedDomains []struct {
				Domain string `json:"domain"`
			} `json:"topFlaggedDomains"`
		} `json:"data"`
	}
	decodeJSON(t, rec, &body)
	if body.Data.Stats.TotalScans != 1 || len(body.Data.RecentScans) != 1 {
		t.Errorf("dashboard = %+v", body.Data)
	}
	if len(body.Data.TopFlaggedDomains) != 1 || body.Data.TopFlaggedDomains[0].Domain != "example.tk" {
		t.Errorf("flagged domains = %+v", body.Data.TopFlaggedDomains)
	}
}

func TestServer_Admin_ListFilterAndDelete(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	token := adminToken(t, s)

	doJSON(t, s, "POST", "/api/scan", `{"url":"https://example.com"}`)
	doJSON(t, s, "POST", "/api/scan", `{"url":"http://bad.example.tk/verify-account-login"}`)

	rec := doJSON(t, s, "GET", "/api/admin/scans?status=safe", "", "Authorization", "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var list struct {
		Data []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
		Pagination struct {
			Total int `json:"total"`
		} `json:"pagination"`
	}
	decodeJSON(t, rec, &list)
	if list.Pagination.Total != 1 || len(list.Data) != 1 || list.Data[0].Status != "safe" {
		t.Fatalf("filtered list = %+v", list)
	}

	id := list.Data[0].ID
	rec = doJSON(t, s, "GET", "/api/admin/scans/"+id, "", "Authorization", "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Errorf("get scan: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, s, "DELETE", "/api/admin/scans/"+id, "", "Authorization", "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Errorf("delete scan: expected 200, got %d", rec.Code)
	}

	rec = doJSON(t, s, "GET", "/api/admin/scans/"+id, "", "Authorization", "Bearer "+token)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestServer_Admin_Stats(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	token := adminToken(t, s)

	doJSON(t, s, "POST", "/api/scan", `{"url":"https://example.com"}`)
	doJSON(t, s, "POST", "/api/scan", `{"url":"http://bad.example.tk/verify-account-login-secure"}`)

	rec := doJSON(t, s, "GET", "/api/admin/stats?days=7", "", "Authorization", "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Data struct {
			DailyStats []struct {
				Date string `json:"date"`
			} `json:"dailyStats"`
			TotalScans int    `json:"totalScans"`
			Period     string `json:"period"`
		} `json:"data"`
	}
	decodeJSON(t, rec, &body)
	if body.Data.TotalScans != 2 || len(body.Data.DailyStats) != 1 {
		t.Errorf("stats = %+v", body.Data)
	}
	if body.Data.Period != "7 days" {
		t.Errorf("period = %q", body.Data.Period)
	}
}

// ─── WebSocket feed ────────────────────────────────────────────────────

func TestServer_ScanFeed(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	ts := httptest.NewServer(s)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/scans"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial feed: %v", err)
	}
	defer conn.Close()

	resp, err := http.Post(ts.URL+"/api/scan", "application/json",
		strings.NewReader(`{"url":"http://bad.example.tk/verify"}`))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	resp.Body.Close()

	var v scanner.Verdict
	if err := conn.ReadJSON(&v); err != nil {
		t.Fatalf("read feed: %v", err)
	}
	if v.URL != "http://bad.example.tk/verify" {
		t.Errorf("feed verdict = %+v", v)
	}
}

func TestServer_ScanFeed_StalledClientDoesNotBlockScans(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	ts := httptest.NewServer(s)
	defer ts.Close()

	// A client that never reads eventually fills its socket buffers.
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/scans"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial feed: %v", err)
	}
	defer conn.Close()

	// Large verdicts overflow those buffers quickly; the scan endpoint must
	// keep answering regardless.
	body := `{"url":"http://bad.example.tk/` + strings.Repeat("a", 1<<16) + `"}`
	done := make(chan error, 1)
	go func() {
		for i := 0; i < 40; i++ {
			resp, err := http.Post(ts.URL+"/api/scan", "application/json", strings.NewReader(body))
			if err != nil {
				done <- err
				return
			}
			resp.Body.Close()
		}
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("scan endpoint stalled behind a non-reading feed client")
	}
}

func TestServer_HTTPServerHasFiniteTimeouts(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	hs := s.HTTPServer()
	if hs.ReadTimeout == 0 || hs.WriteTimeout == 0 {
		t.Errorf("expected finite timeouts, got read=%v write=%v", hs.ReadTimeout, hs.WriteTimeout)
	}
}
