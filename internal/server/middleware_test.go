package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/fittrack/internal/logging"
	"github.com/meltforce/fittrack/internal/metrics"
	"tailscale.com/client/tailscale/apitype"
	"tailscale.com/tailcfg"
)

type fakeWhoIs struct {
	login string
	err   error
}

func (f fakeWhoIs) WhoIs(context.Context, string) (*apitype.WhoIsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &apitype.WhoIsResponse{UserProfile: &tailcfg.UserProfile{LoginName: f.login, DisplayName: "Alice"}}, nil
}

type fakeUsers struct {
	ids map[string]int
	err error
}

func (f *fakeUsers) GetOrCreateUser(_ context.Context, login, _ string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	if id, ok := f.ids[login]; ok {
		return id, nil
	}
	id := len(f.ids) + 2
	f.ids[login] = id
	return id, nil
}

// TestDevIdentity verifies that every request runs as the local dev user.
func TestDevIdentity(t *testing.T) {
	var gotUserID int
	var gotInfo UserInfo
	handler := DevIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = userIDFromContext(r)
		gotInfo = userInfoFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if gotUserID != 1 {
		t.Errorf("userID = %d, want 1", gotUserID)
	}
	if gotInfo.Login != "local" {
		t.Errorf("login = %q, want %q", gotInfo.Login, "local")
	}
}

// TestUserFromContextDefault verifies the fallback identity when no
// middleware has run.
func TestUserFromContextDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := userIDFromContext(req); id != 1 {
		t.Errorf("userIDFromContext = %d, want 1", id)
	}
	if info := userInfoFromContext(req); info.DisplayName != "Local Dev User" {
		t.Errorf("displayName = %q, want %q", info.DisplayName, "Local Dev User")
	}
}

func TestAPIKeyAuth(t *testing.T) {
	handler := APIKeyAuth("secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		key  string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"wrong", http.StatusForbidden},
		{"secret", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.key != "" {
			req.Header.Set("X-API-Key", tt.key)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Errorf("key %q: status = %d, want %d", tt.key, rec.Code, tt.want)
		}
	}
}

// TestTailscaleIdentity verifies that a tailnet login is mapped to a local
// user and that unknown callers are rejected.
func TestTailscaleIdentity(t *testing.T) {
	users := &fakeUsers{ids: map[string]int{}}
	var gotUserID int
	var gotInfo UserInfo
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = userIDFromContext(r)
		gotInfo = userInfoFromContext(r)
	})

	handler := TailscaleIdentity(fakeWhoIs{login: "alice@example.com"}, users, logging.Discard())(next)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUserID != 2 {
		t.Errorf("userID = %d, want 2", gotUserID)
	}
	if gotInfo.Login != "alice@example.com" || gotInfo.DisplayName != "Alice" {
		t.Errorf("info = %+v", gotInfo)
	}

	handler = TailscaleIdentity(fakeWhoIs{err: errors.New("no peer")}, users, logging.Discard())(next)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("whois failure: status = %d, want 401", rec.Code)
	}

	failing := &fakeUsers{ids: map[string]int{}, err: errors.New("db down")}
	handler = TailscaleIdentity(fakeWhoIs{login: "bob@example.com"}, failing, logging.Discard())(next)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("resolver failure: status = %d, want 500", rec.Code)
	}
}

// TestRequestLogging verifies that the logging middleware passes the
// response through and logs the captured status.
func TestRequestLogging(t *testing.T) {
	var buf strings.Builder
	log := slog.New(logging.NewHandler(&buf, "info", true))
	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if !strings.Contains(buf.String(), `"status":201`) {
		t.Errorf("log line %q lacks the status", buf.String())
	}
}

// TestRequestMetrics verifies that requests are counted under their route
// pattern.
func TestRequestMetrics(t *testing.T) {
	m, reg := metrics.NewTestManagerAndRegistry()
	r := chi.NewRouter()
	r.Use(RequestMetrics(m))
	r.Get("/plans/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for range 2 {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/plans/abc", nil))
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	var count float64
	var route string
	for _, f := range families {
		switch f.GetName() {
		case "fittrack_test_requests_total":
			count = f.GetMetric()[0].GetCounter().GetValue()
		case "fittrack_test_request_duration_seconds":
			for _, l := range f.GetMetric()[0].GetLabel() {
				if l.GetName() == "route" {
					route = l.GetValue()
				}
			}
		}
	}
	if count != 2 {
		t.Errorf("requests_total = %v, want 2", count)
	}
	if route != "/plans/{id}" {
		t.Errorf("route label = %q, want %q", route, "/plans/{id}")
	}
}

// TestCORSHeaders verifies that CORS headers are set on responses.
func TestCORSHeaders(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "DELETE") {
		t.Errorf("CORS methods = %q, want DELETE included", got)
	}
}

// TestCORSPreflight verifies that OPTIONS requests get 204 with CORS headers.
func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called for OPTIONS")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
