package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meltforce/fittrack/internal/models"
)

// newTestServer creates an httptest server that routes requests to handler functions
// keyed by path. Verifies the HTTP client sends correct paths and query params.
func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-API-Key"); got != "k" {
			t.Errorf("X-API-Key = %q, want k", got)
		}
		h, ok := handlers[r.URL.Path]
		if !ok {
			t.Errorf("unexpected request path: %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
}

func writeTestJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatal(err)
	}
}

// TestListPlans verifies the client decodes the plan list.
func TestListPlans(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/plans": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []models.WorkoutPlan{{ID: "p1", Name: "Push Day", Goal: models.GoalGain}})
		},
	})
	defer ts.Close()

	plans, err := NewHTTPClient(ts.URL+"/", "k").ListPlans(context.Background(), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 1 || plans[0].ID != "p1" {
		t.Errorf("plans = %+v, want p1", plans)
	}
}

// TestGetPlanNotFound verifies a 404 maps to models.ErrNotFound.
func TestGetPlanNotFound(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/plans/missing": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		},
	})
	defer ts.Close()

	_, err := NewHTTPClient(ts.URL, "k").GetPlan(context.Background(), 1, "missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestFindPlanByName verifies the newest plan with the name wins.
func TestFindPlanByName(t *testing.T) {
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/plans": func(w http.ResponseWriter, r *http.Request) {
			writeTestJSON(t, w, []models.WorkoutPlan{
				{ID: "old", Name: "Legs", UpdatedAt: older},
				{ID: "new", Name: "Legs", UpdatedAt: older.AddDate(0, 1, 0)},
				{ID: "other", Name: "Arms", UpdatedAt: older.AddDate(1, 0, 0)},
			})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "k")
	p, err := client.FindPlanByName(context.Background(), 1, "Legs")
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "new" {
		t.Errorf("id = %q, want new", p.ID)
	}

	if _, err := client.FindPlanByName(context.Background(), 1, "Core"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestHistoryParams verifies the history calls send date or limit.
func TestHistoryParams(t *testing.T) {
	var gotDate, gotLimit string
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/history": func(w http.ResponseWriter, r *http.Request) {
			gotDate = r.URL.Query().Get("date")
			gotLimit = r.URL.Query().Get("limit")
			writeTestJSON(t, w, []models.CompletedWorkout{{ID: "r1", PlanName: "Legs", DurationSec: 600}})
		},
	})
	defer ts.Close()

	client := NewHTTPClient(ts.URL, "k")
	records, err := client.GetCompletedWorkoutsForDate(context.Background(), 1, time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if gotDate != "2026-10-15" || gotLimit != "" {
		t.Errorf("date=%q limit=%q, want 2026-10-15 and no limit", gotDate, gotLimit)
	}
	if len(records) != 1 || records[0].DurationSec != 600 {
		t.Errorf("records = %+v", records)
	}

	if _, err := client.ListCompletedWorkouts(context.Background(), 1, 5); err != nil {
		t.Fatal(err)
	}
	if gotLimit != "5" || gotDate != "" {
		t.Errorf("date=%q limit=%q, want limit 5 only", gotDate, gotLimit)
	}
}

// TestHTTPClientErrors verifies auth failures and unreachable servers map to
// the model sentinels.
func TestHTTPClientErrors(t *testing.T) {
	ts := newTestServer(t, map[string]http.HandlerFunc{
		"/api/v1/plans": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
		},
	})
	_, err := NewHTTPClient(ts.URL, "k").ListPlans(context.Background(), 1)
	if !errors.Is(err, models.ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}

	ts.Close()
	_, err = NewHTTPClient(ts.URL, "k").ListPlans(context.Background(), 1)
	if !errors.Is(err, models.ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
