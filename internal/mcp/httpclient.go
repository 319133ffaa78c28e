package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/meltforce/fittrack/internal/models"
)

// HTTPClient implements DataSource by calling the FitTrack REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL. The
// key is sent as X-API-Key on every request.
func NewHTTPClient(baseURL, apiKey string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w: %w", path, models.ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, models.ErrNotFound)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("httpclient: %s: %w: %s", path, models.ErrPermissionDenied, body)
	default:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

// The REST API derives the user from the caller's identity, so the userID
// arguments below are ignored.

func (c *HTTPClient) ListPlans(ctx context.Context, _ int) ([]models.WorkoutPlan, error) {
	var plans []models.WorkoutPlan
	if err := c.get(ctx, "/api/v1/plans", nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (c *HTTPClient) GetPlan(ctx context.Context, _ int, id string) (*models.WorkoutPlan, error) {
	var p models.WorkoutPlan
	if err := c.get(ctx, "/api/v1/plans/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FindPlanByName picks the most recently updated plan with the name.
func (c *HTTPClient) FindPlanByName(ctx context.Context, userID int, name string) (*models.WorkoutPlan, error) {
	plans, err := c.ListPlans(ctx, userID)
	if err != nil {
		return nil, err
	}
	var found *models.WorkoutPlan
	for i := range plans {
		if plans[i].Name != name {
			continue
		}
		if found == nil || plans[i].UpdatedAt.After(found.UpdatedAt) {
			found = &plans[i]
		}
	}
	if found == nil {
		return nil, fmt.Errorf("plan %q: %w", name, models.ErrNotFound)
	}
	return found, nil
}

func (c *HTTPClient) ListCompletedWorkouts(ctx context.Context, _ int, limit int) ([]models.CompletedWorkout, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))

	var records []models.CompletedWorkout
	if err := c.get(ctx, "/api/v1/history", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (c *HTTPClient) GetCompletedWorkoutsForDate(ctx context.Context, _ int, day time.Time) ([]models.CompletedWorkout, error) {
	params := url.Values{}
	params.Set("date", day.Format(time.DateOnly))

	var records []models.CompletedWorkout
	if err := c.get(ctx, "/api/v1/history", params, &records); err != nil {
		return nil, err
	}
	return records, nil
}
