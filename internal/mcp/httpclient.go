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

	"github.com/claude/shukuma/internal/models"
)

// HTTPClient implements DataSource by calling the Shukuma REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server. The user id travels in the X-User-ID
// header; a tailnet server resolves the caller itself and ignores it.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, uid, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}
	if uid != "" {
		req.Header.Set("X-User-ID", uid)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) GetUserWorkouts(ctx context.Context, uid string, limit int) ([]models.WorkoutRecord, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, uid, "/api/v1/me/workouts", params)
	if err != nil {
		return nil, err
	}

	var workouts []models.WorkoutRecord
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode workouts: %w", err)
	}
	return workouts, nil
}

func (c *HTTPClient) GetUserProgress(ctx context.Context, uid string) (models.UserProgress, error) {
	body, err := c.get(ctx, uid, "/api/v1/me/progress", nil)
	if err != nil {
		return models.UserProgress{}, err
	}

	var progress models.UserProgress
	if err := json.Unmarshal(body, &progress); err != nil {
		return models.UserProgress{}, fmt.Errorf("httpclient: decode progress: %w", err)
	}
	return progress, nil
}

func (c *HTTPClient) GetUserStats(ctx context.Context, uid string) (*models.Stats, error) {
	body, err := c.get(ctx, uid, "/api/v1/me/stats", nil)
	if err != nil {
		return nil, err
	}

	var stats models.Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, fmt.Errorf("httpclient: decode stats: %w", err)
	}
	return &stats, nil
}

func (c *HTTPClient) GetUserSettings(ctx context.Context, uid string) (models.Settings, error) {
	body, err := c.get(ctx, uid, "/api/v1/me/settings", nil)
	if err != nil {
		return models.Settings{}, err
	}

	var settings models.Settings
	if err := json.Unmarshal(body, &settings); err != nil {
		return models.Settings{}, fmt.Errorf("httpclient: decode settings: %w", err)
	}
	return settings, nil
}
