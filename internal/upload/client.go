package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/shukuma/internal/importer"
)

// Client sends storage dumps to a Shukuma server over HTTP.
type Client struct {
	// DisclaimerUser, when set, is who the server credits with a dump's
	// legacy disclaimer flag.
	DisclaimerUser string

	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the Shukuma server. apiKey must
// match the server's auth.api_key.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: strings.TrimRight(serverURL, "/"),
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// SendDump POSTs a dump to the server's import endpoint and returns the
// server's import stats. Transport errors and 5xx responses are retried up
// to 3 times with exponential backoff; other failures return at once.
func (c *Client) SendDump(ctx context.Context, dump []byte, dryRun bool) (*importer.Stats, error) {
	params := url.Values{}
	if dryRun {
		params.Set("dry_run", "true")
	}
	if c.DisclaimerUser != "" {
		params.Set("disclaimer_user", c.DisclaimerUser)
	}
	target := c.serverURL + "/api/v1/import"
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.backoff << uint(attempt-1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(dump))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-API-Key", c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			var stats importer.Stats
			if err := json.Unmarshal(body, &stats); err != nil {
				return nil, fmt.Errorf("decoding import stats: %w", err)
			}
			return &stats, nil
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("import failed (status %d): %s", resp.StatusCode, body)
		default:
			return nil, fmt.Errorf("import rejected (status %d): %s", resp.StatusCode, body)
		}
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}
