// Package tokens reads per-user token quota statistics. It is a read-only
// collaborator: polling never mutates conversation state.
package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Stats is the backend's view of a user's token budget.
type Stats struct {
	UserID              int     `json:"idUser"`
	TotalTokensConsumed int64   `json:"totalTokensConsumed"`
	MaxTokensAllowed    int64   `json:"maxTokensAllowed"`
	RemainingTokens     int64   `json:"remainingTokens"`
	UsagePercentage     float64 `json:"usagePercentage"`
	QuotaExceeded       bool    `json:"quotaExceeded"`
}

// Client fetches token statistics.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a token stats client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/") + "/api/v1/tokens",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Stats returns the current usage for a user.
func (c *Client) Stats(ctx context.Context, userID int) (*Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user/"+strconv.Itoa(userID), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	var stats Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &stats, nil
}

// Poll emits stats immediately and then on every tick until ctx is done.
// Fetch errors are skipped; the next tick retries.
func (c *Client) Poll(ctx context.Context, userID int, interval time.Duration) <-chan Stats {
	out := make(chan Stats, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fetch := func() {
			stats, err := c.Stats(ctx, userID)
			if err != nil {
				return
			}
			select {
			case out <- *stats:
			case <-ctx.Done():
			}
		}

		fetch()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fetch()
			}
		}
	}()

	return out
}
