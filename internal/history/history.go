// Package history is the client for persisted conversations. It rehydrates
// past turn lists through plain REST calls, bypassing the streaming path
// entirely.
package history

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

	"pubgpt-tui/internal/conversation"
)

// ConversationSummary is one row of the history drawer.
type ConversationSummary struct {
	SessionID      string    `json:"sessionId"`
	Title          string    `json:"title"`
	CreatedAt      time.Time `json:"createdAt"`
	LastAccessedAt time.Time `json:"lastAccessedAt"`
	MessageCount   int       `json:"messageCount"`
	Preview        string    `json:"preview"`
}

// MessageContext carries the execution details persisted with an assistant
// message.
type MessageContext struct {
	GeneratedSQL    string           `json:"generatedSql,omitempty"`
	Intent          string           `json:"intent,omitempty"`
	ResultCount     int              `json:"resultCount,omitempty"`
	ExecutionTimeMs int64            `json:"executionTimeMs,omitempty"`
	QueryResults    []map[string]any `json:"queryResults,omitempty"`
}

// MessageDetail is one persisted message.
type MessageDetail struct {
	MessageID string          `json:"messageId"`
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Timestamp time.Time       `json:"timestamp"`
	Context   *MessageContext `json:"context,omitempty"`
}

// ConversationDetail is a full persisted conversation.
type ConversationDetail struct {
	SessionID      string          `json:"sessionId"`
	Title          string          `json:"title"`
	CreatedAt      time.Time       `json:"createdAt"`
	LastAccessedAt time.Time       `json:"lastAccessedAt"`
	Messages       []MessageDetail `json:"messages"`
}

// Restored maps the persisted messages to conversation turns.
func (d ConversationDetail) Restored() []conversation.RestoredMessage {
	msgs := make([]conversation.RestoredMessage, 0, len(d.Messages))
	for _, m := range d.Messages {
		role := conversation.RoleAssistant
		if strings.EqualFold(m.Role, "user") {
			role = conversation.RoleUser
		}
		restored := conversation.RestoredMessage{
			Role:      role,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
		if m.Context != nil {
			restored.Rows = m.Context.QueryResults
			restored.GeneratedSQL = m.Context.GeneratedSQL
		}
		msgs = append(msgs, restored)
	}
	return msgs
}

// Client talks to the conversation persistence API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a history client for the given backend base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/") + "/api/v1/conversations",
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// List returns the user's conversations, most recent first.
func (c *Client) List(ctx context.Context, userID, limit int) ([]ConversationSummary, error) {
	params := url.Values{}
	params.Set("userId", strconv.Itoa(userID))
	params.Set("limit", strconv.Itoa(limit))

	var result []ConversationSummary
	if err := c.get(ctx, c.baseURL+"?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return result, nil
}

// Get loads one conversation. With withResults the persisted query results
// are included so tables render after rehydration.
func (c *Client) Get(ctx context.Context, sessionID string, withResults bool) (*ConversationDetail, error) {
	params := url.Values{}
	params.Set("withResults", strconv.FormatBool(withResults))

	var result ConversationDetail
	if err := c.get(ctx, c.baseURL+"/"+url.PathEscape(sessionID)+"?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a conversation.
func (c *Client) Delete(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (c *Client) get(ctx context.Context, reqURL string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
