package stream

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"pubgpt-tui/internal/protocol"
)

// Request describes one question sent to the streaming endpoint. The
// clarification round reuses the same transport: when Clarification is set
// the context travels as a JSON-encoded query parameter.
type Request struct {
	Question            string
	UserID              int
	SessionID           string
	ChartDemanded       bool
	ExplanationDemanded bool
	SelectedColumns     []string
	Clarification       *protocol.ClarificationContext
}

// Validate fails fast on programming errors, before any network activity.
func (r Request) Validate() error {
	if r.UserID <= 0 {
		return ErrMissingUser
	}
	if strings.TrimSpace(r.Question) == "" {
		return ErrEmptyQuestion
	}
	return nil
}

// encode builds the query string of the streaming GET request.
func (r Request) encode() (string, error) {
	params := url.Values{}
	params.Set("question", r.Question)
	params.Set("userId", strconv.Itoa(r.UserID))
	if r.SessionID != "" {
		params.Set("sessionId", r.SessionID)
	}
	params.Set("isChartDemanded", strconv.FormatBool(r.ChartDemanded))
	params.Set("isExplanationDemanded", strconv.FormatBool(r.ExplanationDemanded))
	if len(r.SelectedColumns) > 0 {
		params.Set("selectedColumns", strings.Join(r.SelectedColumns, ","))
	}
	if r.Clarification != nil {
		blob, err := json.Marshal(r.Clarification)
		if err != nil {
			return "", fmt.Errorf("marshal clarification context: %w", err)
		}
		params.Set("clarificationJson", string(blob))
	}
	return params.Encode(), nil
}
