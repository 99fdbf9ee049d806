// Package stream opens and drives the per-question SSE connection to the
// pipeline. It owns the connection lifetime: exactly one connection per
// call, closed deterministically on a terminal event, a transport error, a
// parse error, or caller cancellation. Events are delivered in the exact
// order received; retry policy belongs to the caller.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pubgpt-tui/internal/logging"
	"pubgpt-tui/internal/protocol"
)

const streamPath = "/api/v1/chat/stream"

var (
	// ErrMissingUser means the caller identity was absent. This is a
	// precondition failure, not a transport one: it is reported before any
	// connection is opened.
	ErrMissingUser = errors.New("stream: missing user id")

	// ErrEmptyQuestion means the question text was blank.
	ErrEmptyQuestion = errors.New("stream: empty question")
)

// Client talks to the pipeline's streaming endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logging.Logger
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client for non-streaming calls.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the HTTP client timeout for non-streaming calls. The
// streaming connection itself never times out; it lives until a terminal
// event or cancellation.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		if client.httpClient == nil {
			client.httpClient = &http.Client{}
		}
		client.httpClient.Timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(client *Client) {
		client.log = l
	}
}

// NewClient creates a streaming client for the given backend base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stream opens one SSE connection for the request and returns the ordered
// event sequence. The event channel closes after the terminal event; a
// transport or parse failure is sent on the error channel instead and also
// closes the stream. Cancelling ctx closes the connection and guarantees no
// further events are delivered.
func (c *Client) Stream(ctx context.Context, r Request) (<-chan protocol.StreamEvent, <-chan error, error) {
	if err := r.Validate(); err != nil {
		return nil, nil, err
	}

	query, err := r.encode()
	if err != nil {
		return nil, nil, err
	}

	reqURL := c.baseURL + streamPath + "?" + query
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Connection", "keep-alive")

	// A dedicated client without timeout: the pipeline can legitimately run
	// for minutes on a hard question.
	sseClient := &http.Client{}
	resp, err := sseClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("open stream: %w", err)
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	c.log.Debug("stream opened", "question", r.Question, "session", r.SessionID,
		"clarified", r.Clarification != nil)

	eventCh := make(chan protocol.StreamEvent, 100)
	errCh := make(chan error, 1)

	go c.consume(ctx, resp.Body, eventCh, errCh)

	return eventCh, errCh, nil
}

// consume reads the SSE wire format and demultiplexes named events into the
// event channel. It terminates on: a terminal event kind, EOF, a read error,
// a malformed payload, or context cancellation.
func (c *Client) consume(ctx context.Context, body io.ReadCloser, eventCh chan<- protocol.StreamEvent, errCh chan<- error) {
	defer close(eventCh)
	defer close(errCh)
	defer body.Close()

	reader := bufio.NewReader(body)
	var eventName string
	var dataLines []string

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if err == io.EOF {
				// The server hung up without a terminal event.
				errCh <- fmt.Errorf("stream closed before terminal event")
				return
			}
			errCh <- fmt.Errorf("read stream: %w", err)
			return
		}

		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			if eventName == "" && len(dataLines) == 0 {
				continue
			}
			done, err := c.dispatch(ctx, eventName, strings.Join(dataLines, "\n"), eventCh)
			if err != nil {
				errCh <- err
				return
			}
			if done {
				return
			}
			eventName = ""
			dataLines = nil
			continue
		}

		if strings.HasPrefix(line, "event:") {
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		} else if strings.HasPrefix(line, "data:") {
			dataLines = append(dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
		// Comment lines (":") and unknown fields are ignored per the SSE spec.
	}
}

// dispatch parses one complete SSE frame and forwards it. It reports
// done=true when the event terminates the stream.
func (c *Client) dispatch(ctx context.Context, name, data string, eventCh chan<- protocol.StreamEvent) (bool, error) {
	if data == "" {
		return false, nil
	}

	var ev protocol.StreamEvent
	if err := json.Unmarshal([]byte(data), &ev); err != nil {
		return false, fmt.Errorf("malformed event payload (%s): %w", name, err)
	}
	if ev.Step == "" {
		ev.Step = protocol.EventKind(name)
	}

	select {
	case <-ctx.Done():
		return true, nil
	case eventCh <- ev:
	}

	if protocol.IsTerminal(ev.Step) {
		c.log.Debug("stream terminated", "step", ev.Step)
		return true, nil
	}
	return false, nil
}

// Health checks the backend's streaming service.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/chat/health", nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status %d", resp.StatusCode)
	}
	return nil
}
