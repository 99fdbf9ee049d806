package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	neturl "net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pubgpt-tui/internal/protocol"
)

// sseHandler writes scripted SSE frames for the streaming endpoint.
func sseHandler(t *testing.T, frames []string, captureQuery *string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if captureQuery != nil {
			*captureQuery = r.URL.RawQuery
		}
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		require.True(t, ok, "httptest response writer must support flushing")
		for _, frame := range frames {
			fmt.Fprint(w, frame)
			flusher.Flush()
		}
	}
}

func frame(step, data string) string {
	return fmt.Sprintf("event: %s\ndata: {\"step\":\"%s\",\"message\":\"m\",\"data\":%s,\"timestamp\":\"2024-01-01T00:00:00Z\"}\n\n", step, step, data)
}

func collect(t *testing.T, events <-chan protocol.StreamEvent, errs <-chan error) ([]protocol.StreamEvent, error) {
	t.Helper()
	var got []protocol.StreamEvent
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				// Drain a possible trailing error.
				select {
				case err := <-errs:
					return got, err
				case <-time.After(100 * time.Millisecond):
					return got, nil
				}
			}
			got = append(got, ev)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for stream")
		}
	}
}

func TestStreamDeliversEventsInOrder(t *testing.T) {
	frames := []string{
		frame("session_created", `{"sessionId":"s1"}`),
		frame("intent", `{}`),
		frame("intent_result", `{}`),
		frame("result", `{"sessionId":"s1","answer":"ok","queryResults":[]}`),
	}
	srv := httptest.NewServer(http.HandlerFunc(sseHandler(t, frames, nil)))
	defer srv.Close()

	c := NewClient(srv.URL)
	events, errs, err := c.Stream(context.Background(), Request{Question: "q", UserID: 7})
	require.NoError(t, err)

	got, streamErr := collect(t, events, errs)
	require.NoError(t, streamErr)
	require.Len(t, got, 4)
	assert.Equal(t, protocol.KindSessionCreated, got[0].Step)
	assert.Equal(t, protocol.KindIntent, got[1].Step)
	assert.Equal(t, protocol.KindIntentResult, got[2].Step)
	assert.Equal(t, protocol.KindResult, got[3].Step)
}

func TestStreamStopsAtTerminalEvent(t *testing.T) {
	// Frames after the terminal error must never be delivered.
	frames := []string{
		frame("intent", `{}`),
		frame("error", `{}`),
		frame("workspace", `{}`),
	}
	srv := httptest.NewServer(http.HandlerFunc(sseHandler(t, frames, nil)))
	defer srv.Close()

	c := NewClient(srv.URL)
	events, errs, err := c.Stream(context.Background(), Request{Question: "q", UserID: 1})
	require.NoError(t, err)

	got, streamErr := collect(t, events, errs)
	require.NoError(t, streamErr)
	require.Len(t, got, 2)
	assert.Equal(t, protocol.KindError, got[1].Step)
}

func TestStreamStopsAtAmbiguity(t *testing.T) {
	frames := []string{
		frame("intent", `{}`),
		frame("ambiguity_detected", `{"hasAmbiguity":true,"questions":[]}`),
	}
	srv := httptest.NewServer(http.HandlerFunc(sseHandler(t, frames, nil)))
	defer srv.Close()

	c := NewClient(srv.URL)
	events, errs, err := c.Stream(context.Background(), Request{Question: "q", UserID: 1})
	require.NoError(t, err)

	got, streamErr := collect(t, events, errs)
	require.NoError(t, streamErr)
	require.Len(t, got, 2)
	assert.Equal(t, protocol.KindAmbiguityDetected, got[1].Step)
}

func TestStreamMissingUserFailsBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, _, err := c.Stream(context.Background(), Request{Question: "q"})
	require.ErrorIs(t, err, ErrMissingUser)
	assert.False(t, called, "no network activity on precondition failure")
}

func TestStreamMalformedPayloadSurfacesError(t *testing.T) {
	frames := []string{
		frame("intent", `{}`),
		"event: workspace\ndata: {not json\n\n",
	}
	srv := httptest.NewServer(http.HandlerFunc(sseHandler(t, frames, nil)))
	defer srv.Close()

	c := NewClient(srv.URL)
	events, errs, err := c.Stream(context.Background(), Request{Question: "q", UserID: 1})
	require.NoError(t, err)

	got, streamErr := collect(t, events, errs)
	require.Len(t, got, 1)
	require.Error(t, streamErr)
	assert.Contains(t, streamErr.Error(), "malformed event payload")
}

func TestStreamDisconnectSurfacesError(t *testing.T) {
	frames := []string{frame("intent", `{}`)}
	srv := httptest.NewServer(http.HandlerFunc(sseHandler(t, frames, nil)))
	defer srv.Close()

	c := NewClient(srv.URL)
	events, errs, err := c.Stream(context.Background(), Request{Question: "q", UserID: 1})
	require.NoError(t, err)

	got, streamErr := collect(t, events, errs)
	require.Len(t, got, 1)
	require.Error(t, streamErr, "hang-up before a terminal event is a transport failure")
}

func TestStreamCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		fmt.Fprint(w, frame("intent", `{}`))
		flusher.Flush()
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(srv.URL)
	events, errs, err := c.Stream(ctx, Request{Question: "q", UserID: 1})
	require.NoError(t, err)

	ev := <-events
	assert.Equal(t, protocol.KindIntent, ev.Step)

	cancel()

	// The channels close with no trailing error: cancellation is not a
	// failure.
	for range events {
		t.Fatal("no events may be delivered after cancellation")
	}
	select {
	case err, ok := <-errs:
		if ok {
			t.Fatalf("unexpected error after cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error channel did not close")
	}
}

func TestStreamRequestEncoding(t *testing.T) {
	var query string
	frames := []string{frame("result", `{"sessionId":"s1","answer":"ok"}`)}
	srv := httptest.NewServer(http.HandlerFunc(sseHandler(t, frames, &query)))
	defer srv.Close()

	c := NewClient(srv.URL)
	events, errs, err := c.Stream(context.Background(), Request{
		Question:        "Combien de campagnes ?",
		UserID:          42,
		SessionID:       "sess-9",
		ChartDemanded:   true,
		SelectedColumns: []string{"nom", "budget"},
		Clarification: &protocol.ClarificationContext{
			UserAnswers: map[string]string{"Quelle période ?": "Ce mois-ci"},
		},
	})
	require.NoError(t, err)
	_, streamErr := collect(t, events, errs)
	require.NoError(t, streamErr)

	parsed, err := neturl.ParseQuery(query)
	require.NoError(t, err)
	assert.Equal(t, "Combien de campagnes ?", parsed.Get("question"))
	assert.Equal(t, "42", parsed.Get("userId"))
	assert.Equal(t, "sess-9", parsed.Get("sessionId"))
	assert.Equal(t, "true", parsed.Get("isChartDemanded"))
	assert.Equal(t, "false", parsed.Get("isExplanationDemanded"))
	assert.Equal(t, "nom,budget", parsed.Get("selectedColumns"))
	assert.Contains(t, parsed.Get("clarificationJson"), "Ce mois-ci")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/chat/health" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	assert.NoError(t, c.Health(context.Background()))

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer bad.Close()
	assert.Error(t, NewClient(bad.URL).Health(context.Background()))
}
