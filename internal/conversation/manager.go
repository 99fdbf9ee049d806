// Package conversation owns the per-session message list and the state
// machine that folds stream events into it. All mutation happens on the
// single event-processing path: the caller delivers one event at a time and
// no locking is needed.
package conversation

import (
	"context"
	"encoding/json"
	"time"

	"pubgpt-tui/internal/answer"
	"pubgpt-tui/internal/checklist"
	"pubgpt-tui/internal/logging"
	"pubgpt-tui/internal/protocol"
	"pubgpt-tui/internal/stream"
)

// Status is the orchestration state of the in-flight question.
type Status int

const (
	StatusIdle Status = iota
	StatusAwaitingFirstEvent
	StatusStreaming
	StatusCompleted
	StatusFailed
	StatusAmbiguityPending
)

// User-facing failure texts.
const (
	genericFailureText      = "Désolé, une erreur est survenue lors du traitement de votre question."
	errorPrefix             = "Erreur: "
	unresolvedAmbiguityText = "Je n'ai pas pu lever l'ambiguïté de votre question malgré vos précisions. Merci de la reformuler."
)

// Streamer opens one event connection per question. *stream.Client is the
// production implementation.
type Streamer interface {
	Stream(ctx context.Context, r stream.Request) (<-chan protocol.StreamEvent, <-chan error, error)
}

// Identity exposes the current caller synchronously. Absence of a caller is
// a precondition failure: no connection is opened without one.
type Identity interface {
	CurrentUserID() (int, error)
}

// SubmitOptions are the per-question feature flags.
type SubmitOptions struct {
	ChartDemanded       bool
	ExplanationDemanded bool
	SelectedColumns     []string
}

// Connection ties one in-flight question to its event stream. The Manager
// only applies events from its active connection; events from a superseded
// connection are dropped, never routed to another question's turn.
type Connection struct {
	Events <-chan protocol.StreamEvent
	Errs   <-chan error
	cancel context.CancelFunc
}

// Cancel closes the underlying stream. No further events are delivered;
// state already applied stays.
func (c *Connection) Cancel() {
	if c != nil && c.cancel != nil {
		c.cancel()
	}
}

// Manager is the conversation orchestrator.
type Manager struct {
	streamer Streamer
	identity Identity
	log      *logging.Logger

	turns        []*Turn
	status       Status
	sessionID    string
	lastResponse *protocol.ChatResponse

	conn      *Connection
	current   *Turn // in-flight assistant turn, nil until the first non-session event
	question  string
	opts      SubmitOptions
	clarified bool
	ambiguity *AmbiguitySession
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = l
	}
}

// NewManager creates an orchestrator over the given stream client and
// identity source.
func NewManager(streamer Streamer, identity Identity, opts ...ManagerOption) *Manager {
	m := &Manager{
		streamer: streamer,
		identity: identity,
		log:      logging.Nop(),
		status:   StatusIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Turns returns the visible conversation. The slice is owned by the
// Manager; callers must not mutate it.
func (m *Manager) Turns() []*Turn { return m.turns }

// Status returns the orchestration state of the in-flight question.
func (m *Manager) Status() Status { return m.status }

// SessionID returns the pipeline session identifier, if one was announced.
func (m *Manager) SessionID() string { return m.sessionID }

// LastResponse returns the most recent structured answer, for auxiliary
// actions such as SQL inspection or export. Last-write-wins across
// questions.
func (m *Manager) LastResponse() *protocol.ChatResponse { return m.lastResponse }

// Ambiguity returns the pending clarification exchange, if any.
func (m *Manager) Ambiguity() *AmbiguitySession { return m.ambiguity }

// Submit starts a new question: opens the event connection, then appends
// the user turn. A failed open leaves the transcript untouched. A
// still-open prior connection is cancelled first; its events can no longer
// reach any turn.
func (m *Manager) Submit(ctx context.Context, question string, opts SubmitOptions) (*Connection, error) {
	userID, err := m.identity.CurrentUserID()
	if err != nil {
		return nil, err
	}

	req := stream.Request{
		Question:            question,
		UserID:              userID,
		SessionID:           m.sessionID,
		ChartDemanded:       opts.ChartDemanded,
		ExplanationDemanded: opts.ExplanationDemanded,
		SelectedColumns:     opts.SelectedColumns,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if m.conn != nil {
		m.Cancel()
	}

	conn, err := m.open(ctx, req)
	if err != nil {
		// Nothing reached the backend; the transcript stays untouched.
		return nil, err
	}

	m.turns = append(m.turns, newUserTurn(question))
	m.question = question
	m.opts = opts
	m.clarified = false
	m.ambiguity = nil

	return conn, nil
}

// Resolve answers the pending clarification questions and issues the
// second, independent streaming request carrying the clarification context.
// At most one clarification round happens per question.
func (m *Manager) Resolve(ctx context.Context, sheet AnswerSheet) (*Connection, error) {
	if m.status != StatusAmbiguityPending || m.ambiguity == nil {
		return nil, ErrNoAmbiguity
	}

	userID, err := m.identity.CurrentUserID()
	if err != nil {
		return nil, err
	}

	session := m.ambiguity
	m.question = session.OriginalQuestion
	m.clarified = true
	m.ambiguity = nil

	return m.open(ctx, stream.Request{
		Question:            session.OriginalQuestion,
		UserID:              userID,
		SessionID:           m.sessionID,
		ChartDemanded:       m.opts.ChartDemanded,
		ExplanationDemanded: m.opts.ExplanationDemanded,
		SelectedColumns:     m.opts.SelectedColumns,
		Clarification:       sheet.Context(session.Questions),
	})
}

// DismissAmbiguity cancels the clarification exchange. The pending turn was
// already discarded; the conversation returns to idle with no other side
// effects.
func (m *Manager) DismissAmbiguity() {
	m.ambiguity = nil
	if m.status == StatusAmbiguityPending {
		m.status = StatusIdle
	}
}

// Cancel closes the in-flight connection, if any. State already applied
// from delivered events stays; the pending turn just stops streaming.
func (m *Manager) Cancel() {
	if m.conn == nil {
		return
	}
	m.conn.Cancel()
	m.conn = nil
	m.current.finish()
	m.current = nil
	m.status = StatusIdle
}

func (m *Manager) open(ctx context.Context, req stream.Request) (*Connection, error) {
	streamCtx, cancel := context.WithCancel(ctx)
	events, errs, err := m.streamer.Stream(streamCtx, req)
	if err != nil {
		cancel()
		m.status = StatusIdle
		return nil, err
	}

	conn := &Connection{Events: events, Errs: errs, cancel: cancel}
	m.conn = conn
	m.current = nil
	m.status = StatusAwaitingFirstEvent
	return conn, nil
}

// HandleEvent applies one stream event. Events from a connection other than
// the active one are dropped: each question's events only ever reach the
// turn created for that question.
func (m *Manager) HandleEvent(conn *Connection, ev protocol.StreamEvent) {
	if conn == nil || conn != m.conn {
		return
	}

	outcome, err := protocol.Normalize(ev)
	if err != nil {
		m.log.Warn("terminal payload rejected", "step", ev.Step, "err", err)
		m.failTransport()
		return
	}

	switch outcome.Kind {
	case protocol.OutcomeNone:
		m.progress(ev)
	case protocol.OutcomeResult:
		m.complete(outcome.Response)
	case protocol.OutcomeError:
		m.failPipeline(outcome.ErrorText)
	case protocol.OutcomeAmbiguity:
		m.ambiguous(outcome.Ambiguity)
	}
}

// HandleFailure applies a transport-level stream failure (disconnect, parse
// error). Retrying is the user's call, via a fresh submission.
func (m *Manager) HandleFailure(conn *Connection, err error) {
	if conn == nil || conn != m.conn {
		return
	}
	m.log.Warn("stream failed", "err", err)
	m.failTransport()
}

// HandleClosed notes that the event channel closed. After a terminal event
// this is a no-op; a close with no terminal event observed counts as a
// transport failure.
func (m *Manager) HandleClosed(conn *Connection) {
	if conn == nil || conn != m.conn {
		return
	}
	m.failTransport()
}

// progress applies a progress-only event.
func (m *Manager) progress(ev protocol.StreamEvent) {
	// session_created is purely informational for the whole turn lifetime:
	// no assistant turn, no phase transitions.
	if ev.Step == protocol.KindSessionCreated {
		var payload protocol.SessionCreated
		if err := json.Unmarshal(ev.Data, &payload); err == nil && payload.SessionID != "" {
			m.sessionID = payload.SessionID
		}
		return
	}

	t := m.ensureAssistantTurn()
	t.Checklist = checklist.Apply(t.Checklist, ev.Step)
	t.ViewMode = checklist.NextMode(t.ViewMode, ev.Step)

	if ev.Step == protocol.KindOrchestratorReasoning {
		var payload protocol.OrchestratorReasoning
		if err := json.Unmarshal(ev.Data, &payload); err == nil && payload.Reasoning != "" {
			t.Reasoning = payload.Reasoning
		}
	}

	if ev.Message != "" {
		t.StepMessages = append(t.StepMessages, ev.Message)
	}
}

// complete applies a non-ambiguous terminal result.
func (m *Manager) complete(resp *protocol.ChatResponse) {
	t := m.ensureAssistantTurn()

	res := answer.Extract(resp.Answer, resp.QueryResults, resp.ChartData)
	t.Text = res.Text
	t.Shape = res.Shape
	t.Response = resp
	t.Rows = resp.QueryResults
	t.Chart = resp.ChartData
	t.Checklist = checklist.Apply(t.Checklist, protocol.KindResult)

	m.lastResponse = resp
	if resp.SessionID != "" {
		m.sessionID = resp.SessionID
	}

	t.finish()
	m.status = StatusCompleted
	m.endStream()
}

// failPipeline applies a terminal error event reported by the pipeline.
func (m *Manager) failPipeline(message string) {
	t := m.ensureAssistantTurn()
	if message != "" {
		t.Text = errorPrefix + message
	} else {
		t.Text = genericFailureText
	}
	t.finish()
	m.status = StatusFailed
	m.endStream()
}

// failTransport applies a transport-level failure.
func (m *Manager) failTransport() {
	t := m.ensureAssistantTurn()
	t.Text = genericFailureText
	t.finish()
	m.status = StatusFailed
	m.endStream()
}

// ambiguous applies an ambiguity outcome, whichever delivery path it took.
// The in-flight assistant turn carries no useful partial answer and is
// discarded from the visible conversation. The second round gets no third
// chance: persistent ambiguity is a terminal failure.
func (m *Manager) ambiguous(amb *protocol.AmbiguityResponse) {
	// An ambiguity outcome with no questions cannot be clarified; treat it
	// as a pipeline failure rather than opening an unanswerable session.
	if len(amb.Questions) == 0 {
		m.log.Warn("ambiguity outcome without questions")
		m.failPipeline("")
		return
	}

	if m.clarified {
		t := m.ensureAssistantTurn()
		t.Text = unresolvedAmbiguityText
		t.finish()
		m.status = StatusFailed
		m.endStream()
		return
	}

	m.discardCurrentTurn()
	m.ambiguity = &AmbiguitySession{
		OriginalQuestion: m.question,
		Questions:        amb.Questions,
	}
	m.status = StatusAmbiguityPending
	m.endStream()
}

// ensureAssistantTurn lazily creates the assistant turn at the first
// non-session event and moves the machine to Streaming.
func (m *Manager) ensureAssistantTurn() *Turn {
	if m.current == nil {
		m.current = newAssistantTurn()
		m.turns = append(m.turns, m.current)
		m.status = StatusStreaming
	}
	return m.current
}

// discardCurrentTurn removes the in-flight assistant turn from the visible
// list.
func (m *Manager) discardCurrentTurn() {
	if m.current == nil {
		return
	}
	for i := len(m.turns) - 1; i >= 0; i-- {
		if m.turns[i] == m.current {
			m.turns = append(m.turns[:i], m.turns[i+1:]...)
			break
		}
	}
	m.current.finish()
	m.current = nil
}

// endStream releases the finished connection. The stream manager already
// closed the wire; cancelling here only frees the context.
func (m *Manager) endStream() {
	if m.conn != nil {
		m.conn.Cancel()
	}
	m.conn = nil
	m.current = nil
}

// RestoredMessage is one message rehydrated from persisted history,
// bypassing the streaming path entirely.
type RestoredMessage struct {
	Role         Role
	Content      string
	Timestamp    time.Time
	Rows         []map[string]any
	GeneratedSQL string
}

// Restore replaces the conversation with persisted history. Restored
// assistant turns are finished turns: they never stream.
func (m *Manager) Restore(sessionID string, msgs []RestoredMessage) {
	m.Cancel()
	m.DismissAmbiguity()
	m.sessionID = sessionID
	m.lastResponse = nil
	m.turns = nil

	for _, msg := range msgs {
		if msg.Role == RoleUser {
			t := newUserTurn(msg.Content)
			t.Timestamp = msg.Timestamp
			m.turns = append(m.turns, t)
			continue
		}

		t := newAssistantTurn()
		t.Timestamp = msg.Timestamp
		res := answer.Extract(msg.Content, msg.Rows, nil)
		t.Text = res.Text
		t.Shape = res.Shape
		t.Rows = msg.Rows
		if msg.GeneratedSQL != "" || len(msg.Rows) > 0 {
			t.Response = &protocol.ChatResponse{
				SessionID:    sessionID,
				Answer:       msg.Content,
				GeneratedSQL: msg.GeneratedSQL,
				QueryResults: msg.Rows,
			}
		}
		t.finish()
		m.turns = append(m.turns, t)
	}
	m.status = StatusIdle
}
