package protocol

import (
	"encoding/json"
	"strings"
)

// EventKind names an SSE event emitted by the pipeline. The vocabulary is
// closed: the backend never reuses a name with a different meaning, but new
// kinds may appear and must be ignored gracefully by consumers.
type EventKind string

const (
	KindSessionCreated EventKind = "session_created"

	KindIntent       EventKind = "intent"
	KindIntentResult EventKind = "intent_result"

	KindWorkspace         EventKind = "workspace"
	KindWorkspaceResult   EventKind = "workspace_result"
	KindWorkspaceFallback EventKind = "workspace_fallback"

	KindSQLExamples       EventKind = "sql_examples"
	KindSQLExamplesResult EventKind = "sql_examples_result"

	KindTableSearch           EventKind = "table_search"
	KindTableSearchResult     EventKind = "table_search_result"
	KindFKExpansion           EventKind = "fk_expansion"
	KindFKExpansionResult     EventKind = "fk_expansion_result"
	KindSchemaRetrieval       EventKind = "schema_retrieval"
	KindSchemaRetrievalResult EventKind = "schema_retrieval_result"

	KindSQLGeneration       EventKind = "sql_generation"
	KindSQLPreview          EventKind = "sql_preview"
	KindConfidenceScore     EventKind = "confidence_score"
	KindAmbiguityDetected   EventKind = "ambiguity_detected"
	KindAmbiguityResolution EventKind = "ambiguity_resolution"

	KindPlannerRequested EventKind = "planner_requested"
	KindPlannerExecution EventKind = "planner_execution"
	KindPlannerStrategy  EventKind = "planner_strategy"
	KindPlannerThinking  EventKind = "planner_thinking"
	KindPlannerSynthesis EventKind = "planner_synthesis"
	KindPlannerCompleted EventKind = "planner_completed"

	KindOrchestrator          EventKind = "orchestrator"
	KindOrchestratorThinking  EventKind = "orchestrator_thinking"
	KindOrchestratorPlan      EventKind = "orchestrator_plan"
	KindOrchestratorReasoning EventKind = "orchestrator_reasoning"
	KindOrchestratorTask      EventKind = "orchestrator_task"
	KindOrchestratorSynthesis EventKind = "orchestrator_synthesis"

	KindExecution       EventKind = "execution"
	KindExecutionResult EventKind = "execution_result"
	KindSQLRetry        EventKind = "sql_retry"
	KindSQLRetrySuccess EventKind = "sql_retry_success"

	KindAnswerGeneration EventKind = "answer_generation"
	KindChartGeneration  EventKind = "chart_generation"
	KindChartGenerated   EventKind = "chart_generated"

	KindResult EventKind = "result"
	KindError  EventKind = "error"
)

// Kinds lists every event kind the client subscribes to, in no particular
// order. The mock server and the stream manager share this list.
var Kinds = []EventKind{
	KindSessionCreated,
	KindIntent, KindIntentResult,
	KindWorkspace, KindWorkspaceResult, KindWorkspaceFallback,
	KindSQLExamples, KindSQLExamplesResult,
	KindTableSearch, KindTableSearchResult,
	KindFKExpansion, KindFKExpansionResult,
	KindSchemaRetrieval, KindSchemaRetrievalResult,
	KindSQLGeneration, KindSQLPreview, KindConfidenceScore,
	KindAmbiguityDetected, KindAmbiguityResolution,
	KindPlannerRequested, KindPlannerExecution,
	KindPlannerStrategy, KindPlannerThinking, KindPlannerSynthesis,
	KindPlannerCompleted,
	KindOrchestrator, KindOrchestratorThinking, KindOrchestratorPlan,
	KindOrchestratorReasoning, KindOrchestratorTask, KindOrchestratorSynthesis,
	KindExecution, KindExecutionResult,
	KindSQLRetry, KindSQLRetrySuccess,
	KindAnswerGeneration, KindChartGeneration, KindChartGenerated,
	KindResult, KindError,
}

// IsTerminal reports whether the kind ends the stream. Exactly three kinds
// carry terminating semantics; everything else is progress-only.
func IsTerminal(kind EventKind) bool {
	switch kind {
	case KindResult, KindError, KindAmbiguityDetected:
		return true
	}
	return false
}

// IsCompletion reports whether the kind denotes a finished step rather than
// a step start. The classification is purely name-based: the payload never
// decides checklist transitions.
func IsCompletion(kind EventKind) bool {
	switch kind {
	case KindWorkspaceFallback, KindSQLRetrySuccess, KindPlannerCompleted,
		KindChartGenerated, KindResult:
		return true
	}
	return strings.HasSuffix(string(kind), "_result")
}

// IsOrchestrator reports whether the kind belongs to the orchestrator event
// family. The first such event flips the turn to the orchestrated view.
func IsOrchestrator(kind EventKind) bool {
	return kind == KindOrchestrator || strings.HasPrefix(string(kind), "orchestrator_")
}

// StreamEvent is one SSE event as received from the pipeline. Events arrive
// strictly in emission order over one connection; the client never reorders
// or deduplicates them.
type StreamEvent struct {
	Step      EventKind       `json:"step"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	Timestamp string          `json:"timestamp"`
}
