// Package checklist projects raw pipeline events onto a fixed, ordered list
// of named phases for progress display. The projection is a pure reducer:
// the conversation layer owns the state, this package only computes the next
// one.
package checklist

import "pubgpt-tui/internal/protocol"

// Phase identifies one stage of the pipeline in the progress display.
type Phase string

const (
	PhaseIntent        Phase = "intent"
	PhaseWorkspace     Phase = "workspace"
	PhaseSchema        Phase = "schema"
	PhaseSQLExamples   Phase = "sql_examples"
	PhaseSQLGeneration Phase = "sql_generation"
	PhaseOrchestration Phase = "orchestration"
	PhaseExecution     Phase = "execution"
	PhaseAnswer        Phase = "answer"

	// Planner sub-phases, a nested refinement of PhaseSQLGeneration.
	SubPlannerStrategy  Phase = "planner_strategy"
	SubPlannerThinking  Phase = "planner_thinking"
	SubPlannerSynthesis Phase = "planner_synthesis"
)

// Phases is the display order of the top-level phases.
var Phases = []Phase{
	PhaseIntent,
	PhaseWorkspace,
	PhaseSchema,
	PhaseSQLExamples,
	PhaseSQLGeneration,
	PhaseOrchestration,
	PhaseExecution,
	PhaseAnswer,
}

// PlannerSubPhases is the display order of the planner refinement.
var PlannerSubPhases = []Phase{
	SubPlannerStrategy,
	SubPlannerThinking,
	SubPlannerSynthesis,
}

// Labels holds the display label of each phase.
var Labels = map[Phase]string{
	PhaseIntent:         "Analyse de l'intention",
	PhaseWorkspace:      "Identification du contexte",
	PhaseSchema:         "Recherche des schémas",
	PhaseSQLExamples:    "Recherche d'exemples SQL",
	PhaseSQLGeneration:  "Génération de la requête SQL",
	PhaseOrchestration:  "Orchestration",
	PhaseExecution:      "Exécution de la requête",
	PhaseAnswer:         "Génération de la réponse",
	SubPlannerStrategy:  "Planner: établir stratégie",
	SubPlannerThinking:  "Planner: Thinking",
	SubPlannerSynthesis: "Planner: Synthétisation",
}

// ItemState is the state of one phase.
type ItemState int

const (
	Pending ItemState = iota
	Active
	Done
	Skipped
)

// phaseFor maps an event kind to the phase it advances. Kinds with no phase
// (session_created, error, result-level chart events routed to answer, ...)
// return ok=false and leave the projection untouched.
var phaseFor = map[protocol.EventKind]Phase{
	protocol.KindIntent:       PhaseIntent,
	protocol.KindIntentResult: PhaseIntent,

	protocol.KindWorkspace:         PhaseWorkspace,
	protocol.KindWorkspaceResult:   PhaseWorkspace,
	protocol.KindWorkspaceFallback: PhaseWorkspace,

	protocol.KindTableSearch:           PhaseSchema,
	protocol.KindTableSearchResult:     PhaseSchema,
	protocol.KindFKExpansion:           PhaseSchema,
	protocol.KindFKExpansionResult:     PhaseSchema,
	protocol.KindSchemaRetrieval:       PhaseSchema,
	protocol.KindSchemaRetrievalResult: PhaseSchema,

	protocol.KindSQLExamples:       PhaseSQLExamples,
	protocol.KindSQLExamplesResult: PhaseSQLExamples,

	protocol.KindSQLGeneration:       PhaseSQLGeneration,
	protocol.KindSQLPreview:          PhaseSQLGeneration,
	protocol.KindConfidenceScore:     PhaseSQLGeneration,
	protocol.KindAmbiguityDetected:   PhaseSQLGeneration,
	protocol.KindAmbiguityResolution: PhaseSQLGeneration,
	protocol.KindPlannerRequested:    PhaseSQLGeneration,
	protocol.KindPlannerExecution:    PhaseSQLGeneration,
	protocol.KindPlannerCompleted:    PhaseSQLGeneration,

	protocol.KindPlannerStrategy:  SubPlannerStrategy,
	protocol.KindPlannerThinking:  SubPlannerThinking,
	protocol.KindPlannerSynthesis: SubPlannerSynthesis,

	protocol.KindOrchestrator:          PhaseOrchestration,
	protocol.KindOrchestratorThinking:  PhaseOrchestration,
	protocol.KindOrchestratorPlan:      PhaseOrchestration,
	protocol.KindOrchestratorReasoning: PhaseOrchestration,
	protocol.KindOrchestratorTask:      PhaseOrchestration,
	protocol.KindOrchestratorSynthesis: PhaseOrchestration,

	protocol.KindExecution:       PhaseExecution,
	protocol.KindExecutionResult: PhaseExecution,
	protocol.KindSQLRetry:        PhaseExecution,
	protocol.KindSQLRetrySuccess: PhaseExecution,

	protocol.KindAnswerGeneration: PhaseAnswer,
	protocol.KindChartGeneration:  PhaseAnswer,
	protocol.KindChartGenerated:   PhaseAnswer,
	protocol.KindResult:           PhaseAnswer,
}

// PhaseFor returns the phase advanced by the given event kind.
func PhaseFor(kind protocol.EventKind) (Phase, bool) {
	p, ok := phaseFor[kind]
	return p, ok
}

// IsSubPhase reports whether p is a planner sub-phase.
func IsSubPhase(p Phase) bool {
	switch p {
	case SubPlannerStrategy, SubPlannerThinking, SubPlannerSynthesis:
		return true
	}
	return false
}

// State maps each phase (and sub-phase) to its current item state. Display
// code iterates Phases/PlannerSubPhases, never the map, so iteration order
// of the map is irrelevant.
type State map[Phase]ItemState

// NewState returns a projection with every phase pending.
func NewState() State {
	s := make(State, len(Phases)+len(PlannerSubPhases))
	for _, p := range Phases {
		s[p] = Pending
	}
	for _, p := range PlannerSubPhases {
		s[p] = Pending
	}
	return s
}

// clone copies the state so Apply stays a pure function of its inputs.
func (s State) clone() State {
	next := make(State, len(s))
	for k, v := range s {
		next[k] = v
	}
	return next
}

// settled reports whether the phase reached a terminal item state.
func settled(st ItemState) bool {
	return st == Done || st == Skipped
}

// Apply projects one event onto the prior state and returns the next state.
// Transitions are monotonic per phase: pending→active→done and
// pending→skipped only; a settled phase never moves again. The first
// orchestrator event skips the classic sql_generation phase for the rest of
// the turn (the two are mutually exclusive views of the same work).
func Apply(prior State, kind protocol.EventKind) State {
	phase, ok := PhaseFor(kind)
	if !ok {
		return prior
	}

	next := prior.clone()

	if protocol.IsOrchestrator(kind) && !settled(next[PhaseSQLGeneration]) {
		next[PhaseSQLGeneration] = Skipped
	}

	target := Active
	if protocol.IsCompletion(kind) {
		target = Done
	}
	if !settled(next[phase]) {
		next[phase] = target
	}

	// A sub-phase starting closes the sub-phases before it; the planner
	// reports phases strictly in order but only emits start markers.
	if IsSubPhase(phase) {
		for _, sub := range PlannerSubPhases {
			if sub == phase {
				break
			}
			if !settled(next[sub]) {
				next[sub] = Done
			}
		}
	}

	// planner_completed closes the whole refinement along with its parent.
	if kind == protocol.KindPlannerCompleted {
		for _, sub := range PlannerSubPhases {
			if !settled(next[sub]) && next[sub] != Pending {
				next[sub] = Done
			}
		}
	}

	return next
}

// PlannerActive reports whether any planner sub-phase has been observed.
// The refinement stays hidden until then.
func PlannerActive(s State) bool {
	for _, sub := range PlannerSubPhases {
		if st := s[sub]; st == Active || st == Done {
			return true
		}
	}
	return false
}
