package checklist

import "pubgpt-tui/internal/protocol"

// ViewMode decides whether a turn's checklist shows the classic
// sql_generation phase or the orchestration phase. The decision is
// path-dependent: orchestrated wins the instant any orchestrator event is
// seen and holds for the remainder of the turn.
type ViewMode int

const (
	ModeUnset ViewMode = iota
	ModeClassic
	ModeOrchestrated
)

// NextMode folds one event kind into the mode.
func NextMode(mode ViewMode, kind protocol.EventKind) ViewMode {
	if mode == ModeOrchestrated {
		return ModeOrchestrated
	}
	if protocol.IsOrchestrator(kind) {
		return ModeOrchestrated
	}
	if mode == ModeUnset {
		if p, ok := PhaseFor(kind); ok && (p == PhaseSQLGeneration || IsSubPhase(p)) {
			return ModeClassic
		}
	}
	return mode
}

// Visible reports whether a top-level phase should be displayed under the
// given mode. Orchestration is hidden until the orchestrated mode is
// entered; from then on the classic sql_generation phase is hidden instead.
func Visible(p Phase, mode ViewMode) bool {
	switch p {
	case PhaseOrchestration:
		return mode == ModeOrchestrated
	case PhaseSQLGeneration:
		return mode != ModeOrchestrated
	}
	return true
}
