package chat

import (
	"strings"

	"pubgpt-tui/internal/checklist"
	"pubgpt-tui/internal/styles"
)

// RenderChecklist draws the pipeline progress for a streaming turn. Only the
// phases visible under the current view mode are shown; planner sub-steps
// appear indented under SQL generation once the planner has started.
func RenderChecklist(state checklist.State, mode checklist.ViewMode) string {
	var sb strings.Builder

	plannerActive := checklist.PlannerActive(state)

	for _, phase := range checklist.Phases {
		if !checklist.Visible(phase, mode) {
			continue
		}
		sb.WriteString(renderStep(checklist.Labels[phase], state[phase]))
		sb.WriteString("\n")

		if phase == checklist.PhaseSQLGeneration && plannerActive {
			for _, sub := range checklist.PlannerSubPhases {
				if state[sub] == checklist.Pending {
					continue
				}
				sb.WriteString(styles.SubStep.Render(renderStep(checklist.Labels[sub], state[sub])))
				sb.WriteString("\n")
			}
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

func renderStep(label string, st checklist.ItemState) string {
	switch st {
	case checklist.Active:
		return styles.StepActive.Render("◐ " + label)
	case checklist.Done:
		return styles.StepDone.Render("✓ " + label)
	case checklist.Skipped:
		return styles.StepSkipped.Render("– " + label)
	default:
		return styles.StepPending.Render("○ " + label)
	}
}
