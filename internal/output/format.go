// Package output renders results for protocol clients.
package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"todoistmcp/internal/service"
)

// JSON renders v as two-space indented JSON.
func JSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ProjectCreated confirms a new project.
func ProjectCreated(p service.Project) string {
	return fmt.Sprintf("Created project %s (ID: %s)", Title(p.Name), p.ID)
}

// ProjectUpdated confirms a project update.
func ProjectUpdated(p service.Project) string {
	return fmt.Sprintf("Updated project %s (ID: %s)", Title(p.Name), p.ID)
}

// ProjectDeleted confirms a project deletion.
func ProjectDeleted(id string) string {
	return fmt.Sprintf("Project %s deleted successfully", id)
}

// TaskCreated confirms a new task.
func TaskCreated(t service.Task) string {
	return fmt.Sprintf("Created task %s (ID: %s)", Title(t.Content), t.ID)
}

// TaskUpdated confirms a task update.
func TaskUpdated(t service.Task) string {
	return fmt.Sprintf("Updated task %s (ID: %s)", Title(t.Content), t.ID)
}

// TaskDeleted confirms a task deletion.
func TaskDeleted(id string) string {
	return fmt.Sprintf("Task %s deleted successfully", id)
}

// TaskCompleted confirms a task completion.
func TaskCompleted(id string) string {
	return fmt.Sprintf("Task %s completed successfully", id)
}

// TaskReopened confirms a task reopening.
func TaskReopened(id string) string {
	return fmt.Sprintf("Task %s reopened successfully", id)
}

// TaskMoved confirms a move, naming every destination that was requested.
func TaskMoved(id string, dest service.MoveParams) string {
	var parts []string
	if dest.ProjectID != "" {
		parts = append(parts, "project "+dest.ProjectID)
	}
	if dest.SectionID != "" {
		parts = append(parts, "section "+dest.SectionID)
	}
	if dest.ParentID != "" {
		parts = append(parts, "parent task "+dest.ParentID)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Task %s moved", id)
	}
	return fmt.Sprintf("Task %s moved to %s", id, strings.Join(parts, ", "))
}

// Title normalizes an entity name for display.
// - Empty or whitespace-only names become "(untitled)"
// - Newlines are replaced with spaces
func Title(name string) string {
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.ReplaceAll(name, "\n", " ")
	if strings.TrimSpace(name) == "" {
		return "(untitled)"
	}
	return name
}
