package tools

import (
	"todoistmcp/internal/operations"
	"todoistmcp/internal/output"
)

// NewCatalog returns a registry holding every tool in catalog order.
func NewCatalog() *Registry {
	r := NewRegistry()
	r.MustRegister(newListProjectsTool())
	r.MustRegister(newListTasksTool())
	r.MustRegister(newCreateProjectTool())
	r.MustRegister(newUpdateProjectTool())
	r.MustRegister(newDeleteProjectTool())
	r.MustRegister(newCreateTaskTool())
	r.MustRegister(newUpdateTaskTool())
	r.MustRegister(newTaskActionTool(
		"delete_todoist_task",
		"Delete a Todoist task.",
		(*operations.Tasks).Delete,
		output.TaskDeleted,
	))
	r.MustRegister(newTaskActionTool(
		"complete_todoist_task",
		"Mark a Todoist task as completed.",
		(*operations.Tasks).Complete,
		output.TaskCompleted,
	))
	r.MustRegister(newTaskActionTool(
		"reopen_todoist_task",
		"Reopen a completed Todoist task.",
		(*operations.Tasks).Reopen,
		output.TaskReopened,
	))
	r.MustRegister(newMoveTaskTool())
	r.MustRegister(newCompletedTool())
	r.MustRegister(newTodayCompletedTool())
	r.MustRegister(newWeekCompletedTool())
	return r
}
