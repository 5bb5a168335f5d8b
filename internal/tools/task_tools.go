package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"todoistmcp/internal/failure"
	"todoistmcp/internal/operations"
	"todoistmcp/internal/output"
	"todoistmcp/internal/service"
)

type listTasksParams struct {
	ProjectID string `json:"projectId"`
	Filter    string `json:"filter"`
}

type listTasksTool struct{ descriptor }

func newListTasksTool() *listTasksTool {
	return &listTasksTool{descriptor{
		name:        "get_todoist_tasks",
		description: "List open Todoist tasks. filter=today returns tasks due today or overdue and takes precedence over projectId.",
		schema: object(nil, map[string]*jsonschema.Schema{
			"projectId": str("Only tasks of this project"),
			"filter":    enum("Named filter", "today"),
		}),
	}}
}

func (t *listTasksTool) Run(ctx context.Context, env Env, args Args) (string, error) {
	var p listTasksParams
	if err := args.Decode(&p); err != nil {
		return "", err
	}
	var (
		tasks []service.Task
		err   error
	)
	switch {
	case p.Filter == "today":
		tasks, err = env.Tasks.ListToday(ctx)
	case p.ProjectID != "":
		tasks, err = env.Tasks.ListByProject(ctx, p.ProjectID)
	default:
		tasks, err = env.Tasks.List(ctx)
	}
	if err != nil {
		return "", err
	}
	return output.JSON(tasks)
}

func taskFields(extra map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
	fields := map[string]*jsonschema.Schema{
		"description": str("Task description"),
		"priority":    integer("Priority from 1 (normal) to 4 (urgent)", 1, 4),
		"dueString":   str("Natural language due date, e.g. tomorrow at 9"),
		"dueDate":     str("Due date as YYYY-MM-DD"),
		"labels":      stringList("Label names"),
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

type createTaskParams struct {
	Content     string   `json:"content"`
	Description string   `json:"description"`
	ProjectID   string   `json:"projectId"`
	SectionID   string   `json:"sectionId"`
	ParentID    string   `json:"parentId"`
	Priority    int      `json:"priority"`
	DueString   string   `json:"dueString"`
	DueDate     string   `json:"dueDate"`
	Labels      []string `json:"labels"`
}

type createTaskTool struct{ descriptor }

func newCreateTaskTool() *createTaskTool {
	return &createTaskTool{descriptor{
		name:        "create_todoist_task",
		description: "Create a Todoist task. Without projectId the task goes to the Inbox.",
		schema: object([]string{"content"}, taskFields(map[string]*jsonschema.Schema{
			"content":   str("Task title"),
			"projectId": str("ID of the project"),
			"sectionId": str("ID of the section"),
			"parentId":  str("ID of the parent task"),
		})),
	}}
}

func (t *createTaskTool) Run(ctx context.Context, env Env, args Args) (string, error) {
	var p createTaskParams
	if err := args.Decode(&p); err != nil {
		return "", err
	}
	task, err := env.Tasks.Create(ctx, service.CreateTaskParams{
		Content:     p.Content,
		Description: p.Description,
		ProjectID:   p.ProjectID,
		SectionID:   p.SectionID,
		ParentID:    p.ParentID,
		Priority:    p.Priority,
		DueString:   p.DueString,
		DueDate:     p.DueDate,
		Labels:      p.Labels,
	})
	if err != nil {
		return "", err
	}
	return output.TaskCreated(task), nil
}

type updateTaskParams struct {
	TaskID      string   `json:"taskId"`
	Content     *string  `json:"content"`
	Description *string  `json:"description"`
	Priority    *int     `json:"priority"`
	DueString   *string  `json:"dueString"`
	DueDate     *string  `json:"dueDate"`
	Labels      []string `json:"labels"`
}

type updateTaskTool struct{ descriptor }

func newUpdateTaskTool() *updateTaskTool {
	return &updateTaskTool{descriptor{
		name:        "update_todoist_task",
		description: "Update a Todoist task. Only the supplied fields change.",
		schema: object([]string{"taskId"}, taskFields(map[string]*jsonschema.Schema{
			"taskId":  str("ID of the task to update"),
			"content": str("New title"),
		})),
	}}
}

func (t *updateTaskTool) Run(ctx context.Context, env Env, args Args) (string, error) {
	var p updateTaskParams
	if err := args.Decode(&p); err != nil {
		return "", err
	}
	task, err := env.Tasks.Update(ctx, p.TaskID, service.TaskPatch{
		Content:     p.Content,
		Description: p.Description,
		Priority:    p.Priority,
		DueString:   p.DueString,
		DueDate:     p.DueDate,
		Labels:      p.Labels,
	})
	if err != nil {
		return "", err
	}
	return output.TaskUpdated(task), nil
}

type taskIDParams struct {
	TaskID string `json:"taskId"`
}

// taskActionTool runs a single-id task mutation and confirms it.
type taskActionTool struct {
	descriptor
	act     func(tasks *operations.Tasks, ctx context.Context, id string) error
	confirm func(id string) string
}

func newTaskActionTool(name, description string, act func(*operations.Tasks, context.Context, string) error, confirm func(string) string) *taskActionTool {
	return &taskActionTool{
		descriptor: descriptor{
			name:        name,
			description: description,
			schema: object([]string{"taskId"}, map[string]*jsonschema.Schema{
				"taskId": str("ID of the task"),
			}),
		},
		act:     act,
		confirm: confirm,
	}
}

func (t *taskActionTool) Run(ctx context.Context, env Env, args Args) (string, error) {
	var p taskIDParams
	if err := args.Decode(&p); err != nil {
		return "", err
	}
	if err := t.act(env.Tasks, ctx, p.TaskID); err != nil {
		return "", err
	}
	return t.confirm(p.TaskID), nil
}

type moveTaskParams struct {
	TaskID    string `json:"taskId"`
	ProjectID string `json:"projectId"`
	SectionID string `json:"sectionId"`
	ParentID  string `json:"parentId"`
}

type moveTaskTool struct{ descriptor }

func newMoveTaskTool() *moveTaskTool {
	return &moveTaskTool{descriptor{
		name:        "move_todoist_task",
		description: "Move a Todoist task. Supply one destination: projectId, sectionId or parentId.",
		schema: object([]string{"taskId"}, map[string]*jsonschema.Schema{
			"taskId":    str("ID of the task to move"),
			"projectId": str("Destination project"),
			"sectionId": str("Destination section"),
			"parentId":  str("Destination parent task"),
		}),
	}}
}

// Run forwards every destination supplied. The provider resolves
// precedence when more than one is given.
func (t *moveTaskTool) Run(ctx context.Context, env Env, args Args) (string, error) {
	var p moveTaskParams
	if err := args.Decode(&p); err != nil {
		return "", err
	}
	dest := service.MoveParams{ProjectID: p.ProjectID, SectionID: p.SectionID, ParentID: p.ParentID}
	if len(dest.Fields()) == 0 {
		return "", failure.New(failure.MissingArgument, "missing destination: supply projectId, sectionId or parentId")
	}
	if _, err := env.Tasks.Move(ctx, p.TaskID, dest); err != nil {
		return "", err
	}
	return output.TaskMoved(p.TaskID, dest), nil
}
