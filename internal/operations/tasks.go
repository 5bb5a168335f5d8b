package operations

import (
	"context"

	"pkt.systems/pslog"

	"todoistmcp/internal/failure"
	"todoistmcp/internal/service"
)

// Tasks reads and writes tasks and queries the completion history.
type Tasks struct {
	gw     service.Gateway
	logger pslog.Logger
	clock  Clock
}

// NewTasks returns task operations over gw. A nil clock selects the wall
// clock. A nil gw makes every operation fail with NotInitialized.
func NewTasks(gw service.Gateway, logger pslog.Logger, clock Clock) *Tasks {
	if clock == nil {
		clock = wallClock{}
	}
	return &Tasks{gw: gw, logger: orNoop(logger).With("component", "tasks"), clock: clock}
}

// List returns every open task.
func (t *Tasks) List(ctx context.Context) ([]service.Task, error) {
	return t.list(ctx, service.TaskFilter{}, "list tasks")
}

// ListByProject returns the open tasks of one project, filtered by the provider.
func (t *Tasks) ListByProject(ctx context.Context, projectID string) ([]service.Task, error) {
	return t.list(ctx, service.TaskFilter{ProjectID: projectID}, "list tasks of project "+projectID)
}

// ListToday returns open tasks due today or overdue.
func (t *Tasks) ListToday(ctx context.Context) ([]service.Task, error) {
	return t.list(ctx, service.TaskFilter{Query: service.TodayFilter}, "list today's tasks")
}

func (t *Tasks) list(ctx context.Context, filter service.TaskFilter, action string) ([]service.Task, error) {
	if t.gw == nil {
		return nil, errNotInitialized
	}
	tasks, err := t.gw.ListTasks(ctx, filter)
	if err != nil {
		return nil, gatewayError(t.logger, err, action)
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// Get returns one task or a NotFound failure.
func (t *Tasks) Get(ctx context.Context, id string) (service.Task, error) {
	if t.gw == nil {
		return service.Task{}, errNotInitialized
	}
	task, err := t.gw.GetTask(ctx, id)
	if err != nil {
		return service.Task{}, gatewayError(t.logger, err, "get task "+id)
	}
	return task, nil
}

// Create creates a task.
func (t *Tasks) Create(ctx context.Context, params service.CreateTaskParams) (service.Task, error) {
	if t.gw == nil {
		return service.Task{}, errNotInitialized
	}
	if params.Content == "" {
		return service.Task{}, failure.Missing("content")
	}
	task, err := t.gw.CreateTask(ctx, params)
	if err != nil {
		return service.Task{}, gatewayError(t.logger, err, "create task")
	}
	t.logger.Info("task created", "task_id", task.ID, "project_id", task.ProjectID)
	return task, nil
}

// Update applies the supplied fields of patch. An empty patch sends nothing
// and returns the current task.
func (t *Tasks) Update(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	if t.gw == nil {
		return service.Task{}, errNotInitialized
	}
	if patch.IsEmpty() {
		return t.Get(ctx, id)
	}
	task, err := t.gw.UpdateTask(ctx, id, patch)
	if err != nil {
		return service.Task{}, gatewayError(t.logger, err, "update task "+id)
	}
	return task, nil
}

// Delete deletes a task.
func (t *Tasks) Delete(ctx context.Context, id string) error {
	return t.mutate(ctx, id, "delete task "+id, t.gwDelete)
}

// Complete closes a task.
func (t *Tasks) Complete(ctx context.Context, id string) error {
	return t.mutate(ctx, id, "complete task "+id, t.gwClose)
}

// Reopen reopens a completed task.
func (t *Tasks) Reopen(ctx context.Context, id string) error {
	return t.mutate(ctx, id, "reopen task "+id, t.gwReopen)
}

func (t *Tasks) gwDelete(ctx context.Context, id string) error { return t.gw.DeleteTask(ctx, id) }
func (t *Tasks) gwClose(ctx context.Context, id string) error  { return t.gw.CloseTask(ctx, id) }
func (t *Tasks) gwReopen(ctx context.Context, id string) error { return t.gw.ReopenTask(ctx, id) }

// mutate runs a single state-changing gateway call. Success is the absence
// of a fault; nothing is read back.
func (t *Tasks) mutate(ctx context.Context, id, action string, call func(context.Context, string) error) error {
	if t.gw == nil {
		return errNotInitialized
	}
	if err := call(ctx, id); err != nil {
		return gatewayError(t.logger, err, action)
	}
	t.logger.Info("task updated", "action", action)
	return nil
}

// Move forwards exactly the supplied destinations. More than one
// destination is passed through as is.
func (t *Tasks) Move(ctx context.Context, id string, dest service.MoveParams) (service.Task, error) {
	if t.gw == nil {
		return service.Task{}, errNotInitialized
	}
	task, err := t.gw.MoveTask(ctx, id, dest)
	if err != nil {
		return service.Task{}, gatewayError(t.logger, err, "move task "+id)
	}
	return task, nil
}
