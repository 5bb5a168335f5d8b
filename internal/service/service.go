// Package service defines the backend-agnostic gateway to the task provider.
package service

import "context"

// Gateway performs calls against the task provider.
// Operations never talk to the provider directly; they go through this interface.
// List methods always return a plain ordered slice, whatever envelope the provider used.
type Gateway interface {
	ListProjects(ctx context.Context) ([]Project, error)
	GetProject(ctx context.Context, id string) (Project, error)
	CreateProject(ctx context.Context, params CreateProjectParams) (Project, error)

	// UpdateProject sends only the fields set in patch.
	UpdateProject(ctx context.Context, id string, patch ProjectPatch) (Project, error)
	DeleteProject(ctx context.Context, id string) error

	// ListTasks returns open tasks. A non-empty filter.Query selects the
	// provider's filter endpoint; otherwise filter.ProjectID narrows the list.
	ListTasks(ctx context.Context, filter TaskFilter) ([]Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
	CreateTask(ctx context.Context, params CreateTaskParams) (Task, error)
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error)
	DeleteTask(ctx context.Context, id string) error
	CloseTask(ctx context.Context, id string) error
	ReopenTask(ctx context.Context, id string) error
	MoveTask(ctx context.Context, id string, dest MoveParams) (Task, error)

	// GetCompletedTasks queries the completion history, which is a separate
	// surface from the live task endpoints.
	GetCompletedTasks(ctx context.Context, query CompletedQuery) ([]CompletedTask, error)
}
