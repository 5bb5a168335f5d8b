// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"todoistmcp/internal/service"
)

// FakeGateway is an in-memory implementation of service.Gateway for testing.
type FakeGateway struct {
	mu        sync.RWMutex
	projects  []service.Project
	tasks     []service.Task
	completed []service.CompletedTask
	calls     []string

	// Now drives the today filter and completion timestamps. Defaults to time.Now.
	Now func() time.Time

	// Error injection for testing
	ListProjectsErr  error
	GetProjectErr    error
	CreateProjectErr error
	UpdateProjectErr error
	DeleteProjectErr error
	ListTasksErr     error
	GetTaskErr       error
	CreateTaskErr    error
	UpdateTaskErr    error
	DeleteTaskErr    error
	CloseTaskErr     error
	ReopenTaskErr    error
	MoveTaskErr      error
	CompletedErr     error

	// Last arguments seen, for assertions
	LastTaskFilter     service.TaskFilter
	LastCompletedQuery service.CompletedQuery
	LastPatch          map[string]any
	LastMove           map[string]any
}

// NewFakeGateway creates an empty FakeGateway.
func NewFakeGateway() *FakeGateway {
	return &FakeGateway{Now: time.Now}
}

// AddProject adds a project.
func (f *FakeGateway) AddProject(p service.Project) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects = append(f.projects, p)
}

// AddTask adds a task.
func (f *FakeGateway) AddTask(t service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
}

// AddCompleted adds an entry to the completion history.
func (f *FakeGateway) AddCompleted(c service.CompletedTask) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, c)
}

// Calls returns the names of the gateway methods invoked so far.
func (f *FakeGateway) Calls() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Task returns the stored task with id, including completed ones.
func (f *FakeGateway) Task(id string) (service.Task, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

func (f *FakeGateway) record(name string) {
	f.calls = append(f.calls, name)
}

func (f *FakeGateway) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}

func notFound(kind, id string) error {
	return errors.Wrapf(service.ErrNotFound, "%s %s", kind, id)
}

// ListProjects implements service.Gateway.
func (f *FakeGateway) ListProjects(ctx context.Context) ([]service.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListProjects")
	if f.ListProjectsErr != nil {
		return nil, f.ListProjectsErr
	}
	out := make([]service.Project, len(f.projects))
	copy(out, f.projects)
	return out, nil
}

// GetProject implements service.Gateway.
func (f *FakeGateway) GetProject(ctx context.Context, id string) (service.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetProject")
	if f.GetProjectErr != nil {
		return service.Project{}, f.GetProjectErr
	}
	for _, p := range f.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return service.Project{}, notFound("project", id)
}

// CreateProject implements service.Gateway.
func (f *FakeGateway) CreateProject(ctx context.Context, params service.CreateProjectParams) (service.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateProject")
	if f.CreateProjectErr != nil {
		return service.Project{}, f.CreateProjectErr
	}
	p := service.Project{
		ID:       uuid.NewString(),
		Name:     params.Name,
		Color:    params.Color,
		ParentID: params.ParentID,
	}
	if p.Color == "" {
		p.Color = "charcoal"
	}
	f.projects = append(f.projects, p)
	return p, nil
}

// UpdateProject implements service.Gateway.
func (f *FakeGateway) UpdateProject(ctx context.Context, id string, patch service.ProjectPatch) (service.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateProject")
	f.LastPatch = patch.Fields()
	if f.UpdateProjectErr != nil {
		return service.Project{}, f.UpdateProjectErr
	}
	for i := range f.projects {
		if f.projects[i].ID != id {
			continue
		}
		if patch.Name != nil {
			f.projects[i].Name = *patch.Name
		}
		if patch.Color != nil {
			f.projects[i].Color = *patch.Color
		}
		return f.projects[i], nil
	}
	return service.Project{}, notFound("project", id)
}

// DeleteProject implements service.Gateway. Tasks of the project go with it.
func (f *FakeGateway) DeleteProject(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteProject")
	if f.DeleteProjectErr != nil {
		return f.DeleteProjectErr
	}
	for i, p := range f.projects {
		if p.ID != id {
			continue
		}
		f.projects = append(f.projects[:i], f.projects[i+1:]...)
		kept := f.tasks[:0]
		for _, t := range f.tasks {
			if t.ProjectID != id {
				kept = append(kept, t)
			}
		}
		f.tasks = kept
		return nil
	}
	return notFound("project", id)
}

// ListTasks implements service.Gateway. Only open tasks are returned.
func (f *FakeGateway) ListTasks(ctx context.Context, filter service.TaskFilter) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTasks")
	f.LastTaskFilter = filter
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	if filter.Query != "" && filter.Query != service.TodayFilter {
		return nil, errors.Newf("unsupported filter %q", filter.Query)
	}

	today := f.now().Format(time.DateOnly)
	out := []service.Task{}
	for _, t := range f.tasks {
		if t.Checked {
			continue
		}
		if filter.Query != "" && !dueBy(t, today) {
			continue
		}
		if filter.Query == "" && filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func dueBy(t service.Task, day string) bool {
	if t.Due == nil || len(t.Due.Date) < len(time.DateOnly) {
		return false
	}
	return t.Due.Date[:len(time.DateOnly)] <= day
}

// GetTask implements service.Gateway.
func (f *FakeGateway) GetTask(ctx context.Context, id string) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return service.Task{}, notFound("task", id)
}

// CreateTask implements service.Gateway.
func (f *FakeGateway) CreateTask(ctx context.Context, params service.CreateTaskParams) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	t := service.Task{
		ID:          uuid.NewString(),
		Content:     params.Content,
		Description: params.Description,
		ProjectID:   params.ProjectID,
		SectionID:   params.SectionID,
		ParentID:    params.ParentID,
		Priority:    params.Priority,
		Labels:      params.Labels,
	}
	if t.Priority == 0 {
		t.Priority = 1
	}
	if params.DueDate != "" || params.DueString != "" {
		t.Due = &service.Due{Date: params.DueDate, String: params.DueString}
		if strings.EqualFold(params.DueString, "today") {
			t.Due.Date = f.now().Format(time.DateOnly)
		}
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.Gateway.
func (f *FakeGateway) UpdateTask(ctx context.Context, id string, patch service.TaskPatch) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTask")
	f.LastPatch = patch.Fields()
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		t := &f.tasks[i]
		if patch.Content != nil {
			t.Content = *patch.Content
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Priority != nil {
			t.Priority = *patch.Priority
		}
		if patch.Labels != nil {
			t.Labels = patch.Labels
		}
		return *t, nil
	}
	return service.Task{}, notFound("task", id)
}

// DeleteTask implements service.Gateway.
func (f *FakeGateway) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return notFound("task", id)
}

// CloseTask implements service.Gateway. The task enters the completion history.
func (f *FakeGateway) CloseTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CloseTask")
	if f.CloseTaskErr != nil {
		return f.CloseTaskErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		f.tasks[i].Checked = true
		f.completed = append(f.completed, service.CompletedTask{
			ID:          id,
			TaskID:      id,
			Content:     f.tasks[i].Content,
			CompletedAt: f.now().UTC().Format(time.RFC3339),
			ProjectID:   f.tasks[i].ProjectID,
		})
		return nil
	}
	return notFound("task", id)
}

// ReopenTask implements service.Gateway.
func (f *FakeGateway) ReopenTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ReopenTask")
	if f.ReopenTaskErr != nil {
		return f.ReopenTaskErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Checked = false
			return nil
		}
	}
	return notFound("task", id)
}

// MoveTask implements service.Gateway. Every supplied destination is applied.
func (f *FakeGateway) MoveTask(ctx context.Context, id string, dest service.MoveParams) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("MoveTask")
	f.LastMove = dest.Fields()
	if f.MoveTaskErr != nil {
		return service.Task{}, f.MoveTaskErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		t := &f.tasks[i]
		if dest.ProjectID != "" {
			t.ProjectID = dest.ProjectID
		}
		if dest.SectionID != "" {
			t.SectionID = dest.SectionID
		}
		if dest.ParentID != "" {
			t.ParentID = dest.ParentID
		}
		return *t, nil
	}
	return service.Task{}, notFound("task", id)
}

// GetCompletedTasks implements service.Gateway. Since and Until bound
// CompletedAt inclusively when set.
func (f *FakeGateway) GetCompletedTasks(ctx context.Context, query service.CompletedQuery) ([]service.CompletedTask, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetCompletedTasks")
	f.LastCompletedQuery = query
	if f.CompletedErr != nil {
		return nil, f.CompletedErr
	}

	var since, until time.Time
	var err error
	if query.Since != "" {
		if since, err = time.Parse(time.RFC3339Nano, query.Since); err != nil {
			return nil, errors.Wrap(err, "parse since")
		}
	}
	if query.Until != "" {
		if until, err = time.Parse(time.RFC3339Nano, query.Until); err != nil {
			return nil, errors.Wrap(err, "parse until")
		}
	}

	out := []service.CompletedTask{}
	for _, c := range f.completed {
		if query.ProjectID != "" && c.ProjectID != query.ProjectID {
			continue
		}
		at, err := c.CompletedTime()
		if err != nil {
			continue
		}
		if !since.IsZero() && at.Before(since) {
			continue
		}
		if !until.IsZero() && at.After(until) {
			continue
		}
		out = append(out, c)
		if query.Limit > 0 && len(out) == query.Limit {
			break
		}
	}
	return out, nil
}
