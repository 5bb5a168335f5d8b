// Package resources maps the todoist:// address space onto project and task
// reads, and enumerates every readable address.
package resources

import (
	"context"

	"pkt.systems/pslog"

	"todoistmcp/internal/failure"
	"todoistmcp/internal/metrics"
	"todoistmcp/internal/output"
	"todoistmcp/internal/service"
)

// MIMEType is the media type of every resource.
const MIMEType = "application/json"

// ProjectReader is the read side of project operations.
type ProjectReader interface {
	List(ctx context.Context) ([]service.Project, error)
	Get(ctx context.Context, id string) (service.Project, error)
}

// TaskReader is the read side of task operations.
type TaskReader interface {
	List(ctx context.Context) ([]service.Task, error)
	ListByProject(ctx context.Context, projectID string) ([]service.Task, error)
	ListToday(ctx context.Context) ([]service.Task, error)
	Get(ctx context.Context, id string) (service.Task, error)
}

// Content is a rendered resource.
type Content struct {
	URI      string
	MIMEType string
	Text     string
}

// ProjectTasks is the document behind project/<id>/tasks.
type ProjectTasks struct {
	Project service.Project `json:"project"`
	Tasks   []service.Task  `json:"tasks"`
}

// Resolver reads and enumerates resources. It holds no state between calls.
type Resolver struct {
	projects ProjectReader
	tasks    TaskReader
	logger   pslog.Logger
	metrics  *metrics.Metrics
}

// NewResolver returns a resolver over the given readers. m may be nil.
func NewResolver(projects ProjectReader, tasks TaskReader, logger pslog.Logger, m *metrics.Metrics) *Resolver {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Resolver{
		projects: projects,
		tasks:    tasks,
		logger:   logger.With("component", "resources"),
		metrics:  m,
	}
}

// Read resolves uri and renders it as JSON.
func (r *Resolver) Read(ctx context.Context, uri string) (Content, error) {
	addr, err := Parse(uri)
	if err != nil {
		r.metrics.ResourceRead("invalid", failure.KindOf(err).String())
		return Content{}, err
	}

	doc, err := r.resolve(ctx, addr)
	if err != nil {
		r.metrics.ResourceRead(string(addr.Kind), failure.KindOf(err).String())
		r.logger.Warn("resource read failed", "uri", uri, "error", err)
		return Content{}, err
	}
	text, err := output.JSON(doc)
	if err != nil {
		r.metrics.ResourceRead(string(addr.Kind), "encode_error")
		return Content{}, err
	}
	r.metrics.ResourceRead(string(addr.Kind), "ok")
	return Content{URI: uri, MIMEType: MIMEType, Text: text}, nil
}

func (r *Resolver) resolve(ctx context.Context, addr Address) (any, error) {
	switch addr.Kind {
	case KindToday:
		return r.tasks.ListToday(ctx)
	case KindProject:
		return r.projects.Get(ctx, addr.ID)
	case KindProjectTasks:
		project, err := r.projects.Get(ctx, addr.ID)
		if err != nil {
			return nil, err
		}
		tasks, err := r.tasks.ListByProject(ctx, addr.ID)
		if err != nil {
			return nil, err
		}
		if tasks == nil {
			tasks = []service.Task{}
		}
		return ProjectTasks{Project: project, Tasks: tasks}, nil
	case KindProjectStructure:
		projects, err := r.projects.List(ctx)
		if err != nil {
			return nil, err
		}
		return BuildTree(projects, addr.ID)
	case KindTask:
		return r.tasks.Get(ctx, addr.ID)
	}
	return nil, failure.New(failure.UnsupportedResource, "unsupported resource: %s", addr.Kind)
}
