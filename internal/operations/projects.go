package operations

import (
	"context"

	"pkt.systems/pslog"

	"todoistmcp/internal/failure"
	"todoistmcp/internal/service"
)

// Projects reads and writes projects.
type Projects struct {
	gw     service.Gateway
	logger pslog.Logger
}

// NewProjects returns project operations over gw. A nil gw makes every
// operation fail with NotInitialized.
func NewProjects(gw service.Gateway, logger pslog.Logger) *Projects {
	return &Projects{gw: gw, logger: orNoop(logger).With("component", "projects")}
}

// List returns every project in provider order.
func (p *Projects) List(ctx context.Context) ([]service.Project, error) {
	if p.gw == nil {
		return nil, errNotInitialized
	}
	projects, err := p.gw.ListProjects(ctx)
	if err != nil {
		return nil, gatewayError(p.logger, err, "list projects")
	}
	if projects == nil {
		projects = []service.Project{}
	}
	return projects, nil
}

// Get returns one project or a NotFound failure.
func (p *Projects) Get(ctx context.Context, id string) (service.Project, error) {
	if p.gw == nil {
		return service.Project{}, errNotInitialized
	}
	project, err := p.gw.GetProject(ctx, id)
	if err != nil {
		return service.Project{}, gatewayError(p.logger, err, "get project "+id)
	}
	return project, nil
}

// Create creates a project.
func (p *Projects) Create(ctx context.Context, params service.CreateProjectParams) (service.Project, error) {
	if p.gw == nil {
		return service.Project{}, errNotInitialized
	}
	if params.Name == "" {
		return service.Project{}, failure.Missing("name")
	}
	project, err := p.gw.CreateProject(ctx, params)
	if err != nil {
		return service.Project{}, gatewayError(p.logger, err, "create project "+params.Name)
	}
	p.logger.Info("project created", "project_id", project.ID)
	return project, nil
}

// Update applies the supplied fields of patch. An empty patch sends nothing
// and returns the current project.
func (p *Projects) Update(ctx context.Context, id string, patch service.ProjectPatch) (service.Project, error) {
	if p.gw == nil {
		return service.Project{}, errNotInitialized
	}
	if patch.IsEmpty() {
		return p.Get(ctx, id)
	}
	project, err := p.gw.UpdateProject(ctx, id, patch)
	if err != nil {
		return service.Project{}, gatewayError(p.logger, err, "update project "+id)
	}
	return project, nil
}

// Delete deletes a project.
func (p *Projects) Delete(ctx context.Context, id string) error {
	if p.gw == nil {
		return errNotInitialized
	}
	if err := p.gw.DeleteProject(ctx, id); err != nil {
		return gatewayError(p.logger, err, "delete project "+id)
	}
	p.logger.Info("project deleted", "project_id", id)
	return nil
}
