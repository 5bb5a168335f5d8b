package resources

import (
	"context"

	"todoistmcp/internal/output"
	"todoistmcp/internal/service"
)

// Descriptor advertises one readable resource.
type Descriptor struct {
	URI         string
	Name        string
	Description string
	MIMEType    string
}

// Today describes the today view.
func Today() Descriptor {
	return Descriptor{
		URI:         Address{Kind: KindToday}.URI(),
		Name:        "Today's tasks",
		Description: "Open tasks due today or overdue",
		MIMEType:    MIMEType,
	}
}

// List enumerates every readable resource: the today view, then each
// project in pre-order with its tasks view and, when it has sub-projects,
// its structure view, then every open task. Nothing is paged.
// Projects caught in a parent cycle are unreachable from any root; they are
// logged and left out while their tasks are still listed.
func (r *Resolver) List(ctx context.Context) ([]Descriptor, error) {
	projects, err := r.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := r.tasks.List(ctx)
	if err != nil {
		return nil, err
	}

	out := []Descriptor{Today()}

	byID := make(map[string]service.Project, len(projects))
	for _, p := range projects {
		byID[p.ID] = p
	}
	children := childIndex(projects)
	visited := make(map[string]bool, len(projects))

	var walk func(p service.Project, depth int)
	walk = func(p service.Project, depth int) {
		if visited[p.ID] {
			return
		}
		visited[p.ID] = true
		out = append(out, projectDescriptors(p, depth, len(children[p.ID]) > 0)...)
		for _, child := range children[p.ID] {
			walk(child, depth+1)
		}
	}
	for _, p := range projects {
		if _, hasParent := byID[p.ParentID]; p.IsRoot() || !hasParent {
			walk(p, 0)
		}
	}
	for _, p := range projects {
		if !visited[p.ID] {
			r.logger.Warn("project unreachable from any root", "project_id", p.ID, "parent_id", p.ParentID)
		}
	}

	for _, t := range tasks {
		desc := "Task"
		if p, ok := byID[t.ProjectID]; ok {
			desc = "Task in " + output.Title(p.Name)
		}
		out = append(out, Descriptor{
			URI:         Address{Kind: KindTask, ID: t.ID}.URI(),
			Name:        output.Title(t.Content),
			Description: desc,
			MIMEType:    MIMEType,
		})
	}
	return out, nil
}

func projectDescriptors(p service.Project, depth int, hasChildren bool) []Descriptor {
	name := output.Title(p.Name)
	desc := "Project " + name
	if depth > 0 {
		desc += " (sub-project)"
	}
	out := []Descriptor{
		{
			URI:         Address{Kind: KindProject, ID: p.ID}.URI(),
			Name:        name,
			Description: desc,
			MIMEType:    MIMEType,
		},
		{
			URI:         Address{Kind: KindProjectTasks, ID: p.ID}.URI(),
			Name:        "Tasks in " + name,
			Description: "Open tasks of project " + name,
			MIMEType:    MIMEType,
		},
	}
	if hasChildren {
		out = append(out, Descriptor{
			URI:         Address{Kind: KindProjectStructure, ID: p.ID}.URI(),
			Name:        "Structure of " + name,
			Description: "Sub-project tree rooted at " + name,
			MIMEType:    MIMEType,
		})
	}
	return out
}
