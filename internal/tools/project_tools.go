package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"todoistmcp/internal/output"
	"todoistmcp/internal/service"
)

var viewStyles = []string{"list", "board", "calendar"}

type listProjectsTool struct{ descriptor }

func newListProjectsTool() *listProjectsTool {
	return &listProjectsTool{descriptor{
		name:        "get_todoist_projects",
		description: "List all Todoist projects.",
		schema:      object(nil, nil),
	}}
}

func (t *listProjectsTool) Run(ctx context.Context, env Env, _ Args) (string, error) {
	projects, err := env.Projects.List(ctx)
	if err != nil {
		return "", err
	}
	return output.JSON(projects)
}

type createProjectParams struct {
	Name       string `json:"name"`
	Color      string `json:"color"`
	ParentID   string `json:"parentId"`
	ViewStyle  string `json:"viewStyle"`
	IsFavorite *bool  `json:"isFavorite"`
}

type createProjectTool struct{ descriptor }

func newCreateProjectTool() *createProjectTool {
	return &createProjectTool{descriptor{
		name:        "create_todoist_project",
		description: "Create a Todoist project, optionally nested under a parent project.",
		schema: object([]string{"name"}, map[string]*jsonschema.Schema{
			"name":       str("Project name"),
			"color":      str("Color name, e.g. berry_red"),
			"parentId":   str("ID of the parent project"),
			"viewStyle":  enum("Default view", viewStyles...),
			"isFavorite": boolean("Mark the project as favorite"),
		}),
	}}
}

func (t *createProjectTool) Run(ctx context.Context, env Env, args Args) (string, error) {
	var p createProjectParams
	if err := args.Decode(&p); err != nil {
		return "", err
	}
	project, err := env.Projects.Create(ctx, service.CreateProjectParams{
		Name:       p.Name,
		Color:      p.Color,
		ParentID:   p.ParentID,
		ViewStyle:  p.ViewStyle,
		IsFavorite: p.IsFavorite,
	})
	if err != nil {
		return "", err
	}
	return output.ProjectCreated(project), nil
}

type updateProjectParams struct {
	ProjectID  string  `json:"projectId"`
	Name       *string `json:"name"`
	Color      *string `json:"color"`
	ViewStyle  *string `json:"viewStyle"`
	IsFavorite *bool   `json:"isFavorite"`
}

type updateProjectTool struct{ descriptor }

func newUpdateProjectTool() *updateProjectTool {
	return &updateProjectTool{descriptor{
		name:        "update_todoist_project",
		description: "Update a Todoist project. Only the supplied fields change.",
		schema: object([]string{"projectId"}, map[string]*jsonschema.Schema{
			"projectId":  str("ID of the project to update"),
			"name":       str("New name"),
			"color":      str("New color name"),
			"viewStyle":  enum("New default view", viewStyles...),
			"isFavorite": boolean("Mark or unmark as favorite"),
		}),
	}}
}

func (t *updateProjectTool) Run(ctx context.Context, env Env, args Args) (string, error) {
	var p updateProjectParams
	if err := args.Decode(&p); err != nil {
		return "", err
	}
	project, err := env.Projects.Update(ctx, p.ProjectID, service.ProjectPatch{
		Name:       p.Name,
		Color:      p.Color,
		ViewStyle:  p.ViewStyle,
		IsFavorite: p.IsFavorite,
	})
	if err != nil {
		return "", err
	}
	return output.ProjectUpdated(project), nil
}

type projectIDParams struct {
	ProjectID string `json:"projectId"`
}

type deleteProjectTool struct{ descriptor }

func newDeleteProjectTool() *deleteProjectTool {
	return &deleteProjectTool{descriptor{
		name:        "delete_todoist_project",
		description: "Delete a Todoist project together with its tasks.",
		schema: object([]string{"projectId"}, map[string]*jsonschema.Schema{
			"projectId": str("ID of the project to delete"),
		}),
	}}
}

func (t *deleteProjectTool) Run(ctx context.Context, env Env, args Args) (string, error) {
	var p projectIDParams
	if err := args.Decode(&p); err != nil {
		return "", err
	}
	if err := env.Projects.Delete(ctx, p.ProjectID); err != nil {
		return "", err
	}
	return output.ProjectDeleted(p.ProjectID), nil
}
