package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"todoistmcp/internal/output"
	"todoistmcp/internal/service"
)

type completedParams struct {
	Since     string `json:"since"`
	Until     string `json:"until"`
	ProjectID string `json:"projectId"`
	Limit     int    `json:"limit"`
}

type completedTool struct{ descriptor }

func newCompletedTool() *completedTool {
	return &completedTool{descriptor{
		name:        "get_completed_tasks",
		description: "List tasks completed in a time window. since and until default to the start and end of the current local day.",
		schema: object(nil, map[string]*jsonschema.Schema{
			"since":     str("Window start, ISO 8601"),
			"until":     str("Window end, ISO 8601"),
			"projectId": str("Only tasks of this project"),
			"limit":     integer("Maximum number of items", 1, 200),
		}),
	}}
}

func (t *completedTool) Run(ctx context.Context, env Env, args Args) (string, error) {
	var p completedParams
	if err := args.Decode(&p); err != nil {
		return "", err
	}
	items, err := env.Tasks.GetCompleted(ctx, service.CompletedQuery{
		Since:     p.Since,
		Until:     p.Until,
		ProjectID: p.ProjectID,
		Limit:     p.Limit,
	})
	if err != nil {
		return "", err
	}
	return output.JSON(items)
}

type todayCompletedTool struct{ descriptor }

func newTodayCompletedTool() *todayCompletedTool {
	return &todayCompletedTool{descriptor{
		name:        "get_today_completed_tasks",
		description: "List tasks completed today.",
		schema:      object(nil, nil),
	}}
}

func (t *todayCompletedTool) Run(ctx context.Context, env Env, _ Args) (string, error) {
	items, err := env.Tasks.GetTodayCompleted(ctx)
	if err != nil {
		return "", err
	}
	return output.JSON(items)
}

type weekCompletedTool struct{ descriptor }

func newWeekCompletedTool() *weekCompletedTool {
	return &weekCompletedTool{descriptor{
		name:        "get_week_completed_tasks",
		description: "List tasks completed this week, Sunday through Saturday.",
		schema:      object(nil, nil),
	}}
}

func (t *weekCompletedTool) Run(ctx context.Context, env Env, _ Args) (string, error) {
	items, err := env.Tasks.GetWeekCompleted(ctx)
	if err != nil {
		return "", err
	}
	return output.JSON(items)
}
