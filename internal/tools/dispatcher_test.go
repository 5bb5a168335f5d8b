package tools_test

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"pkt.systems/pslog"

	"todoistmcp/internal/failure"
	"todoistmcp/internal/metrics"
	"todoistmcp/internal/operations"
	"todoistmcp/internal/service"
	fakes "todoistmcp/internal/testutil"
	"todoistmcp/internal/tools"
)

func newDispatcher(gw *fakes.FakeGateway, clock operations.Clock, m *metrics.Metrics) *tools.Dispatcher {
	logger := pslog.NewStructured(context.Background(), io.Discard)
	var g service.Gateway
	if gw != nil {
		g = gw
	}
	env := tools.Env{
		Projects: operations.NewProjects(g, logger),
		Tasks:    operations.NewTasks(g, logger, clock),
	}
	return tools.NewDispatcher(tools.NewCatalog(), env, logger, m)
}

func TestCall_UnknownTool(t *testing.T) {
	gw := fakes.NewFakeGateway()
	_, err := newDispatcher(gw, nil, nil).Call(context.Background(), "nonexistent_tool", map[string]any{})
	if failure.KindOf(err) != failure.UnknownTool {
		t.Fatalf("expected %s, got %v", failure.UnknownTool, err)
	}
	if got := failure.Message(err); got != "unknown tool: nonexistent_tool" {
		t.Errorf("expected %q, got %q", "unknown tool: nonexistent_tool", got)
	}
	if calls := gw.Calls(); len(calls) != 0 {
		t.Errorf("expected no gateway calls, got %v", calls)
	}
}

func TestCall_MissingArgumentNeverReachesGateway(t *testing.T) {
	cases := []struct {
		tool  string
		args  map[string]any
		field string
	}{
		{"create_todoist_task", map[string]any{"description": "x"}, "content"},
		{"create_todoist_task", map[string]any{"content": "   "}, "content"},
		{"create_todoist_project", map[string]any{}, "name"},
		{"update_todoist_project", map[string]any{"name": "New"}, "projectId"},
		{"delete_todoist_project", map[string]any{"projectId": nil}, "projectId"},
		{"update_todoist_task", map[string]any{}, "taskId"},
		{"delete_todoist_task", map[string]any{}, "taskId"},
		{"complete_todoist_task", map[string]any{"taskId": ""}, "taskId"},
		{"reopen_todoist_task", map[string]any{}, "taskId"},
		{"move_todoist_task", map[string]any{"projectId": "p1"}, "taskId"},
	}
	for _, tc := range cases {
		gw := fakes.NewFakeGateway()
		_, err := newDispatcher(gw, nil, nil).Call(context.Background(), tc.tool, tc.args)
		if failure.KindOf(err) != failure.MissingArgument {
			t.Errorf("%s: expected %s, got %v", tc.tool, failure.MissingArgument, err)
			continue
		}
		if !strings.Contains(err.Error(), tc.field) {
			t.Errorf("%s: expected error naming %s, got %v", tc.tool, tc.field, err)
		}
		if calls := gw.Calls(); len(calls) != 0 {
			t.Errorf("%s: expected no gateway calls, got %v", tc.tool, calls)
		}
	}
}

func TestCall_InvalidArguments(t *testing.T) {
	cases := []struct {
		tool string
		args map[string]any
	}{
		{"create_todoist_task", map[string]any{"content": "x", "priority": 5}},
		{"create_todoist_task", map[string]any{"content": "x", "priority": "high"}},
		{"create_todoist_task", map[string]any{"content": "x", "labels": "home"}},
		{"create_todoist_task", map[string]any{"content": "x", "bogus": true}},
		{"create_todoist_project", map[string]any{"name": "x", "viewStyle": "grid"}},
		{"create_todoist_project", map[string]any{"name": "x", "isFavorite": "yes"}},
		{"get_todoist_tasks", map[string]any{"filter": "tomorrow"}},
		{"get_completed_tasks", map[string]any{"limit": 0}},
		{"complete_todoist_task", map[string]any{"taskId": 1.5}},
	}
	for _, tc := range cases {
		gw := fakes.NewFakeGateway()
		_, err := newDispatcher(gw, nil, nil).Call(context.Background(), tc.tool, tc.args)
		if failure.KindOf(err) != failure.InvalidArgument {
			t.Errorf("%s %v: expected %s, got %v", tc.tool, tc.args, failure.InvalidArgument, err)
		}
		if calls := gw.Calls(); len(calls) != 0 {
			t.Errorf("%s: expected no gateway calls, got %v", tc.tool, calls)
		}
	}
}

func TestCall_NotInitialized(t *testing.T) {
	_, err := newDispatcher(nil, nil, nil).Call(context.Background(), "get_todoist_projects", nil)
	if failure.KindOf(err) != failure.NotInitialized {
		t.Errorf("expected %s, got %v", failure.NotInitialized, err)
	}
}

func TestCall_ListTasksPrecedence(t *testing.T) {
	gw := fakes.NewFakeGateway()
	d := newDispatcher(gw, nil, nil)
	ctx := context.Background()

	if _, err := d.Call(ctx, "get_todoist_tasks", map[string]any{"filter": "today", "projectId": "p1"}); err != nil {
		t.Fatalf("call: %v", err)
	}
	if gw.LastTaskFilter.Query != service.TodayFilter || gw.LastTaskFilter.ProjectID != "" {
		t.Errorf("expected today filter only, got %+v", gw.LastTaskFilter)
	}

	if _, err := d.Call(ctx, "get_todoist_tasks", map[string]any{"projectId": "p1"}); err != nil {
		t.Fatalf("call: %v", err)
	}
	if gw.LastTaskFilter.ProjectID != "p1" || gw.LastTaskFilter.Query != "" {
		t.Errorf("expected project filter, got %+v", gw.LastTaskFilter)
	}

	if _, err := d.Call(ctx, "get_todoist_tasks", map[string]any{"projectId": ""}); err != nil {
		t.Fatalf("call: %v", err)
	}
	if gw.LastTaskFilter != (service.TaskFilter{}) {
		t.Errorf("expected no filter, got %+v", gw.LastTaskFilter)
	}
}

func TestCall_ListTasksReturnsJSON(t *testing.T) {
	gw := fakes.NewFakeGateway()
	gw.AddTask(service.Task{ID: "t1", Content: "Buy milk", ProjectID: "p1"})

	text, err := newDispatcher(gw, nil, nil).Call(context.Background(), "get_todoist_tasks", nil)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	var tasks []map[string]any
	if err := json.Unmarshal([]byte(text), &tasks); err != nil {
		t.Fatalf("decode %q: %v", text, err)
	}
	if len(tasks) != 1 || tasks[0]["content"] != "Buy milk" {
		t.Errorf("expected Buy milk, got %v", tasks)
	}
}

func TestCall_CreateTaskConfirmation(t *testing.T) {
	gw := fakes.NewFakeGateway()
	text, err := newDispatcher(gw, nil, nil).Call(context.Background(), "create_todoist_task", map[string]any{
		"content":   "Buy milk",
		"projectId": json.Number("2203306141"),
		"priority":  json.Number("4"),
		"labels":    []any{"errand"},
	})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !strings.HasPrefix(text, "Created task Buy milk (ID: ") {
		t.Errorf("unexpected confirmation %q", text)
	}
	calls := gw.Calls()
	if len(calls) != 1 || calls[0] != "CreateTask" {
		t.Fatalf("expected one CreateTask call, got %v", calls)
	}
	id := strings.TrimSuffix(strings.TrimPrefix(text, "Created task Buy milk (ID: "), ")")
	task, ok := gw.Task(id)
	if !ok {
		t.Fatalf("task %s was not stored", id)
	}
	if task.ProjectID != "2203306141" || task.Priority != 4 || len(task.Labels) != 1 {
		t.Errorf("unexpected stored task %+v", task)
	}
}

func TestCall_EmptyUpdateIsNoop(t *testing.T) {
	gw := fakes.NewFakeGateway()
	gw.AddTask(service.Task{ID: "t1", Content: "Same"})

	text, err := newDispatcher(gw, nil, nil).Call(context.Background(), "update_todoist_task", map[string]any{"taskId": "t1", "content": ""})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if text != "Updated task Same (ID: t1)" {
		t.Errorf("expected %q, got %q", "Updated task Same (ID: t1)", text)
	}
	for _, c := range gw.Calls() {
		if c == "UpdateTask" {
			t.Errorf("expected no update call, got %v", gw.Calls())
		}
	}
}

func TestCall_UpdateProjectForwardsSuppliedFields(t *testing.T) {
	gw := fakes.NewFakeGateway()
	gw.AddProject(service.Project{ID: "p1", Name: "Old"})

	text, err := newDispatcher(gw, nil, nil).Call(context.Background(), "update_todoist_project", map[string]any{
		"projectId":  "p1",
		"name":       "New",
		"isFavorite": false,
	})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if text != "Updated project New (ID: p1)" {
		t.Errorf("expected %q, got %q", "Updated project New (ID: p1)", text)
	}
	if len(gw.LastPatch) != 2 || gw.LastPatch["name"] != "New" || gw.LastPatch["isFavorite"] != false {
		t.Errorf("expected name and isFavorite only, got %v", gw.LastPatch)
	}
}

func TestCall_TaskActions(t *testing.T) {
	gw := fakes.NewFakeGateway()
	gw.AddTask(service.Task{ID: "t1", Content: "Run"})
	d := newDispatcher(gw, nil, nil)
	ctx := context.Background()

	cases := []struct {
		tool     string
		expected string
	}{
		{"complete_todoist_task", "Task t1 completed successfully"},
		{"reopen_todoist_task", "Task t1 reopened successfully"},
		{"delete_todoist_task", "Task t1 deleted successfully"},
	}
	for _, tc := range cases {
		text, err := d.Call(ctx, tc.tool, map[string]any{"taskId": "t1"})
		if err != nil {
			t.Fatalf("%s: %v", tc.tool, err)
		}
		if text != tc.expected {
			t.Errorf("expected %q, got %q", tc.expected, text)
		}
	}

	_, err := d.Call(ctx, "complete_todoist_task", map[string]any{"taskId": "t1"})
	if failure.KindOf(err) != failure.NotFound {
		t.Errorf("expected %s after delete, got %v", failure.NotFound, err)
	}
}

func TestCall_MoveIsPermissive(t *testing.T) {
	gw := fakes.NewFakeGateway()
	gw.AddTask(service.Task{ID: "t1", Content: "Move me"})

	text, err := newDispatcher(gw, nil, nil).Call(context.Background(), "move_todoist_task", map[string]any{
		"taskId":    "t1",
		"projectId": "p2",
		"sectionId": "s9",
	})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if text != "Task t1 moved to project p2, section s9" {
		t.Errorf("unexpected confirmation %q", text)
	}
	if len(gw.LastMove) != 2 || gw.LastMove["projectId"] != "p2" || gw.LastMove["sectionId"] != "s9" {
		t.Errorf("expected both destinations forwarded, got %v", gw.LastMove)
	}
}

func TestCall_MoveWithoutDestination(t *testing.T) {
	gw := fakes.NewFakeGateway()
	_, err := newDispatcher(gw, nil, nil).Call(context.Background(), "move_todoist_task", map[string]any{"taskId": "t1"})
	if failure.KindOf(err) != failure.MissingArgument {
		t.Errorf("expected %s, got %v", failure.MissingArgument, err)
	}
	if calls := gw.Calls(); len(calls) != 0 {
		t.Errorf("expected no gateway calls, got %v", calls)
	}
}

func TestCall_CompletedWindows(t *testing.T) {
	gw := fakes.NewFakeGateway()
	clock := fakes.NewFakeClock(time.Date(2026, 10, 21, 15, 0, 0, 0, time.UTC))
	d := newDispatcher(gw, clock, nil)
	ctx := context.Background()

	if _, err := d.Call(ctx, "get_today_completed_tasks", nil); err != nil {
		t.Fatalf("call: %v", err)
	}
	if gw.LastCompletedQuery.Since != "2026-10-21T00:00:00Z" || gw.LastCompletedQuery.Until != "2026-10-21T23:59:59Z" {
		t.Errorf("unexpected day window %+v", gw.LastCompletedQuery)
	}

	if _, err := d.Call(ctx, "get_week_completed_tasks", nil); err != nil {
		t.Fatalf("call: %v", err)
	}
	if gw.LastCompletedQuery.Since != "2026-10-18T00:00:00.000Z" || gw.LastCompletedQuery.Until != "2026-10-24T23:59:59.999Z" {
		t.Errorf("unexpected week window %+v", gw.LastCompletedQuery)
	}

	if _, err := d.Call(ctx, "get_completed_tasks", map[string]any{"since": "2026-10-01T00:00:00Z", "limit": 10}); err != nil {
		t.Fatalf("call: %v", err)
	}
	q := gw.LastCompletedQuery
	if q.Since != "2026-10-01T00:00:00Z" || q.Until != "2026-10-21T23:59:59Z" || q.Limit != 10 {
		t.Errorf("unexpected query %+v", q)
	}
}

func TestCall_RecordsMetrics(t *testing.T) {
	m := metrics.New()
	gw := fakes.NewFakeGateway()
	d := newDispatcher(gw, nil, m)
	ctx := context.Background()

	_, _ = d.Call(ctx, "get_todoist_projects", nil)
	_, _ = d.Call(ctx, "create_todoist_task", map[string]any{})
	_, _ = d.Call(ctx, "nope", nil)

	count, err := testutil.GatherAndCount(m.Registry(), "todoist_mcp_tool_calls_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3 series, got %d", count)
	}
}
