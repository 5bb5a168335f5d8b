package mcpserver_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"pkt.systems/pslog"

	"todoistmcp/internal/mcpserver"
	"todoistmcp/internal/metrics"
	"todoistmcp/internal/operations"
	"todoistmcp/internal/resources"
	"todoistmcp/internal/service"
	"todoistmcp/internal/testutil"
	"todoistmcp/internal/tools"
)

func newServer(gw *testutil.FakeGateway) *mcpserver.Server {
	logger := pslog.NewStructured(context.Background(), io.Discard)
	m := metrics.New()
	projects := operations.NewProjects(gw, logger)
	tasks := operations.NewTasks(gw, logger, nil)
	return mcpserver.New(mcpserver.Options{
		Dispatcher: tools.NewDispatcher(tools.NewCatalog(), tools.Env{Projects: projects, Tasks: tasks}, logger, m),
		Resolver:   resources.NewResolver(projects, tasks, logger, m),
		Logger:     logger,
		Metrics:    m,
		Version:    "test",
	})
}

func connect(t *testing.T, s *mcpserver.Server) *mcp.ClientSession {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	t1, t2 := mcp.NewInMemoryTransports()
	ss, err := s.MCP().Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, t2, nil)
	if err != nil {
		_ = ss.Close()
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() {
		_ = cs.Close()
		_ = ss.Close()
	})
	return cs
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) != 1 {
		t.Fatalf("expected one content entry, got %+v", res)
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestListTools_CatalogOrder(t *testing.T) {
	cs := connect(t, newServer(testutil.NewFakeGateway()))
	res, err := cs.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("list tools: %v", err)
	}
	catalog := tools.NewCatalog().All()
	if len(res.Tools) != len(catalog) {
		t.Fatalf("expected %d tools, got %d", len(catalog), len(res.Tools))
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, tool := range catalog {
		if !names[tool.Name()] {
			t.Errorf("tool %s not advertised", tool.Name())
		}
	}
}

func TestCallTool_Success(t *testing.T) {
	gw := testutil.NewFakeGateway()
	cs := connect(t, newServer(gw))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "create_todoist_project",
		Arguments: map[string]any{"name": "Garden"},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected error result: %s", text(t, res))
	}
	if got := text(t, res); !strings.HasPrefix(got, "Created project Garden (ID: ") {
		t.Errorf("unexpected confirmation %q", got)
	}
}

func TestCallTool_MissingArgumentIsErrorResult(t *testing.T) {
	gw := testutil.NewFakeGateway()
	cs := connect(t, newServer(gw))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "create_todoist_task",
		Arguments: map[string]any{"description": "no title"},
	})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected isError=true")
	}
	if got := text(t, res); got != "error: missing required argument: content" {
		t.Errorf("expected %q, got %q", "error: missing required argument: content", got)
	}
	if calls := gw.Calls(); len(calls) != 0 {
		t.Errorf("expected no gateway calls, got %v", calls)
	}
}

func TestCallTool_UnknownTool(t *testing.T) {
	cs := connect(t, newServer(testutil.NewFakeGateway()))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "nonexistent_tool"})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected isError=true")
	}
	if got := text(t, res); got != "error: unknown tool: nonexistent_tool" {
		t.Errorf("expected %q, got %q", "error: unknown tool: nonexistent_tool", got)
	}
}

func TestCallTool_NotInitialized(t *testing.T) {
	logger := pslog.NewStructured(context.Background(), io.Discard)
	projects := operations.NewProjects(nil, logger)
	tasks := operations.NewTasks(nil, logger, nil)
	s := mcpserver.New(mcpserver.Options{
		Dispatcher: tools.NewDispatcher(tools.NewCatalog(), tools.Env{Projects: projects, Tasks: tasks}, logger, nil),
		Resolver:   resources.NewResolver(projects, tasks, logger, nil),
		Logger:     logger,
	})
	cs := connect(t, s)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: "get_todoist_projects"})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if !res.IsError || !strings.Contains(text(t, res), "not initialized") {
		t.Errorf("expected not initialized error, got %+v", res)
	}
}

func TestListResources_Enumerates(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.AddProject(service.Project{ID: "P1", Name: "Home"})
	gw.AddTask(service.Task{ID: "T1", Content: "Water plants", ProjectID: "P1"})
	cs := connect(t, newServer(gw))

	res, err := cs.ListResources(context.Background(), nil)
	if err != nil {
		t.Fatalf("list resources: %v", err)
	}
	expected := []string{
		"todoist://today/tasks",
		"todoist://project/P1",
		"todoist://project/P1/tasks",
		"todoist://task/T1",
	}
	if len(res.Resources) != len(expected) {
		t.Fatalf("expected %d resources, got %d", len(expected), len(res.Resources))
	}
	for i, uri := range expected {
		if res.Resources[i].URI != uri {
			t.Errorf("entry %d: expected %q, got %q", i, uri, res.Resources[i].URI)
		}
	}
}

func TestReadResource(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.AddProject(service.Project{ID: "P1", Name: "Home"})
	cs := connect(t, newServer(gw))
	ctx := context.Background()

	res, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "todoist://project/P1"})
	if err != nil {
		t.Fatalf("read resource: %v", err)
	}
	if len(res.Contents) != 1 || res.Contents[0].MIMEType != "application/json" {
		t.Fatalf("unexpected contents %+v", res.Contents)
	}
	if !strings.Contains(res.Contents[0].Text, `"name": "Home"`) {
		t.Errorf("expected project JSON, got %s", res.Contents[0].Text)
	}

	if _, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "todoist://project/missing"}); err == nil {
		t.Error("expected not found error")
	}
	if _, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "todoist://label/l1"}); err == nil {
		t.Error("expected unsupported resource error")
	}
}

func TestGetPrompt(t *testing.T) {
	cs := connect(t, newServer(testutil.NewFakeGateway()))
	res, err := cs.GetPrompt(context.Background(), &mcp.GetPromptParams{Name: mcpserver.OverviewPrompt})
	if err != nil {
		t.Fatalf("get prompt: %v", err)
	}
	if len(res.Messages) != 1 || res.Messages[0].Role != "user" {
		t.Errorf("unexpected prompt %+v", res)
	}
}

func TestHandler_HealthAndCORS(t *testing.T) {
	ts := httptest.NewServer(newServer(testutil.NewFakeGateway()).Handler("/mcp"))
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok\n" {
		t.Errorf("expected 200 ok, got %d %q", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected a request id header")
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected %q, got %q", "*", got)
	}
	if got := resp.Header.Get("Access-Control-Expose-Headers"); got != "Mcp-Session-Id" {
		t.Errorf("expected %q, got %q", "Mcp-Session-Id", got)
	}

	req, _ = http.NewRequest(http.MethodOptions, ts.URL+"/mcp", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected %d, got %d", http.StatusNoContent, resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected %q, got %q", "*", got)
	}
	if got := resp.Header.Get("Access-Control-Allow-Methods"); got != http.MethodPost {
		t.Errorf("expected %q, got %q", http.MethodPost, got)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestHandler_StreamableSession(t *testing.T) {
	gw := testutil.NewFakeGateway()
	gw.AddProject(service.Project{ID: "p1", Name: "Work"})
	ts := httptest.NewServer(newServer(gw).Handler("/mcp"))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client := mcp.NewClient(&mcp.Implementation{Name: "http-client", Version: "0.0.1"}, nil)
	cs, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: ts.URL + "/mcp"}, nil)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer cs.Close()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "get_todoist_projects"})
	if err != nil {
		t.Fatalf("call tool: %v", err)
	}
	if res.IsError || !strings.Contains(text(t, res), `"id": "p1"`) {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestHTTPConfig_Addr(t *testing.T) {
	cfg := mcpserver.HTTPConfig{Host: "", Port: 3002}
	if got := cfg.Addr(); got != ":3002" {
		t.Errorf("expected %q, got %q", ":3002", got)
	}
}
