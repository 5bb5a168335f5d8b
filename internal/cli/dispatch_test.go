package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"todoistmcp/internal/cli"
	"todoistmcp/internal/config"
	"todoistmcp/internal/exitcode"
	"todoistmcp/internal/metrics"
	"todoistmcp/internal/service"
	"todoistmcp/internal/testutil"
)

// testFactory creates a gateway factory that returns the given FakeGateway.
func testFactory(gw *testutil.FakeGateway) cli.GatewayFactory {
	return func(cfg config.Config, m *metrics.Metrics) (service.Gateway, error) {
		return gw, nil
	}
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	dispatcher := cli.NewDispatcher(testFactory(testutil.NewFakeGateway()))
	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestDispatcher_VersionCommand(t *testing.T) {
	code, stdout, stderr := run(t, "version")
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "todoist-mcp " + cli.Version + "\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	code, _, stderr := run(t, "unknowncmd")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: ") {
		t.Errorf("expected error prefix, got %q", stderr)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	code, _, stderr := run(t, "--bogus")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, "bogus") {
		t.Errorf("expected stderr to name the flag, got %q", stderr)
	}
}

func TestDispatcher_UnknownTransport(t *testing.T) {
	code, _, stderr := run(t, "--env-file", "", "--log-file", "-", "--transport", "sse")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, `unknown transport "sse"`) {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_MalformedEnvFileIsConfigError(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("not an assignment\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	code, _, _ := run(t, "--env-file", envFile, "--log-file", "-")
	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
}

func TestDispatcher_UnwritableLogFileIsConfigError(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "missing-dir", "server.log")
	code, _, stderr := run(t, "--env-file", "", "--log-file", logFile)
	if code != exitcode.ConfigError {
		t.Errorf("expected exit code %d, got %d", exitcode.ConfigError, code)
	}
	if !strings.Contains(stderr, "open log file") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_ToolsText(t *testing.T) {
	code, stdout, _ := run(t, "tools")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.HasPrefix(stdout, "get_todoist_projects\n") {
		t.Errorf("expected catalog to start with get_todoist_projects, got %q", stdout)
	}
	if !strings.Contains(stdout, "    content: string (required)\n") {
		t.Errorf("expected required content parameter, got %q", stdout)
	}
}

func TestDispatcher_ToolsJSON(t *testing.T) {
	code, stdout, _ := run(t, "tools", "--format", "json")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	var docs []struct {
		Name        string         `json:"name"`
		InputSchema map[string]any `json:"inputSchema"`
	}
	if err := json.Unmarshal([]byte(stdout), &docs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(docs) != 14 {
		t.Fatalf("expected 14 tools, got %d", len(docs))
	}
	if docs[13].Name != "get_week_completed_tasks" {
		t.Errorf("expected %q, got %q", "get_week_completed_tasks", docs[13].Name)
	}
	if docs[0].InputSchema["type"] != "object" {
		t.Errorf("expected object schema, got %v", docs[0].InputSchema)
	}
}

func TestDispatcher_ToolsYAML(t *testing.T) {
	code, stdout, _ := run(t, "tools", "-f", "yaml")
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	var docs []map[string]any
	if err := yaml.Unmarshal([]byte(stdout), &docs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(docs) != 14 || docs[1]["name"] != "get_todoist_tasks" {
		t.Errorf("unexpected yaml catalog %v", docs)
	}
}

func TestDispatcher_ToolsUnknownFormat(t *testing.T) {
	code, _, stderr := run(t, "tools", "--format", "xml")
	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.Contains(stderr, `unknown format "xml"`) {
		t.Errorf("unexpected stderr %q", stderr)
	}
}
