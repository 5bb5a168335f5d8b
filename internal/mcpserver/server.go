// Package mcpserver exposes the tool catalog, the todoist:// resources and
// the overview prompt over the Model Context Protocol.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"pkt.systems/pslog"

	"todoistmcp/internal/failure"
	"todoistmcp/internal/metrics"
	"todoistmcp/internal/resources"
	"todoistmcp/internal/tools"
)

const (
	// Name is the implementation name announced during initialization.
	Name = "todoist-mcp-server"

	// OverviewPrompt names the static overview prompt.
	OverviewPrompt = "todoist_overview"

	resourceTemplate = resources.Scheme + "{+path}"
)

const instructions = `Todoist access for agents.
Read todoist://today/tasks for tasks due today or overdue.
Projects are addressable as todoist://project/{id}, with /tasks and /structure views; tasks as todoist://task/{id}.
Use the tools to create, update, complete, reopen, move and delete projects and tasks, and to query completed tasks.`

// Options configures a Server.
type Options struct {
	Dispatcher *tools.Dispatcher
	Resolver   *resources.Resolver
	Logger     pslog.Logger
	Metrics    *metrics.Metrics
	Version    string
}

// Server wraps the protocol server with the todoist handlers registered.
type Server struct {
	mcp        *mcp.Server
	dispatcher *tools.Dispatcher
	resolver   *resources.Resolver
	logger     pslog.Logger
	metrics    *metrics.Metrics
}

// New builds a protocol server over the dispatcher and resolver.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}
	s := &Server{
		dispatcher: opts.Dispatcher,
		resolver:   opts.Resolver,
		logger:     logger.With("component", "mcp"),
		metrics:    opts.Metrics,
	}
	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    Name,
		Version: version,
	}, &mcp.ServerOptions{
		Instructions:       instructions,
		InitializedHandler: s.handleInitialized,
	})
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	s.mcp.AddReceivingMiddleware(s.middleware)
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// RunStdio serves a single session over stdin and stdout until ctx is done
// or the client disconnects.
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("serving on stdio")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func (s *Server) handleInitialized(_ context.Context, req *mcp.InitializedRequest) {
	if req == nil || req.Session == nil {
		return
	}
	s.logger.Info("session initialized", "session_id", req.Session.ID())
}

func (s *Server) registerTools() {
	for _, tool := range s.dispatcher.Tools() {
		name := tool.Name()
		s.mcp.AddTool(&mcp.Tool{
			Name:        name,
			Description: tool.Description(),
			InputSchema: tool.Schema(),
		}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return s.callTool(ctx, name, req)
		})
	}
}

func (s *Server) callTool(ctx context.Context, name string, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var raw []byte
	if req != nil && req.Params != nil {
		raw = req.Params.Arguments
	}
	args, err := tools.DecodeArguments(raw)
	if err != nil {
		return errorResult(err), nil
	}
	text, err := s.dispatcher.Call(ctx, name, args)
	if err != nil {
		return errorResult(err), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil
}

func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "error: " + failure.Message(err)}},
		IsError: true,
	}
}

func (s *Server) registerResources() {
	today := resources.Today()
	s.mcp.AddResource(&mcp.Resource{
		URI:         today.URI,
		Name:        today.Name,
		Description: today.Description,
		MIMEType:    today.MIMEType,
	}, s.readResource)
	s.mcp.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: resourceTemplate,
		Name:        "todoist",
		Description: "Projects (project/{id}, project/{id}/tasks, project/{id}/structure) and tasks (task/{id})",
		MIMEType:    resources.MIMEType,
	}, s.readResource)
}

func (s *Server) readResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := ""
	if req != nil && req.Params != nil {
		uri = req.Params.URI
	}
	content, err := s.resolver.Read(ctx, uri)
	if err != nil {
		switch failure.KindOf(err) {
		case failure.UnsupportedResource, failure.NotFound:
			return nil, mcp.ResourceNotFoundError(uri)
		}
		return nil, fmt.Errorf("%s", failure.Message(err))
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      content.URI,
			MIMEType: content.MIMEType,
			Text:     content.Text,
		}},
	}, nil
}

// listResources answers resources/list with the live project and task tree.
func (s *Server) listResources(ctx context.Context) (*mcp.ListResourcesResult, error) {
	descriptors, err := s.resolver.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s", failure.Message(err))
	}
	out := make([]*mcp.Resource, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, &mcp.Resource{
			URI:         d.URI,
			Name:        d.Name,
			Description: d.Description,
			MIMEType:    d.MIMEType,
		})
	}
	return &mcp.ListResourcesResult{Resources: out}, nil
}

func (s *Server) middleware(next mcp.MethodHandler) mcp.MethodHandler {
	return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
		switch method {
		case "resources/list":
			return s.listResources(ctx)
		case "tools/call":
			if call, ok := req.(*mcp.CallToolRequest); ok && call.Params != nil {
				if _, known := s.dispatcher.Find(call.Params.Name); !known {
					_, err := s.dispatcher.Call(ctx, call.Params.Name, nil)
					return errorResult(err), nil
				}
			}
		}
		return next(ctx, method, req)
	}
}

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        OverviewPrompt,
		Description: "Summarize Todoist projects and today's tasks",
	}, func(_ context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: "Todoist overview",
			Messages: []*mcp.PromptMessage{{
				Role: "user",
				Content: &mcp.TextContent{
					Text: "Give me an overview of my Todoist projects and the tasks due today. " +
						"Read todoist://today/tasks and list the projects, then group today's tasks by project and flag overdue ones.",
				},
			}},
		}, nil
	})
}
