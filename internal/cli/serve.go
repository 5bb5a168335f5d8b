package cli

import (
	"context"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"pkt.systems/pslog"

	"todoistmcp/internal/backend/todoist"
	"todoistmcp/internal/config"
	"todoistmcp/internal/exitcode"
	"todoistmcp/internal/mcpserver"
	"todoistmcp/internal/metrics"
	"todoistmcp/internal/operations"
	"todoistmcp/internal/resources"
	"todoistmcp/internal/service"
	"todoistmcp/internal/tools"
)

// DefaultGatewayFactory connects to the Todoist API with the configured token.
func DefaultGatewayFactory(cfg config.Config, m *metrics.Metrics) (service.Gateway, error) {
	return todoist.New(cfg.Token, todoist.Options{
		BaseURL: cfg.APIURL,
		Timeout: cfg.Timeout,
		Metrics: m,
	}), nil
}

// openLogger opens the log destination. Stdout is never used because the
// stdio transport owns it.
func openLogger(ctx context.Context, cfg config.Config, errOut io.Writer) (pslog.Logger, func(), error) {
	w := errOut
	closeFn := func() {}
	if cfg.LogFile != "-" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "open log file %s", cfg.LogFile)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}
	logger := pslog.LoggerFromEnv(ctx,
		pslog.WithEnvPrefix("TODOIST_MCP_LOG_"),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.InfoLevel}),
		pslog.WithEnvWriter(w),
	).With("app", config.AppName)
	if cfg.Debug {
		logger = logger.LogLevel(pslog.DebugLevel)
	}
	return logger, closeFn, nil
}

func (d *Dispatcher) serve(ctx context.Context, cfg config.Config, errOut io.Writer) error {
	logger, closeLog, err := openLogger(ctx, cfg, errOut)
	if err != nil {
		return withCode(exitcode.ConfigError, err)
	}
	defer closeLog()

	m := metrics.New()
	var gw service.Gateway
	if cfg.HasToken() {
		factory := d.factory
		if factory == nil {
			factory = DefaultGatewayFactory
		}
		gw, err = factory(cfg, m)
		if err != nil {
			return withCode(exitcode.ConfigError, errors.Wrap(err, "create todoist client"))
		}
	} else {
		logger.Warn("TODOIST_API_TOKEN is not set; every operation will fail until a token is configured")
	}

	projects := operations.NewProjects(gw, logger)
	tasks := operations.NewTasks(gw, logger, nil)
	srv := mcpserver.New(mcpserver.Options{
		Dispatcher: tools.NewDispatcher(tools.NewCatalog(), tools.Env{Projects: projects, Tasks: tasks}, logger, m),
		Resolver:   resources.NewResolver(projects, tasks, logger, m),
		Logger:     logger,
		Metrics:    m,
		Version:    Version,
	})

	logger.Info("starting server", "version", Version, "transport", cfg.Transport, "api_url", cfg.APIURL, "token_configured", cfg.HasToken())
	switch cfg.Transport {
	case config.TransportHTTP:
		err = srv.RunHTTP(ctx, mcpserver.HTTPConfig{Host: cfg.Host, Port: cfg.Port, MCPPath: cfg.MCPPath})
	default:
		err = srv.RunStdio(ctx)
	}
	if err != nil {
		logger.Error("server stopped", "error", err)
		return withCode(exitcode.ServerError, err)
	}
	logger.Info("server stopped")
	return nil
}
