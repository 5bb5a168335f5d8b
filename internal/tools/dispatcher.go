package tools

import (
	"context"
	"time"

	"pkt.systems/pslog"

	"todoistmcp/internal/failure"
	"todoistmcp/internal/metrics"
)

// Dispatcher routes named calls to tools.
type Dispatcher struct {
	registry *Registry
	env      Env
	logger   pslog.Logger
	metrics  *metrics.Metrics
}

// NewDispatcher creates a dispatcher over registry. m may be nil.
func NewDispatcher(registry *Registry, env Env, logger pslog.Logger, m *metrics.Metrics) *Dispatcher {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Dispatcher{
		registry: registry,
		env:      env,
		logger:   logger.With("component", "tools"),
		metrics:  m,
	}
}

// Tools returns the catalog in its fixed order.
func (d *Dispatcher) Tools() []Tool {
	return d.registry.All()
}

// Find reports whether name is in the catalog.
func (d *Dispatcher) Find(name string) (Tool, bool) {
	return d.registry.Find(name)
}

// Call validates args against the named tool's schema and runs it.
// Unknown names and invalid arguments fail before any operation runs.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) (string, error) {
	start := time.Now()

	tool, ok := d.registry.Find(name)
	if !ok {
		err := failure.New(failure.UnknownTool, "unknown tool: %s", name)
		d.finish(name, start, err)
		return "", err
	}

	bound, err := bind(tool.Schema(), args)
	if err != nil {
		d.finish(name, start, err)
		return "", err
	}

	text, err := tool.Run(ctx, d.env, bound)
	d.finish(name, start, err)
	if err != nil {
		return "", err
	}
	return text, nil
}

func (d *Dispatcher) finish(name string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = failure.KindOf(err).String()
	}
	d.metrics.ToolCall(name, outcome)
	if err != nil {
		d.logger.Warn("tool call failed", "tool", name, "outcome", outcome, "duration", time.Since(start), "error", err)
		return
	}
	d.logger.Info("tool call", "tool", name, "duration", time.Since(start))
}
