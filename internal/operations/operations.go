// Package operations implements project and task primitives on top of a
// service.Gateway. Every gateway fault is logged and returned as a
// classified failure; raw provider errors never escape.
package operations

import (
	"time"

	"github.com/cockroachdb/errors"
	"pkt.systems/pslog"

	"todoistmcp/internal/failure"
	"todoistmcp/internal/service"
)

// Clock supplies the current time for date windows.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// errNotInitialized is returned by every operation when no gateway is configured.
var errNotInitialized = failure.New(failure.NotInitialized,
	"todoist client not initialized: set TODOIST_API_TOKEN or pass --token")

func orNoop(logger pslog.Logger) pslog.Logger {
	if logger == nil {
		return pslog.NoopLogger()
	}
	return logger
}

// gatewayError logs a failed gateway call and classifies it.
// action reads like "complete task 123".
func gatewayError(logger pslog.Logger, err error, action string) error {
	status, body := service.StatusOf(err)
	logger.Error("gateway call failed",
		"action", action,
		"status", status,
		"body", body,
		"error", err,
	)
	switch {
	case errors.Is(err, service.ErrNotFound):
		return failure.Wrap(failure.NotFound, err, "failed to %s: not found", action)
	case errors.Is(err, service.ErrUnauthorized):
		return failure.Wrap(failure.GatewayFailure, err, "failed to %s: token rejected", action)
	default:
		return failure.Wrap(failure.GatewayFailure, err, "failed to %s", action)
	}
}
