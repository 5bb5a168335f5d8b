// Package cli implements the todoist-mcp command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"todoistmcp/internal/config"
	"todoistmcp/internal/exitcode"
	"todoistmcp/internal/metrics"
	"todoistmcp/internal/service"
)

// Version is the application version. Set at build time.
var Version = "0.1.0"

// GatewayFactory creates the provider gateway from config.
// Used to inject the backend during dispatch.
type GatewayFactory func(cfg config.Config, m *metrics.Metrics) (service.Gateway, error)

// Dispatcher builds the command tree and maps failures to exit codes.
type Dispatcher struct {
	factory GatewayFactory
}

// NewDispatcher creates a dispatcher with the given gateway factory.
func NewDispatcher(factory GatewayFactory) *Dispatcher {
	return &Dispatcher{factory: factory}
}

// exitError carries the exit code chosen for a failure.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// Run parses arguments and runs the selected command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	root := d.newRootCommand(out, errOut)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		var coded *exitError
		if errors.As(err, &coded) {
			return coded.code
		}
		// Flag parsing and unknown commands surface from cobra unwrapped.
		return exitcode.UserError
	}
	return exitcode.Success
}

func (d *Dispatcher) newRootCommand(out, errOut io.Writer) *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "todoist-mcp",
		Short:         "Serve Todoist projects and tasks over the Model Context Protocol",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				if errors.Is(err, config.ErrUsage) {
					return withCode(exitcode.UserError, err)
				}
				return withCode(exitcode.ConfigError, err)
			}
			return d.serve(cmd.Context(), cfg, errOut)
		},
	}
	if err := config.RegisterFlags(v, root.Flags()); err != nil {
		panic(err)
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return withCode(exitcode.UserError, err)
	})

	root.AddCommand(newToolsCommand(out))
	root.AddCommand(newVersionCommand(out))
	return root
}

func newVersionCommand(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(out, "%s %s\n", config.AppName, strings.TrimSpace(Version))
		},
	}
}
