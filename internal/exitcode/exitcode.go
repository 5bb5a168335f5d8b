// Package exitcode defines process exit codes.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a usage error (bad flag, unknown transport).
	UserError = 1

	// ConfigError indicates a configuration error (unreadable env file,
	// log file that cannot be opened).
	ConfigError = 2

	// ServerError indicates the transport stopped with an error.
	ServerError = 3
)
