// Package failure classifies errors reported to protocol clients.
package failure

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Kind is the class of a failure.
type Kind int

const (
	// Unknown is the kind of errors that were never classified.
	Unknown Kind = iota

	// NotInitialized means no gateway credential was configured.
	NotInitialized

	// NotFound means a requested entity id does not resolve.
	NotFound

	// UnsupportedResource means a resource URI has an unrecognized type or shape.
	UnsupportedResource

	// MissingArgument means a tool call omitted a required value.
	MissingArgument

	// InvalidArgument means a tool argument has the wrong type, an
	// out-of-range value or an undeclared name.
	InvalidArgument

	// UnknownTool means a tool call named an operation outside the catalog.
	UnknownTool

	// GatewayFailure means the provider call faulted or returned corrupt data.
	GatewayFailure
)

var kindNames = map[Kind]string{
	Unknown:             "unknown",
	NotInitialized:      "not_initialized",
	NotFound:            "not_found",
	UnsupportedResource: "unsupported_resource",
	MissingArgument:     "missing_argument",
	InvalidArgument:     "invalid_argument",
	UnknownTool:         "unknown_tool",
	GatewayFailure:      "gateway_failure",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is a classified failure. Msg is safe to show to clients; Err keeps
// the underlying cause for logs.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.Err.Error()
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New returns a failure of the given kind.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns a failure of the given kind caused by err.
func Wrap(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind of the outermost failure in err's chain.
func KindOf(err error) Kind {
	var f *Error
	if errors.As(err, &f) {
		return f.Kind
	}
	return Unknown
}

// Is reports whether err carries a failure of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Missing returns a MissingArgument failure naming the field.
func Missing(field string) error {
	return New(MissingArgument, "missing required argument: %s", field)
}

// Message returns the client-facing text of err: the message of the
// outermost failure without its cause, or err's full text when unclassified.
func Message(err error) string {
	var f *Error
	if errors.As(err, &f) {
		return f.Msg
	}
	return err.Error()
}
