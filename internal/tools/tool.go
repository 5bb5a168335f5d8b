// Package tools holds the catalog of callable operations and dispatches
// named calls with validated arguments to project and task operations.
package tools

import (
	"context"

	"github.com/google/jsonschema-go/jsonschema"

	"todoistmcp/internal/operations"
)

// Tool is a named operation with a declared parameter schema.
type Tool interface {
	// Name returns the catalog name.
	Name() string

	// Description returns the text shown to agents.
	Description() string

	// Schema returns the JSON Schema of the arguments object.
	Schema() *jsonschema.Schema

	// Run executes the tool. args has already been validated against Schema.
	// The result is a confirmation line for mutations or indented JSON for reads.
	Run(ctx context.Context, env Env, args Args) (string, error)
}

// Env carries the operations a tool may call.
type Env struct {
	Projects *operations.Projects
	Tasks    *operations.Tasks
}

// descriptor implements the static half of Tool.
type descriptor struct {
	name        string
	description string
	schema      *jsonschema.Schema
}

func (d descriptor) Name() string               { return d.name }
func (d descriptor) Description() string        { return d.description }
func (d descriptor) Schema() *jsonschema.Schema { return d.schema }
