package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"todoistmcp/internal/exitcode"
	"todoistmcp/internal/tools"
)

// toolDoc is the exported form of a catalog entry.
type toolDoc struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	InputSchema map[string]any `json:"inputSchema" yaml:"inputSchema"`
}

func newToolsCommand(out io.Writer) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Print the tool catalog",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withCode(exitcode.UserError, printCatalog(out, tools.NewCatalog().All(), format))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}

func printCatalog(out io.Writer, catalog []tools.Tool, format string) error {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "text":
		for _, t := range catalog {
			fmt.Fprintf(out, "%s\n  %s\n", t.Name(), t.Description())
			params := t.Schema().Properties
			names := make([]string, 0, len(params))
			for name := range params {
				names = append(names, name)
			}
			sort.Strings(names)
			required := map[string]bool{}
			for _, name := range t.Schema().Required {
				required[name] = true
			}
			for _, name := range names {
				marker := ""
				if required[name] {
					marker = " (required)"
				}
				fmt.Fprintf(out, "    %s: %s%s\n", name, params[name].Type, marker)
			}
		}
		return nil
	case "json", "yaml":
		docs, err := catalogDocs(catalog)
		if err != nil {
			return err
		}
		if format == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(docs)
		}
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(docs); err != nil {
			return err
		}
		return enc.Close()
	}
	return errors.Newf("unknown format %q (want text, json or yaml)", format)
}

// catalogDocs renders each schema through its JSON form so json and yaml
// output agree.
func catalogDocs(catalog []tools.Tool) ([]toolDoc, error) {
	docs := make([]toolDoc, 0, len(catalog))
	for _, t := range catalog {
		data, err := json.Marshal(t.Schema())
		if err != nil {
			return nil, errors.Wrapf(err, "encode schema of %s", t.Name())
		}
		var schema map[string]any
		if err := json.Unmarshal(data, &schema); err != nil {
			return nil, errors.Wrapf(err, "decode schema of %s", t.Name())
		}
		docs = append(docs, toolDoc{Name: t.Name(), Description: t.Description(), InputSchema: schema})
	}
	return docs, nil
}
