package cli

import (
	"fmt"
	"os"

	"github.com/dshills/botflow/pkg/flow"
	"github.com/spf13/cobra"
)

// NewValidateCommand creates the validate command. It works offline and
// needs neither a login nor the drafts database.
func NewValidateCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate an exported graph file",
		Long: `Validate a YAML or JSON graph file.

This checks:
- The file parses as a graph
- The graph matches the graph schema
- Node types and button actions are known and node ids are unique

Connections that point at missing nodes are reported as warnings; the
builder skips drawing them.

Examples:
  botflow validate welcome.yaml
  botflow validate welcome.json --verbose`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()

			format, err := flow.FormatFromPath(path)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			g, err := flow.Decode(data, format)
			if err != nil {
				_, _ = fmt.Fprintln(errOut, "✗ Graph does not match the schema")
				if verbose {
					_, _ = fmt.Fprintf(errOut, "  Error: %v\n", err)
				}
				return err
			}
			_, _ = fmt.Fprintf(out, "✓ %s parsed and matches the graph schema\n", string(format))

			if err := g.Check(); err != nil {
				_, _ = fmt.Fprintln(errOut, "✗ Graph structure invalid")
				if verbose {
					_, _ = fmt.Fprintf(errOut, "  Error: %v\n", err)
				}
				return err
			}
			_, _ = fmt.Fprintln(out, "✓ Graph structure valid")

			for _, c := range g.Dangling() {
				_, _ = fmt.Fprintf(out, "⚠ Connection %s (%s → %s) references a missing node\n",
					c.ID, c.SourceID, c.TargetID)
			}

			if verbose {
				buttons := 0
				for _, n := range g.Nodes {
					buttons += len(n.Data.Buttons)
				}
				_, _ = fmt.Fprintln(out, "\nSummary:")
				_, _ = fmt.Fprintf(out, "  Nodes:       %d\n", len(g.Nodes))
				_, _ = fmt.Fprintf(out, "  Connections: %d\n", len(g.Connections))
				_, _ = fmt.Fprintf(out, "  Buttons:     %d\n", buttons)
			}

			_, _ = fmt.Fprintln(out, "\n✓ Graph is valid")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show error details and a summary")
	return cmd
}
