package cli

import (
	"fmt"

	"github.com/dshills/botflow/pkg/validation"
	"github.com/spf13/cobra"
)

func newImportCommand(rt *runtime) *cobra.Command {
	var templateID string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a graph file as a local draft",
		Long: `Read a YAML or JSON graph, validate it and save it as the local draft of
a template. The next 'botflow edit <template-id>' opens the draft.

An existing draft for the template is replaced.

Examples:
  botflow import welcome.yaml --template 12`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateTemplateID(templateID); err != nil {
				return err
			}
			files, name, err := graphFileStore(args[0])
			if err != nil {
				return err
			}
			g, err := files.Read(name)
			if err != nil {
				return fmt.Errorf("failed to import %s: %w", args[0], err)
			}
			if err := g.Check(); err != nil {
				return fmt.Errorf("failed to import %s: %w", args[0], err)
			}

			repo, err := rt.draftRepo(cmd.Context())
			if err != nil {
				return err
			}
			d, err := repo.Save(cmd.Context(), templateID, g)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "✓ Saved draft for template %s (%d nodes, %d connections)\n",
				templateID, len(g.Nodes), len(g.Connections))
			if n := len(d.Graph.Dangling()); n > 0 {
				_, _ = fmt.Fprintf(out, "⚠ %d connection(s) reference missing nodes\n", n)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&templateID, "template", "t", "", "Template id the draft belongs to")
	_ = cmd.MarkFlagRequired("template")

	return cmd
}
