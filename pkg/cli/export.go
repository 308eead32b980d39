package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dshills/botflow/pkg/flow"
	"github.com/dshills/botflow/pkg/storage"
	"github.com/dshills/botflow/pkg/validation"
	"github.com/spf13/cobra"
)

func newExportCommand(rt *runtime) *cobra.Command {
	var (
		outputPath string
		format     string
		fromDraft  bool
	)

	cmd := &cobra.Command{
		Use:   "export <template-id>",
		Short: "Export a template's flow graph to YAML or JSON",
		Long: `Export the nodes and connections of a template.

The graph comes from the API unless --draft is given, in which case the
locally saved draft is exported and no login is needed. With --out the
format follows the file extension; otherwise the graph is written to
stdout in --format.

Examples:
  botflow export 12
  botflow export 12 --format json
  botflow export 12 --draft -o welcome.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := validation.ValidateTemplateID(id); err != nil {
				return err
			}

			var g flow.Graph
			if fromDraft {
				repo, err := rt.draftRepo(cmd.Context())
				if err != nil {
					return err
				}
				d, err := repo.Load(cmd.Context(), id)
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("no draft saved for template %s", id)
				}
				if err != nil {
					return err
				}
				g = d.Graph
			} else {
				client, err := rt.loggedInClient()
				if err != nil {
					return err
				}
				t, err := client.GetTemplate(cmd.Context(), id)
				if err != nil {
					return err
				}
				g = t.Graph()
			}

			if outputPath == "" {
				data, err := flow.Encode(g, flow.Format(format))
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			files, name, err := graphFileStore(outputPath)
			if err != nil {
				return err
			}
			path, err := files.Write(name, g)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d nodes and %d connections to %s\n",
				len(g.Nodes), len(g.Connections), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "out", "o", "", "Output file (.yaml, .yml or .json)")
	cmd.Flags().StringVar(&format, "format", string(flow.FormatYAML), "Format for stdout: yaml or json")
	cmd.Flags().BoolVar(&fromDraft, "draft", false, "Export the local draft instead of the server graph")

	return cmd
}

// graphFileStore returns a store rooted at the directory holding path and
// the file name inside it.
func graphFileStore(path string) (*storage.GraphFileStore, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", fmt.Errorf("invalid path %s: %w", path, err)
	}
	files, err := storage.NewGraphFileStore(filepath.Dir(abs))
	if err != nil {
		return nil, "", err
	}
	return files, filepath.Base(abs), nil
}
