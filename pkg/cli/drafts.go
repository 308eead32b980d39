package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dshills/botflow/pkg/storage"
	"github.com/spf13/cobra"
)

func newDraftsCommand(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drafts",
		Short: "Manage locally saved drafts",
	}
	cmd.AddCommand(newDraftsListCommand(rt))
	cmd.AddCommand(newDraftsRemoveCommand(rt))
	return cmd
}

func newDraftsListCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List drafts, most recent first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := rt.draftRepo(cmd.Context())
			if err != nil {
				return err
			}
			drafts, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(drafts) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No drafts")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "TEMPLATE\tNODES\tCONNECTIONS\tSAVED")
			for _, d := range drafts {
				_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%s\n",
					d.TemplateID, d.Nodes, d.Connections, d.SavedAt.Local().Format(time.DateTime))
			}
			return w.Flush()
		},
	}
}

func newDraftsRemoveCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <template-id>",
		Aliases: []string{"remove"},
		Short:   "Discard the draft of a template",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := rt.draftRepo(cmd.Context())
			if err != nil {
				return err
			}
			if err := repo.Delete(cmd.Context(), args[0]); err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					return fmt.Errorf("no draft saved for template %s", args[0])
				}
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed draft for template %s\n", args[0])
			return nil
		},
	}
}
