package cli

import (
	"fmt"

	"github.com/dshills/botflow/pkg/tui"
	"github.com/dshills/botflow/pkg/validation"
	"github.com/spf13/cobra"
)

func newEditCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "edit [template-id]",
		Short: "Browse templates and edit their flows in the terminal UI",
		Long: `Launch the terminal UI.

Without an argument it opens the template browser. With a template id it
opens that template's flow in the builder; a local draft saved earlier
takes the place of the server graph.

Builder keys:
  drag a card header to move it, right-click a card for its menu
  a        add a node (palette)      c   connect from the selected node
  Tab / e  edit in the panel          x   delete the selected node
  + - 0    zoom                       hjkl / arrows  pan
  Ctrl+S   save draft                 b   back to templates

Examples:
  botflow edit
  botflow edit 12`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var id string
			if len(args) > 0 {
				id = args[0]
				if err := validation.ValidateTemplateID(id); err != nil {
					return err
				}
			}

			client, err := rt.loggedInClient()
			if err != nil {
				return err
			}
			repo, err := rt.draftRepo(cmd.Context())
			if err != nil {
				return err
			}

			app, err := tui.NewApp(tui.Config{
				Templates: client,
				Drafts:    repo,
				PageSize:  rt.cfg.PageSize,
				Logger:    rt.logger,
			})
			if err != nil {
				return fmt.Errorf("failed to start terminal UI: %w", err)
			}
			runErr := app.Run(cmd.Context(), id)
			if err := app.Close(); err != nil && runErr == nil {
				runErr = err
			}
			return runErr
		},
	}
}
