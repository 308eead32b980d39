package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dshills/botflow/pkg/api"
	"github.com/dshills/botflow/pkg/validation"
	"github.com/spf13/cobra"
)

func newTemplatesCommand(rt *runtime) *cobra.Command {
	var (
		page  int
		limit int
		where string
	)

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List bot templates",
		Long: `List one page of bot templates.

--where filters the page with an expression over id, name, description,
media_id, media, active, published, created, updated, nodes and connections.

Examples:
  botflow templates
  botflow templates --page 2 --limit 20
  botflow templates --where 'active && media == "WhatsApp"'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if where != "" {
				if _, err := api.CompileFilter(where); err != nil {
					return err
				}
			}
			if limit <= 0 {
				limit = rt.cfg.PageSize
			}

			client, err := rt.loggedInClient()
			if err != nil {
				return err
			}
			res, err := client.ListTemplates(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			rows, err := api.FilterTemplates(res.Templates, where)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				_, _ = fmt.Fprintln(out, "No templates found")
			} else {
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				_, _ = fmt.Fprintln(w, "ID\tNAME\tMEDIA\tACTIVE\tPUBLISHED\tUPDATED")
				for _, t := range rows {
					_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
						t.ID, t.Name, t.Media(), yesNo(t.Active()), yesNo(t.Published), t.Updated)
				}
				_ = w.Flush()
			}
			_, _ = fmt.Fprintf(out, "\nPage %d of %d (%d templates)\n", res.Page, res.Pages(), res.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "Templates per page (default: page_size from config)")
	cmd.Flags().StringVar(&where, "where", "", "Filter expression")

	return cmd
}

func newFlowsCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "flows <template-id>",
		Short: "List the bot flows of a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := validation.ValidateTemplateID(id); err != nil {
				return err
			}
			client, err := rt.loggedInClient()
			if err != nil {
				return err
			}
			flows, err := client.ListBotFlows(cmd.Context(), id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(flows) == 0 {
				_, _ = fmt.Fprintf(out, "Template %s has no bot flows\n", id)
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tTYPE\tINITIAL\tACTIVE\tNEXT\tTIMEOUT\tCREATED")
			for _, f := range flows {
				typ := f.BotFlowType
				if typ == "" {
					typ = fmt.Sprintf("type %d", f.BotFlowTypeID)
				}
				next := "-"
				if f.NextFlowID != 0 {
					next = fmt.Sprint(f.NextFlowID)
				}
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%ds\t%s\n",
					f.ID, typ, yesNo(f.IsInitial == 1), yesNo(f.IsActive == 1), next, f.TimeoutDuration, f.CreatedAt)
			}
			return w.Flush()
		},
	}
}

func newPublishCommand(rt *runtime) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "publish <template-id>",
		Short: "Publish or unpublish a template",
		Example: `  botflow publish 12
  botflow publish 12 --off`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := validation.ValidateTemplateID(id); err != nil {
				return err
			}
			client, err := rt.loggedInClient()
			if err != nil {
				return err
			}
			if err := client.SetPublished(cmd.Context(), id, !off); err != nil {
				return err
			}
			state := "published"
			if off {
				state = "unpublished"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Template %s %s\n", id, state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "Unpublish instead")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
