package cli

import (
	"github.com/spf13/cobra"
)

func newEventsCmd(app *App) *cobra.Command {
	var limit int
	var all bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the local mutation log",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events (oldest-first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			book := ""
			if !all {
				if book, err = bookFor(app, s); err != nil {
					return writeErr(cmd, err)
				}
			}
			evs, err := s.Store.ReadEvents(cmd.Context(), book, limit)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": evs,
				"meta": map[string]any{"count": len(evs), "limit": limit},
			})
		},
	}
	listCmd.Flags().IntVar(&limit, "limit", 200, "Max events to return (0 = all)")
	listCmd.Flags().BoolVar(&all, "all", false, "Include events of every book")

	cmd.AddCommand(listCmd)
	return cmd
}
