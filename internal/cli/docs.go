package cli

import (
	"fmt"

	"kb-cli/internal/docs"
	"kb-cli/internal/preview"

	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Read the built-in guides (no topic lists them)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{
					"data":   docs.Topics(),
					"_hints": []string{"kb docs <topic>"},
				})
			}
			body, ok := docs.Get(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("topic", args[0]))
			}
			if !raw && isTerminal(cmd) {
				body = preview.NewRenderer(app.cfg.Preview.Style).Markdown(body, app.cfg.Preview.Width)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), body)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print markdown source")
	return cmd
}
