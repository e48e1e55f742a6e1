package cli

import (
	"kb-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var to string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "publish [item-id]",
		Short: "Write the book (or one article/file) as markdown pages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			book, err := bookFor(app, s)
			if err != nil {
				return writeErr(cmd, err)
			}
			opt := publish.WriteOptions{Overwrite: overwrite}

			var res publish.WriteResult
			if len(args) == 1 {
				if _, ok := s.DB.GetItem(book, args[0]); !ok {
					return writeErr(cmd, errNotFound("item", args[0]))
				}
				res, err = publish.WriteItem(s.DB, book, args[0], to, opt)
			} else {
				res, err = publish.WriteBook(s.DB, book, to, opt)
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			app.logger().WithField("pages", len(res.Written)).Info("published")
			return writeOut(cmd, app, map[string]any{
				"data": res,
				"meta": map[string]any{"count": len(res.Written), "to": to},
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Output directory (required)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
