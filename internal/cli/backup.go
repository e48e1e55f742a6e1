package cli

import (
	"kb-cli/internal/store"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write all books and items to a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := store.ExportFile(s.DB, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"path": args[0], "books": len(s.DB.Books)},
			})
		},
	}
}

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the workspace with an exported file (clears history)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.ImportFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Store.SaveContext(cmd.Context(), db); err != nil {
				return writeErr(cmd, err)
			}
			if err := s.ClearHistory(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			report := store.Doctor(db)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"path": args[0], "books": len(db.Books), "selectedBookId": db.SelectedBookID},
				"meta": map[string]any{"issues": len(report.Issues)},
			})
		},
	}
}
