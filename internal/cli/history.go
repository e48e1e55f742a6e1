package cli

import (
	"kb-cli/internal/kb"

	"github.com/spf13/cobra"
)

func newUndoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Undo the latest change to the selected book",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			desc, err := s.Undo(cmd.Context())
			return writeReplay(cmd, app, s, "undo", desc, err)
		},
	}
}

func newRedoCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Redo the latest undone change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			desc, err := s.Redo(cmd.Context())
			return writeReplay(cmd, app, s, "redo", desc, err)
		},
	}
}

func writeReplay(cmd *cobra.Command, app *App, s *kb.Session, op, desc string, err error) error {
	if err != nil {
		return writeErr(cmd, err)
	}
	return writeOut(cmd, app, map[string]any{
		"data": map[string]any{
			"op":          op,
			"applied":     desc != "",
			"description": desc,
		},
		"meta": map[string]any{
			"canUndo": s.History.CanUndo(),
			"canRedo": s.History.CanRedo(),
		},
	})
}

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the undo/redo history of the selected book",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List undo and redo entries (newest first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			undo, redo := s.History.UndoEntries(), s.History.RedoEntries()
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"undo": undo,
					"redo": redo,
				},
				"meta": map[string]any{
					"bookId":  s.SelectedBook(),
					"maxSize": s.History.MaxSize,
				},
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop both stacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.ClearHistory(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"cleared": true}})
		},
	})
	return cmd
}
