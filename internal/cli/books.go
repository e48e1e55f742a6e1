package cli

import (
	"strings"

	"kb-cli/internal/model"

	"github.com/spf13/cobra"
)

type bookView struct {
	model.Book
	Selected bool `json:"selected"`
	Items    int  `json:"items"`
}

func newBooksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "books",
		Aliases: []string{"book"},
		Short:   "Manage books (top-level knowledge bases)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List books (name order)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			out := []bookView{}
			for _, b := range s.DB.SortedBooks() {
				out = append(out, bookView{Book: b, Selected: b.ID == s.SelectedBook(), Items: len(s.DB.ItemsOf(b.ID))})
			}
			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{"count": len(out), "selectedBookId": s.SelectedBook()},
			})
		},
	})

	var description string
	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a book (selected automatically when none is selected)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.Mutator.AddBook(strings.Join(args, " "), description)
			if err := commit(s, err); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": bookView{Book: res.Book, Selected: res.Book.ID == s.SelectedBook()},
				"_hints": []string{
					"kb items add category <name>",
					"kb books use " + res.Book.ID,
				},
			})
		},
	}
	addCmd.Flags().StringVar(&description, "description", "", "Book description")
	cmd.AddCommand(addCmd)

	var newDescription string
	renameCmd := &cobra.Command{
		Use:   "rename <book-id> <name>",
		Short: "Rename a book",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			b, ok := s.DB.FindBook(args[0])
			if !ok {
				return writeErr(cmd, errNotFound("book", args[0]))
			}
			desc := b.Description
			if cmd.Flags().Changed("description") {
				desc = newDescription
			}
			res, err := s.Mutator.RenameBook(b.ID, strings.Join(args[1:], " "), desc)
			if err := commit(s, err); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": bookView{Book: res.Book, Selected: res.Book.ID == s.SelectedBook()},
				"meta": map[string]any{"changed": res.Changed},
			})
		},
	}
	renameCmd.Flags().StringVar(&newDescription, "description", "", "New description")
	cmd.AddCommand(renameCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <book-id>",
		Short: "Delete a book and all of its items (not undoable)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, ok := s.DB.FindBook(args[0]); !ok {
				return writeErr(cmd, errNotFound("book", args[0]))
			}
			res, err := s.Mutator.DeleteBook(args[0])
			if err := commit(s, err); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": res.Book,
				"meta": map[string]any{"selectedBookId": s.SelectedBook()},
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "use <book-id>",
		Short: "Select the active book (clears undo history)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.SwitchBook(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			b, _ := s.DB.FindBook(args[0])
			return writeOut(cmd, app, map[string]any{
				"data": bookView{Book: *b, Selected: true, Items: len(s.DB.ItemsOf(b.ID))},
			})
		},
	})

	return cmd
}
