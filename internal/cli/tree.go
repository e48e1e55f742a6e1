package cli

import (
	"fmt"

	"kb-cli/internal/model"
	"kb-cli/internal/store"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

func newItemsTreeCmd(app *App) *cobra.Command {
	var showIDs bool

	cmd := &cobra.Command{
		Use:   "tree [item-id]",
		Short: "Print the book (or a subtree) as text",
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
			b, _ := s.DB.FindBook(book)

			r := lipgloss.NewRenderer(cmd.OutOrStdout())
			tr := treeRenderer{
				db:      s.DB,
				book:    book,
				showIDs: showIDs,
				title:   cases.Title(language.English),
				label:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"}),
				root:    r.NewStyle().Bold(true),
			}

			var t *tree.Tree
			if len(args) == 1 {
				it, ok := s.DB.GetItem(book, args[0])
				if !ok {
					return writeErr(cmd, errNotFound("item", args[0]))
				}
				t = tr.node(it.Clone(), map[string]bool{})
			} else {
				t = tree.Root(b.Name)
				seen := map[string]bool{}
				for _, ch := range s.DB.Children(book, nil) {
					t.Child(tr.node(ch, seen))
				}
			}
			t.Enumerator(tree.RoundedEnumerator).
				EnumeratorStyle(tr.label).
				RootStyle(tr.root)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&showIDs, "ids", false, "Show item ids")
	return cmd
}

type treeRenderer struct {
	db      *store.DB
	book    string
	showIDs bool
	title   cases.Caser
	label   lipgloss.Style
	root    lipgloss.Style
}

func (r treeRenderer) text(it model.Item) string {
	s := it.Name + " " + r.label.Render(r.title.String(string(it.Type)))
	if it.Status != "" {
		s += " " + r.label.Render("["+it.Status+"]")
	}
	if r.showIDs {
		s += " " + r.label.Render(it.ID)
	}
	return s
}

// node renders it and its subtree. seen stops at a parent cycle in damaged data.
func (r treeRenderer) node(it model.Item, seen map[string]bool) *tree.Tree {
	t := tree.Root(r.text(it))
	seen[it.ID] = true
	for _, ch := range r.db.Children(r.book, model.StrPtr(it.ID)) {
		if seen[ch.ID] {
			continue
		}
		t.Child(r.node(ch, seen))
	}
	return t
}
