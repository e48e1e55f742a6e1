package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"kb-cli/internal/kb"
	"kb-cli/internal/model"
	"kb-cli/internal/mutate"
	"kb-cli/internal/store"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"
)

type itemView struct {
	model.Item
	Path        []string `json:"path"`
	StoragePath string   `json:"storagePath"`
}

func viewOf(db *store.DB, it model.Item) itemView {
	return itemView{
		Item:        it,
		Path:        db.Path(it.BookID, it.ID),
		StoragePath: store.StoragePath(db, it.BookID, it.ID),
	}
}

// openItem opens the session and resolves an item of the active book.
func openItem(cmd *cobra.Command, app *App, id string) (*kb.Session, string, model.Item, error) {
	s, err := openSession(cmd.Context(), app)
	if err != nil {
		return nil, "", model.Item{}, err
	}
	book, err := bookFor(app, s)
	if err != nil {
		return nil, "", model.Item{}, err
	}
	it, ok := s.DB.GetItem(book, id)
	if !ok {
		return nil, "", model.Item{}, errNotFound("item", id)
	}
	return s, book, it.Clone(), nil
}

func newItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "items",
		Aliases: []string{"item"},
		Short:   "Manage categories, folders, articles and files of the active book",
	}

	cmd.AddCommand(newItemsAddCmd(app))
	cmd.AddCommand(newItemsShowCmd(app))
	cmd.AddCommand(newItemsListCmd(app))
	cmd.AddCommand(newItemsTreeCmd(app))
	cmd.AddCommand(newItemsRenameCmd(app))
	cmd.AddCommand(newItemsMoveCmd(app))
	cmd.AddCommand(newItemsMoveEndCmd(app))
	cmd.AddCommand(newItemsDuplicateCmd(app))
	cmd.AddCommand(newItemsDeleteCmd(app))
	cmd.AddCommand(newItemsSetStatusCmd(app))
	cmd.AddCommand(newItemsSetContentCmd(app))
	cmd.AddCommand(newItemsExpandCmd(app, "expand", true))
	cmd.AddCommand(newItemsExpandCmd(app, "collapse", false))
	return cmd
}

func newItemsAddCmd(app *App) *cobra.Command {
	var parent, status, content string

	cmd := &cobra.Command{
		Use:   "add <category|folder|article|file> <name>",
		Short: "Create an item (top level unless --parent is given)",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := model.ParseItemType(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			book, err := bookFor(app, s)
			if err != nil {
				return writeErr(cmd, err)
			}
			in := mutate.AddItemInput{
				Type:    typ,
				Name:    strings.Join(args[1:], " "),
				Status:  status,
				Content: content,
			}
			if strings.TrimSpace(parent) != "" {
				in.ParentID = model.StrPtr(parent)
			}
			res, err := s.Mutator.AddItem(book, in)
			if err := commit(s, err); err != nil {
				return writeErr(cmd, err)
			}
			hints := []string{"kb items show " + res.Item.ID}
			if typ.IsContainer() {
				hints = append(hints, fmt.Sprintf("kb items add article <name> --parent %s", res.Item.ID))
			}
			return writeOut(cmd, app, map[string]any{"data": viewOf(s.DB, res.Item), "_hints": hints})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Parent container id")
	cmd.Flags().StringVar(&status, "status", "", "Article status (draft|review|published)")
	cmd.Flags().StringVar(&content, "content", "", "Initial content (articles and files)")
	return cmd
}

func newItemsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show an item with its path and children",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, book, it, err := openItem(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			children := []itemView{}
			for _, ch := range s.DB.Children(book, model.StrPtr(it.ID)) {
				children = append(children, viewOf(s.DB, ch))
			}
			return writeOut(cmd, app, map[string]any{
				"data": viewOf(s.DB, it),
				"meta": map[string]any{
					"children":  children,
					"ancestors": s.DB.Ancestors(book, it.ID),
				},
			})
		},
	}
}

func newItemsListCmd(app *App) *cobra.Command {
	var parent, typ, pathGlob string
	var top bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items in render order",
		Long: strings.TrimSpace(`
Lists every item of the active book in tree order.

--path filters by storage path, a slash-separated slug of the item's
location without the book segment (e.g. guides/setup/intro). Globs use
doublestar syntax: 'guides/**' matches everything under Guides.
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			book, err := bookFor(app, s)
			if err != nil {
				return writeErr(cmd, err)
			}
			var want model.ItemType
			if typ != "" {
				if want, err = model.ParseItemType(typ); err != nil {
					return writeErr(cmd, err)
				}
			}
			if pathGlob != "" && !doublestar.ValidatePattern(pathGlob) {
				return writeErr(cmd, fmt.Errorf("invalid --path pattern: %q", pathGlob))
			}

			var items []model.Item
			switch {
			case parent != "":
				if _, ok := s.DB.GetItem(book, parent); !ok {
					return writeErr(cmd, errNotFound("item", parent))
				}
				items = s.DB.Descendants(book, parent)
			case top:
				items = s.DB.Children(book, nil)
			default:
				items = treeOrder(s.DB, book)
			}

			out := []itemView{}
			for _, it := range items {
				if want != "" && it.Type != want {
					continue
				}
				v := viewOf(s.DB, it)
				if pathGlob != "" {
					rel := v.StoragePath
					if i := strings.IndexByte(rel, '/'); i >= 0 {
						rel = rel[i+1:]
					}
					if ok, _ := doublestar.Match(pathGlob, rel); !ok {
						continue
					}
				}
				out = append(out, v)
			}
			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{"count": len(out), "bookId": book},
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "Only the subtree under this container")
	cmd.Flags().BoolVar(&top, "top", false, "Only top-level items")
	cmd.Flags().StringVar(&typ, "type", "", "Filter by type (category|folder|article|file)")
	cmd.Flags().StringVar(&pathGlob, "path", "", "Filter by storage path glob (e.g. 'guides/**')")
	return cmd
}

// treeOrder lists all items depth-first, top-level items first.
func treeOrder(db *store.DB, book string) []model.Item {
	out := []model.Item{}
	for _, root := range db.Children(book, nil) {
		out = append(out, root)
		out = append(out, db.Descendants(book, root.ID)...)
	}
	return out
}

func newItemsRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <item-id> <name>",
		Short: "Rename an item",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, book, it, err := openItem(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.Mutator.RenameItem(book, it.ID, strings.Join(args[1:], " "))
			return writeResult(cmd, app, s, res, err)
		},
	}
}

func newItemsMoveCmd(app *App) *cobra.Command {
	var position string

	cmd := &cobra.Command{
		Use:   "move <item-id> <target-id>",
		Short: "Reparent an item relative to a target",
		Long: strings.TrimSpace(`
Moves an item next to or into a target, the way a tree drop does.

A category or folder target always receives the item as a child, whatever
the position. A leaf target (article, file) makes the item its sibling.
Moving an item into its own subtree is rejected.
`),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := model.ParsePosition(position)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, book, it, err := openItem(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			target, ok := s.DB.GetItem(book, args[1])
			if !ok {
				return writeErr(cmd, errNotFound("item", args[1]))
			}
			res, err := s.Mutator.Move(book, it.ID, target.ID, pos, it.Type, target.Type)
			if errors.Is(err, mutate.ErrCycle) {
				err = fmt.Errorf("cannot move %s under itself or its descendant %s: %w", it.ID, target.ID, err)
			}
			return writeResult(cmd, app, s, res, err)
		},
	}
	cmd.Flags().StringVar(&position, "position", "inside", "Drop position (before|after|inside)")
	return cmd
}

func newItemsMoveEndCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "move-end <item-id>",
		Short: "Move an item to the end of the tree (categories: top level; others: newest category)",
		Long: `Move an item as if it were dropped on the empty space below the tree.

Categories go to the top level. Anything else goes into the most recently created
category (by creation time, not by its position in the tree), skipping categories
inside the item itself. With no such category the item goes to the top level.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, book, it, err := openItem(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.Mutator.MoveToEnd(book, it.ID, it.Type)
			return writeResult(cmd, app, s, res, err)
		},
	}
}

func newItemsDuplicateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "duplicate <item-id>",
		Short: "Copy an item and its subtree next to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, book, it, err := openItem(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.Mutator.DuplicateItem(book, it.ID)
			return writeResult(cmd, app, s, res, err)
		},
	}
}

func newItemsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete an item and everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, book, it, err := openItem(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.Mutator.DeleteItem(book, it.ID)
			if err := commit(s, err); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   res.Item,
				"meta":   res.EventPayload,
				"_hints": []string{"kb undo"},
			})
		},
	}
}

func newItemsSetStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-status <item-id> <draft|review|published|none>",
		Short: "Set an article's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, book, it, err := openItem(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			status := args[1]
			if strings.EqualFold(status, "none") {
				status = ""
			}
			res, err := s.Mutator.SetStatus(book, it.ID, status)
			return writeResult(cmd, app, s, res, err)
		},
	}
}

func newItemsSetContentCmd(app *App) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "set-content <item-id> [content|-]",
		Short: "Replace an article's or file's content (from an arg, --file, or stdin with -)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content string
			switch {
			case file != "":
				b, err := os.ReadFile(file)
				if err != nil {
					return writeErr(cmd, err)
				}
				content = string(b)
			case len(args) == 2 && args[1] == "-":
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return writeErr(cmd, err)
				}
				content = string(b)
			case len(args) == 2:
				content = args[1]
			default:
				return writeErr(cmd, errors.New("provide content, --file, or - for stdin"))
			}
			s, book, it, err := openItem(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.Mutator.SetContent(book, it.ID, content)
			return writeResult(cmd, app, s, res, err)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read content from a file")
	return cmd
}

func newItemsExpandCmd(app *App, use string, expand bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <item-id>",
		Short: fmt.Sprintf("Mark a container to %s by default in the tree view", use),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, book, it, err := openItem(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := s.Mutator.SetAutoExpand(book, it.ID, expand)
			return writeResult(cmd, app, s, res, err)
		},
	}
}

// writeResult prints the item a mutation produced, with whether anything changed.
func writeResult(cmd *cobra.Command, app *App, s *kb.Session, res mutate.Result, err error) error {
	if err := commit(s, err); err != nil {
		return writeErr(cmd, err)
	}
	meta := map[string]any{"changed": res.Changed}
	for k, v := range res.EventPayload {
		meta[k] = v
	}
	var hints []string
	if res.Changed {
		hints = []string{"kb undo"}
	}
	env := map[string]any{"data": viewOf(s.DB, res.Item), "meta": meta}
	if len(hints) > 0 {
		env["_hints"] = hints
	}
	return writeOut(cmd, app, env)
}
