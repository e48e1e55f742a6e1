package tui

import (
	"kb-cli/internal/dragdrop"
	"kb-cli/internal/model"
	"kb-cli/internal/store"
)

type treeRow struct {
	dragdrop.Row
	item        model.Item
	hasChildren bool
	expanded    bool
}

// flattenTree lists the visible rows of a book in render order. A container is open when
// expanded has an entry for it, falling back to the item's AutoExpand flag. Items whose parent
// is missing are shown at the top level so a broken subtree stays reachable.
func flattenTree(db *store.DB, bookID string, expanded map[string]bool) []treeRow {
	items := db.ItemsOf(bookID)
	present := make(map[string]bool, len(items))
	for _, it := range items {
		present[it.ID] = true
	}
	children := map[string][]model.Item{}
	var roots []model.Item
	for _, it := range items {
		pid := it.Parent()
		if pid == "" || !present[pid] {
			roots = append(roots, it)
			continue
		}
		children[pid] = append(children[pid], it)
	}

	var out []treeRow
	seen := map[string]bool{}
	var walk func(it model.Item, depth int)
	walk = func(it model.Item, depth int) {
		if seen[it.ID] {
			return
		}
		seen[it.ID] = true
		open, ok := expanded[it.ID]
		if !ok {
			open = it.AutoExpand
		}
		kids := children[it.ID]
		out = append(out, treeRow{
			Row:         dragdrop.Row{ID: it.ID, Type: it.Type, Indent: depth},
			item:        it,
			hasChildren: len(kids) > 0,
			expanded:    open,
		})
		if !open {
			return
		}
		for _, ch := range kids {
			walk(ch, depth+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}
	return out
}

func dropRows(rows []treeRow) []dragdrop.Row {
	out := make([]dragdrop.Row, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Row)
	}
	return out
}
