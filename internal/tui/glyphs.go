package tui

import (
	"os"
	"strings"

	"kb-cli/internal/model"
)

// Some terminal fonts render box and arrow glyphs badly. KB_TUI_GLYPHS=ascii swaps the tree
// affordances for plain ASCII.

type glyphSet struct {
	open     string
	closed   string
	article  string
	file     string
	crumbSep string
	marker   string
}

var (
	unicodeGlyphs = glyphSet{open: "▾ ", closed: "▸ ", article: "• ", file: "◦ ", crumbSep: " › ", marker: "» "}
	asciiGlyphs   = glyphSet{open: "v ", closed: "> ", article: "* ", file: "- ", crumbSep: " > ", marker: ">>"}
)

func glyphsFromEnv() glyphSet {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("KB_TUI_GLYPHS"))) {
	case "ascii":
		return asciiGlyphs
	default:
		return unicodeGlyphs
	}
}

// twisty returns the leading glyph of a tree row.
func (g glyphSet) twisty(r treeRow) string {
	switch {
	case r.item.Type.IsContainer() && r.expanded && r.hasChildren:
		return g.open
	case r.item.Type.IsContainer():
		return g.closed
	case r.item.Type == model.ItemTypeFile:
		return g.file
	default:
		return g.article
	}
}
