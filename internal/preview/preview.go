// Package preview renders article and file content for the terminal.
package preview

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"

	"kb-cli/internal/model"
)

// Styles accepted by NewRenderer.
const (
	StyleDark  = "dark"
	StyleLight = "light"
	StyleAuto  = "auto"
	StyleNoTTY = "notty"
)

// Renderer caches one glamour renderer per wrap width.
type Renderer struct {
	style string

	mu    sync.Mutex
	cache map[int]*glamour.TermRenderer
}

func NewRenderer(style string) *Renderer {
	return &Renderer{style: ResolveStyle(style), cache: map[int]*glamour.TermRenderer{}}
}

func (r *Renderer) Style() string { return r.style }

// ResolveStyle maps a configured style to dark, light or notty. "auto" avoids terminal
// queries: it reads COLORFGBG first and only then asks lipgloss.
func ResolveStyle(style string) string {
	switch s := strings.ToLower(strings.TrimSpace(style)); s {
	case StyleDark, StyleLight, StyleNoTTY:
		return s
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			if bg >= 7 {
				return StyleLight
			}
			return StyleDark
		}
	}
	if lipgloss.HasDarkBackground() {
		return StyleDark
	}
	return StyleLight
}

func styleConfig(name string) ansi.StyleConfig {
	var cfg ansi.StyleConfig
	switch name {
	case StyleLight:
		cfg = styles.LightStyleConfig
	case StyleNoTTY:
		cfg = styles.NoTTYStyleConfig
	default:
		cfg = styles.DarkStyleConfig
	}
	zero := uint(0)
	cfg.Document.Margin = &zero
	return cfg
}

func (r *Renderer) renderer(width int) (*glamour.TermRenderer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tr := r.cache[width]; tr != nil {
		return tr, nil
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithStyles(styleConfig(r.style)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	r.cache[width] = tr
	return tr, nil
}

// Markdown renders md wrapped at width. On renderer errors the source is returned unchanged.
func (r *Renderer) Markdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	tr, err := r.renderer(width)
	if err != nil {
		return md
	}
	out, err := tr.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

// Item renders an item preview: a title line followed by its content. Containers and
// non-text files get a short summary instead of a body.
func (r *Renderer) Item(it model.Item, path []string, width int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", it.Name)
	if len(path) > 1 {
		fmt.Fprintf(&b, "*%s*\n\n", strings.Join(path[:len(path)-1], " / "))
	}
	switch {
	case it.Type.IsContainer():
		fmt.Fprintf(&b, "_%s_\n", it.Type)
	case it.Type == model.ItemTypeFile && !IsText(it.MimeType):
		fmt.Fprintf(&b, "File `%s`, %d bytes.\n", orDefault(it.MimeType, "application/octet-stream"), it.Size)
	case it.Type == model.ItemTypeFile && !isMarkdown(it.MimeType):
		fmt.Fprintf(&b, "```\n%s\n```\n", strings.TrimRight(it.Content, "\n"))
	default:
		if it.Status != "" {
			fmt.Fprintf(&b, "Status: **%s**\n\n", it.Status)
		}
		b.WriteString(it.Content)
	}
	return r.Markdown(b.String(), width)
}

// IsText reports whether content of this mime type can be shown inline.
func IsText(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	return mime == "" || strings.HasPrefix(mime, "text/") || mime == "application/json" || strings.HasSuffix(mime, "+json") || strings.HasSuffix(mime, "yaml")
}

func isMarkdown(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	return mime == "" || mime == "text/markdown" || mime == "text/x-markdown"
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
