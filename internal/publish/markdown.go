package publish

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"kb-cli/internal/model"
	"kb-cli/internal/preview"
	"kb-cli/internal/store"

	"gopkg.in/yaml.v3"
)

type frontMatter struct {
	ID       string   `yaml:"id"`
	Type     string   `yaml:"type"`
	Book     string   `yaml:"book"`
	Path     []string `yaml:"path,flow"`
	Status   string   `yaml:"status,omitempty"`
	MimeType string   `yaml:"mimeType,omitempty"`
	Updated  string   `yaml:"updated"`
}

// RenderItemMarkdown renders an article or text file as a markdown page with YAML front matter.
func RenderItemMarkdown(db *store.DB, bookID, itemID string) (string, error) {
	it, ok := db.GetItem(bookID, itemID)
	if !ok {
		return "", fmt.Errorf("item not found: %s", itemID)
	}
	if it.Type.IsContainer() {
		return "", fmt.Errorf("%s %s has no content", it.Type, it.ID)
	}
	bookName := bookID
	if b, ok := db.FindBook(bookID); ok {
		bookName = b.Name
	}

	fm, err := yaml.Marshal(frontMatter{
		ID:       it.ID,
		Type:     string(it.Type),
		Book:     bookName,
		Path:     db.Path(bookID, it.ID),
		Status:   it.Status,
		MimeType: it.MimeType,
		Updated:  it.UpdatedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\n")
	fmt.Fprintf(&buf, "# %s\n\n", strings.TrimSpace(it.Name))

	body := strings.TrimRight(it.Content, "\n")
	switch {
	case it.Type == model.ItemTypeFile && !preview.IsText(it.MimeType):
		fmt.Fprintf(&buf, "_Binary file, %d bytes._\n", it.Size)
	case it.Type == model.ItemTypeFile && it.MimeType != "" && it.MimeType != "text/markdown":
		fmt.Fprintf(&buf, "```\n%s\n```\n", body)
	case body != "":
		buf.WriteString(body)
		buf.WriteString("\n")
	}
	return buf.String(), nil
}

// RenderBookIndex renders the book's tree as nested links. link maps an article or file id to
// its page, relative to the index.
func RenderBookIndex(db *store.DB, bookID string, link func(itemID string) string) (string, error) {
	b, ok := db.FindBook(bookID)
	if !ok {
		return "", fmt.Errorf("book not found: %s", bookID)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", b.Name)
	if d := strings.TrimSpace(b.Description); d != "" {
		buf.WriteString(d + "\n\n")
	}

	seen := map[string]bool{}
	var walk func(parent *string, depth int)
	walk = func(parent *string, depth int) {
		for _, it := range db.Children(bookID, parent) {
			if seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			indent := strings.Repeat("  ", depth)
			if it.Type.IsContainer() {
				fmt.Fprintf(&buf, "%s- **%s**\n", indent, it.Name)
				walk(model.StrPtr(it.ID), depth+1)
				continue
			}
			fmt.Fprintf(&buf, "%s- [%s](%s)\n", indent, it.Name, link(it.ID))
		}
	}
	walk(nil, 0)
	return buf.String(), nil
}
