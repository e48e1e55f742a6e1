package cli

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"kb-cli/internal/model"
	"kb-cli/internal/mutate"
	"kb-cli/internal/preview"
	"kb-cli/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// maxInlineContent caps how much of an uploaded text file is kept as item content.
const maxInlineContent = 1 << 20

func newFilesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Attach local files to the active book",
	}

	var parent, name string
	upload := &cobra.Command{
		Use:   "upload <path>",
		Short: "Create a file item from a local file",
		Long: strings.TrimSpace(`
Creates a file item with the file's name, mime type and size. Text files
keep their content so they can be previewed; binary files keep only their
metadata. The file itself is not copied anywhere.
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			b, err := os.ReadFile(src)
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

			mt := detectMimeType(src, b)
			in := mutate.AddItemInput{
				Type:     model.ItemTypeFile,
				Name:     name,
				MimeType: mt,
				Size:     int64(len(b)),
			}
			if in.Name == "" {
				in.Name = filepath.Base(src)
			}
			if preview.IsText(mt) && len(b) <= maxInlineContent {
				in.Content = string(b)
			}
			if parent != "" {
				in.ParentID = model.StrPtr(parent)
			}
			res, err := s.Mutator.AddItem(book, in)
			if err := commit(s, err); err != nil {
				return writeErr(cmd, err)
			}
			dest := store.StoragePath(s.DB, book, res.Item.ID)
			app.logger().WithFields(logrus.Fields{
				"book":   book,
				"item":   res.Item.ID,
				"source": src,
				"bytes":  len(b),
			}).Infof("file stored at %s", dest)
			return writeOut(cmd, app, map[string]any{
				"data":   viewOf(s.DB, res.Item),
				"meta":   map[string]any{"inline": in.Content != ""},
				"_hints": []string{"kb preview " + res.Item.ID},
			})
		},
	}
	upload.Flags().StringVar(&parent, "parent", "", "Parent container id")
	upload.Flags().StringVar(&name, "name", "", "Item name (default: the file's base name)")
	cmd.AddCommand(upload)
	return cmd
}

// detectMimeType prefers the extension and falls back to sniffing the content.
func detectMimeType(path string, b []byte) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return "text/markdown"
	case ".yaml", ".yml":
		return "application/yaml"
	}
	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt = http.DetectContentType(b)
	}
	if base, _, err := mime.ParseMediaType(mt); err == nil {
		return base
	}
	return mt
}

func newPreviewCmd(app *App) *cobra.Command {
	var width int
	var style string

	cmd := &cobra.Command{
		Use:   "preview <item-id>",
		Short: "Render an item's content as formatted markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, book, it, err := openItem(cmd, app, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if style == "" {
				style = app.cfg.Preview.Style
			}
			if width <= 0 {
				width = app.cfg.Preview.Width
			}
			out := preview.NewRenderer(style).Item(it, s.DB.Path(book, it.ID), width)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (default: preview.width)")
	cmd.Flags().StringVar(&style, "style", "", "Glamour style (dark|light|auto|notty)")
	return cmd
}
