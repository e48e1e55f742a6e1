package cli

import (
	"errors"
	"io"
	stdlog "log"
	"os"
	"strings"

	"kb-cli/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive tree view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noWatch {
				return runTUIWith(cmd, app, false)
			}
			return runTUI(cmd, app)
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload when other processes change the workspace")
	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	return runTUIWith(cmd, app, true)
}

func runTUIWith(cmd *cobra.Command, app *App, watch bool) error {
	if !isTerminal(cmd) {
		return writeErr(cmd, errors.New("the tree view needs a terminal; run `kb --help` for scriptable commands"))
	}
	s, err := openSession(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	restore, err := redirectLogForTUI(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	defer restore()
	return tui.Run(cmd.Context(), s, tui.Options{
		PreviewStyle: app.cfg.Preview.Style,
		Log:          app.logger(),
		Watch:        watch,
	})
}

// redirectLogForTUI sends log lines to log.file, or drops them, while the tree view owns the
// terminal. The returned func restores stderr logging.
func redirectLogForTUI(app *App) (func(), error) {
	logger := app.logger()
	prev := logger.Out
	path := ""
	if app.cfg != nil {
		path = strings.TrimSpace(app.cfg.Log.File)
	}
	if path == "" {
		logger.SetOutput(io.Discard)
		return func() { logger.SetOutput(prev) }, nil
	}
	f, err := tea.LogToFile(path, "kb ")
	if err != nil {
		return nil, err
	}
	logger.SetOutput(f)
	return func() {
		logger.SetOutput(prev)
		stdlog.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}
