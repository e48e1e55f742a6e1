package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"kb-cli/internal/config"
	"kb-cli/internal/format"
	"kb-cli/internal/kb"
	"kb-cli/internal/store"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	ConfigFile string
	Book       string
	PrettyJSON bool
	Format     string
	LogLevel   string

	cfg *config.Config
	log *logrus.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "kb",
		Short:        "Knowledge base (local-first) CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive tree view
  kb

  # Create a book and some structure
  kb books add "Handbook"
  kb items add category "Guides"
  kb items add article "Intro" --parent cat-abcde

  # Reparent, then take it back
  kb items move art-fghij cat-klmno --position inside
  kb undo

  # Direct item lookup (shortcut for: kb items show <item-id>)
  kb art-fghij
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.configure(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("KB_DIR", ""), "Path to store dir (default: ./.kb if found upward, else the configured data dir)")
	cmd.PersistentFlags().StringVar(&app.ConfigFile, "config", envOr("KB_CONFIG", ""), "Config file (default: $KB_CONFIG_DIR/config.yaml)")
	cmd.PersistentFlags().StringVar(&app.Book, "book", envOr("KB_BOOK", ""), "Book id (default: the selected book)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output (default: on when stdout is a terminal)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("KB_FORMAT", ""), "Output format (json|edn|yaml)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newBooksCmd(app))
	cmd.AddCommand(newItemsCmd(app))
	cmd.AddCommand(newFilesCmd(app))
	cmd.AddCommand(newPreviewCmd(app))
	cmd.AddCommand(newUndoCmd(app))
	cmd.AddCommand(newRedoCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newEventsCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newTUICmd(app))

	return cmd
}

// configure merges the config file, KB_* env vars and flags. Flags win.
func (app *App) configure(cmd *cobra.Command) error {
	cfg, _, err := config.Load(app.ConfigFile)
	if err != nil {
		return writeErr(cmd, err)
	}
	app.cfg = cfg

	if app.Format == "" {
		app.Format = cfg.Format
	}
	if !cmd.Flags().Changed("pretty") {
		app.PrettyJSON = cfg.Pretty
	}
	level := cfg.Log.Level
	if app.LogLevel != "" {
		if _, err := config.ParseLevel(app.LogLevel); err != nil {
			return writeErr(cmd, err)
		}
		level = app.LogLevel
	}
	app.log = config.NewLogger(cmd.ErrOrStderr(), level)
	return nil
}

func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// resolveDir picks the workspace: --dir, then a .kb dir found upward from cwd, then the
// configured data dir.
func resolveDir(app *App) (string, error) {
	if app.Dir != "" {
		return app.Dir, nil
	}
	if cwd, err := os.Getwd(); err == nil {
		if found, ok := store.DiscoverDir(cwd); ok {
			app.Dir = found
			return found, nil
		}
	}
	if app.cfg != nil && app.cfg.Dir != "" {
		app.Dir = app.cfg.Dir
		return app.Dir, nil
	}
	d, err := store.DefaultDir()
	if err != nil {
		return "", err
	}
	app.Dir = d
	return d, nil
}

func openSession(ctx context.Context, app *App) (*kb.Session, error) {
	dir, err := resolveDir(app)
	if err != nil {
		return nil, err
	}
	maxSize := 0
	if app.cfg != nil {
		maxSize = app.cfg.History.MaxSize
	}
	return kb.Open(ctx, store.Store{Dir: dir}, kb.Options{
		HistoryMaxSize: maxSize,
		Log:            app.logger(),
		Notify: func(msg string) {
			app.logger().Warn(msg)
		},
	})
}

func (app *App) logger() *logrus.Logger {
	if app.log == nil {
		app.log = config.NewLogger(os.Stderr, "warn")
	}
	return app.log
}

// bookFor returns --book or the selected book.
func bookFor(app *App, s *kb.Session) (string, error) {
	id := strings.TrimSpace(app.Book)
	if id == "" {
		id = s.SelectedBook()
	}
	if id == "" {
		return "", errNoBook
	}
	if _, ok := s.DB.FindBook(id); !ok {
		return "", errNotFound("book", id)
	}
	return id, nil
}

// commit surfaces an error the session hit while persisting history or events.
func commit(s *kb.Session, err error) error {
	if err != nil {
		return err
	}
	if perr := s.Err(); perr != nil {
		return fmt.Errorf("persist: %w", perr)
	}
	return nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
