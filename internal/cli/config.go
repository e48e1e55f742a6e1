package cli

import (
	"kb-cli/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the config file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective config (file + KB_* env + defaults)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.ConfigFile
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return writeErr(cmd, err)
				}
				path = p
			}
			return writeOut(cmd, app, map[string]any{
				"data": app.cfg,
				"meta": map[string]any{"path": path, "loaded": app.cfg.File != ""},
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults (keeps an existing file)",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.ConfigFile
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return writeErr(cmd, err)
				}
				path = p
			}
			created, err := config.WriteDefault(path)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"path": path, "created": created},
			})
		},
	})
	return cmd
}
