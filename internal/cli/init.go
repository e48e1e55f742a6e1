package cli

import (
	"path/filepath"

	"kb-cli/internal/store"

	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var here bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize local storage",
		Long:  "Creates the workspace store. With --here the store is ./.kb, which later commands find by walking up from the current directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if here && app.Dir == "" {
				app.Dir = filepath.Join(".", ".kb")
			}
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := s.Store.SaveContext(cmd.Context(), s.DB); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"dir":        app.Dir,
					"sqlitePath": s.Store.StatePath(),
					"books":      len(s.DB.Books),
				},
				"_hints": []string{
					"kb books add <name>",
				},
			})
		},
	}
	cmd.Flags().BoolVar(&here, "here", false, "Create the store in ./.kb")
	return cmd
}

func newDoctorCmd(app *App) *cobra.Command {
	var fail bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the stored hierarchy (orphans, cycles, cross-book parents)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}

			report := store.Doctor(s.DB)

			meta := map[string]any{
				"issues":    len(report.Issues),
				"hasErrors": report.HasErrors(),
			}
			hints := []string{
				"kb items tree",
			}

			if err := writeOut(cmd, app, map[string]any{
				"data":   report,
				"meta":   meta,
				"_hints": hints,
			}); err != nil {
				return err
			}

			if fail && report.HasErrors() {
				return store.ErrDoctorIssuesFound
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&fail, "fail", false, "Exit with non-zero status if errors are found")
	return cmd
}
