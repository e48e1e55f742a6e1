package tui

import (
	"context"

	"kb-cli/internal/kb"
	"kb-cli/internal/preview"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
)

type Options struct {
	PreviewStyle string
	Log          logrus.FieldLogger
	// Watch reloads the tree when another process writes the workspace.
	Watch bool
}

func Run(ctx context.Context, s *kb.Session, opts Options) error {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	applyColorProfilePreference()
	applyThemePreference()

	m := newAppModel(s, preview.NewRenderer(opts.PreviewStyle), log)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	if opts.Watch {
		wctx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := watchWorkspace(wctx, p, s.Store.StatePath()); err != nil {
			log.WithError(err).Warn("tui: live reload disabled")
		}
	}

	_, err := p.Run()
	return err
}
