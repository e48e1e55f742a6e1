package tui

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 250 * time.Millisecond

// watchWorkspace sends reloadMsg to p whenever the workspace database changes on disk.
// Bursts of writes (WAL + checkpoint) collapse into one reload.
func watchWorkspace(ctx context.Context, p *tea.Program, statePath string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(statePath)); err != nil {
		_ = w.Close()
		return err
	}
	base := filepath.Base(statePath)

	go func() {
		defer w.Close()
		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(ev.Name), base) || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(reloadDebounce)
				} else {
					timer.Reset(reloadDebounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				p.Send(reloadMsg{})
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				p.Send(watchErrMsg{err: err})
			}
		}
	}()
	return nil
}
