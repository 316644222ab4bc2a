package main

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"post_browser/internal/domain"
	"post_browser/internal/scheduler"
	"post_browser/internal/tui"
)

func newBrowseCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Open the interactive post browser",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The terminal belongs to the UI; logs go to log_file or nowhere.
			a, err := newApp(*configPath, io.Discard)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			program := tea.NewProgram(tui.New(ctx, a.controller), tea.WithAltScreen())

			unsubscribe := a.controller.Subscribe(func(domain.Snapshot) {
				// Observers may fire inside Update; Send would block there.
				go program.Send(tui.StateChangedMsg{})
			})
			defer unsubscribe()

			if interval := a.cfg.Browser.RefreshInterval; interval > 0 {
				sched := scheduler.NewScheduler(a.controller, interval, a.cfg.API.Timeout, a.logger)
				go func() {
					if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
						a.logger.Error("scheduler error", "error", err)
					}
				}()
			}

			_, err = program.Run()
			return err
		},
	}
}
