package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Rival420/Spynet2/internal/config"
	"github.com/Rival420/Spynet2/internal/push"
	"github.com/Rival420/Spynet2/internal/session"
	"github.com/Rival420/Spynet2/internal/tui"
)

// pushBuffer absorbs bursts of pushes while the dashboard is busy drawing.
const pushBuffer = 64

var dashCmd = &cobra.Command{
	Use:   "dash",
	Short: "Open the terminal dashboard",
	Long: `Open the terminal dashboard. Hosts stream in over the engine's push
channel; select one with Enter or a mouse click to scan it, grab a banner,
look up its vendor or edit its name.

Logs go to spynet.log unless logging.output says otherwise.`,
	Args: cobra.NoArgs,
	RunE: runDash,
}

func init() {
	rootCmd.AddCommand(dashCmd)
}

func runDash(cmd *cobra.Command, _ []string) error {
	a, err := setup(config.DashboardLogFile)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := push.NewListener(a.cfg.Engine.PushURL, a.cfg.Push.ReconnectInterval, a.log.WithComponent("push"))
	if err != nil {
		return err
	}

	events := make(chan session.Event, pushBuffer)

	go func() {
		err := listener.Run(ctx, func(ctx context.Context, ev session.Event) error {
			select {
			case events <- ev:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			a.log.Error().Err(err).Msg("Push listener stopped")
		}
	}()

	model := tui.New(tui.Options{
		Reducer: a.reducer,
		Engine:  a.engine,
		Events:  events,
		Scanner: a.cfg.Scanner,
		Log:     a.log.WithComponent("tui"),
		Context: ctx,
	})

	a.log.Info().Str("engine", a.cfg.Engine.URL).Str("push", a.cfg.Engine.PushURL).Msg("Starting dashboard")

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}

		return err
	}

	return nil
}
