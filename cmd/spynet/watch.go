package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rival420/Spynet2/internal/logger"
	"github.com/Rival420/Spynet2/internal/models"
	"github.com/Rival420/Spynet2/internal/push"
	"github.com/Rival420/Spynet2/internal/reconciler"
	"github.com/Rival420/Spynet2/internal/selection"
	"github.com/Rival420/Spynet2/internal/session"
	"github.com/Rival420/Spynet2/internal/view"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print host changes as the engine reports them",
	Long: `Follow the engine's push channel without a dashboard and print a line
whenever a host appears, disappears or changes status.

Examples:
  spynet watch
  SPYNET_ENGINE_PUSH_URL=ws://10.0.0.5:5000/ws spynet watch`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	a, err := setup(logger.OutputStderr)
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

	loop := session.NewLoop(a.reducer, a.engine, session.NewState(selection.Size{}, selection.Size{}), a.log.WithComponent("loop"))
	loop.Observe(printChanges(cmd.OutOrStdout()))

	done := make(chan error, 1)

	go func() {
		_, err := loop.Run(ctx)
		done <- err
	}()

	if err := loop.Seed(ctx); err != nil {
		a.log.Warn().Err(err).Msg("Starting without a snapshot")
	}

	if err := listener.Run(ctx, loop.Post); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}

// printChanges writes one line per host change and per push channel
// transition.
func printChanges(w io.Writer) session.Observer {
	return func(t session.Transition) {
		stamp := time.Now().Format("15:04:05")

		switch ev := t.Event.(type) {
		case session.SnapshotReceived:
			c := reconciler.Diff(t.Prev.Hosts, t.Next.Hosts)

			for _, addr := range sorted(c.Added) {
				rec := t.Next.Hosts[addr]
				fmt.Fprintf(w, "%s  + %-15s  %-7s  %s  %s\n", stamp, addr, status(rec.Status), rec.LinkAddress, rec.DisplayVendor())
			}

			for _, addr := range sorted(c.StatusChanged) {
				fmt.Fprintf(w, "%s  ~ %-15s  %s -> %s\n", stamp, addr, status(t.Prev.Hosts[addr].Status), status(t.Next.Hosts[addr].Status))
			}

			for _, addr := range sorted(c.Evicted) {
				fmt.Fprintf(w, "%s  - %s\n", stamp, addr)
			}

		case session.ChannelStatus:
			if ev.Connected {
				fmt.Fprintf(w, "%s  push channel connected\n", stamp)
			} else if t.Prev.Connected {
				fmt.Fprintf(w, "%s  push channel lost: %v\n", stamp, ev.Err)
			}
		}
	}
}

func sorted(addrs []string) []string {
	out := slices.Clone(addrs)
	slices.SortFunc(out, view.CompareAddresses)

	return out
}

func status(s models.Status) string {
	if s == models.StatusUnknown {
		return "unknown"
	}

	return string(s)
}
