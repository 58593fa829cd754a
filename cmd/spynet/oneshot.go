package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rival420/Spynet2/internal/dispatch"
	"github.com/Rival420/Spynet2/internal/logger"
	"github.com/Rival420/Spynet2/internal/models"
	"github.com/Rival420/Spynet2/internal/push"
	"github.com/Rival420/Spynet2/internal/selection"
	"github.com/Rival420/Spynet2/internal/session"
)

var ErrNoOutcome = errors.New("no result before the deadline")

var (
	waitFor time.Duration

	scanType  string
	scanStart int
	scanEnd   int

	scannerNetwork   string
	scannerPortStart int
	scannerPortEnd   int
	scannerTimeout   time.Duration
	scannerInterval  time.Duration
)

var portScanCmd = &cobra.Command{
	Use:   "portscan <address>",
	Short: "Scan a host's ports",
	Long: `Ask the engine to scan one host and print the open ports.

Examples:
  spynet portscan 192.168.1.10
  spynet portscan 192.168.1.10 --type range --start 20 --end 25
  spynet portscan 192.168.1.10 --type all --wait 5m`,
	Args: cobra.ExactArgs(1),
	RunE: runPortScan,
}

var bannerCmd = &cobra.Command{
	Use:   "banner <address> <port>",
	Short: "Grab the banner a host's service sends",
	Args:  cobra.ExactArgs(2),
	RunE:  runBanner,
}

var vendorCmd = &cobra.Command{
	Use:   "vendor <address>",
	Short: "Look up the vendor behind a host's MAC address",
	Args:  cobra.ExactArgs(1),
	RunE:  runVendor,
}

var scannerCmd = &cobra.Command{
	Use:   "scanner",
	Short: "Control the engine's discovery scanner",
}

var scannerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start discovery on a network",
	Long: `Start the engine's discovery scanner. Flags default to the scanner
section of the configuration.

Examples:
  spynet scanner start --network 192.168.1.0/24
  spynet scanner start --network 10.0.0.0/24 --port-end 100 --interval 30s`,
	Args: cobra.NoArgs,
	RunE: runScannerStart,
}

func init() {
	portScanCmd.Flags().StringVar(&scanType, "type", string(models.ScanPopular), "scan type (popular, range, all)")
	portScanCmd.Flags().IntVar(&scanStart, "start", 1, "first port for --type range")
	portScanCmd.Flags().IntVar(&scanEnd, "end", 1024, "last port for --type range")

	scannerStartCmd.Flags().StringVar(&scannerNetwork, "network", "", "CIDR or address to scan (default scanner.network)")
	scannerStartCmd.Flags().IntVar(&scannerPortStart, "port-start", 0, "first port (default scanner.port_start)")
	scannerStartCmd.Flags().IntVar(&scannerPortEnd, "port-end", 0, "last port (default scanner.port_end)")
	scannerStartCmd.Flags().DurationVar(&scannerTimeout, "timeout", 0, "per-probe timeout (default scanner.timeout)")
	scannerStartCmd.Flags().DurationVar(&scannerInterval, "interval", 0, "pause between sweeps (default scanner.interval)")

	scannerCmd.AddCommand(scannerStartCmd)

	for _, kind := range []dispatch.Kind{dispatch.KindScannerPause, dispatch.KindScannerResume, dispatch.KindScannerStop} {
		verb := strings.TrimPrefix(string(kind), "scanner-")

		scannerCmd.AddCommand(&cobra.Command{
			Use:   verb,
			Short: fmt.Sprintf("%s the discovery scanner", strings.ToUpper(verb[:1])+verb[1:]),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return oneShot(cmd, "", session.ScannerRequested{Kind: kind}, scannerDone(kind), false)
			},
		})
	}

	rootCmd.PersistentFlags().DurationVar(&waitFor, "wait", time.Minute, "how long one-shot commands wait for their result")

	rootCmd.AddCommand(portScanCmd, bannerCmd, vendorCmd, scannerCmd)
}

func runPortScan(cmd *cobra.Command, args []string) error {
	target := args[0]
	ev := session.PortScanRequested{ScanType: models.ScanType(scanType), Start: scanStart, End: scanEnd}

	return oneShot(cmd, target, ev, portScanDone(target), true)
}

func runBanner(cmd *cobra.Command, args []string) error {
	port, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("%w: %q", dispatch.ErrInvalidPort, args[1])
	}

	return oneShot(cmd, args[0], session.BannerGrabRequested{Port: port}, bannerDone(args[0]), false)
}

func runVendor(cmd *cobra.Command, args []string) error {
	return oneShot(cmd, args[0], session.MACLookupRequested{}, vendorDone(args[0]), false)
}

func runScannerStart(cmd *cobra.Command, _ []string) error {
	ev := session.ScannerRequested{
		Kind:      dispatch.KindScannerStart,
		Network:   scannerNetwork,
		PortStart: scannerPortStart,
		PortEnd:   scannerPortEnd,
		Timeout:   scannerTimeout,
		Interval:  scannerInterval,
	}

	return oneShot(cmd, "", ev, scannerDone(dispatch.KindScannerStart), false)
}

// outcome ends a one-shot command.
type outcome struct {
	text string
	err  error
}

// judge inspects every transition and returns non-nil once the command's
// result has been applied.
type judge func(t session.Transition, w io.Writer) *outcome

// oneShot runs a single request through the session loop: it seeds the
// host table, selects target when one is given, posts ev and waits until
// done reports an outcome. listen keeps the push channel open for results
// the engine delivers asynchronously.
func oneShot(cmd *cobra.Command, target string, ev session.Event, done judge, listen bool) error {
	a, err := setup(logger.OutputStderr)
	if err != nil {
		return err
	}
	defer a.Close()

	if start, ok := ev.(session.ScannerRequested); ok && start.Kind == dispatch.KindScannerStart {
		ev = withScannerDefaults(start, a)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithTimeout(ctx, waitFor)
	defer cancel()

	loop := session.NewLoop(a.reducer, a.engine, session.NewState(selection.Size{}, selection.Size{}), a.log.WithComponent("loop"))

	results := make(chan outcome, 1)
	out := cmd.OutOrStdout()

	loop.Observe(func(t session.Transition) {
		if o := done(t, out); o != nil {
			select {
			case results <- *o:
			default:
			}
		}
	})

	go func() { _, _ = loop.Run(ctx) }()

	if listen {
		listener, err := push.NewListener(a.cfg.Engine.PushURL, a.cfg.Push.ReconnectInterval, a.log.WithComponent("push"))
		if err != nil {
			return err
		}

		go func() { _ = listener.Run(ctx, loop.Post) }()
	}

	if target != "" {
		if err := loop.Seed(ctx); err != nil {
			return err
		}

		if err := loop.Send(ctx, session.HostSelected{Address: target}); err != nil {
			return err
		}
	}

	if err := loop.Send(ctx, ev); err != nil {
		return err
	}

	select {
	case o := <-results:
		if o.err != nil {
			return o.err
		}

		fmt.Fprintln(out, o.text)

		return nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w (%s)", ErrNoOutcome, waitFor)
		}

		return ctx.Err()
	}
}

func withScannerDefaults(ev session.ScannerRequested, a *app) session.ScannerRequested {
	sc := a.cfg.Scanner

	if ev.Network == "" {
		ev.Network = sc.Network
	}

	if ev.PortStart == 0 {
		ev.PortStart = sc.PortStart
	}

	if ev.PortEnd == 0 {
		ev.PortEnd = sc.PortEnd
	}

	if ev.Timeout == 0 {
		ev.Timeout = sc.Timeout
	}

	if ev.Interval == 0 {
		ev.Interval = sc.Interval
	}

	return ev
}

// completed returns the result when t applied a command of kind.
func completed(t session.Transition, kind dispatch.Kind) (dispatch.Result, bool) {
	ev, ok := t.Event.(session.CommandCompleted)
	if !ok || ev.Result.Command.Kind != kind {
		return dispatch.Result{}, false
	}

	return ev.Result, true
}

func scannerDone(kind dispatch.Kind) judge {
	return func(t session.Transition, _ io.Writer) *outcome {
		res, ok := completed(t, kind)
		if !ok {
			return nil
		}

		return &outcome{text: t.Next.Notice.Text, err: res.Err}
	}
}

func portScanDone(target string) judge {
	return func(t session.Transition, w io.Writer) *outcome {
		if res, ok := completed(t, dispatch.KindPortScan); ok && res.Acknowledged && res.Err == nil {
			fmt.Fprintf(w, "scan of %s started, waiting for the result\n", target)

			return nil
		}

		before, after := t.Prev.Hosts[target], t.Next.Hosts[target]
		if !before.PortScanPending || after.PortScanPending {
			return nil
		}

		if t.Next.Notice.Err {
			return &outcome{err: errors.New(t.Next.Notice.Text)}
		}

		ports := make([]string, len(after.OpenPorts))
		for i, p := range after.OpenPorts {
			ports[i] = strconv.Itoa(p)
		}

		return &outcome{text: fmt.Sprintf("%s: open ports [%s]", target, strings.Join(ports, " "))}
	}
}

func bannerDone(target string) judge {
	return func(t session.Transition, _ io.Writer) *outcome {
		res, ok := completed(t, dispatch.KindBannerGrab)
		if !ok || res.Command.Target != target {
			return nil
		}

		if res.Err != nil {
			return &outcome{err: res.Err}
		}

		b := t.Next.Selection.Banner
		if b == nil {
			return &outcome{text: selection.BannerResult{Banner: res.Banner}.Display()}
		}

		return &outcome{text: b.Display()}
	}
}

func vendorDone(target string) judge {
	return func(t session.Transition, _ io.Writer) *outcome {
		res, ok := completed(t, dispatch.KindMACLookup)
		if !ok || res.Command.Target != target {
			return nil
		}

		if res.Err != nil {
			return &outcome{err: res.Err}
		}

		return &outcome{text: selection.VendorResult{Vendor: res.Vendor}.Display()}
	}
}
