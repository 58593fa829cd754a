package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Rival420/Spynet2/internal/dispatch"
	"github.com/Rival420/Spynet2/internal/logger"
	"github.com/Rival420/Spynet2/internal/models"
	"github.com/Rival420/Spynet2/internal/reconciler"
	"github.com/Rival420/Spynet2/internal/selection"
)

// DefaultCommandTimeout is handed to the engine when the reducer has none.
const DefaultCommandTimeout = 2 * time.Second

// Reducer applies events to State. It is a value with no mutable state of
// its own, so one Reducer can serve any number of loops.
type Reducer struct {
	Policy         reconciler.Policy
	Layout         selection.Layout
	CommandTimeout time.Duration
	Log            logger.Logger // defaults to logger.NewTestLogger

	// NewID and Now default to uuid.New and time.Now.
	NewID func() uuid.UUID
	Now   func() time.Time
}

// Reduce returns the state after ev, the commands the caller must execute,
// and the validation error when ev was a rejected request. A rejected
// request changes nothing but the notice.
func (r Reducer) Reduce(s State, ev Event) (State, []dispatch.Command, error) {
	switch ev := ev.(type) {
	case SnapshotReceived:
		return r.snapshot(s, ev.Snapshot), nil, nil

	case PortScanReported:
		return r.portScanReported(s, ev.Report), nil, nil

	case ChannelStatus:
		s.Connected = ev.Connected
		if ev.Err != nil {
			s = r.fail(s, fmt.Errorf("push channel: %w", ev.Err))
		}

		if !ev.Connected {
			s = r.abandonPushedScans(s)
		}

		return s, nil, nil

	case HostSelected:
		if ev.Address == "" {
			s.Selection = s.Selection.Close()

			return s, nil, nil
		}

		rec, known := s.Hosts[ev.Address]
		s.Selection = r.Layout.Open(ev.Address, rec, known, ev.Anchor, s.PanelSize, s.Viewport)

		return s, nil, nil

	case SelectionClosed:
		s.Selection = s.Selection.Close()

		return s, nil, nil

	case ViewportResized:
		s.Viewport = ev.Viewport
		if ev.Panel != (selection.Size{}) {
			s.PanelSize = ev.Panel
		}

		s.Selection = r.Layout.Reflow(s.Selection, s.PanelSize, s.Viewport)

		return s, nil, nil

	case DraftEdited:
		if !s.Selection.Active() {
			return r.reject(s, dispatch.ErrNoSelection)
		}

		s.Selection.Draft = ev.Draft

		return s, nil, nil

	case FiltersChanged:
		s.Filters = ev.Filters

		return s, nil, nil

	case PortScanRequested:
		return r.requestPortScan(s, ev)

	case BannerGrabRequested:
		return r.issue(s)(dispatch.BannerGrab(r.target(s), ev.Port, r.timeout()))

	case MACLookupRequested:
		return r.issue(s)(dispatch.MACLookup(r.target(s)))

	case HostUpdateRequested:
		d := s.Selection.Draft

		return r.issue(s)(dispatch.HostUpdate(r.target(s), d.Hostname, d.IsDHCP))

	case ScannerRequested:
		if ev.Kind == dispatch.KindScannerStart {
			return r.issue(s)(dispatch.ScannerStart(ev.Network, ev.PortStart, ev.PortEnd, ev.Timeout, ev.Interval))
		}

		return r.issue(s)(dispatch.ScannerControl(ev.Kind))

	case CommandCompleted:
		return r.complete(s, ev.Result), nil, nil

	default:
		r.log().Warn().Str("event", fmt.Sprintf("%T", ev)).Msg("Ignoring unknown event")

		return s, nil, nil
	}
}

func (r Reducer) snapshot(s State, snap models.Snapshot) State {
	prev := s.Hosts
	s.Hosts = r.Policy.Reconcile(prev, snap)

	changes := reconciler.Diff(prev, s.Hosts)
	for _, addr := range changes.Evicted {
		// A scan result that arrives after eviction must not bring the
		// host back.
		s.Ledger = s.Ledger.Drop(addr)
	}

	if !changes.Empty() {
		r.log().Debug().
			Strs("added", changes.Added).
			Strs("evicted", changes.Evicted).
			Strs("status_changed", changes.StatusChanged).
			Int("hosts", len(s.Hosts)).
			Msg("Reconciled snapshot")
	}

	return s
}

func (r Reducer) requestPortScan(s State, ev PortScanRequested) (State, []dispatch.Command, error) {
	cmd, err := dispatch.PortScan(r.target(s), ev.ScanType, ev.Start, ev.End, r.timeout())
	if err != nil {
		return r.reject(s, err)
	}

	rec, ok := s.Hosts[cmd.Target]
	if !ok {
		return r.reject(s, fmt.Errorf("%w: %s", ErrUnknownHost, cmd.Target))
	}

	cmd = r.stamp(cmd)

	ledger, err := s.Ledger.Begin(cmd.Target, cmd.ID)
	if err != nil {
		return r.reject(s, fmt.Errorf("%w: %s", err, cmd.Target))
	}

	rec.PortScanPending = true
	s.Ledger = ledger
	s.Hosts = s.Hosts.With(rec)

	r.log().Info().Str("command_id", cmd.ID.String()).Str("host", cmd.Target).
		Str("scan_type", string(ev.ScanType)).Msg("Dispatching port scan")

	return s, []dispatch.Command{cmd}, nil
}

// issue adapts a command builder's return values into a Reduce result.
func (r Reducer) issue(s State) func(dispatch.Command, error) (State, []dispatch.Command, error) {
	return func(cmd dispatch.Command, err error) (State, []dispatch.Command, error) {
		if err != nil {
			return r.reject(s, err)
		}

		cmd = r.stamp(cmd)
		r.trace(cmd, "Dispatching command")

		return s, []dispatch.Command{cmd}, nil
	}
}

func (r Reducer) complete(s State, res dispatch.Result) State {
	cmd := res.Command

	switch cmd.Kind {
	case dispatch.KindPortScan:
		if res.Err == nil && res.Acknowledged {
			r.trace(cmd, "Port scan acknowledged, waiting for result push")
			s.Ledger = s.Ledger.Acknowledge(cmd.Target, cmd.ID)

			return r.info(s, "Port scan started on %s", cmd.Target)
		}

		return r.finishPortScan(s, cmd, res.Ports, res.Err)

	case dispatch.KindBannerGrab:
		if !s.Selection.Matches(cmd.Target) {
			r.trace(cmd, "Discarding stale banner")

			return s
		}

		req, _ := cmd.Payload.(models.BannerGrabRequest)
		result := &selection.BannerResult{Port: req.Port, Banner: res.Banner}

		if res.Err != nil {
			result.Err = res.Err.Error()
			s = r.fail(s, res.Err)
		}

		s.Selection.Banner = result

		return s

	case dispatch.KindMACLookup:
		if !s.Selection.Matches(cmd.Target) {
			r.trace(cmd, "Discarding stale vendor lookup")

			return s
		}

		if res.Err != nil {
			s.Selection.Vendor = &selection.VendorResult{Err: res.Err.Error()}

			return r.fail(s, res.Err)
		}

		s.Selection.Vendor = &selection.VendorResult{Vendor: res.Vendor}

		return r.info(s, "Vendor of %s: %s", cmd.Target, s.Selection.Vendor.Display())

	case dispatch.KindHostUpdate:
		if res.Err != nil {
			return r.fail(s, res.Err)
		}

		return r.info(s, "Update for %s sent", cmd.Target)

	default:
		if res.Err != nil {
			return r.fail(s, res.Err)
		}

		r.log().Info().Str("command", cmd.String()).Str("status", res.Status).Msg("Scanner acknowledged")

		return r.info(s, "%s: %s", cmd.Kind, res.Status)
	}
}

func (r Reducer) portScanReported(s State, rep models.PortScanReport) State {
	id, ok := s.Ledger.Outstanding(rep.Host)
	if !ok {
		r.log().Debug().Str("host", rep.Host).Msg("Ignoring port scan result with no outstanding scan")

		return s
	}

	ports := []int(rep.OpenPorts)
	if ports == nil {
		ports = []int{}
	}

	return r.finishPortScan(s, dispatch.Command{ID: id, Kind: dispatch.KindPortScan, Target: rep.Host}, ports, nil)
}

// abandonPushedScans fails every acknowledged scan: pushes missed while the
// channel was down are not redelivered.
func (r Reducer) abandonPushedScans(s State) State {
	for _, addr := range s.Ledger.AwaitingPush() {
		id, _ := s.Ledger.Outstanding(addr)
		s = r.finishPortScan(s, dispatch.Command{ID: id, Kind: dispatch.KindPortScan, Target: addr}, nil, ErrResultLost)
	}

	return s
}

func (r Reducer) finishPortScan(s State, cmd dispatch.Command, ports []int, err error) State {
	ledger, ok := s.Ledger.Finish(cmd.Target, cmd.ID)
	if !ok {
		r.trace(cmd, "Discarding port scan result that is no longer outstanding")

		return s
	}

	s.Ledger = ledger

	rec, exists := s.Hosts[cmd.Target]
	if !exists {
		return s
	}

	rec.PortScanPending = false

	if err != nil {
		s.Hosts = s.Hosts.With(rec)

		return r.fail(s, fmt.Errorf("port scan %s: %w", cmd.Target, err))
	}

	rec.OpenPorts = ports
	s.Hosts = s.Hosts.With(rec)

	r.log().Info().Str("host", cmd.Target).Ints("open_ports", ports).Msg("Port scan finished")

	return r.info(s, "%s: %d open ports", cmd.Target, len(ports))
}

func (r Reducer) trace(cmd dispatch.Command, msg string) {
	r.log().Debug().Str("command_id", cmd.ID.String()).Str("command", cmd.String()).Msg(msg)
}

func (r Reducer) reject(s State, err error) (State, []dispatch.Command, error) {
	r.log().Debug().Err(err).Msg("Rejected request")

	return r.fail(s, err), nil, err
}

func (r Reducer) fail(s State, err error) State {
	r.log().Warn().Err(err).Msg("Surfacing error")
	s.Notice = Notice{Text: err.Error(), Err: true, At: r.now()}

	return s
}

func (r Reducer) info(s State, format string, args ...any) State {
	s.Notice = Notice{Text: fmt.Sprintf(format, args...), At: r.now()}

	return s
}

func (Reducer) target(s State) string {
	if !s.Selection.Active() {
		return ""
	}

	return s.Selection.Address
}

func (r Reducer) stamp(cmd dispatch.Command) dispatch.Command {
	id := uuid.New
	if r.NewID != nil {
		id = r.NewID
	}

	return cmd.Stamp(id(), r.now())
}

func (r Reducer) log() logger.Logger {
	if r.Log == nil {
		return logger.NewTestLogger()
	}

	return r.Log
}

func (r Reducer) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}

	return time.Now()
}

func (r Reducer) timeout() time.Duration {
	if r.CommandTimeout > 0 {
		return r.CommandTimeout
	}

	return DefaultCommandTimeout
}
