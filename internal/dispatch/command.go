// Package dispatch validates on-demand commands, performs them against the
// engine and tracks the port scans that are still outstanding.
package dispatch

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Rival420/Spynet2/internal/models"
)

// Kind names a command.
type Kind string

const (
	KindPortScan      Kind = "port-scan"
	KindBannerGrab    Kind = "banner-grab"
	KindMACLookup     Kind = "mac-lookup"
	KindHostUpdate    Kind = "host-update"
	KindScannerStart  Kind = "scanner-start"
	KindScannerPause  Kind = "scanner-pause"
	KindScannerResume Kind = "scanner-resume"
	KindScannerStop   Kind = "scanner-stop"
)

// Scanner reports whether k drives the engine's scanner as a whole rather
// than a single host.
func (k Kind) Scanner() bool {
	switch k {
	case KindScannerStart, KindScannerPause, KindScannerResume, KindScannerStop:
		return true
	default:
		return false
	}
}

// Command is one request to the engine. Payload holds the request body
// from models and is nil for pause, resume and stop.
type Command struct {
	ID       uuid.UUID
	Kind     Kind
	Target   string
	Payload  any
	IssuedAt time.Time
}

// Stamp assigns the command its identity.
func (c Command) Stamp(id uuid.UUID, at time.Time) Command {
	c.ID = id
	c.IssuedAt = at

	return c
}

func (c Command) String() string {
	if c.Target == "" {
		return string(c.Kind)
	}

	return fmt.Sprintf("%s %s", c.Kind, c.Target)
}

// PortScan validates a targeted port scan. Start and end only apply to
// ScanRange and are dropped otherwise.
func PortScan(target string, scanType models.ScanType, start, end int, timeout time.Duration) (Command, error) {
	if target == "" {
		return Command{}, ErrNoSelection
	}

	if !slices.Contains(models.ScanTypes, scanType) {
		return Command{}, fmt.Errorf("%w: %q", ErrInvalidScanType, scanType)
	}

	if timeout <= 0 {
		return Command{}, ErrInvalidTimeout
	}

	req := models.PortScanRequest{Host: target, ScanType: scanType, Timeout: models.Seconds(timeout)}

	if scanType == models.ScanRange {
		if err := checkRange(start, end); err != nil {
			return Command{}, err
		}

		req.StartPort, req.EndPort = start, end
	}

	return Command{Kind: KindPortScan, Target: target, Payload: req}, nil
}

// BannerGrab validates a banner grab against one port.
func BannerGrab(target string, port int, timeout time.Duration) (Command, error) {
	if target == "" {
		return Command{}, ErrNoSelection
	}

	if port < 1 || port > models.MaxPort {
		return Command{}, fmt.Errorf("%w: %d", ErrInvalidPort, port)
	}

	if timeout <= 0 {
		return Command{}, ErrInvalidTimeout
	}

	return Command{
		Kind:    KindBannerGrab,
		Target:  target,
		Payload: models.BannerGrabRequest{Host: target, Port: port, Timeout: models.Seconds(timeout)},
	}, nil
}

// MACLookup asks the engine for the vendor behind target's link address.
func MACLookup(target string) (Command, error) {
	if target == "" {
		return Command{}, ErrNoSelection
	}

	return Command{Kind: KindMACLookup, Target: target, Payload: models.MACLookupRequest{Host: target}}, nil
}

// HostUpdate commits an edited hostname and DHCP flag.
func HostUpdate(target, hostname string, isDHCP bool) (Command, error) {
	if target == "" {
		return Command{}, ErrNoSelection
	}

	return Command{
		Kind:    KindHostUpdate,
		Target:  target,
		Payload: models.HostUpdateRequest{IP: target, Hostname: strings.TrimSpace(hostname), IsDHCP: isDHCP},
	}, nil
}

// ScannerStart validates the discovery parameters. Network is a CIDR
// prefix or a single address.
func ScannerStart(network string, portStart, portEnd int, timeout, interval time.Duration) (Command, error) {
	network = strings.TrimSpace(network)
	if network == "" {
		return Command{}, fmt.Errorf("%w: empty", ErrInvalidNetwork)
	}

	if _, err := netip.ParsePrefix(network); err != nil {
		if _, err := netip.ParseAddr(network); err != nil {
			return Command{}, fmt.Errorf("%w: %q", ErrInvalidNetwork, network)
		}
	}

	if err := checkRange(portStart, portEnd); err != nil {
		return Command{}, err
	}

	if timeout <= 0 {
		return Command{}, ErrInvalidTimeout
	}

	if interval <= 0 {
		return Command{}, ErrInvalidInterval
	}

	return Command{
		Kind: KindScannerStart,
		Payload: models.ScannerStartRequest{
			Network:   network,
			PortStart: portStart,
			PortEnd:   portEnd,
			Timeout:   models.Seconds(timeout),
			Interval:  models.Seconds(interval),
		},
	}, nil
}

// ScannerControl builds pause, resume or stop.
func ScannerControl(kind Kind) (Command, error) {
	switch kind {
	case KindScannerPause, KindScannerResume, KindScannerStop:
		return Command{Kind: kind}, nil
	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func checkRange(start, end int) error {
	if start < 1 || end > models.MaxPort || start > end {
		return fmt.Errorf("%w: %d-%d", ErrInvalidPortRange, start, end)
	}

	return nil
}
