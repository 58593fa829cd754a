package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"time"
)

// Snapshot is the engine's full view of the network at one instant, keyed by
// address.
type Snapshot map[string]SnapshotEntry

// SnapshotEntry is one host inside a scan_update push.
type SnapshotEntry struct {
	Status             string   `json:"status"`
	MAC                string   `json:"mac"`
	Vendor             string   `json:"vendor"`
	Hostname           string   `json:"hostname"`
	IsDHCP             bool     `json:"is_dhcp"`
	Ports              PortList `json:"ports"`
	PortScanInProgress bool     `json:"port_scan_in_progress"`
	LastSeen           float64  `json:"last_seen,omitempty"`
}

// LastSeenTime converts the engine's fractional unix seconds. Zero stays
// the zero time.
func (e SnapshotEntry) LastSeenTime() time.Time {
	if e.LastSeen <= 0 {
		return time.Time{}
	}

	sec, frac := math.Modf(e.LastSeen)

	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
}

// PortScanReport is the port_scan_result push the engine sends when an
// acknowledged port scan finishes.
type PortScanReport struct {
	Host      string   `json:"host"`
	OpenPorts PortList `json:"open_ports"`
}

// PortList is a list of ports that tolerates the engine's loose encoding:
// integers and digit strings in 1..MaxPort are kept, anything else is dropped, and
// duplicates are removed keeping the first occurrence.
type PortList []int

// UnmarshalJSON implements json.Unmarshaler.
func (p *PortList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = nil

		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make(PortList, 0, len(raw))
	seen := make(map[int]struct{}, len(raw))

	for _, item := range raw {
		port, ok := parsePort(item)
		if !ok {
			continue
		}

		if _, dup := seen[port]; dup {
			continue
		}

		seen[port] = struct{}{}
		out = append(out, port)
	}

	*p = out

	return nil
}

func parsePort(item json.RawMessage) (int, bool) {
	var n float64
	if err := json.Unmarshal(item, &n); err == nil {
		if n != math.Trunc(n) || n < 1 || n > MaxPort {
			return 0, false
		}

		return int(n), true
	}

	var s string
	if err := json.Unmarshal(item, &s); err != nil || s == "" {
		return 0, false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	port, err := strconv.Atoi(s)
	if err != nil || port < 1 || port > MaxPort {
		return 0, false
	}

	return port, true
}
