// Package models holds the host table and the wire types exchanged with the
// scanning engine.
package models

import (
	"slices"
	"time"
)

// Status is the engine's liveness verdict for a host.
type Status string

const (
	StatusUnknown Status = ""
	StatusOnline  Status = "online"
	StatusOffline Status = "offline"
)

// ParseStatus maps the engine's status string onto Status. Anything it does
// not recognise (including the engine's own "unknown") is StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusOnline:
		return StatusOnline
	case StatusOffline:
		return StatusOffline
	default:
		return StatusUnknown
	}
}

// UnknownVendor is shown in place of an unresolved vendor.
const UnknownVendor = "Unknown"

// HostRecord is the client's view of one discovered host: the fields the
// engine is authoritative for plus the ones only this client tracks.
type HostRecord struct {
	Address string

	// Authoritative, overwritten by every snapshot that carries the host.
	Status         Status
	LinkAddress    string
	Vendor         string
	Hostname       string
	IsDHCP         bool
	OpenPorts      []int
	EngineScanning bool
	LastSeen       time.Time

	// Client-local. Snapshots never touch PortScanPending; Misses belongs
	// to the reconciler's eviction policy.
	PortScanPending bool
	Misses          int
}

// NewHostRecord returns an empty record for address with every transient
// field at its default.
func NewHostRecord(address string) HostRecord {
	return HostRecord{Address: address, OpenPorts: []int{}}
}

// DisplayVendor returns the vendor or UnknownVendor.
func (h HostRecord) DisplayVendor() string {
	if h.Vendor == "" {
		return UnknownVendor
	}

	return h.Vendor
}

// Clone returns a deep copy so callers can mutate the result freely.
func (h HostRecord) Clone() HostRecord {
	c := h
	c.OpenPorts = slices.Clone(h.OpenPorts)

	if c.OpenPorts == nil {
		c.OpenPorts = []int{}
	}

	return c
}

// HostTable maps a host's address to its record.
type HostTable map[string]HostRecord

// Clone copies the table and every record in it.
func (t HostTable) Clone() HostTable {
	out := make(HostTable, len(t))
	for addr, rec := range t {
		out[addr] = rec.Clone()
	}

	return out
}

// With returns a copy of t in which rec replaces the record for rec.Address.
func (t HostTable) With(rec HostRecord) HostTable {
	out := make(HostTable, len(t)+1)
	for addr, existing := range t {
		out[addr] = existing
	}

	out[rec.Address] = rec.Clone()

	return out
}

// FilterState holds the dashboard's hide toggles. The zero value shows
// every host.
type FilterState struct {
	HideOffline bool `mapstructure:"hide_offline"`
	HideDHCP    bool `mapstructure:"hide_dhcp"`
}
