// Package reconciler merges full snapshots pushed by the engine into the
// client's host table.
package reconciler

import (
	"slices"

	"github.com/Rival420/Spynet2/internal/models"
)

// Policy decides what happens to hosts a snapshot leaves out.
type Policy struct {
	// EvictAfterMisses drops a host once it has been absent from this many
	// consecutive snapshots. Zero keeps hosts for the whole session.
	EvictAfterMisses int
}

// Reconcile merges snap into current with the default retain policy.
func Reconcile(current models.HostTable, snap models.Snapshot) models.HostTable {
	return Policy{}.Reconcile(current, snap)
}

// Reconcile returns the table that results from applying snap to current.
// Only authoritative fields are taken from the snapshot; pending scans and
// other client-local state carry over untouched. Neither input is modified.
//
// With the retain policy the merge is idempotent. With eviction enabled
// every call counts as one discovery cycle, so replaying a snapshot ages
// absent hosts again.
func (p Policy) Reconcile(current models.HostTable, snap models.Snapshot) models.HostTable {
	next := make(models.HostTable, max(len(current), len(snap)))

	for addr, entry := range snap {
		if addr == "" {
			continue
		}

		rec, ok := current[addr]
		if ok {
			rec = rec.Clone()
		} else {
			rec = models.NewHostRecord(addr)
		}

		apply(&rec, entry)
		rec.Misses = 0
		next[addr] = rec
	}

	for addr, rec := range current {
		if _, seen := next[addr]; seen {
			continue
		}

		rec = rec.Clone()

		if p.EvictAfterMisses > 0 {
			rec.Misses++
			if rec.Misses >= p.EvictAfterMisses {
				continue
			}
		}

		next[addr] = rec
	}

	return next
}

func apply(rec *models.HostRecord, e models.SnapshotEntry) {
	rec.Status = models.ParseStatus(e.Status)
	rec.LinkAddress = e.MAC
	rec.Vendor = e.Vendor
	rec.Hostname = e.Hostname
	rec.IsDHCP = e.IsDHCP
	rec.EngineScanning = e.PortScanInProgress
	rec.LastSeen = e.LastSeenTime()

	rec.OpenPorts = slices.Clone([]int(e.Ports))
	if rec.OpenPorts == nil {
		rec.OpenPorts = []int{}
	}
}

// Changes summarises what a reconcile did to the table.
type Changes struct {
	Added         []string
	Evicted       []string
	StatusChanged []string
}

// Empty reports whether nothing worth logging happened.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Evicted) == 0 && len(c.StatusChanged) == 0
}

// Diff compares two tables. Address lists come back sorted.
func Diff(prev, next models.HostTable) Changes {
	var c Changes

	for addr, rec := range next {
		old, ok := prev[addr]

		switch {
		case !ok:
			c.Added = append(c.Added, addr)
		case old.Status != rec.Status:
			c.StatusChanged = append(c.StatusChanged, addr)
		}
	}

	for addr := range prev {
		if _, ok := next[addr]; !ok {
			c.Evicted = append(c.Evicted, addr)
		}
	}

	slices.Sort(c.Added)
	slices.Sort(c.Evicted)
	slices.Sort(c.StatusChanged)

	return c
}
