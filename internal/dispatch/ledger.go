package dispatch

import (
	"maps"
	"slices"

	"github.com/google/uuid"
)

// Entry is one outstanding port scan. Acknowledged is set once the engine
// has accepted the scan and will deliver the ports over the push channel.
type Entry struct {
	ID           uuid.UUID
	Acknowledged bool
}

// Ledger records the outstanding port scan per address. It is a value:
// every method returns a new ledger and leaves the receiver alone.
type Ledger map[string]Entry

// Outstanding returns the pending command for address, if any.
func (l Ledger) Outstanding(address string) (uuid.UUID, bool) {
	e, ok := l[address]

	return e.ID, ok
}

// Begin marks id as the outstanding scan for address. It fails with
// ErrPortScanPending while another scan is outstanding.
func (l Ledger) Begin(address string, id uuid.UUID) (Ledger, error) {
	if _, ok := l[address]; ok {
		return l, ErrPortScanPending
	}

	next := make(Ledger, len(l)+1)
	maps.Copy(next, l)
	next[address] = Entry{ID: id}

	return next, nil
}

// Acknowledge records that the engine accepted id and will push its result.
// Unknown or superseded ids leave the ledger unchanged.
func (l Ledger) Acknowledge(address string, id uuid.UUID) Ledger {
	if e, ok := l[address]; !ok || e.ID != id || e.Acknowledged {
		return l
	}

	next := maps.Clone(l)
	next[address] = Entry{ID: id, Acknowledged: true}

	return next
}

// AwaitingPush lists, in address order, the scans that can only finish
// through a push.
func (l Ledger) AwaitingPush() []string {
	var out []string

	for addr, e := range l {
		if e.Acknowledged {
			out = append(out, addr)
		}
	}

	slices.Sort(out)

	return out
}

// Finish retires id for address. ok is false when id is not the
// outstanding scan, in which case the ledger is returned unchanged.
func (l Ledger) Finish(address string, id uuid.UUID) (next Ledger, ok bool) {
	if cur, found := l[address]; !found || cur.ID != id {
		return l, false
	}

	next = maps.Clone(l)
	delete(next, address)

	return next, true
}

// Drop forgets whatever is outstanding for address.
func (l Ledger) Drop(address string) Ledger {
	if _, ok := l[address]; !ok {
		return l
	}

	next := maps.Clone(l)
	delete(next, address)

	return next
}
