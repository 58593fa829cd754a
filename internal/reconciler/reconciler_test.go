package reconciler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rival420/Spynet2/internal/models"
)

func snapshot(entries map[string]models.SnapshotEntry) models.Snapshot {
	return models.Snapshot(entries)
}

func TestReconcileCreatesRecordsWithDefaults(t *testing.T) {
	next := Reconcile(models.HostTable{}, snapshot(map[string]models.SnapshotEntry{
		"192.168.1.5": {Status: "online", MAC: "aa:bb:cc:dd:ee:ff", Vendor: "Acme", Ports: models.PortList{22}},
	}))

	require.Contains(t, next, "192.168.1.5")

	rec := next["192.168.1.5"]
	assert.Equal(t, "192.168.1.5", rec.Address)
	assert.Equal(t, models.StatusOnline, rec.Status)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", rec.LinkAddress)
	assert.Equal(t, "Acme", rec.Vendor)
	assert.Equal(t, []int{22}, rec.OpenPorts)
	assert.False(t, rec.PortScanPending)
}

func TestReconcileOverwritesOnlyAuthoritativeFields(t *testing.T) {
	current := models.HostTable{
		"10.0.0.1": {
			Address:         "10.0.0.1",
			Status:          models.StatusOnline,
			Hostname:        "old",
			OpenPorts:       []int{80},
			PortScanPending: true,
		},
	}

	next := Reconcile(current, snapshot(map[string]models.SnapshotEntry{
		"10.0.0.1": {Status: "offline", Hostname: "new", IsDHCP: true, Ports: models.PortList{443}},
	}))

	rec := next["10.0.0.1"]
	assert.Equal(t, models.StatusOffline, rec.Status)
	assert.Equal(t, "new", rec.Hostname)
	assert.True(t, rec.IsDHCP)
	assert.Equal(t, []int{443}, rec.OpenPorts)
	assert.True(t, rec.PortScanPending, "a snapshot never clears a pending scan")

	assert.Equal(t, "old", current["10.0.0.1"].Hostname, "input table is not modified")
}

func TestReconcileIgnoresEngineScanHintForPending(t *testing.T) {
	next := Reconcile(models.HostTable{}, snapshot(map[string]models.SnapshotEntry{
		"10.0.0.1": {Status: "online", PortScanInProgress: true},
	}))

	assert.True(t, next["10.0.0.1"].EngineScanning)
	assert.False(t, next["10.0.0.1"].PortScanPending)
}

func TestReconcileRetainsMissingHosts(t *testing.T) {
	current := Reconcile(models.HostTable{}, snapshot(map[string]models.SnapshotEntry{
		"10.0.0.1": {Status: "online"},
		"10.0.0.2": {Status: "online"},
	}))

	for i := 0; i < 5; i++ {
		current = Reconcile(current, snapshot(map[string]models.SnapshotEntry{
			"10.0.0.1": {Status: "online"},
		}))
	}

	assert.Contains(t, current, "10.0.0.2")
	assert.Zero(t, current["10.0.0.2"].Misses)
}

func TestReconcileIsIdempotent(t *testing.T) {
	base := models.HostTable{
		"10.0.0.9": {Address: "10.0.0.9", PortScanPending: true, OpenPorts: []int{}},
	}
	snap := snapshot(map[string]models.SnapshotEntry{
		"10.0.0.1": {Status: "online", Ports: models.PortList{22, 80}},
		"10.0.0.9": {Status: "offline"},
	})

	once := Reconcile(base, snap)
	twice := Reconcile(once, snap)

	assert.Equal(t, once, twice)
}

func TestReconcileSequenceMatchesLastSnapshotPlusTransient(t *testing.T) {
	s1 := snapshot(map[string]models.SnapshotEntry{
		"10.0.0.1": {Status: "online", Hostname: "first"},
	})
	s2 := snapshot(map[string]models.SnapshotEntry{
		"10.0.0.1": {Status: "offline", Hostname: "second", Ports: models.PortList{22}},
	})

	afterS1 := Reconcile(models.HostTable{}, s1)

	// A port scan is issued between the two pushes.
	pending := afterS1["10.0.0.1"]
	pending.PortScanPending = true
	afterS1 = afterS1.With(pending)

	viaS1 := Reconcile(afterS1, s2)
	direct := Reconcile(models.HostTable{}, s2)

	got := viaS1["10.0.0.1"]
	assert.True(t, got.PortScanPending)

	got.PortScanPending = false
	assert.Equal(t, direct["10.0.0.1"], got)
}

func TestPolicyEvictsAfterMisses(t *testing.T) {
	p := Policy{EvictAfterMisses: 2}

	table := p.Reconcile(models.HostTable{}, snapshot(map[string]models.SnapshotEntry{
		"10.0.0.1": {Status: "online"},
		"10.0.0.2": {Status: "online"},
	}))
	onlyFirst := snapshot(map[string]models.SnapshotEntry{"10.0.0.1": {Status: "online"}})

	table = p.Reconcile(table, onlyFirst)
	require.Contains(t, table, "10.0.0.2")
	assert.Equal(t, 1, table["10.0.0.2"].Misses)

	table = p.Reconcile(table, onlyFirst)
	assert.NotContains(t, table, "10.0.0.2")
	assert.Contains(t, table, "10.0.0.1")
}

func TestPolicyResetsMissesOnReappearance(t *testing.T) {
	p := Policy{EvictAfterMisses: 2}
	both := snapshot(map[string]models.SnapshotEntry{
		"10.0.0.1": {Status: "online"},
		"10.0.0.2": {Status: "online"},
	})
	onlyFirst := snapshot(map[string]models.SnapshotEntry{"10.0.0.1": {Status: "online"}})

	table := p.Reconcile(models.HostTable{}, both)
	table = p.Reconcile(table, onlyFirst)
	table = p.Reconcile(table, both)
	table = p.Reconcile(table, onlyFirst)

	require.Contains(t, table, "10.0.0.2")
	assert.Equal(t, 1, table["10.0.0.2"].Misses)
}

func TestDiff(t *testing.T) {
	prev := models.HostTable{
		"10.0.0.1": {Address: "10.0.0.1", Status: models.StatusOnline},
		"10.0.0.2": {Address: "10.0.0.2", Status: models.StatusOnline},
	}
	next := models.HostTable{
		"10.0.0.1": {Address: "10.0.0.1", Status: models.StatusOffline},
		"10.0.0.3": {Address: "10.0.0.3", Status: models.StatusOnline},
	}

	c := Diff(prev, next)

	assert.Equal(t, []string{"10.0.0.3"}, c.Added)
	assert.Equal(t, []string{"10.0.0.2"}, c.Evicted)
	assert.Equal(t, []string{"10.0.0.1"}, c.StatusChanged)
	assert.False(t, c.Empty())
	assert.True(t, Diff(next, next).Empty())
}
