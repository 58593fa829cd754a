package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortListUnmarshalFiltersJunk(t *testing.T) {
	var p PortList

	require.NoError(t, json.Unmarshal([]byte(`[22, "80", "unknown", 443.0, 22, "", "8o8o"]`), &p))
	assert.Equal(t, PortList{22, 80, 443}, p)
}

func TestPortListUnmarshalRejectsOutOfRange(t *testing.T) {
	var p PortList

	require.NoError(t, json.Unmarshal([]byte(`[22.7, -1, 0, 65536, "70000", "0", 65535, 1, 1e3]`), &p))
	assert.Equal(t, PortList{65535, 1, 1000}, p)
}

func TestPortListUnmarshalNull(t *testing.T) {
	p := PortList{1}

	require.NoError(t, json.Unmarshal([]byte(`null`), &p))
	assert.Nil(t, p)
}

func TestPortScanResponseDistinguishesAck(t *testing.T) {
	var ack, done PortScanResponse

	require.NoError(t, json.Unmarshal([]byte(`{"status":"Port scan started","host":"10.0.0.1"}`), &ack))
	require.NoError(t, json.Unmarshal([]byte(`{"ports":[]}`), &done))

	assert.Nil(t, ack.Ports)
	require.NotNil(t, done.Ports)
	assert.Empty(t, *done.Ports)
}

func TestSnapshotEntryLastSeen(t *testing.T) {
	e := SnapshotEntry{LastSeen: 1700000000.5}
	assert.Equal(t, time.Unix(1700000000, int64(500*time.Millisecond)).UTC(), e.LastSeenTime())

	assert.True(t, SnapshotEntry{}.LastSeenTime().IsZero())
}

func TestParseStatus(t *testing.T) {
	assert.Equal(t, StatusOnline, ParseStatus("online"))
	assert.Equal(t, StatusOffline, ParseStatus("offline"))
	assert.Equal(t, StatusUnknown, ParseStatus("unknown"))
	assert.Equal(t, StatusUnknown, ParseStatus(""))
}

func TestHostRecordDefaults(t *testing.T) {
	rec := NewHostRecord("10.0.0.1")

	assert.Equal(t, UnknownVendor, rec.DisplayVendor())
	assert.NotNil(t, rec.OpenPorts)
	assert.Empty(t, rec.OpenPorts)
	assert.False(t, rec.PortScanPending)
}

func TestHostTableWithAndClone(t *testing.T) {
	base := HostTable{"10.0.0.1": {Address: "10.0.0.1", OpenPorts: []int{22}}}

	next := base.With(HostRecord{Address: "10.0.0.2"})
	assert.Len(t, base, 1)
	assert.Len(t, next, 2)
	assert.NotNil(t, next["10.0.0.2"].OpenPorts)

	cloned := base.Clone()
	cloned["10.0.0.1"].OpenPorts[0] = 443
	assert.Equal(t, 22, base["10.0.0.1"].OpenPorts[0])
}
