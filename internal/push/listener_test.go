package push

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rival420/Spynet2/internal/fakeengine"
	"github.com/Rival420/Spynet2/internal/logger"
	"github.com/Rival420/Spynet2/internal/models"
	"github.com/Rival420/Spynet2/internal/session"
)

func TestDecodeScanUpdate(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"scan_update","data":{
		"192.168.1.5":{"status":"online","mac":"b8:27:eb:00:00:01","ports":[22,"80","junk",22],"port_scan_in_progress":true}
	}}`))
	require.NoError(t, err)

	snap, ok := ev.(session.SnapshotReceived)
	require.True(t, ok)

	entry := snap.Snapshot["192.168.1.5"]
	assert.Equal(t, "online", entry.Status)
	assert.Equal(t, models.PortList{22, 80}, entry.Ports)
	assert.True(t, entry.PortScanInProgress)
}

func TestDecodePortScanResult(t *testing.T) {
	ev, err := Decode([]byte(`{"event":"port_scan_result","data":{"host":"10.0.0.1","open_ports":[443,"8443"]}}`))
	require.NoError(t, err)

	assert.Equal(t, session.PortScanReported{
		Report: models.PortScanReport{Host: "10.0.0.1", OpenPorts: models.PortList{443, 8443}},
	}, ev)
}

func TestDecodeRejectsBadFrames(t *testing.T) {
	_, err := Decode([]byte(`not json`))
	require.Error(t, err)

	_, err = Decode([]byte(`{"event":"hello","data":{}}`))
	require.ErrorIs(t, err, ErrUnknownEvent)

	_, err = Decode([]byte(`{"event":"scan_update","data":[1,2]}`))
	require.Error(t, err)
}

func TestNewListenerValidatesURL(t *testing.T) {
	for _, raw := range []string{"", "http://127.0.0.1:5000/ws", "ws://"} {
		_, err := NewListener(raw, time.Second, logger.NewTestLogger())
		require.ErrorIs(t, err, ErrInvalidURL, raw)
	}

	_, err := NewListener("ws://127.0.0.1:5000/ws", 0, logger.NewTestLogger())
	require.NoError(t, err)
}

type recorder struct {
	events chan session.Event
}

func (r *recorder) sink(ctx context.Context, ev session.Event) error {
	select {
	case r.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *recorder) next(t *testing.T) session.Event {
	t.Helper()

	select {
	case ev := <-r.events:
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for push event")

		return nil
	}
}

func TestListenerReceivesAndReconnects(t *testing.T) {
	fake, err := fakeengine.New(fakeengine.Options{
		Network: "10.0.0.0/24", Hosts: 3, BroadcastInterval: time.Hour,
	}, logger.NewTestLogger())
	require.NoError(t, err)

	srv := httptest.NewServer(fake.Handler())
	defer srv.Close()

	l, err := NewListener("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", 10*time.Millisecond, logger.NewTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{events: make(chan session.Event, 16)}
	done := make(chan error, 1)

	go func() { done <- l.Run(ctx, rec.sink) }()

	assert.Equal(t, session.ChannelStatus{Connected: true}, rec.next(t))
	require.Eventually(t, func() bool { return fake.Hub().Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	fake.Hub().Broadcast(models.EventScanUpdate, fake.Snapshot())

	snap, ok := rec.next(t).(session.SnapshotReceived)
	require.True(t, ok)
	assert.Len(t, snap.Snapshot, 3)

	// Stopping the engine's push loop disconnects every listener.
	engineCtx, stopEngine := context.WithCancel(context.Background())
	stopEngine()
	_ = fake.Run(engineCtx)

	down, ok := rec.next(t).(session.ChannelStatus)
	require.True(t, ok)
	assert.False(t, down.Connected)
	assert.Error(t, down.Err)

	assert.Equal(t, session.ChannelStatus{Connected: true}, rec.next(t))

	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(3 * time.Second):
		t.Fatal("listener did not stop")
	}
}

func TestListenerReportsDialFailures(t *testing.T) {
	srv := httptest.NewServer(nil)
	addr := srv.URL
	srv.Close()

	l, err := NewListener("ws"+strings.TrimPrefix(addr, "http")+"/ws", 10*time.Millisecond, logger.NewTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{events: make(chan session.Event, 16)}

	go func() { _ = l.Run(ctx, rec.sink) }()

	first, ok := rec.next(t).(session.ChannelStatus)
	require.True(t, ok)
	assert.False(t, first.Connected)
	assert.Contains(t, first.Err.Error(), "dial")

	second, ok := rec.next(t).(session.ChannelStatus)
	require.True(t, ok)
	assert.False(t, second.Connected)
}
