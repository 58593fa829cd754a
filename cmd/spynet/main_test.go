package main

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rival420/Spynet2/internal/config"
	"github.com/Rival420/Spynet2/internal/dispatch"
	"github.com/Rival420/Spynet2/internal/fakeengine"
	"github.com/Rival420/Spynet2/internal/logger"
	"github.com/Rival420/Spynet2/internal/models"
	"github.com/Rival420/Spynet2/internal/selection"
	"github.com/Rival420/Spynet2/internal/session"
)

func record(addr string, status models.Status) models.HostRecord {
	rec := models.NewHostRecord(addr)
	rec.Status = status

	return rec
}

func TestPrintChanges(t *testing.T) {
	var buf bytes.Buffer

	prev := session.State{Hosts: models.HostTable{
		"10.0.0.2":  record("10.0.0.2", models.StatusOnline),
		"10.0.0.30": record("10.0.0.30", models.StatusOnline),
	}}
	next := session.State{Hosts: models.HostTable{
		"10.0.0.2":  record("10.0.0.2", models.StatusOffline),
		"10.0.0.10": record("10.0.0.10", models.StatusOnline),
		"10.0.0.9":  record("10.0.0.9", models.StatusUnknown),
	}}

	printChanges(&buf)(session.Transition{Event: session.SnapshotReceived{}, Prev: prev, Next: next})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "+ 10.0.0.9 ")
	assert.Contains(t, lines[0], "unknown")
	assert.Contains(t, lines[1], "+ 10.0.0.10")
	assert.Contains(t, lines[2], "~ 10.0.0.2")
	assert.Contains(t, lines[2], "online -> offline")
	assert.Contains(t, lines[3], "- 10.0.0.30")
}

func TestPrintChannelChanges(t *testing.T) {
	var buf bytes.Buffer
	observe := printChanges(&buf)

	observe(session.Transition{Event: session.ChannelStatus{Connected: true}})
	observe(session.Transition{Event: session.ChannelStatus{Err: errors.New("eof")}, Prev: session.State{Connected: true}})
	observe(session.Transition{Event: session.ChannelStatus{Err: errors.New("refused")}})

	out := buf.String()
	assert.Contains(t, out, "push channel connected")
	assert.Contains(t, out, "push channel lost: eof")
	assert.NotContains(t, out, "refused")
}

func TestPortScanDoneWaitsForPush(t *testing.T) {
	var buf bytes.Buffer
	done := portScanDone("10.0.0.2")

	pending := record("10.0.0.2", models.StatusOnline)
	pending.PortScanPending = true

	finished := record("10.0.0.2", models.StatusOnline)
	finished.OpenPorts = []int{22, 80}

	waiting := session.State{Hosts: models.HostTable{"10.0.0.2": pending}}

	ack := session.Transition{
		Event: session.CommandCompleted{Result: dispatch.Result{
			Command:      dispatch.Command{Kind: dispatch.KindPortScan, Target: "10.0.0.2"},
			Acknowledged: true,
		}},
		Prev: waiting,
		Next: waiting,
	}
	assert.Nil(t, done(ack, &buf))
	assert.Contains(t, buf.String(), "waiting for the result")

	report := session.Transition{
		Event: session.PortScanReported{},
		Prev:  waiting,
		Next:  session.State{Hosts: models.HostTable{"10.0.0.2": finished}},
	}

	o := done(report, &buf)
	require.NotNil(t, o)
	require.NoError(t, o.err)
	assert.Equal(t, "10.0.0.2: open ports [22 80]", o.text)
}

func TestPortScanDoneReportsFailure(t *testing.T) {
	pending := record("10.0.0.2", models.StatusOnline)
	pending.PortScanPending = true

	o := portScanDone("10.0.0.2")(session.Transition{
		Prev: session.State{Hosts: models.HostTable{"10.0.0.2": pending}},
		Next: session.State{
			Hosts:  models.HostTable{"10.0.0.2": record("10.0.0.2", models.StatusOnline)},
			Notice: session.Notice{Text: "port scan 10.0.0.2: timeout", Err: true},
		},
	}, &bytes.Buffer{})

	require.NotNil(t, o)
	assert.EqualError(t, o.err, "port scan 10.0.0.2: timeout")
}

func TestBannerDoneIgnoresOtherHosts(t *testing.T) {
	done := bannerDone("10.0.0.2")

	other := session.Transition{Event: session.CommandCompleted{Result: dispatch.Result{
		Command: dispatch.Command{Kind: dispatch.KindBannerGrab, Target: "10.0.0.3"},
	}}}
	assert.Nil(t, done(other, &bytes.Buffer{}))

	mine := session.Transition{
		Event: session.CommandCompleted{Result: dispatch.Result{
			Command: dispatch.Command{Kind: dispatch.KindBannerGrab, Target: "10.0.0.2"},
		}},
		Next: session.State{Selection: selection.Selection{
			Address: "10.0.0.2",
			Banner:  &selection.BannerResult{Port: 53},
		}},
	}

	o := done(mine, &bytes.Buffer{})
	require.NotNil(t, o)
	assert.Equal(t, "(no banner)", o.text)
}

func TestWithScannerDefaults(t *testing.T) {
	a := &app{cfg: &config.Config{Scanner: config.ScannerConfig{
		Network:   "192.168.1.0/24",
		PortStart: 1,
		PortEnd:   1024,
		Timeout:   2 * time.Second,
		Interval:  time.Minute,
	}}}

	ev := withScannerDefaults(session.ScannerRequested{Kind: dispatch.KindScannerStart, PortEnd: 100}, a)
	assert.Equal(t, "192.168.1.0/24", ev.Network)
	assert.Equal(t, 1, ev.PortStart)
	assert.Equal(t, 100, ev.PortEnd)
	assert.Equal(t, 2*time.Second, ev.Timeout)
	assert.Equal(t, time.Minute, ev.Interval)
}

// startFakeEngine serves a fake engine and points the configuration at it.
func startFakeEngine(t *testing.T) {
	t.Helper()

	eng, err := fakeengine.New(fakeengine.Options{Network: "192.168.1.0/24", Hosts: 6}, logger.NewTestLogger())
	require.NoError(t, err)

	srv := httptest.NewServer(eng.Handler())
	t.Cleanup(srv.Close)

	t.Setenv("SPYNET_ENGINE_URL", srv.URL)
	t.Setenv("SPYNET_ENGINE_PUSH_URL", "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws")
	t.Setenv("SPYNET_LOGGING_OUTPUT", logger.OutputDiscard)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})

	err := rootCmd.Execute()

	return out.String(), err
}

func TestVendorCommand(t *testing.T) {
	startFakeEngine(t)

	out, err := execute(t, "vendor", "192.168.1.1", "--wait", "5s")
	require.NoError(t, err)
	assert.Equal(t, "Raspberry Pi Foundation\n", out)
}

func TestPortScanCommand(t *testing.T) {
	startFakeEngine(t)

	out, err := execute(t, "portscan", "192.168.1.2", "--wait", "5s")
	require.NoError(t, err)
	assert.Contains(t, out, "192.168.1.2: open ports [22 80]")
}

func TestPortScanUnknownHost(t *testing.T) {
	startFakeEngine(t)

	_, err := execute(t, "portscan", "10.9.9.9", "--wait", "5s")
	require.ErrorIs(t, err, session.ErrUnknownHost)
}
