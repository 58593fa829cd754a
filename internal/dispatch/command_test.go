package dispatch

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rival420/Spynet2/internal/models"
)

func TestPortScanValidation(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		scanType models.ScanType
		start    int
		end      int
		timeout  time.Duration
		wantErr  error
	}{
		{"popular", "10.0.0.1", models.ScanPopular, 0, 0, time.Second, nil},
		{"all ignores range", "10.0.0.1", models.ScanAll, 9, 3, time.Second, nil},
		{"range", "10.0.0.1", models.ScanRange, 20, 25, time.Second, nil},
		{"single port range", "10.0.0.1", models.ScanRange, 22, 22, time.Second, nil},
		{"no selection", "", models.ScanPopular, 0, 0, time.Second, ErrNoSelection},
		{"bad type", "10.0.0.1", "udp", 0, 0, time.Second, ErrInvalidScanType},
		{"start after end", "10.0.0.1", models.ScanRange, 25, 20, time.Second, ErrInvalidPortRange},
		{"zero start", "10.0.0.1", models.ScanRange, 0, 20, time.Second, ErrInvalidPortRange},
		{"end too high", "10.0.0.1", models.ScanRange, 1, 65536, time.Second, ErrInvalidPortRange},
		{"no timeout", "10.0.0.1", models.ScanPopular, 0, 0, 0, ErrInvalidTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := PortScan(tt.target, tt.scanType, tt.start, tt.end, tt.timeout)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, Command{}, cmd)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, KindPortScan, cmd.Kind)
			assert.Equal(t, tt.target, cmd.Target)
		})
	}
}

func TestPortScanPayload(t *testing.T) {
	cmd, err := PortScan("192.168.1.5", models.ScanRange, 20, 25, 1500*time.Millisecond)
	require.NoError(t, err)

	assert.Equal(t, models.PortScanRequest{
		Host: "192.168.1.5", ScanType: models.ScanRange, StartPort: 20, EndPort: 25, Timeout: 1.5,
	}, cmd.Payload)

	cmd, err = PortScan("192.168.1.5", models.ScanPopular, 20, 25, time.Second)
	require.NoError(t, err)

	req := cmd.Payload.(models.PortScanRequest)
	assert.Zero(t, req.StartPort)
	assert.Zero(t, req.EndPort)
}

func TestBannerGrabValidation(t *testing.T) {
	_, err := BannerGrab("10.0.0.1", 0, time.Second)
	require.ErrorIs(t, err, ErrInvalidPort)

	_, err = BannerGrab("10.0.0.1", 70000, time.Second)
	require.ErrorIs(t, err, ErrInvalidPort)

	_, err = BannerGrab("", 22, time.Second)
	require.ErrorIs(t, err, ErrNoSelection)

	cmd, err := BannerGrab("10.0.0.1", 22, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, models.BannerGrabRequest{Host: "10.0.0.1", Port: 22, Timeout: 2}, cmd.Payload)
}

func TestHostCommands(t *testing.T) {
	_, err := MACLookup("")
	require.ErrorIs(t, err, ErrNoSelection)

	cmd, err := MACLookup("10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, models.MACLookupRequest{Host: "10.0.0.1"}, cmd.Payload)

	_, err = HostUpdate("", "nas", false)
	require.ErrorIs(t, err, ErrNoSelection)

	cmd, err = HostUpdate("10.0.0.1", "  nas ", true)
	require.NoError(t, err)
	assert.Equal(t, models.HostUpdateRequest{IP: "10.0.0.1", Hostname: "nas", IsDHCP: true}, cmd.Payload)
}

func TestScannerStartValidation(t *testing.T) {
	tests := []struct {
		name     string
		network  string
		start    int
		end      int
		timeout  time.Duration
		interval time.Duration
		wantErr  error
	}{
		{"cidr", "192.168.1.0/24", 1, 1024, time.Second, time.Minute, nil},
		{"address", " 10.0.0.7 ", 22, 22, time.Second, time.Minute, nil},
		{"empty", "  ", 1, 1024, time.Second, time.Minute, ErrInvalidNetwork},
		{"garbage", "lan", 1, 1024, time.Second, time.Minute, ErrInvalidNetwork},
		{"inverted ports", "10.0.0.0/8", 100, 10, time.Second, time.Minute, ErrInvalidPortRange},
		{"no timeout", "10.0.0.0/8", 1, 10, 0, time.Minute, ErrInvalidTimeout},
		{"no interval", "10.0.0.0/8", 1, 10, time.Second, 0, ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := ScannerStart(tt.network, tt.start, tt.end, tt.timeout, tt.interval)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, KindScannerStart, cmd.Kind)
			assert.Empty(t, cmd.Target)
			assert.True(t, cmd.Kind.Scanner())
		})
	}
}

func TestScannerControl(t *testing.T) {
	for _, k := range []Kind{KindScannerPause, KindScannerResume, KindScannerStop} {
		cmd, err := ScannerControl(k)
		require.NoError(t, err)
		assert.Equal(t, k, cmd.Kind)
		assert.Nil(t, cmd.Payload)
	}

	_, err := ScannerControl(KindPortScan)
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestCommandStampAndString(t *testing.T) {
	id := uuid.New()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	cmd, err := MACLookup("10.0.0.1")
	require.NoError(t, err)

	cmd = cmd.Stamp(id, at)
	assert.Equal(t, id, cmd.ID)
	assert.Equal(t, at, cmd.IssuedAt)
	assert.Equal(t, "mac-lookup 10.0.0.1", cmd.String())
	assert.Equal(t, "scanner-stop", Command{Kind: KindScannerStop}.String())
}
