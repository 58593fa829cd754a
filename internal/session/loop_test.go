package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Rival420/Spynet2/internal/dispatch"
	"github.com/Rival420/Spynet2/internal/logger"
	"github.com/Rival420/Spynet2/internal/models"
)

type harness struct {
	loop        *Loop
	transitions chan Transition
	cancel      context.CancelFunc
	result      chan State
}

func startLoop(t *testing.T, eng dispatch.Engine) *harness {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	h := &harness{
		loop:        NewLoop(newTestReducer(), eng, NewState(testViewport, testPanel), logger.NewTestLogger()),
		transitions: make(chan Transition, 32),
		cancel:      cancel,
		result:      make(chan State, 1),
	}

	h.loop.Observe(func(tr Transition) { h.transitions <- tr })

	go func() {
		s, _ := h.loop.Run(ctx)
		h.result <- s
	}()

	t.Cleanup(h.stop)

	return h
}

func (h *harness) stop() {
	h.cancel()
}

// await returns the first transition whose event matches.
func (h *harness) await(t *testing.T, match func(Event) bool) Transition {
	t.Helper()

	timeout := time.After(2 * time.Second)

	for {
		select {
		case tr := <-h.transitions:
			if match(tr.Event) {
				return tr
			}
		case <-timeout:
			t.Fatal("timed out waiting for transition")
		}
	}
}

func isCompletion(ev Event) bool {
	_, ok := ev.(CommandCompleted)

	return ok
}

func TestLoopRunsPortScan(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	release := make(chan struct{})

	eng := dispatch.NewMockEngine(ctrl)
	eng.EXPECT().Snapshot(gomock.Any()).Return(models.Snapshot{"192.168.1.5": online()}, nil)
	eng.EXPECT().PortScan(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.PortScanRequest) (models.PortScanResponse, error) {
			<-release

			list := models.PortList{22}

			return models.PortScanResponse{Host: req.Host, Ports: &list}, nil
		})

	h := startLoop(t, eng)
	ctx := context.Background()

	require.NoError(t, h.loop.Seed(ctx))
	require.NoError(t, h.loop.Send(ctx, HostSelected{Address: "192.168.1.5"}))
	require.NoError(t, h.loop.Send(ctx, PortScanRequested{ScanType: models.ScanRange, Start: 20, End: 25}))

	err := h.loop.Send(ctx, PortScanRequested{ScanType: models.ScanPopular})
	require.ErrorIs(t, err, dispatch.ErrPortScanPending)

	close(release)

	tr := h.await(t, isCompletion)
	rec := tr.Next.Hosts["192.168.1.5"]
	assert.Equal(t, []int{22}, rec.OpenPorts)
	assert.False(t, rec.PortScanPending)

	h.stop()

	select {
	case s := <-h.result:
		assert.Equal(t, []int{22}, s.Hosts["192.168.1.5"].OpenPorts)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestLoopKeepsReconcilingWhileCommandsFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eng := dispatch.NewMockEngine(ctrl)
	eng.EXPECT().BannerGrab(gomock.Any(), gomock.Any()).Return(models.BannerGrabResponse{}, errors.New("refused"))

	h := startLoop(t, eng)
	ctx := context.Background()

	require.NoError(t, h.loop.Send(ctx, SnapshotReceived{Snapshot: models.Snapshot{"10.0.0.1": online(22)}}))
	require.NoError(t, h.loop.Send(ctx, HostSelected{Address: "10.0.0.1"}))
	require.NoError(t, h.loop.Send(ctx, BannerGrabRequested{Port: 22}))

	tr := h.await(t, isCompletion)
	require.NotNil(t, tr.Next.Selection.Banner)
	assert.Equal(t, "refused", tr.Next.Selection.Banner.Err)

	require.NoError(t, h.loop.Send(ctx, SnapshotReceived{Snapshot: models.Snapshot{"10.0.0.1": online(22), "10.0.0.2": online()}}))

	tr = h.await(t, func(ev Event) bool {
		snap, ok := ev.(SnapshotReceived)

		return ok && len(snap.Snapshot) == 2
	})
	assert.Len(t, tr.Next.Hosts, 2)
}

func TestLoopSeedFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	eng := dispatch.NewMockEngine(ctrl)
	eng.EXPECT().Snapshot(gomock.Any()).Return(nil, errors.New("dial tcp: refused"))

	loop := NewLoop(newTestReducer(), eng, NewState(testViewport, testPanel), logger.NewTestLogger())

	err := loop.Seed(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seed snapshot")
}

func TestLoopSendAfterStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	h := startLoop(t, dispatch.NewMockEngine(ctrl))
	h.stop()
	<-h.result

	// The buffered channel may still accept the event, but nobody reduces it.
	err := h.loop.Send(context.Background(), SelectionClosed{})
	assert.ErrorIs(t, err, ErrLoopStopped)
}
