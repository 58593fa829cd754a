package session

import (
	"time"

	"github.com/Rival420/Spynet2/internal/dispatch"
	"github.com/Rival420/Spynet2/internal/models"
	"github.com/Rival420/Spynet2/internal/selection"
)

// Event is anything the reducer reacts to: a push from the engine, a user
// interaction or the result of a command.
type Event interface {
	event()
}

// SnapshotReceived carries a scan_update push or the start-up pull.
type SnapshotReceived struct {
	Snapshot models.Snapshot
}

// PortScanReported carries a port_scan_result push.
type PortScanReported struct {
	Report models.PortScanReport
}

// ChannelStatus reports the push channel going up or down.
type ChannelStatus struct {
	Connected bool
	Err       error
}

// HostSelected opens the action panel for Address next to Anchor.
type HostSelected struct {
	Address string
	Anchor  selection.Rect
}

// SelectionClosed closes the action panel.
type SelectionClosed struct{}

// ViewportResized updates the drawing area. A zero Panel keeps the
// current panel size.
type ViewportResized struct {
	Viewport selection.Size
	Panel    selection.Size
}

// DraftEdited replaces the selection's draft.
type DraftEdited struct {
	Draft selection.Draft
}

// FiltersChanged replaces the hide toggles.
type FiltersChanged struct {
	Filters models.FilterState
}

// PortScanRequested scans the selected host. Start and End only matter for
// models.ScanRange.
type PortScanRequested struct {
	ScanType models.ScanType
	Start    int
	End      int
}

// BannerGrabRequested grabs the banner on Port of the selected host.
type BannerGrabRequested struct {
	Port int
}

// MACLookupRequested resolves the selected host's vendor.
type MACLookupRequested struct{}

// HostUpdateRequested commits the selection's draft.
type HostUpdateRequested struct{}

// ScannerRequested drives the engine's scanner. The start parameters are
// ignored for pause, resume and stop.
type ScannerRequested struct {
	Kind      dispatch.Kind
	Network   string
	PortStart int
	PortEnd   int
	Timeout   time.Duration
	Interval  time.Duration
}

// CommandCompleted hands a finished command back to the reducer.
type CommandCompleted struct {
	Result dispatch.Result
}

func (SnapshotReceived) event()    {}
func (PortScanReported) event()    {}
func (ChannelStatus) event()       {}
func (HostSelected) event()        {}
func (SelectionClosed) event()     {}
func (ViewportResized) event()     {}
func (DraftEdited) event()         {}
func (FiltersChanged) event()      {}
func (PortScanRequested) event()   {}
func (BannerGrabRequested) event() {}
func (MACLookupRequested) event()  {}
func (HostUpdateRequested) event() {}
func (ScannerRequested) event()    {}
func (CommandCompleted) event()    {}
