// Package selection owns which host is active on the dashboard, the
// position of its action panel, and the transient state the panel holds.
package selection

import "github.com/Rival420/Spynet2/internal/models"

// State is the controller's state machine position.
type State int

const (
	Unselected State = iota
	Selected
)

// Draft is the editable copy of a host's metadata. It is independent of the
// host record until a host update commits it.
type Draft struct {
	Hostname string
	IsDHCP   bool
}

// BannerResult is the outcome of the last banner grab for the selection.
type BannerResult struct {
	Port   int
	Banner string
	Err    string
}

// Display renders the result for the panel.
func (b BannerResult) Display() string {
	switch {
	case b.Err != "":
		return "error: " + b.Err
	case b.Banner == "":
		return "(no banner)"
	default:
		return b.Banner
	}
}

// VendorResult is the outcome of the last MAC vendor lookup.
type VendorResult struct {
	Vendor string
	Err    string
}

// Display renders the result for the panel.
func (v VendorResult) Display() string {
	switch {
	case v.Err != "":
		return "error: " + v.Err
	case v.Vendor == "":
		return models.UnknownVendor
	default:
		return v.Vendor
	}
}

// Selection is the active host and its panel. The zero value is Unselected.
type Selection struct {
	Address string
	Anchor  Rect
	Panel   Rect
	Draft   Draft
	Banner  *BannerResult
	Vendor  *VendorResult
}

// State reports where the selection is in its lifecycle.
func (s Selection) State() State {
	if s.Address == "" {
		return Unselected
	}

	return Selected
}

// Active is shorthand for State() == Selected.
func (s Selection) Active() bool { return s.State() == Selected }

// Matches reports whether address is the selected host.
func (s Selection) Matches(address string) bool {
	return s.Active() && s.Address == address
}

// Open selects address, replacing any previous selection outright. The
// draft is seeded from rec when known is true and left blank otherwise;
// banner and vendor results start empty.
func (l Layout) Open(address string, rec models.HostRecord, known bool, anchor Rect, panel, viewport Size) Selection {
	s := Selection{
		Address: address,
		Anchor:  anchor,
		Panel:   l.Place(anchor, panel, viewport),
	}

	if known {
		s.Draft = Draft{Hostname: rec.Hostname, IsDHCP: rec.IsDHCP}
	}

	return s
}

// Reflow recomputes the panel position, e.g. after the viewport or panel
// size changed. Unselected selections are returned as is.
func (l Layout) Reflow(s Selection, panel, viewport Size) Selection {
	if !s.Active() {
		return s
	}

	s.Panel = l.Place(s.Anchor, panel, viewport)

	return s
}

// Close returns the Unselected selection.
func (Selection) Close() Selection {
	return Selection{}
}
