// Package session holds the dashboard state and the single reducer every
// state change goes through.
package session

import (
	"time"

	"github.com/Rival420/Spynet2/internal/dispatch"
	"github.com/Rival420/Spynet2/internal/models"
	"github.com/Rival420/Spynet2/internal/selection"
	"github.com/Rival420/Spynet2/internal/view"
)

// Notice is the one-line message shown to the user.
type Notice struct {
	Text string
	Err  bool
	At   time.Time
}

// State is everything the dashboard knows. Values are treated as
// immutable: the reducer returns a new State and shares unchanged parts.
type State struct {
	Hosts     models.HostTable
	Filters   models.FilterState
	Selection selection.Selection
	Ledger    dispatch.Ledger
	Viewport  selection.Size
	PanelSize selection.Size
	Notice    Notice
	Connected bool
}

// NewState returns the start-of-session state.
func NewState(viewport, panel selection.Size) State {
	return State{
		Hosts:     models.HostTable{},
		Ledger:    dispatch.Ledger{},
		Viewport:  viewport,
		PanelSize: panel,
	}
}

// Visible is the filtered, ordered host list.
func (s State) Visible() []models.HostRecord {
	return view.Project(s.Hosts, s.Filters)
}

// Selected returns the record behind the selection, if both exist.
func (s State) Selected() (models.HostRecord, bool) {
	if !s.Selection.Active() {
		return models.HostRecord{}, false
	}

	rec, ok := s.Hosts[s.Selection.Address]

	return rec, ok
}
