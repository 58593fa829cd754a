// Package tui is the interactive dashboard: a bubbletea program that feeds
// key presses, mouse clicks and engine pushes through the session reducer
// and draws the resulting state.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rival420/Spynet2/internal/config"
	"github.com/Rival420/Spynet2/internal/dispatch"
	"github.com/Rival420/Spynet2/internal/logger"
	"github.com/Rival420/Spynet2/internal/models"
	"github.com/Rival420/Spynet2/internal/selection"
	"github.com/Rival420/Spynet2/internal/session"
)

// PanelSize is the action panel's footprint in terminal cells, border
// included.
var PanelSize = selection.Size{Width: 52, Height: 12}

// mode enumerates what the keyboard is currently driving.
type mode int

const (
	modeList mode = iota
	modeRange
	modeBanner
	modeHostname
	modeScanner
)

// Options wires the dashboard to the rest of the client.
type Options struct {
	Reducer session.Reducer
	Engine  dispatch.Engine

	// Events delivers pushes from the engine. Nil disables live updates.
	Events <-chan session.Event

	// Scanner pre-fills the scanner start form.
	Scanner config.ScannerConfig

	Log logger.Logger

	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error

	// Context bounds every command the dashboard sends.
	Context context.Context
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	opts  Options
	state session.State

	cursor int
	width  int
	height int
	mode   mode

	// inputs backs whichever form the current mode shows.
	inputs []textinput.Model
	focus  int

	spinner spinner.Model

	// message is a UI-only line (clipboard, form errors). It yields to the
	// reducer's notice as soon as that changes.
	message string

	quitting bool

	// live is set once a pushed snapshot has been applied; the seed is
	// older than any push and is dropped after that.
	live bool
}

type eventMsg struct{ event session.Event }

type eventsClosedMsg struct{}

type resultMsg struct{ result dispatch.Result }

type snapshotMsg struct{ snapshot models.Snapshot }

type seedFailedMsg struct{ err error }

type copiedMsg struct {
	text string
	err  error
}

// New returns a dashboard with an empty host table.
func New(opts Options) Model {
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	if opts.Context == nil {
		opts.Context = context.Background()
	}

	if opts.Log == nil {
		opts.Log = logger.NewTestLogger()
	}

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("11"))),
	)

	return Model{
		opts:    opts,
		state:   session.NewState(selection.Size{Width: 80, Height: 24}, PanelSize),
		width:   80,
		height:  24,
		spinner: sp,
	}
}

// State exposes the session state currently drawn.
func (m Model) State() session.State {
	return m.state
}

// Init pulls the first snapshot and starts listening for pushes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.seed(),
		waitForEvent(m.opts.Events),
		m.spinner.Tick,
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		return m.apply(session.ViewportResized{
			Viewport: selection.Size{Width: msg.Width, Height: msg.Height},
			Panel:    PanelSize,
		})

	case eventMsg:
		var cmd tea.Cmd
		m, cmd = m.apply(msg.event)

		if _, ok := msg.event.(session.SnapshotReceived); ok {
			m.live = true
		}

		return m, tea.Batch(cmd, waitForEvent(m.opts.Events))

	case eventsClosedMsg:
		m.message = "push channel closed"

		return m, nil

	case snapshotMsg:
		if m.live {
			m.opts.Log.Debug().Int("hosts", len(msg.snapshot)).Msg("Dropping seed that lost the race to a push")

			return m, nil
		}

		return m.apply(session.SnapshotReceived{Snapshot: msg.snapshot})

	case seedFailedMsg:
		m.message = fmt.Sprintf("initial snapshot: %v", msg.err)

		return m, nil

	case resultMsg:
		return m.apply(session.CommandCompleted{Result: msg.result})

	case copiedMsg:
		if msg.err != nil {
			m.message = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.message = fmt.Sprintf("copied %q", msg.text)
		}

		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case tea.MouseMsg:
		return m.click(msg)

	case tea.KeyMsg:
		if m.mode != modeList {
			return m.updateForm(msg)
		}

		return m.updateList(msg)
	}

	return m, nil
}

// apply runs ev through the reducer, keeps the cursor on the same host and
// turns the reducer's commands into tea commands.
func (m Model) apply(ev session.Event) (Model, tea.Cmd) {
	focused := m.focusedAddress()

	next, cmds, err := m.opts.Reducer.Reduce(m.state, ev)
	if err != nil {
		m.opts.Log.Debug().Err(err).Str("event", fmt.Sprintf("%T", ev)).Msg("Request rejected")
	}

	if next.Notice != m.state.Notice {
		m.message = ""
	}

	m.state = next
	m.follow(focused)

	return m, m.execute(cmds)
}

func (m Model) focusedAddress() string {
	rows := m.state.Visible()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return ""
	}

	return rows[m.cursor].Address
}

// follow moves the cursor to address if it is still visible and clamps it
// otherwise.
func (m *Model) follow(address string) {
	rows := m.state.Visible()

	for i, rec := range rows {
		if rec.Address == address {
			m.cursor = i

			return
		}
	}

	if m.cursor >= len(rows) {
		m.cursor = len(rows) - 1
	}

	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "Q":
		m.quitting = true

		return m, tea.Quit

	case "up", "k", "K":
		if m.cursor > 0 {
			m.cursor--
		}

		return m, nil

	case "down", "j", "J":
		if m.cursor < len(m.state.Visible())-1 {
			m.cursor++
		}

		return m, nil

	case "enter":
		return m.selectRow(m.cursor)

	case "esc":
		return m.apply(session.SelectionClosed{})

	case "o", "O":
		f := m.state.Filters
		f.HideOffline = !f.HideOffline

		return m.apply(session.FiltersChanged{Filters: f})

	case "h", "H":
		f := m.state.Filters
		f.HideDHCP = !f.HideDHCP

		return m.apply(session.FiltersChanged{Filters: f})

	case "s", "S":
		return m.openScannerForm()

	case "p", "P":
		return m.apply(session.ScannerRequested{Kind: dispatch.KindScannerPause})

	case "r", "R":
		return m.apply(session.ScannerRequested{Kind: dispatch.KindScannerResume})

	case "x", "X":
		return m.apply(session.ScannerRequested{Kind: dispatch.KindScannerStop})

	case "y", "Y":
		return m, m.copy()

	case "1":
		return m.apply(session.PortScanRequested{ScanType: models.ScanPopular})

	case "2":
		if !m.state.Selection.Active() {
			return m.apply(session.PortScanRequested{ScanType: models.ScanRange})
		}

		return m.openForm(modeRange,
			field("Start: ", strconv.Itoa(m.opts.Scanner.PortStart), 5),
			field("End:   ", strconv.Itoa(m.opts.Scanner.PortEnd), 5),
		)

	case "3":
		return m.apply(session.PortScanRequested{ScanType: models.ScanAll})

	case "b", "B":
		if !m.state.Selection.Active() {
			return m.apply(session.BannerGrabRequested{})
		}

		return m.openForm(modeBanner, field("Port: ", m.suggestedPort(), 5))

	case "m", "M":
		return m.apply(session.MACLookupRequested{})

	case "e", "E":
		if !m.state.Selection.Active() {
			m.message = dispatch.ErrNoSelection.Error()

			return m, nil
		}

		return m.openForm(modeHostname, field("Hostname: ", m.state.Selection.Draft.Hostname, 253))

	case "d", "D":
		d := m.state.Selection.Draft
		d.IsDHCP = !d.IsDHCP

		return m.apply(session.DraftEdited{Draft: d})

	case "w", "W":
		return m.apply(session.HostUpdateRequested{})
	}

	return m, nil
}

// selectRow opens the panel for the visible row idx.
func (m Model) selectRow(idx int) (tea.Model, tea.Cmd) {
	rows := m.state.Visible()
	if idx < 0 || idx >= len(rows) {
		return m, nil
	}

	m.cursor = idx
	anchor, _ := m.layout().anchor(idx)

	return m.apply(session.HostSelected{Address: rows[idx].Address, Anchor: anchor})
}

func (m Model) click(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft || m.mode != modeList {
		return m, nil
	}

	if m.state.Selection.Active() && contains(m.state.Selection.Panel, msg.X, msg.Y) {
		return m, nil
	}

	idx, ok := m.layout().rowAt(msg.Y)
	if !ok {
		return m, nil
	}

	return m.selectRow(idx)
}

func contains(r selection.Rect, x, y int) bool {
	return x >= r.Left && x < r.Right() && y >= r.Top && y < r.Bottom()
}

// suggestedPort pre-fills the banner form with the host's first open port.
func (m Model) suggestedPort() string {
	rec, ok := m.state.Selected()
	if !ok || len(rec.OpenPorts) == 0 {
		return "22"
	}

	return strconv.Itoa(rec.OpenPorts[0])
}

func field(prompt, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.CharLimit = limit
	in.SetValue(value)

	return in
}

func (m Model) openForm(md mode, inputs ...textinput.Model) (tea.Model, tea.Cmd) {
	m.mode = md
	m.inputs = inputs
	m.focus = 0

	return m, m.inputs[0].Focus()
}

func (m Model) openScannerForm() (tea.Model, tea.Cmd) {
	sc := m.opts.Scanner

	return m.openForm(modeScanner,
		field("Network:    ", sc.Network, 43),
		field("Port start: ", strconv.Itoa(sc.PortStart), 5),
		field("Port end:   ", strconv.Itoa(sc.PortEnd), 5),
		field("Timeout:    ", formatSeconds(sc.Timeout), 8),
		field("Interval:   ", formatSeconds(sc.Interval), 8),
	)
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true

		return m, tea.Quit

	case "esc":
		m.closeForm()

		return m, nil

	case "tab", "down":
		return m, m.moveFocus(1)

	case "shift+tab", "up":
		return m, m.moveFocus(-1)

	case "enter":
		if m.focus < len(m.inputs)-1 {
			return m, m.moveFocus(1)
		}

		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)

	return m, cmd
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)

	return m.inputs[m.focus].Focus()
}

func (m *Model) closeForm() {
	m.mode = modeList
	m.inputs = nil
	m.focus = 0
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	value := func(i int) string { return strings.TrimSpace(m.inputs[i].Value()) }
	number := func(i int) int {
		n, err := strconv.Atoi(value(i))
		if err != nil {
			return 0
		}

		return n
	}

	var ev session.Event

	switch m.mode {
	case modeRange:
		ev = session.PortScanRequested{ScanType: models.ScanRange, Start: number(0), End: number(1)}

	case modeBanner:
		ev = session.BannerGrabRequested{Port: number(0)}

	case modeHostname:
		d := m.state.Selection.Draft
		d.Hostname = m.inputs[0].Value()
		ev = session.DraftEdited{Draft: d}

	case modeScanner:
		timeout, err := parseSeconds(value(3))
		if err != nil {
			m.message = fmt.Sprintf("invalid timeout: %v", err)

			return m, nil
		}

		interval, err := parseSeconds(value(4))
		if err != nil {
			m.message = fmt.Sprintf("invalid interval: %v", err)

			return m, nil
		}

		ev = session.ScannerRequested{
			Kind:      dispatch.KindScannerStart,
			Network:   value(0),
			PortStart: number(1),
			PortEnd:   number(2),
			Timeout:   timeout,
			Interval:  interval,
		}
	}

	m.closeForm()

	return m.apply(ev)
}

// parseSeconds accepts a bare number of seconds (with either decimal
// separator) or a Go duration.
func parseSeconds(s string) (time.Duration, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if _, err := strconv.ParseFloat(normalized, 64); err == nil {
		normalized += "s"
	}

	return time.ParseDuration(normalized)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
