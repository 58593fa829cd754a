package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rival420/Spynet2/internal/dispatch"
	"github.com/Rival420/Spynet2/internal/session"
)

// waitForEvent blocks on the next push. Update re-arms it after each one.
func waitForEvent(events <-chan session.Event) tea.Cmd {
	if events == nil {
		return nil
	}

	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}

		return eventMsg{event: ev}
	}
}

// seed pulls the current host table so the dashboard is not empty until
// the first push.
func (m Model) seed() tea.Cmd {
	if m.opts.Engine == nil {
		return nil
	}

	eng, ctx := m.opts.Engine, m.opts.Context

	return func() tea.Msg {
		snap, err := eng.Snapshot(ctx)
		if err != nil {
			return seedFailedMsg{err: err}
		}

		return snapshotMsg{snapshot: snap}
	}
}

// execute runs each command concurrently; results come back as resultMsg.
func (m Model) execute(cmds []dispatch.Command) tea.Cmd {
	if len(cmds) == 0 || m.opts.Engine == nil {
		return nil
	}

	eng, ctx := m.opts.Engine, m.opts.Context
	batch := make([]tea.Cmd, 0, len(cmds))

	for _, cmd := range cmds {
		batch = append(batch, func() tea.Msg {
			return resultMsg{result: dispatch.Execute(ctx, eng, cmd)}
		})
	}

	return tea.Batch(batch...)
}

// copy puts the banner on the clipboard when one is shown, the selected
// address otherwise.
func (m Model) copy() tea.Cmd {
	text := m.copyText()
	if text == "" {
		return nil
	}

	write := m.opts.Clipboard

	return func() tea.Msg {
		return copiedMsg{text: text, err: write(text)}
	}
}

func (m Model) copyText() string {
	sel := m.state.Selection
	if sel.Active() {
		if sel.Banner != nil && sel.Banner.Err == "" && sel.Banner.Banner != "" {
			return sel.Banner.Banner
		}

		return sel.Address
	}

	return m.focusedAddress()
}
